package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// resolutionsTotal counts ResolvePath calls by outcome: ok, no_path or an error Kind.
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graphpath_resolutions_total",
		Help: "Total shortest path resolutions by outcome",
	}, []string{"outcome"})

	resolutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "graphpath_resolution_duration_seconds",
		Help:    "End to end shortest path resolution latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
	})

	resolutionChunks = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "graphpath_resolution_chunks",
		Help:    "Number of bounded segments per resolved path",
		Buckets: []float64{1, 2, 3, 4, 5, 8, 10},
	})

	// storeQueriesTotal counts store round trips by query shape and result (ok, empty, error).
	storeQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graphpath_store_queries_total",
		Help: "Total graph store queries by query shape and result",
	}, []string{"query", "result"})
)

func observeQuery(name string, empty bool, err error) {
	result := "ok"
	switch {
	case err != nil:
		result = "error"
	case empty:
		result = "empty"
	}
	storeQueriesTotal.WithLabelValues(name, result).Inc()
}
