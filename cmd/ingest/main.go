package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vanshika/graphpath/internal/config"
	"github.com/vanshika/graphpath/internal/generator"
	"github.com/vanshika/graphpath/internal/graph"
	"github.com/vanshika/graphpath/internal/logging"
	"github.com/vanshika/graphpath/internal/repository"
	"github.com/vanshika/graphpath/internal/service"
)

var (
	errMissingDataset = errors.New("dataset not found")
)

func main() {
	var (
		datasetDir = flag.String("dataset-dir", "./seed-data", "Directory containing nodes.json and segments.json")
		workers    = flag.Int("workers", 4, "Number of concurrent workers for ingestion")
		batchSize  = flag.Int("batch-size", 500, "Number of nodes or segments merged per write")
		skipSchema = flag.Bool("skip-schema", false, "Do not create indexes before ingesting")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "ingest")

	if err := checkDataset(*datasetDir); err != nil {
		logger.Error("dataset resolution failed", "error", err)
		os.Exit(1)
	}

	dataset, err := generator.LoadDataset(*datasetDir)
	if err != nil {
		logger.Error("failed to load dataset", "error", err, "dir", *datasetDir)
		os.Exit(1)
	}
	if len(dataset.Nodes) == 0 {
		logger.Error("nodes dataset empty", "dir", *datasetDir)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	graphClient, err := buildGraphClient(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := graphClient.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}()

	repo := repository.New(graphClient, repository.Cypher())
	if !*skipSchema {
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Error("schema setup failed", "error", err)
			os.Exit(1)
		}
	}

	ingestor := service.NewBulkIngestor(repo, *workers, *batchSize)

	start := time.Now()
	logger.Info("ingesting nodes", "count", len(dataset.Nodes), "workers", *workers)
	if err := ingestor.IngestNodes(ctx, dataset.Nodes); err != nil {
		logger.Error("node ingestion failed", "error", err)
		os.Exit(1)
	}

	logger.Info("ingesting segments", "count", len(dataset.Segments))
	if err := ingestor.IngestSegments(ctx, dataset.Segments); err != nil {
		logger.Error("segment ingestion failed", "error", err)
		os.Exit(1)
	}

	logger.Info("ingestion complete", "duration", time.Since(start).String(), "nodes", len(dataset.Nodes), "segments", len(dataset.Segments))
}

func checkDataset(dir string) error {
	nodesPath, segmentsPath := generator.DatasetPaths(dir)
	for _, path := range []string{nodesPath, segmentsPath} {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%w: %s", errMissingDataset, path)
		}
	}
	return nil
}

// Ingestion always targets Neo4j; the Spanner Graph dialect is read-only.
func buildGraphClient(ctx context.Context, logger *slog.Logger, cfg config.Config) (graph.Client, error) {
	if cfg.Graph.Backend != "neo4j" {
		return nil, fmt.Errorf("ingestion requires GRAPH_BACKEND=neo4j, got %q", cfg.Graph.Backend)
	}
	if cfg.Graph.URI == "" {
		return nil, fmt.Errorf("GRAPH_URI is required for ingestion")
	}
	opts := graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	}
	client, err := graph.NewNeo4jClient(ctx, opts)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to graph", "uri", cfg.Graph.URI, "database", cfg.Graph.Database)
	return client, nil
}
