package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vanshika/graphpath/internal/domain"
)

// GraphStore is the read-only contract the path service needs from the graph
// database: three bounded shortest-path query shapes. Every call returns the
// query it issued so the service can log provenance.
type GraphStore interface {
	ShortestHopCount(ctx context.Context, start, end domain.NodeID, maxHop int) (int, domain.Query, error)
	BoundaryAtDistance(ctx context.Context, start domain.NodeID, hopCount int, towards domain.NodeID) (domain.NodeID, bool, domain.Query, error)
	ShortestPathEdges(ctx context.Context, start, end domain.NodeID, maxHop int) ([]domain.Edge, domain.Query, error)
}

// Options tunes a PathService.
type Options struct {
	// MaxHop is the store's per-query hop cap. Defaults to 20.
	MaxHop int
	// LengthCap bounds the total length probe. Defaults to 100 and is raised
	// to MaxHop if smaller.
	LengthCap int
	// Timeout bounds a whole resolution, every chunk included. Zero disables it.
	Timeout time.Duration
	Logger  *slog.Logger
}

const (
	defaultMaxHop    = 20
	defaultLengthCap = 100
)

// PathService resolves shortest paths longer than the store's hop cap by
// walking them in bounded chunks.
type PathService struct {
	store     GraphStore
	maxHop    int
	lengthCap int
	timeout   time.Duration
	logger    *slog.Logger
	newID     func() string
	nowFn     func() time.Time
}

// PathResult is the outcome of a successful resolution. NoPath distinguishes
// "no path exists" from a path with zero edges.
type PathResult struct {
	ID         string
	Start      domain.NodeID
	End        domain.NodeID
	Length     int
	ChunkSizes []int
	NoPath     bool
	Edges      domain.Path
	Queries    []domain.Query
	QueryText  string
}

// Chunks returns the number of segments the path was fetched in.
func (r PathResult) Chunks() int {
	return len(r.ChunkSizes)
}

// NewPathService constructs a PathService over store.
func NewPathService(store GraphStore, opts Options) *PathService {
	if opts.MaxHop <= 0 {
		opts.MaxHop = defaultMaxHop
	}
	if opts.LengthCap <= 0 {
		opts.LengthCap = defaultLengthCap
	}
	if opts.LengthCap < opts.MaxHop {
		opts.LengthCap = opts.MaxHop
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &PathService{
		store:     store,
		maxHop:    opts.MaxHop,
		lengthCap: opts.LengthCap,
		timeout:   opts.Timeout,
		logger:    opts.Logger,
		newID:     uuid.NewString,
		nowFn:     time.Now,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (s *PathService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// MaxHop returns the per-query hop cap in use.
func (s *PathService) MaxHop() int {
	return s.maxHop
}

// ResolvePath returns the shortest path from start to end. When no path exists
// the result has NoPath set and no edges; this is not an error. Any failure
// aborts the whole resolution and no partial path is returned.
func (s *PathService) ResolvePath(ctx context.Context, start, end int64) (PathResult, error) {
	began := s.nowFn()
	id := s.newID()
	res, err := s.resolve(ctx, id, domain.NodeID(start), domain.NodeID(end))
	elapsed := s.nowFn().Sub(began)

	resolutionDuration.Observe(elapsed.Seconds())
	switch {
	case err != nil:
		resolutionsTotal.WithLabelValues(string(KindOf(err))).Inc()
		s.logger.Error("path resolution failed: "+err.Error(),
			"resolutionId", id,
			"kind", string(KindOf(err)),
			"startNode", start,
			"endNode", end,
		)
		return PathResult{}, err
	case res.NoPath:
		resolutionsTotal.WithLabelValues("no_path").Inc()
		s.logger.Warn("No path found between the specified nodes.",
			"resolutionId", id,
			"startNode", start,
			"endNode", end,
		)
	default:
		resolutionsTotal.WithLabelValues("ok").Inc()
		resolutionChunks.Observe(float64(res.Chunks()))
		s.logger.Info("path resolved",
			"resolutionId", id,
			"startNode", start,
			"endNode", end,
			"pathLength", res.Length,
			"chunks", res.Chunks(),
			"chunkSizes", res.ChunkSizes,
			"query", res.QueryText,
			"edgeCount", len(res.Edges),
			"edges", []domain.Edge(res.Edges),
			"duration_ms", elapsed.Milliseconds(),
		)
	}
	return res, nil
}

func (s *PathService) resolve(ctx context.Context, id string, start, end domain.NodeID) (PathResult, error) {
	result := PathResult{ID: id, Start: start, End: end}
	if start == end {
		result.NoPath = true
		result.Edges = domain.Path{}
		return result, nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	length, lengthQuery, err := s.resolveLength(ctx, start, end)
	if err != nil {
		return PathResult{}, err
	}
	if length == 0 {
		result.NoPath = true
		result.Edges = domain.Path{}
		result.Queries = []domain.Query{lengthQuery}
		result.QueryText = concatQueries(result.Queries)
		return result, nil
	}

	plan, err := PlanChunks(length, s.maxHop, start)
	if err != nil {
		return PathResult{}, err
	}
	st := NewStitcher(plan)
	st.Record(lengthQuery)

	current := start
	for i, chunk := range plan {
		if err := ctx.Err(); err != nil {
			return PathResult{}, upstream(err, "resolution aborted before segment %d", chunk.Index)
		}
		chunk.Start = current
		chunk.Known = true

		target := end
		if i < len(plan)-1 {
			node, q, err := s.resolveBoundary(ctx, current, chunk.HopCount, end)
			st.Record(q)
			if err != nil {
				return PathResult{}, err
			}
			target = node
		}

		edges, q, err := s.fetchSegment(ctx, current, target, chunk.HopCount)
		st.Record(q)
		if err != nil {
			return PathResult{}, err
		}
		if err := st.Append(chunk, edges); err != nil {
			return PathResult{}, err
		}
		current = target
	}

	path, err := st.Finish(end)
	if err != nil {
		return PathResult{}, err
	}

	result.Length = length
	result.ChunkSizes = plan.Sizes()
	result.Edges = path
	result.Queries = st.Queries()
	result.QueryText = st.QueryText()
	return result, nil
}

// resolveLength probes the total hop count with the generous length cap.
func (s *PathService) resolveLength(ctx context.Context, start, end domain.NodeID) (int, domain.Query, error) {
	length, q, err := s.store.ShortestHopCount(ctx, start, end, s.lengthCap)
	observeQuery(domain.QueryHopCount, length == 0, err)
	if err != nil {
		return 0, q, upstream(err, "resolve path length from %d to %d", start, end)
	}
	if length < 0 {
		return 0, q, inconsistent("store reported negative path length %d", length)
	}
	return length, q, nil
}

// resolveBoundary finds the node where a non-final chunk ends. The lookup takes
// any node at exactly hopCount hops from start; it is not guaranteed to lie on
// a shortest path to towards, in which case a later segment fetch fails.
func (s *PathService) resolveBoundary(ctx context.Context, start domain.NodeID, hopCount int, towards domain.NodeID) (domain.NodeID, domain.Query, error) {
	node, found, q, err := s.store.BoundaryAtDistance(ctx, start, hopCount, towards)
	observeQuery(domain.QueryBoundary, !found, err)
	if err != nil {
		return 0, q, upstream(err, "resolve boundary node from %d at distance %d", start, hopCount)
	}
	if !found {
		return 0, q, upstream(ErrBoundaryNotFound, "could not find an intermediate node from %d at distance %d", start, hopCount)
	}
	return node, q, nil
}

// fetchSegment retrieves the edges of one bounded segment.
func (s *PathService) fetchSegment(ctx context.Context, start, end domain.NodeID, hopCount int) ([]domain.Edge, domain.Query, error) {
	edges, q, err := s.store.ShortestPathEdges(ctx, start, end, hopCount)
	observeQuery(domain.QueryEdges, len(edges) == 0, err)
	if err != nil {
		return nil, q, upstream(err, "fetch segment from %d to %d", start, end)
	}
	if len(edges) == 0 {
		return nil, q, upstream(ErrSegmentNotFound, "no path of at most %d hops from %d to %d", hopCount, start, end)
	}
	return edges, q, nil
}
