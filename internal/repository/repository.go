package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/vanshika/graphpath/internal/domain"
	"github.com/vanshika/graphpath/internal/graph"
)

// ErrWritesUnsupported is returned by write operations on read-only dialects.
var ErrWritesUnsupported = errors.New("dialect does not support writes")

// ErrInvalidHopBound is returned when a query is asked for a non-positive bound.
var ErrInvalidHopBound = errors.New("hop bound must be positive")

// Repository encapsulates graph persistence operations.
type Repository struct {
	client  graph.Client
	dialect Dialect
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client, dialect Dialect) *Repository {
	return &Repository{client: client, dialect: dialect}
}

// Dialect returns the query dialect in use.
func (r *Repository) Dialect() Dialect {
	return r.dialect
}

// ShortestHopCount returns the hop count of a shortest path from start to end
// traversing at most maxHop edges, or 0 when no such path exists.
func (r *Repository) ShortestHopCount(ctx context.Context, start, end domain.NodeID, maxHop int) (int, domain.Query, error) {
	if maxHop <= 0 {
		return 0, domain.Query{}, ErrInvalidHopBound
	}
	q := domain.Query{
		Name: domain.QueryHopCount,
		Text: r.dialect.hopCount(maxHop),
		Params: map[string]any{
			"start": int64(start),
			"end":   int64(end),
		},
	}

	res, err := r.client.ExecuteRead(ctx, q.Text, q.Params)
	if err != nil {
		return 0, q, fmt.Errorf("shortest hop count query: %w", err)
	}
	if len(res.Records) == 0 {
		return 0, q, nil
	}

	length, ok := toInt64(res.Records[0]["pathLength"])
	if !ok {
		return 0, q, fmt.Errorf("shortest hop count query: unexpected pathLength %T", res.Records[0]["pathLength"])
	}
	return int(length), q, nil
}

// BoundaryAtDistance returns the first node the engine yields whose shortest
// distance from start is exactly hopCount. The towards node is not used to
// constrain the search; the returned node is not guaranteed to lie on a
// shortest path to it.
func (r *Repository) BoundaryAtDistance(ctx context.Context, start domain.NodeID, hopCount int, towards domain.NodeID) (domain.NodeID, bool, domain.Query, error) {
	if hopCount <= 0 {
		return 0, false, domain.Query{}, ErrInvalidHopBound
	}
	q := domain.Query{
		Name: domain.QueryBoundary,
		Text: r.dialect.boundary(hopCount),
		Params: map[string]any{
			"start":    int64(start),
			"hopCount": int64(hopCount),
		},
	}

	res, err := r.client.ExecuteRead(ctx, q.Text, q.Params)
	if err != nil {
		return 0, false, q, fmt.Errorf("boundary query: %w", err)
	}
	if len(res.Records) == 0 {
		return 0, false, q, nil
	}

	raw := res.Records[0]["nodeId"]
	if raw == nil {
		return 0, false, q, nil
	}
	id, ok := toInt64(raw)
	if !ok {
		return 0, false, q, fmt.Errorf("boundary query: unexpected nodeId %T", raw)
	}
	return domain.NodeID(id), true, q, nil
}

// ShortestPathEdges returns the edges of a shortest path from start to end of at
// most maxHop hops, ordered from start to end. The slice is empty when no such
// path exists.
func (r *Repository) ShortestPathEdges(ctx context.Context, start, end domain.NodeID, maxHop int) ([]domain.Edge, domain.Query, error) {
	if maxHop <= 0 {
		return nil, domain.Query{}, ErrInvalidHopBound
	}
	q := domain.Query{
		Name: domain.QueryEdges,
		Text: r.dialect.edges(maxHop),
		Params: map[string]any{
			"start": int64(start),
			"end":   int64(end),
		},
	}

	res, err := r.client.ExecuteRead(ctx, q.Text, q.Params)
	if err != nil {
		return nil, q, fmt.Errorf("shortest path edges query: %w", err)
	}

	edges := make([]domain.Edge, 0, len(res.Records))
	for i, record := range res.Records {
		edge, err := decodeEdge(record)
		if err != nil {
			return nil, q, fmt.Errorf("shortest path edges query: row %d: %w", i, err)
		}
		edges = append(edges, edge)
	}
	return edges, q, nil
}

// EnsureSchema creates the indexes the path queries rely on.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if !r.dialect.SupportsWrites() {
		return ErrWritesUnsupported
	}
	for _, stmt := range r.dialect.schema {
		if _, err := r.client.ExecuteWrite(ctx, stmt, nil); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// UpsertNodes merges a batch of nodes by id.
func (r *Repository) UpsertNodes(ctx context.Context, nodes []domain.Node) error {
	if !r.dialect.SupportsWrites() {
		return ErrWritesUnsupported
	}
	if len(nodes) == 0 {
		return nil
	}
	ids := make([]int64, len(nodes))
	for i, n := range nodes {
		ids[i] = int64(n.ID)
	}
	if _, err := r.client.ExecuteWrite(ctx, r.dialect.upsertNodes, map[string]any{"nodes": ids}); err != nil {
		return fmt.Errorf("upsert nodes: %w", err)
	}
	return nil
}

// UpsertSegments merges a batch of segments as forward and reverse edges. The
// endpoint nodes must already exist.
func (r *Repository) UpsertSegments(ctx context.Context, segments []domain.Segment) error {
	if !r.dialect.SupportsWrites() {
		return ErrWritesUnsupported
	}
	if len(segments) == 0 {
		return nil
	}
	params := make([]map[string]any, len(segments))
	for i, s := range segments {
		params[i] = map[string]any{
			"segmentId":   s.ID,
			"startNodeId": int64(s.From),
			"endNodeId":   int64(s.To),
		}
	}
	if _, err := r.client.ExecuteWrite(ctx, r.dialect.upsertSegment, map[string]any{"segments": params}); err != nil {
		return fmt.Errorf("upsert segments: %w", err)
	}
	return nil
}

func decodeEdge(record graph.Record) (domain.Edge, error) {
	start, ok := toInt64(record["startNodeId"])
	if !ok {
		return domain.Edge{}, fmt.Errorf("unexpected startNodeId %T", record["startNodeId"])
	}
	segment, ok := toInt64(record["segmentId"])
	if !ok {
		return domain.Edge{}, fmt.Errorf("unexpected segmentId %T", record["segmentId"])
	}
	end, ok := toInt64(record["endNodeId"])
	if !ok {
		return domain.Edge{}, fmt.Errorf("unexpected endNodeId %T", record["endNodeId"])
	}
	return domain.Edge{
		StartNodeID: domain.NodeID(start),
		SegmentID:   segment,
		EndNodeID:   domain.NodeID(end),
	}, nil
}

func toInt64(val any) (int64, bool) {
	switch v := val.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}
