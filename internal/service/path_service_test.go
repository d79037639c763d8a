package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vanshika/graphpath/internal/domain"
	"github.com/vanshika/graphpath/internal/memstore"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scenarioStore is a 47 hop chain from node 1 to node 500 with a dead-end
// branch hanging off node 5.
func scenarioStore() *memstore.Store {
	var segments []domain.Segment
	for i := 1; i < 47; i++ {
		segments = append(segments, domain.Segment{ID: int64(100 + i), From: domain.NodeID(i), To: domain.NodeID(i + 1)})
	}
	segments = append(segments,
		domain.Segment{ID: 147, From: 47, To: 500},
		domain.Segment{ID: 900, From: 5, To: 1000},
		domain.Segment{ID: 901, From: 1000, To: 1001},
	)
	return memstore.New(nil, segments)
}

func newTestService(store GraphStore, maxHop int) *PathService {
	return NewPathService(store, Options{MaxHop: maxHop, LengthCap: 100})
}

func TestResolvePath_ConcreteScenario(t *testing.T) {
	store := scenarioStore()
	svc := newTestService(store, 20)

	res, err := svc.ResolvePath(context.Background(), 1, 500)
	require.NoError(t, err)

	assert.False(t, res.NoPath)
	assert.Equal(t, 47, res.Length)
	assert.Equal(t, []int{20, 20, 7}, res.ChunkSizes)
	assert.Equal(t, 2, store.Calls(domain.QueryBoundary))
	assert.Equal(t, 3, store.Calls(domain.QueryEdges))
	require.Len(t, res.Edges, 47)

	assert.Equal(t, res.Edges[19].EndNodeID, res.Edges[20].StartNodeID)
	assert.Equal(t, res.Edges[39].EndNodeID, res.Edges[40].StartNodeID)
	assert.Equal(t, domain.NodeID(500), res.Edges[46].EndNodeID)
	_, ok := res.Edges.Contiguous()
	assert.True(t, ok)

	// length probe, then boundary + fetch, boundary + fetch, fetch
	names := make([]string, len(res.Queries))
	for i, q := range res.Queries {
		names[i] = q.Name
	}
	want := []string{
		domain.QueryHopCount,
		domain.QueryBoundary, domain.QueryEdges,
		domain.QueryBoundary, domain.QueryEdges,
		domain.QueryEdges,
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("query order mismatch (-want +got):\n%s", diff)
	}
	assert.NotEmpty(t, res.QueryText)
	assert.NotEmpty(t, res.ID)
}

func TestResolvePath_ShortPathUsesSingleFetch(t *testing.T) {
	store := memstore.Chain(12)
	svc := newTestService(store, 20)

	res, err := svc.ResolvePath(context.Background(), 1, 13)
	require.NoError(t, err)

	assert.Equal(t, 12, res.Length)
	assert.Len(t, res.Edges, 12)
	assert.Equal(t, 1, store.Calls(domain.QueryEdges))
	assert.Zero(t, store.Calls(domain.QueryBoundary))
	_, ok := res.Edges.Contiguous()
	assert.True(t, ok)
}

func TestResolvePath_ChunkingProperties(t *testing.T) {
	const maxHop = 6
	for length := 1; length <= 40; length++ {
		store := memstore.Chain(length)
		svc := newTestService(store, maxHop)

		res, err := svc.ResolvePath(context.Background(), 1, int64(length+1))
		require.NoError(t, err, "length %d", length)

		wantChunks := (length + maxHop - 1) / maxHop
		assert.Equal(t, wantChunks, store.Calls(domain.QueryEdges), "length %d", length)
		assert.Equal(t, wantChunks-1, store.Calls(domain.QueryBoundary), "length %d", length)
		sum := 0
		for _, size := range res.ChunkSizes {
			assert.LessOrEqual(t, size, maxHop)
			sum += size
		}
		assert.Equal(t, length, sum)
		require.Len(t, res.Edges, length)
		_, ok := res.Edges.Contiguous()
		assert.True(t, ok, "length %d", length)
		assert.Equal(t, domain.NodeID(length+1), res.Edges[length-1].EndNodeID)
	}
}

func TestResolvePath_Unreachable(t *testing.T) {
	store := memstore.New(nil, []domain.Segment{
		{ID: 1, From: 1, To: 2},
		{ID: 2, From: 10, To: 11},
	})
	svc := newTestService(store, 20)

	res, err := svc.ResolvePath(context.Background(), 1, 11)
	require.NoError(t, err)

	assert.True(t, res.NoPath)
	assert.NotNil(t, res.Edges)
	assert.Empty(t, res.Edges)
	assert.Zero(t, res.Length)
	assert.Zero(t, store.Calls(domain.QueryEdges))
}

func TestResolvePath_SameEndpoints(t *testing.T) {
	store := memstore.Chain(3)
	svc := newTestService(store, 20)

	res, err := svc.ResolvePath(context.Background(), 1, 1)
	require.NoError(t, err)

	assert.True(t, res.NoPath)
	assert.Empty(t, res.Edges)
	assert.Zero(t, store.Calls(domain.QueryHopCount), "no store access")
}

func TestResolvePath_Idempotent(t *testing.T) {
	store := scenarioStore()
	svc := newTestService(store, 20)

	first, err := svc.ResolvePath(context.Background(), 1, 500)
	require.NoError(t, err)
	second, err := svc.ResolvePath(context.Background(), 1, 500)
	require.NoError(t, err)

	assert.Equal(t, len(first.Edges), len(second.Edges))
	assert.NotEqual(t, first.ID, second.ID)
}

func TestResolvePath_BoundaryNotFound(t *testing.T) {
	store := scenarioStore()
	store.HideBoundaries()
	svc := newTestService(store, 20)

	res, err := svc.ResolvePath(context.Background(), 1, 500)
	require.Error(t, err)

	assert.Equal(t, KindUpstreamFailure, KindOf(err))
	assert.ErrorIs(t, err, ErrBoundaryNotFound)
	assert.Contains(t, err.Error(), "could not find an intermediate node from 1 at distance 20")
	assert.Zero(t, store.Calls(domain.QueryEdges), "no segment fetch after a missing boundary")
	assert.Empty(t, res.Edges)
}

func TestResolvePath_StoreFailures(t *testing.T) {
	boom := errors.New("deadline from backend")
	for _, name := range []string{domain.QueryHopCount, domain.QueryBoundary, domain.QueryEdges} {
		t.Run(name, func(t *testing.T) {
			store := scenarioStore()
			store.FailNext(name, boom)
			svc := newTestService(store, 20)

			res, err := svc.ResolvePath(context.Background(), 1, 500)
			require.Error(t, err)
			assert.Equal(t, KindUpstreamFailure, KindOf(err))
			assert.ErrorIs(t, err, boom)
			assert.Empty(t, res.Edges, "no partial result")
		})
	}
}

// The boundary lookup takes the first node found at the chunk distance, which
// here is the dead end 2 instead of 11 on the real path 1-10-11-12-13. The final
// segment then cannot be fetched within its planned hops and the resolution
// fails rather than returning a wrong or longer path.
func TestResolvePath_BoundaryOffShortestPath(t *testing.T) {
	store := memstore.New(nil, []domain.Segment{
		{ID: 5, From: 10, To: 2},
		{ID: 1, From: 1, To: 10},
		{ID: 2, From: 10, To: 11},
		{ID: 3, From: 11, To: 12},
		{ID: 4, From: 12, To: 13},
	})
	svc := newTestService(store, 2)

	_, err := svc.ResolvePath(context.Background(), 1, 13)
	require.Error(t, err)
	assert.Equal(t, KindUpstreamFailure, KindOf(err))
	assert.ErrorIs(t, err, ErrSegmentNotFound)
}

// corruptingStore returns a second segment that does not start where the first
// one ended.
type corruptingStore struct {
	*memstore.Store
	fetches int
}

func (c *corruptingStore) ShortestPathEdges(ctx context.Context, start, end domain.NodeID, maxHop int) ([]domain.Edge, domain.Query, error) {
	edges, q, err := c.Store.ShortestPathEdges(ctx, start, end, maxHop)
	c.fetches++
	if c.fetches == 2 && len(edges) > 0 {
		edges[0].StartNodeID += 1000
	}
	return edges, q, err
}

func TestResolvePath_ContiguityViolation(t *testing.T) {
	store := &corruptingStore{Store: scenarioStore()}
	svc := newTestService(store, 20)

	_, err := svc.ResolvePath(context.Background(), 1, 500)
	require.Error(t, err)
	assert.Equal(t, KindInternalInconsistency, KindOf(err))
	assert.ErrorIs(t, err, ErrContiguity)
}

// blockingStore blocks boundary lookups until the context ends.
type blockingStore struct {
	*memstore.Store
}

func (b blockingStore) BoundaryAtDistance(ctx context.Context, start domain.NodeID, hopCount int, towards domain.NodeID) (domain.NodeID, bool, domain.Query, error) {
	<-ctx.Done()
	return 0, false, domain.Query{}, ctx.Err()
}

func TestResolvePath_DeadlineSpansPipeline(t *testing.T) {
	svc := NewPathService(blockingStore{scenarioStore()}, Options{MaxHop: 20, Timeout: 20 * time.Millisecond})

	res, err := svc.ResolvePath(context.Background(), 1, 500)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, KindUpstreamFailure, KindOf(err))
	assert.Empty(t, res.Edges)
}

func TestResolvePath_CallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := newTestService(scenarioStore(), 20)

	_, err := svc.ResolvePath(ctx, 1, 500)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolvePath_LogsProvenance(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	svc := NewPathService(scenarioStore(), Options{MaxHop: 20, Logger: logger})

	_, err := svc.ResolvePath(context.Background(), 1, 500)
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "path resolved", record["msg"])
	assert.EqualValues(t, 1, record["startNode"])
	assert.EqualValues(t, 500, record["endNode"])
	assert.EqualValues(t, 47, record["pathLength"])
	assert.EqualValues(t, 3, record["chunks"])
	assert.EqualValues(t, 47, record["edgeCount"])
	assert.Contains(t, record["query"], domain.QueryEdges)
	edges, ok := record["edges"].([]any)
	require.True(t, ok)
	assert.Len(t, edges, 47)
}

func TestResolvePath_ConcurrentCallsShareService(t *testing.T) {
	store := scenarioStore()
	svc := newTestService(store, 20)

	const callers = 16
	results := make([]PathResult, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			end := int64(500)
			if i%2 == 1 {
				end = 13
			}
			results[i], errs[i] = svc.ResolvePath(context.Background(), 1, end)
		}(i)
	}
	wg.Wait()

	ids := make(map[string]struct{}, callers)
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		want := 47
		if i%2 == 1 {
			want = 12
		}
		assert.Equal(t, want, results[i].Length)
		require.Len(t, results[i].Edges, want)
		_, ok := results[i].Edges.Contiguous()
		assert.True(t, ok)
		ids[results[i].ID] = struct{}{}
	}
	assert.Len(t, ids, callers, "every resolution gets its own id")
	assert.Equal(t, callers/2*3+callers/2, store.Calls(domain.QueryEdges))
}

func TestNewPathServiceDefaults(t *testing.T) {
	svc := NewPathService(memstore.Chain(1), Options{MaxHop: 150})
	assert.Equal(t, 150, svc.MaxHop())
	assert.Equal(t, 150, svc.lengthCap, "length cap never below the hop cap")

	svc = NewPathService(memstore.Chain(1), Options{})
	assert.Equal(t, 20, svc.MaxHop())
	assert.Equal(t, 100, svc.lengthCap)
}
