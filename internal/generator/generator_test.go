package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/graphpath/internal/domain"
	"github.com/vanshika/graphpath/internal/memstore"
)

func TestGenerateDeterministic(t *testing.T) {
	cfg := Config{BackboneLength: 50, Chords: 5, ChordSpan: 3, Branches: 8, BranchDepth: 3, Seed: 7}

	first, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)
	second, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateShape(t *testing.T) {
	cfg := Config{BackboneLength: 50, Chords: 5, ChordSpan: 3, Branches: 8, BranchDepth: 3, Seed: 7}
	dataset, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)

	ids := make(map[domain.NodeID]struct{}, len(dataset.Nodes))
	for _, n := range dataset.Nodes {
		_, dup := ids[n.ID]
		require.False(t, dup, "duplicate node %d", n.ID)
		ids[n.ID] = struct{}{}
	}

	segmentIDs := make(map[int64]struct{}, len(dataset.Segments))
	for _, s := range dataset.Segments {
		_, dup := segmentIDs[s.ID]
		require.False(t, dup, "duplicate segment %d", s.ID)
		segmentIDs[s.ID] = struct{}{}
		assert.Contains(t, ids, s.From)
		assert.Contains(t, ids, s.To)
		assert.NotEqual(t, s.From, s.To)
	}
	assert.GreaterOrEqual(t, len(dataset.Segments), cfg.BackboneLength)
}

func TestGenerateBackboneReachable(t *testing.T) {
	cfg := Config{BackboneLength: 60, Chords: 4, ChordSpan: 4, Branches: 10, BranchDepth: 4, Seed: 3}
	dataset, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)

	store := memstore.New(dataset.Nodes, dataset.Segments)
	length, _, err := store.ShortestHopCount(context.Background(), 1, BackboneEnd(cfg), 100)
	require.NoError(t, err)
	assert.Positive(t, length)
	assert.LessOrEqual(t, length, cfg.BackboneLength)
}

func TestNewAppliesDefaults(t *testing.T) {
	g := New(Config{Seed: 1})
	assert.Equal(t, DefaultConfig().BackboneLength, g.Config().BackboneLength)
	assert.Equal(t, DefaultConfig().BranchDepth, g.Config().BranchDepth)
	assert.Equal(t, int64(1), g.Config().Seed)
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{Chords: 1, Seed: 1}).Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteAndLoadDataset(t *testing.T) {
	dir := t.TempDir()
	dataset := Dataset{
		Nodes:    []domain.Node{{ID: 1}, {ID: 2}},
		Segments: []domain.Segment{{ID: 9, From: 1, To: 2}},
	}

	require.NoError(t, WriteDataset(dataset, dir))
	loaded, err := LoadDataset(dir)
	require.NoError(t, err)
	assert.Equal(t, dataset, loaded)

	_, err = LoadDataset(t.TempDir())
	assert.Error(t, err)
}
