package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/graphpath/internal/domain"
)

type recordingWriter struct {
	mu         sync.Mutex
	nodes      []domain.Node
	segments   []domain.Segment
	batchSizes []int
	failOn     domain.NodeID
}

func (w *recordingWriter) UpsertNodes(ctx context.Context, nodes []domain.Node) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, n := range nodes {
		if w.failOn != 0 && n.ID == w.failOn {
			return errors.New("constraint violation")
		}
	}
	w.nodes = append(w.nodes, nodes...)
	w.batchSizes = append(w.batchSizes, len(nodes))
	return nil
}

func (w *recordingWriter) UpsertSegments(ctx context.Context, segments []domain.Segment) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.segments = append(w.segments, segments...)
	return nil
}

func TestBulkIngestorBatchesNodes(t *testing.T) {
	writer := &recordingWriter{}
	ingestor := NewBulkIngestor(writer, 3, 4)

	nodes := make([]domain.Node, 10)
	for i := range nodes {
		nodes[i] = domain.Node{ID: domain.NodeID(i + 1)}
	}

	require.NoError(t, ingestor.IngestNodes(context.Background(), nodes))
	assert.ElementsMatch(t, nodes, writer.nodes)
	assert.ElementsMatch(t, []int{4, 4, 2}, writer.batchSizes)
}

func TestBulkIngestorSegments(t *testing.T) {
	writer := &recordingWriter{}
	ingestor := NewBulkIngestor(writer, 2, 0)

	segments := []domain.Segment{{ID: 1, From: 1, To: 2}, {ID: 2, From: 2, To: 3}}
	require.NoError(t, ingestor.IngestSegments(context.Background(), segments))
	assert.ElementsMatch(t, segments, writer.segments)
}

func TestBulkIngestorAccumulatesErrors(t *testing.T) {
	writer := &recordingWriter{failOn: 5}
	ingestor := NewBulkIngestor(writer, 2, 2)

	nodes := make([]domain.Node, 6)
	for i := range nodes {
		nodes[i] = domain.Node{ID: domain.NodeID(i + 1)}
	}

	err := ingestor.IngestNodes(context.Background(), nodes)
	require.Error(t, err)
	var taskErr *TaskError
	require.ErrorAs(t, err, &taskErr)
	assert.Len(t, taskErr.Errors, 1)
	assert.Len(t, writer.nodes, 4)
}

func TestBulkIngestorEmptyInput(t *testing.T) {
	ingestor := NewBulkIngestor(&recordingWriter{}, 0, 0)
	assert.NoError(t, ingestor.IngestNodes(context.Background(), nil))
}

func TestBulkIngestorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ingestor := NewBulkIngestor(&recordingWriter{}, 2, 1)
	err := ingestor.IngestNodes(ctx, []domain.Node{{ID: 1}, {ID: 2}})
	assert.ErrorIs(t, err, context.Canceled)
}
