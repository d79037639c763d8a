package service

import (
	"context"
	"errors"
	"sync"

	"github.com/vanshika/graphpath/internal/domain"
)

// SeedWriter persists seed graph data in batches.
type SeedWriter interface {
	UpsertNodes(ctx context.Context, nodes []domain.Node) error
	UpsertSegments(ctx context.Context, segments []domain.Segment) error
}

// TaskError accumulates multiple errors produced during bulk ingestion.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := "multiple errors:"
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

// Unwrap exposes the accumulated errors to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error {
	return e.Errors
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// BulkIngestor writes large seed datasets in batches using a worker pool.
type BulkIngestor struct {
	writer    SeedWriter
	workers   int
	batchSize int
}

// NewBulkIngestor creates a new BulkIngestor instance with the provided concurrency.
func NewBulkIngestor(writer SeedWriter, workers, batchSize int) *BulkIngestor {
	if workers <= 0 {
		workers = 4
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	return &BulkIngestor{
		writer:    writer,
		workers:   workers,
		batchSize: batchSize,
	}
}

// IngestNodes merges nodes concurrently in batches.
func (bi *BulkIngestor) IngestNodes(ctx context.Context, nodes []domain.Node) error {
	batches := batchCount(len(nodes), bi.batchSize)
	return bi.run(ctx, batches, func(idx int) error {
		lo, hi := batchBounds(idx, bi.batchSize, len(nodes))
		return bi.writer.UpsertNodes(ctx, nodes[lo:hi])
	})
}

// IngestSegments merges segments concurrently in batches. Nodes must be
// ingested first.
func (bi *BulkIngestor) IngestSegments(ctx context.Context, segments []domain.Segment) error {
	batches := batchCount(len(segments), bi.batchSize)
	return bi.run(ctx, batches, func(idx int) error {
		lo, hi := batchBounds(idx, bi.batchSize, len(segments))
		return bi.writer.UpsertSegments(ctx, segments[lo:hi])
	})
}

func batchCount(total, size int) int {
	return (total + size - 1) / size
}

func batchBounds(idx, size, total int) (int, int) {
	lo := idx * size
	hi := lo + size
	if hi > total {
		hi = total
	}
	return lo, hi
}

func (bi *BulkIngestor) run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			if err := workerFn(idx); err != nil {
				select {
				case errCh <- err:
				case <-ctx.Done():
					return
				}
			}
		}
	}

	for i := 0; i < bi.workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	if err := ctx.Err(); err != nil {
		return err
	}

	var taskErr TaskError
	for err := range errCh {
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	return taskErr.asError()
}
