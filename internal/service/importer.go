package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pkg/errors"

	"github.com/vanshika/wormsim/internal/domain"
)

const (
	defaultImportWorkers   = 4
	defaultImportBatchSize = 500
)

// EdgeImporter persists one batch of edges.
type EdgeImporter interface {
	ImportEdges(ctx context.Context, network string, edges []domain.Edge) error
}

// BulkImporter pushes large edge lists into the graph database using a
// worker pool. Batches are independent MERGEs, so their order does not matter.
type BulkImporter struct {
	importer  EdgeImporter
	workers   int
	batchSize int
	logger    *slog.Logger
}

// NewBulkImporter creates a BulkImporter. Non-positive sizes fall back to defaults.
func NewBulkImporter(importer EdgeImporter, workers, batchSize int, logger *slog.Logger) *BulkImporter {
	if workers <= 0 {
		workers = defaultImportWorkers
	}
	if batchSize <= 0 {
		batchSize = defaultImportBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BulkImporter{
		importer:  importer,
		workers:   workers,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Import splits edges into batches and imports them concurrently. It returns
// the number of batches that succeeded.
func (bi *BulkImporter) Import(ctx context.Context, network string, edges []domain.Edge) (int, error) {
	batches := chunk(edges, bi.batchSize)
	var (
		mu       sync.Mutex
		imported int
	)
	err := bi.run(ctx, len(batches), func(idx int) error {
		if err := bi.importer.ImportEdges(ctx, network, batches[idx]); err != nil {
			return errors.Wrapf(err, "batch %d", idx)
		}
		mu.Lock()
		imported++
		mu.Unlock()
		bi.logger.Debug("batch imported", slog.Int("batch", idx), slog.Int("edges", len(batches[idx])))
		return nil
	})
	return imported, err
}

func (bi *BulkImporter) run(ctx context.Context, total int, workerFn func(idx int) error) error {
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

	var taskErr domain.TaskError
	for err := range errCh {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.Append(err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return taskErr.Err()
}

func chunk(edges []domain.Edge, size int) [][]domain.Edge {
	var out [][]domain.Edge
	for start := 0; start < len(edges); start += size {
		end := min(start+size, len(edges))
		out = append(out, edges[start:end])
	}
	return out
}
