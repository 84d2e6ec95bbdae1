package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/timmy/entryhub/internal/domain"
	"github.com/timmy/entryhub/internal/logger"
	"github.com/timmy/entryhub/internal/source"
)

// ImportService bulk-loads a source into a dataset through the ingestion pipeline.
type ImportService struct {
	datasets  *DatasetService
	entries   *EntryService
	ingest    *IngestService
	workers   int
	batchSize int
}

// ImportConfig holds configuration for the import service
type ImportConfig struct {
	Workers   int
	BatchSize int
}

// ImportStats holds statistics for an import run
type ImportStats struct {
	TotalItems     int64
	ProcessedItems int64
	CreatedItems   int64
	FailedItems    int64
	StartTime      time.Time
	EndTime        time.Time
}

// NewImportService creates a new import service
func NewImportService(datasets *DatasetService, entries *EntryService, ingest *IngestService, cfg *ImportConfig) *ImportService {
	if cfg == nil {
		cfg = &ImportConfig{}
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 20
	}
	return &ImportService{
		datasets:  datasets,
		entries:   entries,
		ingest:    ingest,
		workers:   workers,
		batchSize: batchSize,
	}
}

// ImportFromSource uploads up to limit items of src and records one entry per
// item in datasetID. Item failures are counted and logged; they do not stop the run.
// Parameters:
//   - ctx: cancellation stops fetching and lets in-flight items finish.
//   - datasetID: target dataset, which must exist.
//   - src: item source.
//   - limit: maximum number of items; <= 0 means no limit.
// Returns:
//   - *ImportStats: counters for the run.
//   - error: non-nil when the dataset does not exist.
func (s *ImportService) ImportFromSource(ctx context.Context, datasetID int64, src source.Source, limit int) (*ImportStats, error) {
	if _, err := s.datasets.Get(ctx, datasetID); err != nil {
		return nil, err
	}

	ctx = logger.SetDatasetID(logger.WithField(ctx, logger.FieldSource, src.GetSourceID()), datasetID)
	stats := &ImportStats{StartTime: time.Now()}

	items := make(chan source.Item, s.workers*2)
	results := make(chan *importResult, s.workers*2)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(ctx, datasetID, src, items, results)
		}()
	}

	done := make(chan struct{})
	go func() {
		for result := range results {
			atomic.AddInt64(&stats.ProcessedItems, 1)
			if result.err != nil {
				atomic.AddInt64(&stats.FailedItems, 1)
				logger.FromContext(ctx).WithField("item", result.sourceID).WithError(result.err).Error("Failed to import item")
				continue
			}
			atomic.AddInt64(&stats.CreatedItems, 1)
		}
		close(done)
	}()

	s.feed(ctx, src, limit, items, stats)

	close(items)
	wg.Wait()
	close(results)
	<-done

	stats.EndTime = time.Now()
	logger.FromContext(ctx).WithFields(logger.Fields{
		"total":                stats.TotalItems,
		"created":              stats.CreatedItems,
		"failed":               stats.FailedItems,
		logger.FieldDurationMs: stats.EndTime.Sub(stats.StartTime).Milliseconds(),
	}).Info("Import completed")

	return stats, nil
}

// feed pages through src and hands items to the workers until limit is reached.
func (s *ImportService) feed(ctx context.Context, src source.Source, limit int, items chan<- source.Item, stats *ImportStats) {
	cursor := ""
	fetched := 0
	for ctx.Err() == nil {
		batchLimit := s.batchSize
		if limit > 0 {
			remaining := limit - fetched
			if remaining <= 0 {
				return
			}
			if batchLimit > remaining {
				batchLimit = remaining
			}
		}

		batch, next, err := src.FetchBatch(ctx, cursor, batchLimit)
		if err != nil {
			logger.FromContext(ctx).WithError(err).Error("Failed to fetch batch")
			return
		}
		if len(batch) == 0 {
			return
		}

		atomic.AddInt64(&stats.TotalItems, int64(len(batch)))
		fetched += len(batch)

		for _, item := range batch {
			select {
			case items <- item:
			case <-ctx.Done():
				return
			}
		}

		if next == "" {
			return
		}
		cursor = next
	}
}

type importResult struct {
	sourceID string
	err      error
}

func (s *ImportService) worker(ctx context.Context, datasetID int64, src source.Source, items <-chan source.Item, results chan<- *importResult) {
	for item := range items {
		result := &importResult{sourceID: item.SourceID}
		if ctx.Err() != nil {
			result.err = ctx.Err()
		} else {
			result.err = s.importItem(ctx, datasetID, src, &item)
		}
		results <- result
	}
}

func (s *ImportService) importItem(ctx context.Context, datasetID int64, src source.Source, item *source.Item) error {
	data, err := src.Load(ctx, item)
	if err != nil {
		return err
	}

	obj, err := s.ingest.IngestBytes(ctx, data, source.ContentType(item.Format))
	if err != nil {
		return err
	}

	fields := item.Fields
	fields.DatasetID = domain.NewNullableID(datasetID)
	if _, err := s.entries.CreateWithObject(ctx, &fields, obj); err != nil {
		return fmt.Errorf("item %s: %w", item.SourceID, err)
	}
	return nil
}
