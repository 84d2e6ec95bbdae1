package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/timmy/entryhub/internal/domain"
	"github.com/timmy/entryhub/internal/logger"
	"github.com/timmy/entryhub/internal/repository"
	"gorm.io/gorm"
)

// DatasetService is the dataset registry.
type DatasetService struct {
	datasets *repository.DatasetRepository
}

// NewDatasetService creates a new dataset service.
func NewDatasetService(datasets *repository.DatasetRepository) *DatasetService {
	return &DatasetService{datasets: datasets}
}

// Create registers a dataset. Names are not required to be unique.
// Returns:
//   - *domain.Dataset: the dataset with its generated id.
//   - error: a persistence-kind error when the insert fails or yields no id.
func (s *DatasetService) Create(ctx context.Context, name string) (*domain.Dataset, error) {
	dataset := &domain.Dataset{Name: name}
	if err := s.datasets.Create(ctx, dataset); err != nil {
		return nil, domain.PersistenceError("failed to create dataset", err)
	}

	logger.CtxInfo(logger.SetDatasetID(ctx, dataset.ID), "Dataset created: name=%q", name)
	return dataset, nil
}

// Get returns a dataset by id, or a not-found-kind error.
func (s *DatasetService) Get(ctx context.Context, id int64) (*domain.Dataset, error) {
	dataset, err := s.datasets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("get dataset", fmt.Errorf("dataset %d not found", id))
		}
		return nil, domain.PersistenceError("get dataset", err)
	}
	return dataset, nil
}

// List returns all datasets in store order.
func (s *DatasetService) List(ctx context.Context) ([]domain.Dataset, error) {
	datasets, err := s.datasets.List(ctx)
	if err != nil {
		return nil, domain.PersistenceError("list datasets", err)
	}
	return datasets, nil
}

// ListWithCounts returns all datasets with their entry counts.
func (s *DatasetService) ListWithCounts(ctx context.Context) ([]domain.DatasetSummary, error) {
	summaries, err := s.datasets.ListWithCounts(ctx)
	if err != nil {
		return nil, domain.PersistenceError("list dataset summaries", err)
	}
	return summaries, nil
}
