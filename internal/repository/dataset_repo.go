package repository

import (
	"context"
	"errors"

	"github.com/timmy/entryhub/internal/domain"
	"gorm.io/gorm"
)

// ErrNoRowReturned is returned when an insert succeeds without yielding a generated id.
var ErrNoRowReturned = errors.New("insert returned no row")

// DatasetRepository handles dataset data operations.
type DatasetRepository struct {
	db *gorm.DB
}

// NewDatasetRepository creates a new DatasetRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *DatasetRepository: repository instance bound to db.
func NewDatasetRepository(db *gorm.DB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

// Create inserts a new dataset and fills in its generated id.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - dataset: dataset record to persist.
// Returns:
//   - error: non-nil if the insert fails or yields no id.
func (r *DatasetRepository) Create(ctx context.Context, dataset *domain.Dataset) error {
	if err := r.db.WithContext(ctx).Create(dataset).Error; err != nil {
		return err
	}
	if dataset.ID == 0 {
		return ErrNoRowReturned
	}
	return nil
}

// GetByID retrieves a dataset by its ID.
func (r *DatasetRepository) GetByID(ctx context.Context, id int64) (*domain.Dataset, error) {
	var dataset domain.Dataset
	if err := r.db.WithContext(ctx).First(&dataset, "dataset_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &dataset, nil
}

// List returns every dataset in store order.
func (r *DatasetRepository) List(ctx context.Context) ([]domain.Dataset, error) {
	datasets := []domain.Dataset{}
	if err := r.db.WithContext(ctx).Find(&datasets).Error; err != nil {
		return nil, err
	}
	return datasets, nil
}

// ListWithCounts returns every dataset with the number of entries referencing it.
// Datasets without entries report zero.
func (r *DatasetRepository) ListWithCounts(ctx context.Context) ([]domain.DatasetSummary, error) {
	summaries := []domain.DatasetSummary{}
	err := r.db.WithContext(ctx).
		Table("dataset").
		Select("dataset.dataset_id AS id, dataset.name AS name, COUNT(entry.image_id) AS num_entries").
		Joins("LEFT JOIN entry ON dataset.dataset_id = entry.dataset_id").
		Group("dataset.dataset_id, dataset.name").
		Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}
