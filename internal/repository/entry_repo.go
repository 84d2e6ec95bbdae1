package repository

import (
	"context"

	"github.com/timmy/entryhub/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntryRepository handles entry data operations.
type EntryRepository struct {
	db *gorm.DB
}

// NewEntryRepository creates a new EntryRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *EntryRepository: repository instance bound to db.
func NewEntryRepository(db *gorm.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// Create inserts a new entry and fills in its generated id.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - entry: entry record to persist; associations are never written.
// Returns:
//   - error: non-nil if the insert fails or yields no id.
func (r *EntryRepository) Create(ctx context.Context, entry *domain.Entry) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(entry).Error; err != nil {
		return err
	}
	if entry.ID == 0 {
		return ErrNoRowReturned
	}
	return nil
}

// GetByID retrieves an entry by its ID.
func (r *EntryRepository) GetByID(ctx context.Context, id int64) (*domain.Entry, error) {
	var entry domain.Entry
	if err := r.db.WithContext(ctx).First(&entry, "image_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// List returns every entry in store order.
func (r *EntryRepository) List(ctx context.Context) ([]domain.Entry, error) {
	entries := []domain.Entry{}
	if err := r.db.WithContext(ctx).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListByDataset returns the entries of a dataset in store order.
func (r *EntryRepository) ListByDataset(ctx context.Context, datasetID int64) ([]domain.Entry, error) {
	entries := []domain.Entry{}
	if err := r.db.WithContext(ctx).Where("dataset_id = ?", datasetID).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountByDataset counts the entries of a dataset.
func (r *EntryRepository) CountByDataset(ctx context.Context, datasetID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Entry{}).Where("dataset_id = ?", datasetID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListByDatasetWindow returns at most limit entries of a dataset ordered by id, skipping offset.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - datasetID: dataset to filter by.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.Entry: matching entries ordered by image_id ascending.
//   - error: non-nil if the query fails.
func (r *EntryRepository) ListByDatasetWindow(ctx context.Context, datasetID int64, limit, offset int) ([]domain.Entry, error) {
	entries := []domain.Entry{}
	if err := r.db.WithContext(ctx).
		Where("dataset_id = ?", datasetID).
		Order("image_id ASC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Update overwrites every writable column of the entry with the given id.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: entry ID.
//   - fields: replacement values; zero values are written too.
// Returns:
//   - int64: number of rows affected, zero when the entry does not exist.
//   - error: non-nil if the update fails.
func (r *EntryRepository) Update(ctx context.Context, id int64, fields *domain.EntryFields) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Entry{}).
		Where("image_id = ?", id).
		Updates(fields.Columns())
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
