package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/timmy/entryhub/internal/config"
	"github.com/timmy/entryhub/internal/domain"
	"github.com/timmy/entryhub/internal/logger"
	"github.com/timmy/entryhub/internal/repository"
	"gorm.io/gorm"
)

// EntryService is the entry store: creation (with or without content
// ingestion), listing, pagination and full-overwrite updates.
type EntryService struct {
	entries  *repository.EntryRepository
	ingest   *IngestService
	pageSize int
}

// EntryConfig holds configuration for the entry service
type EntryConfig struct {
	PageSize int
}

// NewEntryService creates a new entry service
func NewEntryService(entries *repository.EntryRepository, ingest *IngestService, cfg *EntryConfig) *EntryService {
	pageSize := config.DefaultPageSize
	if cfg != nil && cfg.PageSize > 0 {
		pageSize = cfg.PageSize
	}
	return &EntryService{
		entries:  entries,
		ingest:   ingest,
		pageSize: pageSize,
	}
}

// PageSize returns the number of entries per page.
func (s *EntryService) PageSize() int {
	return s.pageSize
}

// CreateInDataset creates an entry in datasetID. A non-empty fields.FileURL is
// an inline payload: it is decoded and uploaded first, and the stored URL
// replaces it. An empty FileURL skips ingestion.
//
// If the row cannot be written after a successful upload, the object is
// deleted again on a best-effort basis.
func (s *EntryService) CreateInDataset(ctx context.Context, datasetID int64, fields *domain.EntryFields) (*domain.Entry, error) {
	ctx = logger.SetDatasetID(ctx, datasetID)

	f := *fields
	f.DatasetID = domain.NewNullableID(datasetID)

	var obj *StoredObject
	if f.FileURL != "" {
		var err error
		obj, err = s.ingest.Ingest(ctx, f.FileURL)
		if err != nil {
			return nil, err
		}
		f.FileURL = obj.URL
	}

	return s.CreateWithObject(ctx, &f, obj)
}

// CreateWithObject inserts an entry whose content was already uploaded as obj.
// On insert failure obj is discarded. A nil obj inserts the fields as given.
func (s *EntryService) CreateWithObject(ctx context.Context, fields *domain.EntryFields, obj *StoredObject) (*domain.Entry, error) {
	entry := fields.ToEntry()
	if obj != nil {
		entry.FileURL = obj.URL
	}

	if err := s.entries.Create(ctx, entry); err != nil {
		if obj != nil {
			s.ingest.Discard(ctx, obj)
		}
		return nil, domain.PersistenceError("failed to create entry", err)
	}

	logger.CtxInfo(logger.SetEntryID(ctx, entry.ID), "Entry created: file_url=%s", entry.FileURL)
	return entry, nil
}

// Create inserts an entry from raw field values; file_url is stored as given.
func (s *EntryService) Create(ctx context.Context, fields *domain.EntryFields) (*domain.Entry, error) {
	return s.CreateWithObject(ctx, fields, nil)
}

// Get returns an entry by id, or a not-found-kind error.
func (s *EntryService) Get(ctx context.Context, id int64) (*domain.Entry, error) {
	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("get entry", fmt.Errorf("entry %d not found", id))
		}
		return nil, domain.PersistenceError("get entry", err)
	}
	return entry, nil
}

// List returns all entries in store order.
func (s *EntryService) List(ctx context.Context) ([]domain.Entry, error) {
	entries, err := s.entries.List(ctx)
	if err != nil {
		return nil, domain.PersistenceError("list entries", err)
	}
	return entries, nil
}

// ListByDataset returns the entries of a dataset in store order.
func (s *EntryService) ListByDataset(ctx context.Context, datasetID int64) ([]domain.Entry, error) {
	entries, err := s.entries.ListByDataset(ctx, datasetID)
	if err != nil {
		return nil, domain.PersistenceError("list dataset entries", err)
	}
	return entries, nil
}

// Update replaces every writable field of an entry. Last writer wins.
// Returns:
//   - int64: rows affected; zero means no entry has that id, which is not an error.
//   - error: a persistence-kind error when the update fails.
func (s *EntryService) Update(ctx context.Context, id int64, fields *domain.EntryFields) (int64, error) {
	ctx = logger.SetEntryID(ctx, id)

	rows, err := s.entries.Update(ctx, id, fields)
	if err != nil {
		return 0, domain.PersistenceError("failed to update entry", err)
	}
	if rows == 0 {
		logger.CtxWarn(ctx, "Update matched no entry")
	}
	return rows, nil
}
