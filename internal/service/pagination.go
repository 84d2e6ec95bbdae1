package service

import (
	"context"

	"github.com/timmy/entryhub/internal/domain"
	"github.com/timmy/entryhub/internal/logger"
)

// EntryPage is one window of a dataset's entries ordered by id.
type EntryPage struct {
	Entries      []domain.Entry
	Page         int
	PageSize     int
	TotalEntries int64
	TotalPages   int
}

// Flatten returns the entries with TotalPages copied onto each one.
func (p *EntryPage) Flatten() []domain.PagedEntry {
	out := make([]domain.PagedEntry, len(p.Entries))
	for i, e := range p.Entries {
		out[i] = domain.PagedEntry{Entry: e, TotalPages: p.TotalPages}
	}
	return out
}

// TotalPages is ceil(total/pageSize) in integer arithmetic.
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	size := int64(pageSize)
	return int((total + size - 1) / size)
}

// PageOffset returns the number of rows before 1-indexed page.
func PageOffset(page, pageSize int) int {
	return (page - 1) * pageSize
}

// Page returns the 1-indexed page of a dataset's entries. Pages past the end
// are empty but still report TotalPages.
// Returns:
//   - *EntryPage: the window plus count metadata.
//   - error: an invalid-kind error for page < 1, or a persistence-kind error.
func (s *EntryService) Page(ctx context.Context, datasetID int64, page int) (*EntryPage, error) {
	if page < 1 {
		return nil, domain.InvalidInput("page entries", "page must be >= 1, got %d", page)
	}

	total, err := s.entries.CountByDataset(ctx, datasetID)
	if err != nil {
		return nil, domain.PersistenceError("count dataset entries", err)
	}

	result := &EntryPage{
		Entries:      []domain.Entry{},
		Page:         page,
		PageSize:     s.pageSize,
		TotalEntries: total,
		TotalPages:   TotalPages(total, s.pageSize),
	}

	// Checked before PageOffset so large pages cannot overflow into a valid window.
	if page > result.TotalPages {
		return result, nil
	}
	offset := PageOffset(page, s.pageSize)

	entries, err := s.entries.ListByDatasetWindow(ctx, datasetID, s.pageSize, offset)
	if err != nil {
		return nil, domain.PersistenceError("page dataset entries", err)
	}
	result.Entries = entries

	logger.With(logger.Fields{
		logger.FieldCount: len(entries),
	}).Debug(logger.SetDatasetID(ctx, datasetID), "Paged entries: page=%d total_pages=%d", page, result.TotalPages)

	return result, nil
}
