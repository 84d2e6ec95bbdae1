package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/timmy/entryhub/internal/domain"
)

// Item is one importable file plus the entry fields to store with it.
type Item struct {
	SourceID  string // Unique ID within the source
	URL       string // Remote location, empty for local files
	LocalPath string // Local file path, empty for remote items
	Format    string // jpeg, png, gif, webp; empty when unknown
	Fields    domain.EntryFields
}

// Source defines the interface for bulk import sources.
type Source interface {
	// GetSourceID returns the unique identifier for this source.
	GetSourceID() string

	// GetDisplayName returns a human-readable name for this source.
	GetDisplayName() string

	// FetchBatch fetches a batch of items starting from the given cursor.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - cursor: pagination cursor or empty for first page.
	//   - limit: maximum number of items to fetch.
	// Returns:
	//   - items: batch of items.
	//   - nextCursor: cursor for the next batch or empty if done.
	//   - err: non-nil if fetching fails.
	FetchBatch(ctx context.Context, cursor string, limit int) (items []Item, nextCursor string, err error)

	// Load returns the raw content of item.
	Load(ctx context.Context, item *Item) ([]byte, error)
}

// Window returns items[cursor:cursor+limit] with index cursors.
// Parameters:
//   - items: full, stably ordered item list.
//   - cursor: start index as a string; empty means 0.
//   - limit: maximum batch size.
// Returns:
//   - []Item: the batch, empty once the cursor passes the end.
//   - string: next cursor, empty when no items remain.
//   - error: non-nil for a malformed cursor.
func Window(items []Item, cursor string, limit int) ([]Item, string, error) {
	start := 0
	if cursor != "" {
		var err error
		start, err = strconv.Atoi(cursor)
		if err != nil || start < 0 {
			return nil, "", fmt.Errorf("invalid cursor %q", cursor)
		}
	}

	if start >= len(items) {
		return []Item{}, "", nil
	}

	end := start + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}

	next := ""
	if end < len(items) {
		next = strconv.Itoa(end)
	}
	return items[start:end], next, nil
}

// FormatFromPath returns the image format implied by a file extension,
// or "" for anything that is not a supported image.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	case ".gif":
		return "gif"
	case ".webp":
		return "webp"
	default:
		return ""
	}
}

// ContentType maps a format from FormatFromPath to its MIME type.
// Unknown formats return "" so the content gets sniffed.
func ContentType(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png", "gif", "webp":
		return "image/" + format
	default:
		return ""
	}
}
