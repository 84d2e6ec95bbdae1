package localdir

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/timmy/entryhub/internal/source"
)

const (
	SourceID   = "localdir"
	SourceName = "Local directory"
)

// Adapter imports every image file found under a directory tree.
type Adapter struct {
	root string

	once    sync.Once
	items   []source.Item
	loadErr error
}

// NewAdapter creates a new local directory adapter.
func NewAdapter(root string) *Adapter {
	return &Adapter{root: root}
}

// GetSourceID returns the unique identifier for this source
func (a *Adapter) GetSourceID() string {
	return SourceID
}

// GetDisplayName returns a human-readable name for this source
func (a *Adapter) GetDisplayName() string {
	return fmt.Sprintf("%s (%s)", SourceName, a.root)
}

// FetchBatch returns the next batch of image files in path order.
func (a *Adapter) FetchBatch(ctx context.Context, cursor string, limit int) ([]source.Item, string, error) {
	a.once.Do(func() { a.loadErr = a.loadItems() })
	if a.loadErr != nil {
		return nil, "", fmt.Errorf("failed to load items: %w", a.loadErr)
	}
	return source.Window(a.items, cursor, limit)
}

// Load reads the file behind item.
func (a *Adapter) Load(ctx context.Context, item *source.Item) ([]byte, error) {
	data, err := os.ReadFile(item.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", item.LocalPath, err)
	}
	return data, nil
}

// TotalCount returns the number of image files under the root.
func (a *Adapter) TotalCount() (int, error) {
	a.once.Do(func() { a.loadErr = a.loadItems() })
	return len(a.items), a.loadErr
}

// loadItems walks the tree and collects image files, skipping hidden entries.
func (a *Adapter) loadItems() error {
	info, err := os.Stat(a.root)
	if err != nil {
		return fmt.Errorf("directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", a.root)
	}

	a.items = []source.Item{}
	err = filepath.WalkDir(a.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()
		if strings.HasPrefix(name, ".") && path != a.root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		format := source.FormatFromPath(name)
		if format == "" {
			return nil
		}

		relPath, _ := filepath.Rel(a.root, path)
		a.items = append(a.items, source.Item{
			SourceID:  filepath.ToSlash(relPath),
			LocalPath: path,
			Format:    format,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Slice(a.items, func(i, j int) bool {
		return a.items[i].SourceID < a.items[j].SourceID
	})
	return nil
}
