package manifest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/entryhub/internal/domain"
	"github.com/timmy/entryhub/internal/logger"
	"github.com/timmy/entryhub/internal/source"
)

const (
	SourceID = "manifest"

	defaultDownloadTimeout = 30 * time.Second
)

// Line is one JSON object of a manifest file. Exactly one of URL or Path
// locates the content; the remaining keys are stored as entry fields.
// Relative paths resolve against the manifest's directory.
type Line struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Path string `json:"path"`
	domain.EntryFields
}

// Adapter reads a JSON-lines manifest and downloads remote items over HTTP.
type Adapter struct {
	path   string
	client *resty.Client

	once    sync.Once
	items   []source.Item
	loadErr error
}

// Config holds configuration for the manifest adapter.
type Config struct {
	Path            string
	DownloadTimeout time.Duration
}

// NewAdapter creates a new manifest adapter.
func NewAdapter(cfg *Config) *Adapter {
	timeout := cfg.DownloadTimeout
	if timeout <= 0 {
		timeout = defaultDownloadTimeout
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(2)
	client.SetRetryWaitTime(500 * time.Millisecond)

	return &Adapter{
		path:   cfg.Path,
		client: client,
	}
}

// GetSourceID returns the unique identifier for this source.
func (a *Adapter) GetSourceID() string {
	return SourceID
}

// GetDisplayName returns a human-readable name for this source.
func (a *Adapter) GetDisplayName() string {
	return fmt.Sprintf("Manifest (%s)", a.path)
}

// FetchBatch returns the next batch of manifest items in file order.
func (a *Adapter) FetchBatch(ctx context.Context, cursor string, limit int) ([]source.Item, string, error) {
	a.once.Do(func() { a.loadErr = a.loadItems(ctx) })
	if a.loadErr != nil {
		return nil, "", fmt.Errorf("failed to load manifest: %w", a.loadErr)
	}
	return source.Window(a.items, cursor, limit)
}

// Load returns the item's content, downloading remote items.
func (a *Adapter) Load(ctx context.Context, item *source.Item) ([]byte, error) {
	if item.LocalPath != "" {
		data, err := os.ReadFile(item.LocalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", item.LocalPath, err)
		}
		return data, nil
	}

	resp, err := a.client.R().
		SetContext(ctx).
		Get(item.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", item.URL, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("failed to download %s: status %d", item.URL, resp.StatusCode())
	}
	return resp.Body(), nil
}

// loadItems parses the manifest. Malformed lines and lines that name
// neither a url nor a path are logged and skipped.
func (a *Adapter) loadItems(ctx context.Context) error {
	file, err := os.Open(a.path)
	if err != nil {
		return fmt.Errorf("failed to open manifest: %w", err)
	}
	defer file.Close()

	baseDir := filepath.Dir(a.path)
	a.items = []source.Item{}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var line Line
		if err := json.Unmarshal([]byte(text), &line); err != nil {
			logger.CtxWarn(ctx, "Skipping malformed manifest line %d: %v", lineNo, err)
			continue
		}
		if line.URL == "" && line.Path == "" {
			logger.CtxWarn(ctx, "Skipping manifest line %d: no url or path", lineNo)
			continue
		}

		item := source.Item{
			SourceID: line.ID,
			URL:      line.URL,
			Fields:   line.EntryFields,
		}
		if item.SourceID == "" {
			item.SourceID = strconv.Itoa(lineNo)
		}
		if line.Path != "" {
			item.LocalPath = line.Path
			if !filepath.IsAbs(item.LocalPath) {
				item.LocalPath = filepath.Join(baseDir, item.LocalPath)
			}
			item.Format = source.FormatFromPath(item.LocalPath)
		} else {
			item.Format = source.FormatFromPath(urlPath(line.URL))
		}

		a.items = append(a.items, item)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading manifest: %w", err)
	}
	return nil
}

// urlPath strips the query and fragment so the extension can be inspected.
func urlPath(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		return u[:i]
	}
	return u
}
