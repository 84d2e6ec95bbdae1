package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/timmy/entryhub/internal/config"
	"github.com/timmy/entryhub/internal/repository"
	"github.com/timmy/entryhub/internal/storage"
	"gorm.io/gorm"
)

type testEnv struct {
	DB       *gorm.DB
	Storage  *storage.MemoryStorage
	Ingest   *IngestService
	Datasets *DatasetService
	Entries  *EntryService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "test.db"),
		AutoMigrate: true,
		LogLevel:    "silent",
	})
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { repository.Close(db) })
	return db
}

func newTestEnv(t *testing.T, objectStorage storage.ObjectStorage) *testEnv {
	t.Helper()

	mem := storage.NewMemoryStorage("image-testing-pipeline", "https://image-testing-pipeline.s3.amazonaws.com")
	if objectStorage == nil {
		objectStorage = mem
	}

	db := newTestDB(t)
	ingest := NewIngestService(objectStorage, &IngestConfig{KeySuffix: ".jpg"})

	return &testEnv{
		DB:       db,
		Storage:  mem,
		Ingest:   ingest,
		Datasets: NewDatasetService(repository.NewDatasetRepository(db)),
		Entries:  NewEntryService(repository.NewEntryRepository(db), ingest, &EntryConfig{PageSize: 4}),
	}
}

func keyFromURL(url string) string {
	return url[strings.LastIndex(url, "/")+1:]
}

func readObject(t *testing.T, s storage.ObjectStorage, key string) []byte {
	t.Helper()
	rc, err := s.Download(context.Background(), key)
	if err != nil {
		t.Fatalf("Download(%s): %v", key, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read object: %v", err)
	}
	return data
}

// faultyStorage wraps MemoryStorage and fails the selected operations.
type faultyStorage struct {
	*storage.MemoryStorage
	failUpload bool
	failDelete bool
	deletes    int
}

func (f *faultyStorage) Upload(ctx context.Context, key string, r io.Reader, size int64, ct string) error {
	if f.failUpload {
		return errors.New("bucket unavailable")
	}
	return f.MemoryStorage.Upload(ctx, key, r, size, ct)
}

func (f *faultyStorage) Delete(ctx context.Context, key string) error {
	f.deletes++
	if f.failDelete {
		return errors.New("delete denied")
	}
	return f.MemoryStorage.Delete(ctx, key)
}
