package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/timmy/entryhub/internal/config"
	"github.com/timmy/entryhub/internal/domain"
	"gorm.io/gorm"
)

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "nested", "test.db"),
		AutoMigrate: true,
		LogLevel:    "silent",
	})
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { Close(db) })
	return db
}

func TestInitDB_UnsupportedDriver(t *testing.T) {
	if _, err := InitDB(&config.DatabaseConfig{Driver: "oracle"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestSQLite(t *testing.T) {
	runRepositorySuite(t, newSQLiteDB(t))
}

type sqliteForeignKey struct {
	Table string `gorm:"column:table"`
	From  string `gorm:"column:from"`
	To    string `gorm:"column:to"`
}

func TestMigrate_ForeignKeyOnEntry(t *testing.T) {
	db := newSQLiteDB(t)

	var onEntry []sqliteForeignKey
	if err := db.Raw("PRAGMA foreign_key_list(entry)").Scan(&onEntry).Error; err != nil {
		t.Fatalf("foreign_key_list(entry): %v", err)
	}
	if len(onEntry) != 1 {
		t.Fatalf("expected 1 foreign key on entry, got %+v", onEntry)
	}
	if fk := onEntry[0]; fk.Table != "dataset" || fk.From != "dataset_id" || fk.To != "dataset_id" {
		t.Errorf("unexpected foreign key %+v", fk)
	}

	var onDataset []sqliteForeignKey
	if err := db.Raw("PRAGMA foreign_key_list(dataset)").Scan(&onDataset).Error; err != nil {
		t.Fatalf("foreign_key_list(dataset): %v", err)
	}
	if len(onDataset) != 0 {
		t.Errorf("dataset must not reference entry, got %+v", onDataset)
	}
}

// runRepositorySuite exercises both repositories against a freshly migrated database.
func runRepositorySuite(t *testing.T, db *gorm.DB) {
	ctx := context.Background()
	datasets := NewDatasetRepository(db)
	entries := NewEntryRepository(db)

	ds := &domain.Dataset{Name: "labs"}
	if err := datasets.Create(ctx, ds); err != nil {
		t.Fatalf("Create dataset: %v", err)
	}
	empty := &domain.Dataset{Name: "empty"}
	if err := datasets.Create(ctx, empty); err != nil {
		t.Fatalf("Create dataset: %v", err)
	}

	t.Run("entry create and get", func(t *testing.T) {
		id := ds.ID
		e := &domain.Entry{FileURL: "u", DatasetID: &id, History: "[]"}
		if err := entries.Create(ctx, e); err != nil {
			t.Fatalf("Create entry: %v", err)
		}
		got, err := entries.GetByID(ctx, e.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.History != "[]" || got.DatasetID == nil || *got.DatasetID != ds.ID {
			t.Errorf("unexpected entry %+v", got)
		}
	})

	t.Run("foreign key enforced", func(t *testing.T) {
		missing := int64(987654)
		if err := entries.Create(ctx, &domain.Entry{DatasetID: &missing}); err == nil {
			t.Error("expected foreign key violation")
		}
	})

	t.Run("window ordered by id", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			id := ds.ID
			if err := entries.Create(ctx, &domain.Entry{DatasetID: &id}); err != nil {
				t.Fatalf("Create entry: %v", err)
			}
		}

		count, err := entries.CountByDataset(ctx, ds.ID)
		if err != nil {
			t.Fatalf("CountByDataset: %v", err)
		}
		if count != 6 {
			t.Fatalf("expected 6 entries, got %d", count)
		}

		window, err := entries.ListByDatasetWindow(ctx, ds.ID, 4, 4)
		if err != nil {
			t.Fatalf("ListByDatasetWindow: %v", err)
		}
		if len(window) != 2 {
			t.Fatalf("expected 2 entries in last window, got %d", len(window))
		}
		if window[0].ID >= window[1].ID {
			t.Error("window not ordered by id")
		}
	})

	t.Run("update clears dataset", func(t *testing.T) {
		e := &domain.Entry{FileURL: "before"}
		if err := entries.Create(ctx, e); err != nil {
			t.Fatalf("Create entry: %v", err)
		}
		rows, err := entries.Update(ctx, e.ID, &domain.EntryFields{FileURL: "after", DatasetID: domain.NewNullableID(empty.ID)})
		if err != nil || rows != 1 {
			t.Fatalf("Update: rows=%d err=%v", rows, err)
		}
		rows, err = entries.Update(ctx, e.ID, &domain.EntryFields{FileURL: "again"})
		if err != nil || rows != 1 {
			t.Fatalf("Update: rows=%d err=%v", rows, err)
		}
		got, _ := entries.GetByID(ctx, e.ID)
		if got.FileURL != "again" || got.DatasetID != nil {
			t.Errorf("unexpected entry after update %+v", got)
		}
	})

	t.Run("counts", func(t *testing.T) {
		summaries, err := datasets.ListWithCounts(ctx)
		if err != nil {
			t.Fatalf("ListWithCounts: %v", err)
		}
		byID := map[int64]domain.DatasetSummary{}
		for _, s := range summaries {
			byID[s.ID] = s
		}
		if byID[ds.ID].NumEntries != 6 || byID[ds.ID].Name != "labs" {
			t.Errorf("unexpected summary %+v", byID[ds.ID])
		}
		if s, ok := byID[empty.ID]; !ok || s.NumEntries != 0 {
			t.Errorf("unexpected summary for empty dataset %+v", s)
		}
	})
}
