package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/timmy/entryhub/internal/config"
	"github.com/timmy/entryhub/internal/domain"
	"github.com/timmy/entryhub/internal/repository"
	"github.com/timmy/entryhub/internal/service"
	"github.com/timmy/entryhub/internal/storage"
)

type testServer struct {
	router  *gin.Engine
	storage *storage.MemoryStorage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "api.db"),
		AutoMigrate: true,
		LogLevel:    "silent",
	})
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { repository.Close(db) })

	mem := storage.NewMemoryStorage("image-testing-pipeline", "https://image-testing-pipeline.s3.amazonaws.com")
	ingest := service.NewIngestService(mem, &service.IngestConfig{KeySuffix: ".jpg"})

	router := SetupRouter(&Services{
		Datasets: service.NewDatasetService(repository.NewDatasetRepository(db)),
		Entries:  service.NewEntryService(repository.NewEntryRepository(db), ingest, &service.EntryConfig{PageSize: 4}),
		DB:       db,
	}, &config.ServerConfig{Mode: "test", CORS: config.CORSConfig{AllowAllOrigins: true}}, nil)

	return &testServer{router: router, storage: mem}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func (s *testServer) createDataset(t *testing.T, name string) int64 {
	t.Helper()
	w := s.do(t, http.MethodPost, "/datasets", map[string]string{"name": name})
	if w.Code != http.StatusCreated {
		t.Fatalf("create dataset: %d %s", w.Code, w.Body.String())
	}
	var ds domain.Dataset
	decode(t, w, &ds)
	return ds.ID
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("health: %d %s", w.Code, w.Body.String())
	}
}

func TestDatasets(t *testing.T) {
	s := newTestServer(t)

	a := s.createDataset(t, "alpha")
	b := s.createDataset(t, "alpha")
	if a == b {
		t.Fatal("expected distinct dataset ids")
	}

	w := s.do(t, http.MethodGet, "/datasets", nil)
	var list []map[string]interface{}
	decode(t, w, &list)
	if len(list) != 2 || list[0]["name"] != "alpha" {
		t.Errorf("unexpected datasets %v", list)
	}
	if _, ok := list[0]["id"]; !ok {
		t.Error("dataset JSON lacks id")
	}

	s.do(t, http.MethodPost, fmt.Sprintf("/datasets/%d/entries", a), map[string]string{"output": "x"})

	w = s.do(t, http.MethodGet, "/datasettt", nil)
	var summaries []domain.DatasetSummary
	decode(t, w, &summaries)
	counts := map[int64]int64{}
	for _, sum := range summaries {
		counts[sum.ID] = sum.NumEntries
	}
	if counts[a] != 1 || counts[b] != 0 || len(counts) != 2 {
		t.Errorf("unexpected counts %v", counts)
	}
}

func TestDatasetEntries_CreateAndList(t *testing.T) {
	s := newTestServer(t)
	ds := s.createDataset(t, "labs")

	content := []byte("raw image bytes")
	w := s.do(t, http.MethodPost, fmt.Sprintf("/datasets/%d/entries", ds), map[string]interface{}{
		"file_url":            "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(content),
		"text_classification": "lab_report",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create entry: %d %s", w.Code, w.Body.String())
	}
	var created map[string]interface{}
	decode(t, w, &created)
	if created["message"] != "Entry added successfully" {
		t.Errorf("unexpected message %v", created["message"])
	}
	if id, _ := created["image_id"].(float64); id < 1 {
		t.Errorf("unexpected image_id %v", created["image_id"])
	}

	w = s.do(t, http.MethodGet, fmt.Sprintf("/datasets/%d/entries", ds), nil)
	var entries []map[string]interface{}
	decode(t, w, &entries)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	for _, key := range []string{"image_id", "file_url", "dataset_id", "text_extraction", "text_classification",
		"visual_classification", "attachment_type", "labreport_extraction", "nutrition_extraction", "output", "history"} {
		if _, ok := e[key]; !ok {
			t.Errorf("entry JSON lacks %q", key)
		}
	}
	if e["text_extraction"] != "" {
		t.Errorf("absent field should be empty string, got %v", e["text_extraction"])
	}

	url, _ := e["file_url"].(string)
	if !strings.HasPrefix(url, "https://image-testing-pipeline.s3.amazonaws.com/") || !strings.HasSuffix(url, ".jpg") {
		t.Errorf("unexpected file_url %q", url)
	}
	if s.storage.Len() != 1 {
		t.Errorf("expected 1 stored object, got %d", s.storage.Len())
	}
}

func TestDatasetEntries_DecodeFailure(t *testing.T) {
	s := newTestServer(t)
	ds := s.createDataset(t, "labs")

	w := s.do(t, http.MethodPost, fmt.Sprintf("/datasets/%d/entries", ds), map[string]string{"file_url": "not base64 at all"})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if body["error"] == "" {
		t.Error("expected error message")
	}
	if s.storage.Len() != 0 {
		t.Error("decode failure must not upload")
	}
}

func TestPageEntries(t *testing.T) {
	s := newTestServer(t)
	ds := s.createDataset(t, "paged")
	for i := 0; i < 5; i++ {
		s.do(t, http.MethodPost, "/entries", map[string]interface{}{"file_url": fmt.Sprintf("u%d", i), "dataset_id": ds})
	}

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantLen    int
	}{
		{name: "default page", query: "", wantStatus: http.StatusOK, wantLen: 4},
		{name: "page 2", query: "?page=2", wantStatus: http.StatusOK, wantLen: 1},
		{name: "beyond", query: "?page=3", wantStatus: http.StatusOK, wantLen: 0},
		{name: "far beyond", query: "?page=4611686018427387905", wantStatus: http.StatusOK, wantLen: 0},
		{name: "max int", query: "?page=9223372036854775807", wantStatus: http.StatusOK, wantLen: 0},
		{name: "zero", query: "?page=0", wantStatus: http.StatusBadRequest},
		{name: "non numeric", query: "?page=abc", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, fmt.Sprintf("/datasets/%d/pageEntry%s", ds, tt.query), nil)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var page []domain.PagedEntry
			decode(t, w, &page)
			if len(page) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(page), tt.wantLen)
			}
			for _, e := range page {
				if e.TotalPages != 2 {
					t.Errorf("totalPages = %d, want 2", e.TotalPages)
				}
			}
			if tt.wantLen == 0 && strings.TrimSpace(w.Body.String()) != "[]" {
				t.Errorf("expected empty array, got %s", w.Body.String())
			}
		})
	}
}

func TestEntries_CreateUpdateGet(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/entries", map[string]interface{}{
		"file_url":   "https://example.com/x.jpg",
		"dataset_id": "",
		"history":    "h",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var created struct {
		ImageID int64 `json:"image_id"`
	}
	decode(t, w, &created)

	w = s.do(t, http.MethodPut, fmt.Sprintf("/entries/%d", created.ImageID), map[string]interface{}{
		"file_url": "https://example.com/y.jpg",
		"output":   "done",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	var updated map[string]interface{}
	decode(t, w, &updated)
	if updated["message"] != "Entry updated successfully" || updated["rows_affected"] != float64(1) {
		t.Errorf("unexpected update response %v", updated)
	}

	w = s.do(t, http.MethodGet, fmt.Sprintf("/entries/%d", created.ImageID), nil)
	var got domain.Entry
	decode(t, w, &got)
	if got.FileURL != "https://example.com/y.jpg" || got.Output != "done" || got.History != "" || got.DatasetID != nil {
		t.Errorf("unexpected entry after update %+v", got)
	}

	w = s.do(t, http.MethodGet, "/entries", nil)
	var all []domain.Entry
	decode(t, w, &all)
	if len(all) != 1 {
		t.Errorf("expected 1 entry, got %d", len(all))
	}
}

func TestEntries_Errors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       interface{}
		wantStatus int
	}{
		{name: "update missing", method: http.MethodPut, path: "/entries/999", body: map[string]string{}, wantStatus: http.StatusOK},
		{name: "get missing", method: http.MethodGet, path: "/entries/999", wantStatus: http.StatusNotFound},
		{name: "bad path id", method: http.MethodGet, path: "/entries/abc", wantStatus: http.StatusBadRequest},
		{name: "bad dataset path id", method: http.MethodGet, path: "/datasets/x/entries", wantStatus: http.StatusBadRequest},
		{name: "malformed body", method: http.MethodPost, path: "/entries", body: "{", wantStatus: http.StatusBadRequest},
		{name: "bad dataset_id", method: http.MethodPost, path: "/entries", body: `{"dataset_id":"abc"}`, wantStatus: http.StatusBadRequest},
		{name: "unknown dataset", method: http.MethodPost, path: "/entries", body: map[string]int{"dataset_id": 42}, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus >= 400 {
				var body map[string]string
				decode(t, w, &body)
				if body["error"] == "" {
					t.Error("expected error body")
				}
			}
		})
	}
}
