package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/timmy/entryhub/internal/config"
)

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://s3.amazonaws.com", "s3.amazonaws.com"},
		{"http://localhost:9000/", "localhost:9000"},
		{"localhost:9000/some/path", "localhost:9000"},
		{"minio.internal", "minio.internal"},
	}
	for _, tt := range tests {
		if got := normalizeEndpoint(tt.in); got != tt.want {
			t.Errorf("normalizeEndpoint(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDetectStorageType(t *testing.T) {
	tests := []struct {
		endpoint string
		want     StorageType
	}{
		{"", StorageTypeS3},
		{"s3.eu-west-1.amazonaws.com", StorageTypeS3},
		{"abc.r2.cloudflarestorage.com", StorageTypeR2},
		{"localhost:9000", StorageTypeS3Compatible},
	}
	for _, tt := range tests {
		if got := detectStorageType(tt.endpoint); got != tt.want {
			t.Errorf("detectStorageType(%q) = %q, want %q", tt.endpoint, got, tt.want)
		}
	}
}

func TestS3Storage_GetURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  S3Config
		want string
	}{
		{
			name: "aws virtual-hosted",
			cfg:  S3Config{Type: StorageTypeS3, Bucket: "image-testing-pipeline", Region: "us-east-1", AccessKey: "k", SecretKey: "s"},
			want: "https://image-testing-pipeline.s3.amazonaws.com/abc.jpg",
		},
		{
			name: "aws regional",
			cfg:  S3Config{Type: StorageTypeS3, Bucket: "b", Region: "eu-west-1", AccessKey: "k", SecretKey: "s"},
			want: "https://b.s3.eu-west-1.amazonaws.com/abc.jpg",
		},
		{
			name: "path style",
			cfg:  S3Config{Type: StorageTypeS3Compatible, Endpoint: "http://localhost:9000", Bucket: "b", AccessKey: "k", SecretKey: "s"},
			want: "http://localhost:9000/b/abc.jpg",
		},
		{
			name: "public url override",
			cfg:  S3Config{Type: StorageTypeR2, Endpoint: "x.r2.cloudflarestorage.com", Bucket: "b", PublicURL: "https://cdn.example.com/", AccessKey: "k", SecretKey: "s", UseSSL: true},
			want: "https://cdn.example.com/abc.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			s, err := NewS3Storage(&cfg)
			if err != nil {
				t.Fatalf("NewS3Storage: %v", err)
			}
			if got := s.GetURL("abc.jpg"); got != tt.want {
				t.Errorf("GetURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMinIOStorage_GetURL(t *testing.T) {
	s, err := NewMinIOStorage(&S3Config{Endpoint: "https://minio.local:9000", Bucket: "entries", AccessKey: "k", SecretKey: "s", UseSSL: true})
	if err != nil {
		t.Fatalf("NewMinIOStorage: %v", err)
	}
	if got, want := s.GetURL("k.jpg"), "https://minio.local:9000/entries/k.jpg"; got != want {
		t.Errorf("GetURL = %q, want %q", got, want)
	}
}

func TestNewStorage(t *testing.T) {
	if _, err := NewStorage(&S3Config{Type: StorageTypeMemory}); err == nil {
		t.Error("expected error for missing bucket")
	}
	if _, err := NewStorage(&S3Config{Type: "ftp", Bucket: "b"}); err == nil {
		t.Error("expected error for unsupported type")
	}

	s, err := NewStorage(&S3Config{Type: StorageTypeMemory, Bucket: "b"})
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	if _, ok := s.(*MemoryStorage); !ok {
		t.Errorf("expected *MemoryStorage, got %T", s)
	}

	s, err = NewStorage(&S3Config{Type: StorageTypeMinIO, Endpoint: "localhost:9000", Bucket: "b", AccessKey: "k", SecretKey: "s"})
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	if _, ok := s.(*MinIOStorage); !ok {
		t.Errorf("expected *MinIOStorage, got %T", s)
	}
}

func TestNewStorageFromConfig(t *testing.T) {
	s, err := NewStorageFromConfig(&config.StorageConfig{
		Type:      "memory",
		Bucket:    "image-testing-pipeline",
		PublicURL: "https://cdn.example.com/",
	})
	if err != nil {
		t.Fatalf("NewStorageFromConfig: %v", err)
	}
	if got := s.GetURL("k.jpg"); got != "https://cdn.example.com/k.jpg" {
		t.Errorf("GetURL = %q", got)
	}
}

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage("bucket", "")
	content := []byte{0xff, 0xd8, 0x00, 0x01, 'x'}

	if err := s.Upload(ctx, "a.jpg", bytes.NewReader(content), int64(len(content)), "image/jpeg"); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	ok, err := s.Exists(ctx, "a.jpg")
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}

	rc, err := s.Download(ctx, "a.jpg")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(got, content) {
		t.Errorf("content mismatch: %v != %v", got, content)
	}
	if s.ContentType("a.jpg") != "image/jpeg" {
		t.Errorf("unexpected content type %q", s.ContentType("a.jpg"))
	}
	if s.GetURL("a.jpg") != "memory://bucket/a.jpg" {
		t.Errorf("unexpected url %q", s.GetURL("a.jpg"))
	}

	if err := s.Upload(ctx, "short", bytes.NewReader(content), 99, ""); err == nil {
		t.Error("expected size mismatch error")
	}

	if err := s.Delete(ctx, "a.jpg"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Download(ctx, "a.jpg"); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("expected ErrObjectNotFound, got %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("expected empty storage, got %d objects", s.Len())
	}
}
