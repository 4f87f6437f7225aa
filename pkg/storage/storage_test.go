package storage_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/flora/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=florastore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/florastore;"

func newTestSystem(t *testing.T) storage.System {
	t.Helper()

	cfg := &storage.Config{ConnectionString: azuriteConnString}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	sys, err := storage.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return sys
}

func TestNewInvalidConnectionString(t *testing.T) {
	cfg := &storage.Config{
		ContainerName:    "plant-images",
		ConnectionString: "not-a-connection-string",
	}

	if _, err := storage.New(cfg, slog.Default()); err == nil {
		t.Fatal("expected error for invalid connection string, got nil")
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", storage.ErrNotFound, http.StatusNotFound},
		{"empty key", storage.ErrEmptyKey, http.StatusBadRequest},
		{"invalid key", storage.ErrInvalidKey, http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("download: %w", storage.ErrNotFound), http.StatusNotFound},
		{"unknown", errors.New("unexpected failure"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := storage.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestKeyValidation(t *testing.T) {
	sys := newTestSystem(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"empty key", "", storage.ErrEmptyKey},
		{"path traversal", "identifications/../secrets/key", storage.ErrInvalidKey},
		{"double dot in middle", "identifications/..hidden/plant.jpg", storage.ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := sys.Upload(ctx, tt.key, bytes.NewReader(nil), "image/jpeg"); !errors.Is(err, tt.wantErr) {
				t.Errorf("Upload() error = %v, want %v", err, tt.wantErr)
			}
			if _, err := sys.Download(ctx, tt.key); !errors.Is(err, tt.wantErr) {
				t.Errorf("Download() error = %v, want %v", err, tt.wantErr)
			}
			if err := sys.Delete(ctx, tt.key); !errors.Is(err, tt.wantErr) {
				t.Errorf("Delete() error = %v, want %v", err, tt.wantErr)
			}
			if _, err := sys.Exists(ctx, tt.key); !errors.Is(err, tt.wantErr) {
				t.Errorf("Exists() error = %v, want %v", err, tt.wantErr)
			}
			if _, err := sys.URL(ctx, tt.key); !errors.Is(err, tt.wantErr) {
				t.Errorf("URL() error = %v, want %v", err, tt.wantErr)
			}
			if _, _, err := sys.UploadURL(ctx, tt.key); !errors.Is(err, tt.wantErr) {
				t.Errorf("UploadURL() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestURLSignsReadOnly(t *testing.T) {
	sys := newTestSystem(t)

	raw, err := sys.URL(context.Background(), "identifications/abc/plant.jpg")
	if err != nil {
		t.Fatalf("URL() error = %v", err)
	}

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}

	if !strings.HasSuffix(u.Path, "/plant-images/identifications/abc/plant.jpg") {
		t.Errorf("path = %s, want blob path under plant-images", u.Path)
	}
	if got := u.Query().Get("sp"); got != "r" {
		t.Errorf("sp = %q, want r", got)
	}
	if u.Query().Get("sig") == "" {
		t.Error("sig query parameter missing")
	}
}

func TestUploadURLSignsCreateWrite(t *testing.T) {
	sys := newTestSystem(t)

	before := time.Now()
	raw, expires, err := sys.UploadURL(context.Background(), "identifications/abc/plant.png")
	if err != nil {
		t.Fatalf("UploadURL() error = %v", err)
	}

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}

	if got := u.Query().Get("sp"); got != "cw" {
		t.Errorf("sp = %q, want cw", got)
	}
	if !expires.After(before.Add(14 * time.Minute)) {
		t.Errorf("expires = %v, want ~15m after %v", expires, before)
	}
}
