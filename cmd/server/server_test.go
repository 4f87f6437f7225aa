package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/flora/internal/config"
	"github.com/JaimeStill/flora/pkg/database"
	"github.com/JaimeStill/flora/pkg/jobs"
	"github.com/JaimeStill/flora/pkg/lifecycle"
	"github.com/JaimeStill/flora/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=florastore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/florastore;"

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			ReadTimeout:     "1m",
			WriteTimeout:    "5m",
			ShutdownTimeout: "30s",
		},
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "flora",
			User:            "flora",
			Password:        "flora",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Storage: storage.Config{
			ContainerName:    "plant-images",
			ConnectionString: azuriteConnString,
			URLExpiry:        "1h",
			UploadExpiry:     "15m",
		},
		API: config.APIConfig{
			BasePath:      "/api",
			MaxUploadSize: "10MB",
		},
		Jobs: jobs.Config{
			Driver:    jobs.DriverMemory,
			Workers:   1,
			QueueSize: 4,
		},
		ShutdownTimeout: "30s",
		Version:         "0.1.0",
	}
	if err := cfg.API.Finalize(); err != nil {
		t.Fatalf("api finalize: %v", err)
	}
	if err := cfg.PlantNet.Finalize(nil); err != nil {
		t.Fatalf("plantnet finalize: %v", err)
	}

	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return srv
}

func get(srv *Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(newTestServer(t), "/healthz")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestReadyzBeforeStart(t *testing.T) {
	rec := get(newTestServer(t), "/readyz")

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestMetrics(t *testing.T) {
	rec := get(newTestServer(t), "/metrics")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("metrics output missing runtime collectors")
	}
}

func TestRootRedirectsToApp(t *testing.T) {
	rec := get(newTestServer(t), "/")

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if loc := rec.Header().Get("Location"); loc != appBasePath {
		t.Errorf("Location = %q, want %q", loc, appBasePath)
	}
}

func TestModulesMounted(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		path        string
		contentType string
	}{
		{"/api/openapi.json", "application/json"},
		{"/app/", "text/html"},
		{"/app/static/app.css", "text/css"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(srv, tt.path)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, tt.contentType) {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
		})
	}
}

func TestHTTPServerPortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	cfg := &config.ServerConfig{
		Host:            "127.0.0.1",
		Port:            ln.Addr().(*net.TCPAddr).Port,
		ReadTimeout:     "1m",
		WriteTimeout:    "1m",
		ShutdownTimeout: "1s",
	}
	s := newHTTPServer(cfg, http.NotFoundHandler(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	if err := s.Start(lifecycle.New()); err == nil {
		t.Fatal("expected listen error for a port in use")
	}
}

func TestHTTPServerShutdown(t *testing.T) {
	cfg := &config.ServerConfig{
		Host:            "127.0.0.1",
		Port:            0,
		ReadTimeout:     "1m",
		WriteTimeout:    "1m",
		ShutdownTimeout: "1s",
	}
	s := newHTTPServer(cfg, http.NotFoundHandler(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	lc := lifecycle.New()

	if err := s.Start(lc); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	lc.WaitForStartup()

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}
