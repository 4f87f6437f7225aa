// Package app serves the browser pages for uploading plant photos and
// reviewing identification results.
package app

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JaimeStill/flora/internal/identifications"
	"github.com/JaimeStill/flora/pkg/formatting"
	"github.com/JaimeStill/flora/pkg/module"
	"github.com/JaimeStill/flora/pkg/web"
)

//go:embed layouts views static
var content embed.FS

// refreshInterval is the poll period, in seconds, of a pending result page.
const refreshInterval = 3

var (
	uploadView  = web.ViewDef{Template: "upload.html", Title: "Identify"}
	historyView = web.ViewDef{Template: "history.html", Title: "History"}
	resultView  = web.ViewDef{Template: "result.html", Title: "Result"}
	errorView   = web.ViewDef{Template: "error.html", Title: "Something went wrong"}
)

var statusLabels = map[string]string{
	identifications.StatusPending: "Identifying",
	identifications.StatusSuccess: "Identified",
	identifications.StatusFailed:  "Failed",
	identifications.StatusNoMatch: "No match",
}

// Options configures the app module.
type Options struct {
	// BasePath is the module prefix, e.g. "/app".
	BasePath string
	// APIPath is the API module prefix used to build image links for
	// records without a direct storage URL.
	APIPath       string
	MaxUploadSize int64
}

// NewModule creates the app module. Templates are parsed here so a broken
// template fails startup rather than the first request.
func NewModule(opts Options, sys identifications.System, logger *slog.Logger) (*module.Module, error) {
	views, err := web.NewTemplateSet(
		content,
		"layouts/*.html",
		"views",
		"app",
		opts.BasePath,
		funcs(),
		uploadView, historyView, resultView, errorView,
	)
	if err != nil {
		return nil, fmt.Errorf("app templates: %w", err)
	}

	static, err := web.Static(content, "static", "/static")
	if err != nil {
		return nil, fmt.Errorf("app static: %w", err)
	}

	h := &handler{
		views:         views,
		sys:           sys,
		logger:        logger.With("module", "app"),
		apiPath:       opts.APIPath,
		maxUploadSize: opts.MaxUploadSize,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.uploadPage)
	mux.HandleFunc("POST /upload", h.upload)
	mux.HandleFunc("GET /history", h.history)
	mux.HandleFunc("GET /results/{id}", h.result)
	mux.HandleFunc("POST /results/{id}/delete", h.delete)
	mux.Handle("GET /static/", static)

	return module.New(opts.BasePath, mux), nil
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"statusLabel": statusLabel,
		"percent":     percent,
		"join":        strings.Join,
		"deref":       deref,
		"topMatch":    topMatch,
	}
}

func statusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}

func percent(score float64) string {
	return fmt.Sprintf("%.0f%%", score*100)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func topMatch(matches []identifications.Match) *identifications.Match {
	if len(matches) == 0 {
		return nil
	}
	return &matches[0]
}

func acceptTypes() string {
	return strings.Join(identifications.ContentTypes, ",")
}

func maxSizeLabel(n int64) string {
	return formatting.FormatBytes(n, 0)
}
