package identifications

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/flora/pkg/handlers"
	"github.com/JaimeStill/flora/pkg/routes"
)

// Handler provides HTTP endpoints for identification operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, logger, and upload size limit.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "identifications"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for identification endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:  "/identifications",
		Tags:    []string{"Identifications"},
		Schemas: schemas,
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: listOp},
			{Method: "POST", Pattern: "", Handler: h.Upload, OpenAPI: uploadOp},
			{Method: "POST", Pattern: "/register", Handler: h.Register, OpenAPI: registerOp},
			{Method: "POST", Pattern: "/upload-handle", Handler: h.UploadHandle, OpenAPI: uploadHandleOp},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: findOp},
			{Method: "GET", Pattern: "/{id}/image", Handler: h.Image, OpenAPI: imageOp},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: deleteOp},
		},
	}
}

// List returns every identification, most recent first, optionally filtered by status.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters, err := FiltersFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	records, err := h.sys.List(r.Context(), filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, records)
}

// Find returns a single identification by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	rec, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

// Upload accepts a multipart form with an "image" file and starts its identification.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	cmd, err := ReadUpload(w, r, h.maxUploadSize)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	rec, err := h.sys.Upload(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, rec)
}

// Register creates an identification for an image written with an upload handle.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var cmd RegisterCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: invalid request body", ErrInvalidImage))
		return
	}

	rec, err := h.sys.Register(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, rec)
}

// UploadHandle issues a write-only URL for uploading an image directly to storage.
func (h *Handler) UploadHandle(w http.ResponseWriter, r *http.Request) {
	handle, err := h.sys.UploadHandle(r.Context(), r.URL.Query().Get("filename"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, handle)
}

// Image streams the stored photo of an identification.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	blob, err := h.sys.Image(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer blob.Body.Close()

	if blob.ContentType != "" {
		w.Header().Set("Content-Type", blob.ContentType)
	}
	if blob.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(blob.ContentLength, 10))
	}
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, blob.Body); err != nil {
		h.logger.Warn("image stream interrupted", "id", id, "error", err)
	}
}

// Delete removes an identification and its image. The body is always a DeleteResult.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondJSON(w, http.StatusBadRequest, DeleteResult{Error: ErrInvalidID.Error()})
		return
	}

	result := h.sys.Delete(r.Context(), id)

	switch {
	case result.Success:
		handlers.RespondJSON(w, http.StatusOK, result)
	case result.Error == MessageNotFound:
		handlers.RespondJSON(w, http.StatusNotFound, result)
	default:
		h.logger.Error("delete failed", "id", id, "error", result.Error)
		handlers.RespondJSON(w, http.StatusInternalServerError, result)
	}
}
