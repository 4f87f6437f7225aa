package app

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/flora/internal/identifications"
	"github.com/JaimeStill/flora/pkg/web"
)

type handler struct {
	views         *web.TemplateSet
	sys           identifications.System
	logger        *slog.Logger
	apiPath       string
	maxUploadSize int64
}

type uploadData struct {
	Accept  string
	MaxSize string
	Error   string
}

type historyData struct {
	Status   string
	Statuses []string
	Records  []identifications.Identification
}

type resultData struct {
	Record   *identifications.Identification
	ImageSrc string
}

func (h *handler) uploadPage(w http.ResponseWriter, r *http.Request) {
	h.renderUpload(w, http.StatusOK, "")
}

func (h *handler) upload(w http.ResponseWriter, r *http.Request) {
	cmd, err := identifications.ReadUpload(w, r, h.maxUploadSize)
	if err != nil {
		if errors.Is(err, identifications.ErrImageTooLarge) {
			h.renderUpload(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		h.renderUpload(w, http.StatusBadRequest, "Choose a photo to upload.")
		return
	}

	rec, err := h.sys.Upload(r.Context(), cmd)
	if err != nil {
		status := identifications.MapHTTPStatus(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("upload failed", "error", err)
			h.renderUpload(w, status, "The photo could not be saved. Try again.")
			return
		}
		h.renderUpload(w, status, err.Error())
		return
	}

	http.Redirect(w, r, h.views.BasePath()+"/results/"+rec.ID.String(), http.StatusSeeOther)
}

func (h *handler) history(w http.ResponseWriter, r *http.Request) {
	filters, err := identifications.FiltersFromQuery(r.URL.Query())
	if err != nil {
		h.renderError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.sys.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list failed", "error", err)
		h.renderError(w, http.StatusInternalServerError, "History is unavailable right now.")
		return
	}

	data := historyData{
		Statuses: identifications.Statuses,
		Records:  records,
	}
	if filters.Status != nil {
		data.Status = *filters.Status
	}

	h.render(w, http.StatusOK, historyView, web.ViewData{Data: data})
}

func (h *handler) result(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.renderError(w, http.StatusNotFound, "Identification not found.")
		return
	}

	rec, err := h.sys.Find(r.Context(), id)
	if err != nil {
		if errors.Is(err, identifications.ErrNotFound) {
			h.renderError(w, http.StatusNotFound, "Identification not found.")
			return
		}
		h.logger.Error("find failed", "id", id, "error", err)
		h.renderError(w, http.StatusInternalServerError, "The result could not be loaded.")
		return
	}

	view := web.ViewData{
		Data: resultData{
			Record:   rec,
			ImageSrc: h.imageSrc(rec),
		},
	}
	if rec.Status == identifications.StatusPending {
		view.Refresh = refreshInterval
	}

	h.render(w, http.StatusOK, resultView, view)
}

func (h *handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.renderError(w, http.StatusNotFound, "Identification not found.")
		return
	}

	result := h.sys.Delete(r.Context(), id)
	if !result.Success && result.Error != identifications.MessageNotFound {
		h.logger.Error("delete failed", "id", id, "error", result.Error)
		h.renderError(w, http.StatusInternalServerError, "The identification could not be deleted.")
		return
	}

	http.Redirect(w, r, h.views.BasePath()+"/history", http.StatusSeeOther)
}

func (h *handler) imageSrc(rec *identifications.Identification) string {
	if rec.ImageURL != nil && *rec.ImageURL != "" {
		return *rec.ImageURL
	}
	return h.apiPath + "/identifications/" + rec.ID.String() + "/image"
}

func (h *handler) renderUpload(w http.ResponseWriter, status int, msg string) {
	h.render(w, status, uploadView, web.ViewData{
		Data: uploadData{
			Accept:  acceptTypes(),
			MaxSize: maxSizeLabel(h.maxUploadSize),
			Error:   msg,
		},
	})
}

func (h *handler) renderError(w http.ResponseWriter, status int, msg string) {
	h.render(w, status, errorView, web.ViewData{Data: msg})
}

func (h *handler) render(w http.ResponseWriter, status int, view web.ViewDef, data web.ViewData) {
	if err := h.views.Render(w, status, view, data); err != nil {
		h.logger.Error("render failed", "view", view.Template, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
