package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/domain"
	"github.com/wadjakorntonsri/linkshelf/pkg/ports"
)

type HTTPHandler struct {
	service ports.LinkService
	log     *slog.Logger
}

func NewHTTPHandler(service ports.LinkService, log *slog.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, log: log}
}

// LinkRequest is the body of create and update. Missing optional fields
// clear the stored value on update.
type LinkRequest = domain.LinkFields

var errBadID = domain.Validation("Invalid link id")

func linkID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, errBadID
	}
	return id, nil
}

func decodeLink(r *http.Request) (LinkRequest, error) {
	var req LinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, domain.Validation("Request body too large")
		}
		return req, domain.Validation("Invalid request body")
	}
	return req, nil
}

// Root answers the liveness probe at /
func (h *HTTPHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: "LinkShelf backend is running"})
}

// Health checks the store
func (h *HTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Health(r.Context()); err != nil {
		h.log.Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "database unavailable", Code: domain.CodeInternal})
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "ok"})
}

// List Links, newest first
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	links, err := h.service.ListLinks(r.Context())
	if err != nil {
		writeError(w, r, h.log, err, "Failed to load links")
		return
	}
	writeJSON(w, http.StatusOK, links)
}

// Get a single Link
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := linkID(r)
	if err != nil {
		writeError(w, r, h.log, err, "Error loading link")
		return
	}

	link, err := h.service.GetLink(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err, "Error loading link")
		return
	}
	writeJSON(w, http.StatusOK, link)
}

// Create Link
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLink(r)
	if err != nil {
		writeError(w, r, h.log, err, "Error creating link")
		return
	}

	link, err := h.service.CreateLink(r.Context(), req)
	if err != nil {
		writeError(w, r, h.log, err, "Error creating link")
		return
	}

	h.log.Info("link created", "id", link.ID)
	writeJSON(w, http.StatusCreated, link)
}

// Update Link, replacing every editable field
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := linkID(r)
	if err != nil {
		writeError(w, r, h.log, err, "Error updating link")
		return
	}

	req, err := decodeLink(r)
	if err != nil {
		writeError(w, r, h.log, err, "Error updating link")
		return
	}

	link, err := h.service.UpdateLink(r.Context(), id, req)
	if err != nil {
		writeError(w, r, h.log, err, "Error updating link")
		return
	}
	writeJSON(w, http.StatusOK, link)
}

// Delete Link
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := linkID(r)
	if err != nil {
		writeError(w, r, h.log, err, "Error deleting link")
		return
	}

	if err := h.service.DeleteLink(r.Context(), id); err != nil {
		writeError(w, r, h.log, err, "Error deleting link")
		return
	}

	h.log.Info("link deleted", "id", id)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Link deleted successfully"})
}
