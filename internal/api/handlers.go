package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/review"
	"github.com/starford/raido/internal/reviewservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *reviewservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *reviewservice.Service) *Handler {
	return &Handler{svc: svc}
}

// notePath extracts the note path from the URL wildcard.
// Supports encoded slashes from clients (e.g. topics%2Fnote.md).
func notePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListNotes handles GET /api/notes: every vault note with its derived
// review status.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListNotes(r.Context())
	if err != nil {
		slog.Error("list notes failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if items == nil {
		items = []reviewservice.NoteItem{}
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: items, Total: len(items)})
}

// GetSnapshot handles GET /api/review.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.Summary(r.Context())
	if err != nil {
		if errors.Is(err, apperr.ErrNoSnapshot) {
			writeJSON(w, http.StatusNotFound, errorBody("no review snapshot"))
			return
		}
		slog.Error("snapshot summary failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// CreateSnapshot handles POST /api/review: snapshot the current vault,
// replacing any existing snapshot.
func (h *Handler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.CreateSnapshot(r.Context())
	if err != nil {
		slog.Error("create snapshot failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, sum)
}

// RefreshSnapshot handles POST /api/review/refresh: track vault notes
// added since the snapshot was taken.
func (h *Handler) RefreshSnapshot(w http.ResponseWriter, r *http.Request) {
	added, err := h.svc.RefreshSnapshot(r.Context())
	if err != nil {
		if errors.Is(err, apperr.ErrNoSnapshot) {
			writeJSON(w, http.StatusNotFound, errorBody("no review snapshot"))
			return
		}
		slog.Error("refresh snapshot failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, RefreshResponse{Added: added})
}

// DeleteSnapshot handles DELETE /api/review. The confirm query parameter
// carries the user's decision; anything but confirm=true resolves the
// handshake as cancelled and leaves the snapshot untouched.
func (h *Handler) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	confirmed := r.URL.Query().Get("confirm") == "true"
	outcome, err := h.svc.DeleteSnapshot(r.Context(), review.Confirm(confirmed))
	if err != nil {
		if errors.Is(err, apperr.ErrNoSnapshot) {
			writeJSON(w, http.StatusNotFound, errorBody("no review snapshot"))
			return
		}
		slog.Error("delete snapshot failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Outcome: outcome})
}

// NextToReview handles GET /api/review/next: a uniformly random file
// still awaiting review.
func (h *Handler) NextToReview(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.NextToReview(r.Context())
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("nothing left to review"))
			return
		}
		slog.Error("next to review failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, FileStatusResponse{Path: f.Path, Status: f.Status})
}

// FileStatus handles GET /api/review/files/*.
func (h *Handler) FileStatus(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	writeJSON(w, http.StatusOK, FileStatusResponse{
		Path:   path,
		Status: h.svc.FileStatus(r.Context(), path),
	})
}

// MarkReviewed handles POST /api/review/reviewed/*. With ?next=true
// the response carries the next random to-review file to open.
func (h *Handler) MarkReviewed(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	openNext := r.URL.Query().Get("next") == "true"
	next, err := h.svc.MarkReviewed(r.Context(), path, openNext)
	if err != nil {
		if errors.Is(err, apperr.ErrNoSnapshot) {
			writeJSON(w, http.StatusNotFound, errorBody("no review snapshot"))
			return
		}
		slog.Error("mark reviewed failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, MarkResponse{Path: path, Status: review.StatusReviewed, Next: next})
}

// MarkToReview handles POST /api/review/to-review/*.
func (h *Handler) MarkToReview(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.MarkToReview(r.Context(), path); err != nil {
		if errors.Is(err, apperr.ErrNoSnapshot) {
			writeJSON(w, http.StatusNotFound, errorBody("no review snapshot"))
			return
		}
		slog.Error("mark to review failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, MarkResponse{Path: path, Status: review.StatusToReview})
}

// GetSettings handles GET /api/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Settings(r.Context()))
}

// UpdateSettings handles PUT /api/settings.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var set review.Settings
	if err := json.NewDecoder(r.Body).Decode(&set); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.svc.UpdateSettings(r.Context(), set); err != nil {
		slog.Error("update settings failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, set)
}
