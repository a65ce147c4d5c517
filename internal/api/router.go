package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/reviewservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *reviewservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Vault listing with derived review status.
	r.Get("/notes", h.ListNotes)

	// Snapshot lifecycle.
	r.Get("/review", h.GetSnapshot)
	r.Post("/review", h.CreateSnapshot)
	r.Post("/review/refresh", h.RefreshSnapshot)
	r.Delete("/review", h.DeleteSnapshot)

	// Review actions. The note path is the trailing wildcard.
	r.Get("/review/next", h.NextToReview)
	r.Get("/review/files/*", h.FileStatus)
	r.Post("/review/reviewed/*", h.MarkReviewed)
	r.Post("/review/to-review/*", h.MarkToReview)

	// Presentation settings.
	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
