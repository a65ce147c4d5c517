package api

import (
	"github.com/starford/raido/internal/review"
	"github.com/starford/raido/internal/reviewservice"
)

// NoteListResponse wraps the vault note listing.
type NoteListResponse struct {
	Notes []reviewservice.NoteItem `json:"notes"`
	Total int                      `json:"total"`
}

// SnapshotResponse is the review snapshot summary payload.
type SnapshotResponse = reviewservice.SnapshotSummary

// FileStatusResponse reports the derived review status of one path.
type FileStatusResponse struct {
	Path   string        `json:"path"`
	Status review.Status `json:"status"`
}

// MarkResponse is returned after a mark operation. Next is set when the
// caller asked for the next file to open.
type MarkResponse struct {
	Path   string              `json:"path"`
	Status review.Status       `json:"status"`
	Next   *review.TrackedFile `json:"next,omitempty"`
}

// DeleteResponse reports the delete handshake outcome.
type DeleteResponse struct {
	Outcome review.DeleteOutcome `json:"outcome"`
}

// RefreshResponse reports how many untracked notes were added.
type RefreshResponse struct {
	Added int `json:"added"`
}
