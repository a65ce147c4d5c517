// Package reviewservice coordinates the vault, the note index, and the
// review store behind the HTTP and MCP surfaces.
package reviewservice

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/review"
	"github.com/starford/raido/internal/storage"
)

// NoteItem is one vault note with its derived review status.
type NoteItem struct {
	Path      string        `json:"path"`
	Status    review.Status `json:"status"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// SnapshotSummary describes the current snapshot.
type SnapshotSummary struct {
	CreatedAt time.Time    `json:"created_at"`
	Stats     review.Stats `json:"stats"`
}

// Service coordinates storage, index, and review operations.
type Service struct {
	store   storage.Provider
	idx     index.NoteIndex
	reviews *review.Store
	notify  review.Notifier
}

// NewService creates a new review service.
func NewService(store storage.Provider, idx index.NoteIndex, reviews *review.Store, notify review.Notifier) *Service {
	return &Service{store: store, idx: idx, reviews: reviews, notify: notify}
}

// ListNotes returns every vault note with its derived review status.
func (s *Service) ListNotes(_ context.Context) ([]NoteItem, error) {
	metas, err := s.store.List("")
	if err != nil {
		return nil, err
	}
	items := make([]NoteItem, len(metas))
	for i, m := range metas {
		items[i] = NoteItem{
			Path:      m.Path,
			Status:    s.reviews.FileStatus(m.Path),
			UpdatedAt: m.UpdatedAt,
		}
	}
	return items, nil
}

// CreateSnapshot enumerates the vault and replaces any existing snapshot
// with a fresh one marking every note to-review.
func (s *Service) CreateSnapshot(_ context.Context) (SnapshotSummary, error) {
	metas, err := s.store.List("")
	if err != nil {
		return SnapshotSummary{}, fmt.Errorf("enumerate vault: %w", err)
	}
	paths := make([]string, len(metas))
	for i, m := range metas {
		paths[i] = m.Path
	}
	snap, err := s.reviews.Create(paths)
	if err != nil {
		return SnapshotSummary{}, err
	}
	return SnapshotSummary{CreatedAt: snap.CreatedAt, Stats: s.reviews.Stats()}, nil
}

// RefreshSnapshot adds every vault note not yet tracked, marked
// to-review. Returns the number added.
func (s *Service) RefreshSnapshot(_ context.Context) (int, error) {
	metas, err := s.store.List("")
	if err != nil {
		return 0, fmt.Errorf("enumerate vault: %w", err)
	}
	paths := make([]string, len(metas))
	for i, m := range metas {
		paths[i] = m.Path
	}
	return s.reviews.AddNewFiles(paths)
}

// Summary returns the snapshot summary, or ErrNoSnapshot.
func (s *Service) Summary(_ context.Context) (SnapshotSummary, error) {
	snap, ok := s.reviews.Snapshot()
	if !ok {
		return SnapshotSummary{}, apperr.ErrNoSnapshot
	}
	return SnapshotSummary{CreatedAt: snap.CreatedAt, Stats: s.reviews.Stats()}, nil
}

// DeleteSnapshot runs the delete handshake with the given confirmer.
func (s *Service) DeleteSnapshot(ctx context.Context, confirm review.Confirmer) (review.DeleteOutcome, error) {
	return s.reviews.Delete(ctx, confirm)
}

// NextToReview picks a random to-review file, verifying it still exists
// on disk. A tracked file that vanished is reconciled as deleted (with a
// user notice) and the pick retried, so a stale snapshot entry never
// reaches the caller. Returns ErrNotFound when nothing is left.
func (s *Service) NextToReview(_ context.Context) (review.TrackedFile, error) {
	for {
		f, ok := s.reviews.PickRandom()
		if !ok {
			return review.TrackedFile{}, apperr.ErrNotFound
		}
		exists, err := s.store.Exists(f.Path)
		if err != nil {
			return review.TrackedFile{}, err
		}
		if exists {
			return f, nil
		}
		if s.notify != nil {
			s.notify.Notify(fmt.Sprintf("%s no longer exists; marked deleted", f.Path))
		}
		if err := s.reviews.ReconcileDelete(f.Path); err != nil {
			return review.TrackedFile{}, err
		}
	}
}

// MarkReviewed marks path reviewed. With openNext, also returns the next
// to-review file to open (nil when none remain).
func (s *Service) MarkReviewed(ctx context.Context, path string, openNext bool) (*review.TrackedFile, error) {
	next, err := s.reviews.MarkReviewed(path, openNext)
	if err != nil {
		return nil, err
	}
	if next != nil {
		// The follow-up open must not land on a tracked file that
		// vanished from disk.
		exists, exErr := s.store.Exists(next.Path)
		if exErr == nil && !exists {
			if s.notify != nil {
				s.notify.Notify(fmt.Sprintf("%s no longer exists; marked deleted", next.Path))
			}
			_ = s.reviews.ReconcileDelete(next.Path)
			f, nextErr := s.NextToReview(ctx)
			if nextErr != nil {
				return nil, nil
			}
			return &f, nil
		}
	}
	return next, nil
}

// MarkToReview marks path as needing another review pass.
func (s *Service) MarkToReview(_ context.Context, path string) error {
	return s.reviews.MarkToReview(path)
}

// FileStatus returns the derived review status for one path.
func (s *Service) FileStatus(_ context.Context, path string) review.Status {
	return s.reviews.FileStatus(path)
}

// ToReviewFiles returns every tracked file still awaiting review.
func (s *Service) ToReviewFiles(_ context.Context) []review.TrackedFile {
	return s.reviews.ToReviewFiles()
}

// Settings returns the persisted presentation settings.
func (s *Service) Settings(_ context.Context) review.Settings {
	return s.reviews.Settings()
}

// UpdateSettings replaces the presentation settings.
func (s *Service) UpdateSettings(_ context.Context, set review.Settings) error {
	return s.reviews.UpdateSettings(set)
}
