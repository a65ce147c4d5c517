package review

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/starford/raido/internal/apperr"
)

// Store owns the persisted review state. It is the only writer of the
// snapshot; every mutation is saved durably before the call returns.
// Safe for concurrent use: HTTP handlers, the vault watcher, and MCP
// tools all call in.
type Store struct {
	mu       sync.Mutex
	path     string
	state    State
	notify   Notifier
	onChange func(Stats)

	// intN is swappable for deterministic tests.
	intN func(n int) int
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithNotifier sets the transient-message sink.
func WithNotifier(n Notifier) StoreOption {
	return func(s *Store) { s.notify = n }
}

// WithOnChange sets a callback invoked after every successful mutation
// with the freshly derived stats. Used to drive presentation refreshes.
func WithOnChange(fn func(Stats)) StoreOption {
	return func(s *Store) { s.onChange = fn }
}

// Open loads the state file at path, or starts empty if it does not exist.
func Open(path string, opts ...StoreOption) (*Store, error) {
	s := &Store{
		path: path,
		intN: rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	st, err := loadState(path)
	if err != nil {
		return nil, err
	}
	s.state = st
	return s, nil
}

// save persists the current state and fires the change callback.
// Callers must hold s.mu.
func (s *Store) save() error {
	if err := saveState(s.path, s.state); err != nil {
		return fmt.Errorf("review: save state: %w", err)
	}
	if s.onChange != nil {
		s.onChange(statsOf(s.state.Snapshot))
	}
	return nil
}

func (s *Store) notifyf(format string, args ...any) {
	if s.notify != nil {
		s.notify.Notify(fmt.Sprintf(format, args...))
	}
}

// Create replaces any existing snapshot with a fresh one tracking every
// given path as to-review, in input order.
func (s *Store) Create(paths []string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files := make([]TrackedFile, len(paths))
	for i, p := range paths {
		files[i] = TrackedFile{Path: p, Status: StatusToReview}
	}
	s.state.Snapshot = &Snapshot{Files: files, CreatedAt: time.Now()}
	if err := s.save(); err != nil {
		return Snapshot{}, err
	}
	return *s.state.Snapshot, nil
}

// AddNewFiles appends a to-review entry for every path not already
// tracked and returns the number added. Idempotent: already-tracked
// paths are left untouched, existing order is preserved.
func (s *Store) AddNewFiles(paths []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.state.Snapshot
	if snap == nil {
		return 0, apperr.ErrNoSnapshot
	}

	known := make(map[string]struct{}, len(snap.Files))
	for _, f := range snap.Files {
		known[f.Path] = struct{}{}
	}

	added := 0
	for _, p := range paths {
		if _, ok := known[p]; ok {
			continue
		}
		snap.Files = append(snap.Files, TrackedFile{Path: p, Status: StatusToReview})
		known[p] = struct{}{}
		added++
	}
	if added == 0 {
		return 0, nil
	}
	if err := s.save(); err != nil {
		return 0, err
	}
	return added, nil
}

// ToReviewFiles returns the tracked files still awaiting review. Empty
// (never an error) when no snapshot exists.
func (s *Store) ToReviewFiles() []TrackedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toReviewLocked()
}

func (s *Store) toReviewLocked() []TrackedFile {
	snap := s.state.Snapshot
	if snap == nil {
		return nil
	}
	var out []TrackedFile
	for _, f := range snap.Files {
		if f.Status == StatusToReview {
			out = append(out, f)
		}
	}
	return out
}

// PickRandom returns a uniformly random to-review file, or ok=false when
// none remain.
func (s *Store) PickRandom() (TrackedFile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pickRandomLocked()
}

func (s *Store) pickRandomLocked() (TrackedFile, bool) {
	candidates := s.toReviewLocked()
	if len(candidates) == 0 {
		return TrackedFile{}, false
	}
	return candidates[s.intN(len(candidates))], true
}

// FileStatus returns the derived status for path: StatusNew when no
// snapshot exists or the path is untracked, else the stored status.
func (s *Store) FileStatus(path string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.state.Snapshot
	if snap == nil {
		return StatusNew
	}
	if i := snap.find(path); i >= 0 {
		return snap.Files[i].Status
	}
	return StatusNew
}

// MarkReviewed sets path's status to reviewed, auto-adding the entry
// (with a user notice) when untracked. When openNext is true it also
// picks the next random to-review file for the caller to open; next is
// nil when none remain.
func (s *Store) MarkReviewed(path string, openNext bool) (next *TrackedFile, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.setStatusLocked(path, StatusReviewed); err != nil {
		return nil, err
	}
	if openNext {
		if f, ok := s.pickRandomLocked(); ok {
			next = &f
		}
	}
	return next, nil
}

// MarkToReview sets path's status to to-review, auto-adding the entry
// (with a user notice) when untracked.
func (s *Store) MarkToReview(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setStatusLocked(path, StatusToReview)
}

func (s *Store) setStatusLocked(path string, status Status) error {
	snap := s.state.Snapshot
	if snap == nil {
		return apperr.ErrNoSnapshot
	}
	if i := snap.find(path); i >= 0 {
		snap.Files[i].Status = status
	} else {
		snap.Files = append(snap.Files, TrackedFile{Path: path, Status: status})
		switch status {
		case StatusReviewed:
			s.notifyf("%s was not in the snapshot; added as reviewed", path)
		default:
			s.notifyf("%s was not in the snapshot; added as to review", path)
		}
	}
	return s.save()
}

// Delete clears the snapshot. When confirm is non-nil the call suspends
// until the confirmation resolves; a declined confirmation leaves state
// untouched and returns DeleteCancelled. No lock is held while awaiting
// the decision.
func (s *Store) Delete(ctx context.Context, confirm Confirmer) (DeleteOutcome, error) {
	if confirm != nil {
		ok, err := confirm.Decide(ctx)
		if err != nil {
			return "", err
		}
		if !ok {
			return DeleteCancelled, nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Snapshot == nil {
		return "", apperr.ErrNoSnapshot
	}
	s.state.Snapshot = nil
	if err := s.save(); err != nil {
		return "", err
	}
	return DeleteConfirmed, nil
}

// ReconcileRename rewrites a tracked file's path after a vault rename,
// keeping its status. No-op when old is untracked.
func (s *Store) ReconcileRename(oldPath, newPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.state.Snapshot
	if snap == nil {
		return nil
	}
	i := snap.find(oldPath)
	if i < 0 {
		return nil
	}
	snap.Files[i].Path = newPath
	return s.save()
}

// ReconcileDelete flips a tracked file's status to the terminal deleted
// marker after the file vanished from the vault. The entry stays in the
// snapshot so totals remain stable. No-op when untracked or already
// deleted.
func (s *Store) ReconcileDelete(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.state.Snapshot
	if snap == nil {
		return nil
	}
	i := snap.find(path)
	if i < 0 || snap.Files[i].Status == StatusDeleted {
		return nil
	}
	snap.Files[i].Status = StatusDeleted
	return s.save()
}

// Snapshot returns a copy of the current snapshot, or ok=false when none
// exists.
func (s *Store) Snapshot() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Snapshot == nil {
		return Snapshot{}, false
	}
	cp := *s.state.Snapshot
	cp.Files = append([]TrackedFile(nil), s.state.Snapshot.Files...)
	return cp, true
}

// Stats derives review progress from the current snapshot.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return statsOf(s.state.Snapshot)
}

// Settings returns the persisted presentation settings.
func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Settings
}

// UpdateSettings replaces the presentation settings and persists.
func (s *Store) UpdateSettings(set Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Settings = set
	return s.save()
}
