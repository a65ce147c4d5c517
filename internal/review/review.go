// Package review implements the review-pass state machine: an optional
// snapshot of the vault's notes, each tracked with a per-file review
// status, persisted write-through to a JSON state file.
package review

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is the review state of a tracked file.
type Status string

const (
	// StatusToReview marks a file that still needs a review pass.
	StatusToReview Status = "to_review"
	// StatusReviewed marks a file the user has reviewed.
	StatusReviewed Status = "reviewed"
	// StatusDeleted marks a file that disappeared from the vault after the
	// snapshot was taken. Terminal: deleted entries stay in the snapshot so
	// totals remain stable, but they are excluded from review selection.
	StatusDeleted Status = "deleted"
	// StatusNew is derived, never stored: the path is not in the snapshot
	// (or no snapshot exists).
	StatusNew Status = "new"
)

// Valid reports whether s is a storable status.
func (s Status) Valid() bool {
	switch s {
	case StatusToReview, StatusReviewed, StatusDeleted:
		return true
	}
	return false
}

// TrackedFile is one snapshot entry. At most one entry exists per path.
type TrackedFile struct {
	Path   string `json:"path"`
	Status Status `json:"status"`
}

// Snapshot is a point-in-time capture of the vault's notes.
type Snapshot struct {
	Files     []TrackedFile `json:"files"`
	CreatedAt time.Time     `json:"created_at"`
}

// snapshotWire exists to tolerate the created_at field arriving as any
// ISO-8601 string written by older builds, not just what time.Time emits.
type snapshotWire struct {
	Files     []TrackedFile `json:"files"`
	CreatedAt string        `json:"created_at"`
}

// UnmarshalJSON parses created_at leniently: RFC 3339 first, then the
// date-only form.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var w snapshotWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	s.Files = w.Files
	if w.CreatedAt == "" {
		s.CreatedAt = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, w.CreatedAt); err == nil {
			s.CreatedAt = ts
			return nil
		}
	}
	return fmt.Errorf("review: parse created_at %q", w.CreatedAt)
}

// find returns the index of path in Files, or -1.
func (s *Snapshot) find(path string) int {
	for i := range s.Files {
		if s.Files[i].Path == path {
			return i
		}
	}
	return -1
}

// Settings are client presentation preferences stored alongside the snapshot.
type Settings struct {
	ShowStatusBar    bool `json:"show_status_bar"`
	ShowRandomRibbon bool `json:"show_random_ribbon"`
}

// State is the full persisted object.
type State struct {
	Snapshot *Snapshot `json:"snapshot,omitempty"`
	Settings Settings  `json:"settings"`
}

// Notifier surfaces transient user-facing messages. Implementations must
// not block.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(msg string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(msg string) { f(msg) }
