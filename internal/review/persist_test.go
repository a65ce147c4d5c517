package review

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStateSurvivesReopen(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "review.json")

	s, err := Open(statePath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_, _ = s.Create([]string{"a.md", "b.md"})
	_, _ = s.MarkReviewed("a.md", false)
	_ = s.UpdateSettings(Settings{ShowStatusBar: true})

	reopened, err := Open(statePath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := reopened.FileStatus("a.md"); got != StatusReviewed {
		t.Errorf("a.md status = %q, want reviewed", got)
	}
	if got := reopened.FileStatus("b.md"); got != StatusToReview {
		t.Errorf("b.md status = %q, want to_review", got)
	}
	if !reopened.Settings().ShowStatusBar {
		t.Error("settings lost across reopen")
	}
	snap, ok := reopened.Snapshot()
	if !ok || snap.CreatedAt.IsZero() {
		t.Error("created_at lost across reopen")
	}
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := s.Snapshot(); ok {
		t.Error("expected no snapshot")
	}
}

func TestOpenCorruptFileFails(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "review.json")
	if err := os.WriteFile(statePath, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(statePath); err == nil {
		t.Error("expected error for corrupt state file")
	}
}

// Older builds wrote created_at via JavaScript's Date.toISOString and,
// before that, a bare date. Both must still load.
func TestSnapshotCreatedAtCompat(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"iso with millis", `"2024-03-01T10:30:00.000Z"`, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"rfc3339", `"2024-03-01T10:30:00Z"`, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"date only", `"2024-03-01"`, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := `{"files":[{"path":"a.md","status":"to_review"}],"created_at":` + tc.raw + `}`
			var snap Snapshot
			if err := json.Unmarshal([]byte(raw), &snap); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !snap.CreatedAt.Equal(tc.want) {
				t.Errorf("created_at = %v, want %v", snap.CreatedAt, tc.want)
			}
			if len(snap.Files) != 1 || snap.Files[0].Status != StatusToReview {
				t.Errorf("files = %+v", snap.Files)
			}
		})
	}
}

func TestSnapshotCreatedAtGarbageFails(t *testing.T) {
	var snap Snapshot
	err := json.Unmarshal([]byte(`{"files":[],"created_at":"yesterday"}`), &snap)
	if err == nil {
		t.Error("expected error for unparseable created_at")
	}
}
