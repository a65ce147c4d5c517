package index

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/raido/internal/review"
	"github.com/starford/raido/internal/storage"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(kind, path string) {
	l.mu.Lock()
	l.events = append(l.events, kind+":"+path)
	l.mu.Unlock()
}

func (l *eventLog) has(e string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, got := range l.events {
		if got == e {
			return true
		}
	}
	return false
}

func startWatcher(t *testing.T, vaultDir string) (*DB, *review.Store, *eventLog) {
	t.Helper()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	db := testDB(t)
	rs, err := review.Open(filepath.Join(t.TempDir(), "review.json"))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	log := &eventLog{}
	go func() {
		_ = Watch(ctx, db, store, rs, vaultDir, quietLogger(), log.add)
	}()

	// Give the watcher time to register its directories.
	time.Sleep(100 * time.Millisecond)
	return db, rs, log
}

func TestWatcher_NewFileIndexed(t *testing.T) {
	vaultDir := t.TempDir()
	db, _, log := startWatcher(t, vaultDir)

	writeNote(t, vaultDir, "new.md", "# New")

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("new.md")
		return cs != ""
	}, "new file not indexed by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		return log.has("created:new.md")
	}, "expected created:new.md callback")
}

func TestWatcher_DeleteReconciled(t *testing.T) {
	vaultDir := t.TempDir()
	writeNote(t, vaultDir, "doomed.md", "bye")
	db, rs, _ := startWatcher(t, vaultDir)

	// Index and track the file first.
	store, _ := storage.NewFS(vaultDir)
	if err := Sync(db, store, rs, quietLogger(), nil); err != nil {
		t.Fatal(err)
	}
	if _, err := rs.Create([]string{"doomed.md"}); err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(filepath.Join(vaultDir, "doomed.md")); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rs.FileStatus("doomed.md") == review.StatusDeleted
	}, "deleted file not reconciled in review store")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("doomed.md")
		return cs == ""
	}, "deleted file still indexed")
}

func TestWatcher_RenameReconciled(t *testing.T) {
	vaultDir := t.TempDir()
	writeNote(t, vaultDir, "before.md", "stable content")
	db, rs, log := startWatcher(t, vaultDir)

	store, _ := storage.NewFS(vaultDir)
	if err := Sync(db, store, rs, quietLogger(), nil); err != nil {
		t.Fatal(err)
	}
	if _, err := rs.Create([]string{"before.md"}); err != nil {
		t.Fatal(err)
	}
	if _, err := rs.MarkReviewed("before.md", false); err != nil {
		t.Fatal(err)
	}

	if err := os.Rename(
		filepath.Join(vaultDir, "before.md"),
		filepath.Join(vaultDir, "after.md"),
	); err != nil {
		t.Fatal(err)
	}

	// The debounced sync pass must turn the rename into a review
	// reconciliation, carrying the status to the new path.
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rs.FileStatus("after.md") == review.StatusReviewed
	}, "rename not reconciled: status did not travel to after.md")

	if got := rs.FileStatus("before.md"); got != review.StatusNew {
		t.Errorf("before.md status = %q, want new", got)
	}
	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		return log.has("renamed:after.md")
	}, "expected renamed:after.md callback")
}

func TestWatcher_NewDirWatched(t *testing.T) {
	vaultDir := t.TempDir()
	db, _, _ := startWatcher(t, vaultDir)

	// Create a directory after the watcher started, then a file inside it.
	writeNote(t, vaultDir, "fresh/inner.md", "hello")

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("fresh/inner.md")
		return cs != ""
	}, "file in new directory not indexed")
}
