package reviewservice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/review"
	"github.com/starford/raido/internal/testutil"
)

type recordingNotifier struct {
	msgs []string
}

func (n *recordingNotifier) Notify(msg string) { n.msgs = append(n.msgs, msg) }

func testService(t *testing.T) (*Service, string, *recordingNotifier) {
	t.Helper()
	vaultDir, store := testutil.TestVault(t)
	db := testutil.TestDB(t)
	n := &recordingNotifier{}
	rs, err := review.Open(filepath.Join(t.TempDir(), "review.json"), review.WithNotifier(n))
	if err != nil {
		t.Fatal(err)
	}
	return NewService(store, db, rs, n), vaultDir, n
}

func TestCreateSnapshotEnumeratesVault(t *testing.T) {
	svc, vaultDir, _ := testService(t)
	testutil.WriteNote(t, vaultDir, "b.md", "x")
	testutil.WriteNote(t, vaultDir, "a/nested.md", "y")

	sum, err := svc.CreateSnapshot(context.Background())
	if err != nil {
		t.Fatalf("CreateSnapshot: %v", err)
	}
	if sum.Stats.Total != 2 || sum.Stats.ToReview != 2 {
		t.Errorf("stats = %+v", sum.Stats)
	}
	if got := svc.FileStatus(context.Background(), "a/nested.md"); got != review.StatusToReview {
		t.Errorf("nested status = %q", got)
	}
}

func TestSummaryWithoutSnapshot(t *testing.T) {
	svc, _, _ := testService(t)
	if _, err := svc.Summary(context.Background()); !errors.Is(err, apperr.ErrNoSnapshot) {
		t.Errorf("err = %v, want ErrNoSnapshot", err)
	}
}

func TestNextToReviewSkipsVanishedFile(t *testing.T) {
	svc, vaultDir, n := testService(t)
	testutil.WriteNote(t, vaultDir, "keep.md", "x")
	testutil.WriteNote(t, vaultDir, "vanish.md", "y")
	if _, err := svc.CreateSnapshot(context.Background()); err != nil {
		t.Fatal(err)
	}

	// The file disappears behind our back; the pick must reconcile it as
	// deleted and fall through to the surviving one, with a notice.
	if err := os.Remove(filepath.Join(vaultDir, "vanish.md")); err != nil {
		t.Fatal(err)
	}

	for range 20 {
		f, err := svc.NextToReview(context.Background())
		if err != nil {
			t.Fatalf("NextToReview: %v", err)
		}
		if f.Path != "keep.md" {
			t.Fatalf("picked %q, want keep.md", f.Path)
		}
	}
	if got := svc.FileStatus(context.Background(), "vanish.md"); got != review.StatusDeleted {
		t.Errorf("vanish.md status = %q, want deleted", got)
	}
	if len(n.msgs) == 0 {
		t.Error("expected a notice about the vanished file")
	}
}

func TestNextToReviewAllGone(t *testing.T) {
	svc, vaultDir, _ := testService(t)
	testutil.WriteNote(t, vaultDir, "only.md", "x")
	if _, err := svc.CreateSnapshot(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(vaultDir, "only.md")); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.NextToReview(context.Background()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRefreshSnapshotTracksNewNotes(t *testing.T) {
	svc, vaultDir, _ := testService(t)
	testutil.WriteNote(t, vaultDir, "a.md", "x")
	if _, err := svc.CreateSnapshot(context.Background()); err != nil {
		t.Fatal(err)
	}

	testutil.WriteNote(t, vaultDir, "b.md", "y")
	added, err := svc.RefreshSnapshot(context.Background())
	if err != nil {
		t.Fatalf("RefreshSnapshot: %v", err)
	}
	if added != 1 {
		t.Errorf("added = %d, want 1", added)
	}
	if got := svc.FileStatus(context.Background(), "b.md"); got != review.StatusToReview {
		t.Errorf("b.md status = %q", got)
	}
}

func TestMarkReviewedOpenNextSkipsVanished(t *testing.T) {
	svc, vaultDir, _ := testService(t)
	testutil.WriteNote(t, vaultDir, "a.md", "x")
	testutil.WriteNote(t, vaultDir, "b.md", "y")
	testutil.WriteNote(t, vaultDir, "c.md", "z")
	if _, err := svc.CreateSnapshot(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(vaultDir, "b.md")); err != nil {
		t.Fatal(err)
	}

	// Review a and c; any "next" handed back must never be the vanished b.
	for _, p := range []string{"a.md", "c.md"} {
		next, err := svc.MarkReviewed(context.Background(), p, true)
		if err != nil {
			t.Fatalf("MarkReviewed(%s): %v", p, err)
		}
		if next != nil && next.Path == "b.md" {
			t.Fatal("next pointed at a vanished file")
		}
	}
}

func TestListNotesDerivesStatuses(t *testing.T) {
	svc, vaultDir, _ := testService(t)
	testutil.WriteNote(t, vaultDir, "a.md", "x")
	if _, err := svc.CreateSnapshot(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.MarkReviewed(context.Background(), "a.md", false); err != nil {
		t.Fatal(err)
	}
	testutil.WriteNote(t, vaultDir, "b.md", "y")

	items, err := svc.ListNotes(context.Background())
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Path != "a.md" || items[0].Status != review.StatusReviewed {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[1].Path != "b.md" || items[1].Status != review.StatusNew {
		t.Errorf("items[1] = %+v", items[1])
	}
}
