package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempVault(t *testing.T) (string, *FS) {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return dir, fs
}

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	abs := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListOnlyMarkdownSorted(t *testing.T) {
	dir, s := tempVault(t)
	writeFile(t, dir, "b.md", "b")
	writeFile(t, dir, "sub/a.md", "a")
	writeFile(t, dir, "readme.txt", "not md")

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Path != "b.md" || items[1].Path != "sub/a.md" {
		t.Errorf("paths = %q, %q", items[0].Path, items[1].Path)
	}
	for _, it := range items {
		if it.Checksum == "" {
			t.Errorf("%s has empty checksum", it.Path)
		}
		if it.UpdatedAt.IsZero() {
			t.Errorf("%s has zero updated_at", it.Path)
		}
	}
}

func TestListSameContentSameChecksum(t *testing.T) {
	dir, s := tempVault(t)
	writeFile(t, dir, "a.md", "identical")
	writeFile(t, dir, "b.md", "identical")

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if items[0].Checksum != items[1].Checksum {
		t.Error("identical content produced different checksums")
	}
}

func TestListSubdir(t *testing.T) {
	dir, s := tempVault(t)
	writeFile(t, dir, "top.md", "x")
	writeFile(t, dir, "sub/inner.md", "y")

	items, err := s.List("sub")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].Path != "sub/inner.md" {
		t.Errorf("items = %+v", items)
	}
}

func TestExists(t *testing.T) {
	dir, s := tempVault(t)
	writeFile(t, dir, "here.md", "x")

	ok, err := s.Exists("here.md")
	if err != nil || !ok {
		t.Errorf("Exists(here.md) = %v, %v", ok, err)
	}
	ok, err = s.Exists("gone.md")
	if err != nil || ok {
		t.Errorf("Exists(gone.md) = %v, %v", ok, err)
	}
}

func TestExistsDirectoryIsFalse(t *testing.T) {
	dir, s := tempVault(t)
	writeFile(t, dir, "sub/a.md", "x")

	ok, err := s.Exists("sub")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Error("directory should not count as an existing note")
	}
}

func TestTraversalBlocked(t *testing.T) {
	_, s := tempVault(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Exists(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
	}
}

func TestNewFSRejectsMissingRoot(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing root")
	}
}
