package index

import (
	"os"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "raido-index-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)

	if err := db.Upsert("a.md", "cs1"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	cs, _ := db.GetChecksum("a.md")
	if cs != "cs1" {
		t.Errorf("checksum = %q, want cs1", cs)
	}

	// Upsert replaces.
	if err := db.Upsert("a.md", "cs2"); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	cs, _ = db.GetChecksum("a.md")
	if cs != "cs2" {
		t.Errorf("checksum = %q, want cs2", cs)
	}

	n, err := db.Count()
	if err != nil || n != 1 {
		t.Errorf("Count = %d, %v", n, err)
	}
}

func TestGetChecksumMissing(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nope.md")
	if err != nil || cs != "" {
		t.Errorf("GetChecksum = %q, %v", cs, err)
	}
}

func TestDelete(t *testing.T) {
	db := testDB(t)
	_ = db.Upsert("a.md", "cs")
	if err := db.Delete("a.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if cs, _ := db.GetChecksum("a.md"); cs != "" {
		t.Errorf("checksum after delete = %q", cs)
	}
	// Unknown path is not an error.
	if err := db.Delete("nope.md"); err != nil {
		t.Errorf("Delete unknown: %v", err)
	}
}

func TestRenameKeepsChecksum(t *testing.T) {
	db := testDB(t)
	_ = db.Upsert("old.md", "cs")

	if err := db.Rename("old.md", "new.md"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if cs, _ := db.GetChecksum("new.md"); cs != "cs" {
		t.Errorf("new.md checksum = %q, want cs", cs)
	}
	if cs, _ := db.GetChecksum("old.md"); cs != "" {
		t.Errorf("old.md still indexed: %q", cs)
	}
}

func TestRenameOverStaleRow(t *testing.T) {
	db := testDB(t)
	_ = db.Upsert("old.md", "cs")
	_ = db.Upsert("new.md", "stale")

	if err := db.Rename("old.md", "new.md"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if cs, _ := db.GetChecksum("new.md"); cs != "cs" {
		t.Errorf("new.md checksum = %q, want cs", cs)
	}
	n, _ := db.Count()
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestAllPathsSorted(t *testing.T) {
	db := testDB(t)
	_ = db.Upsert("b.md", "1")
	_ = db.Upsert("a.md", "2")

	paths, err := db.AllPaths()
	if err != nil {
		t.Fatalf("AllPaths: %v", err)
	}
	if len(paths) != 2 || paths[0] != "a.md" || paths[1] != "b.md" {
		t.Errorf("paths = %v", paths)
	}
}

func TestAllChecksums(t *testing.T) {
	db := testDB(t)
	_ = db.Upsert("a.md", "1")
	_ = db.Upsert("b.md", "2")

	m, err := db.AllChecksums()
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	if len(m) != 2 || m["a.md"] != "1" || m["b.md"] != "2" {
		t.Errorf("checksums = %v", m)
	}
}
