package index

// NoteIndex defines the interface for note index operations. Consumers
// should depend on this interface rather than the concrete *DB type to
// facilitate testing with mocks.
type NoteIndex interface {
	Upsert(path, checksum string) error
	Delete(path string) error
	Rename(oldPath, newPath string) error
	GetChecksum(path string) (string, error)
	AllPaths() ([]string, error)
	AllChecksums() (map[string]string, error)
	Count() (int, error)
	Close() error
}

// Verify *DB satisfies NoteIndex at compile time.
var _ NoteIndex = (*DB)(nil)
