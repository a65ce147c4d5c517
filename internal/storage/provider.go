// Package storage defines the vault file-system abstraction. Raido never
// writes to the vault; notes are created and edited by external tools.
package storage

import "github.com/starford/raido/internal/models"

// Provider is the read-only interface onto the vault.
type Provider interface {
	// List returns metadata for every .md file under dir (relative to the
	// vault root), sorted by path.
	List(dir string) ([]models.NoteMeta, error)
	// Exists reports whether the file at path (relative to the vault root)
	// is present.
	Exists(path string) (bool, error)
}
