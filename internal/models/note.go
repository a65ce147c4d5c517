// Package models defines the domain types shared across Raido layers.
package models

import "time"

// NoteMeta is the lightweight representation of a vault note used by
// listing and sync operations. Path is always vault-relative with
// forward slashes.
type NoteMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
