// Package apperr defines sentinel errors shared across layers.
package apperr

import "errors"

var (
	// ErrNotFound means the requested note or resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoSnapshot means an operation requires a review snapshot and none exists.
	ErrNoSnapshot = errors.New("no review snapshot")
)
