// Package apperr defines the sentinel errors shared across the vault layers.
// Callers wrap them with %w and match with errors.Is.
package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrStorageIO reports that the vault file could not be read or written.
	ErrStorageIO = errors.New("storage io error")
	// ErrStorageCorrupt reports that the vault file exists but does not hold
	// a well-formed document.
	ErrStorageCorrupt = errors.New("storage corrupt")
)
