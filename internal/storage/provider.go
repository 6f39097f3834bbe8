// Package storage defines the byte-level file abstraction under the vault.
package storage

// Provider is the interface for whole-file operations relative to a root directory.
type Provider interface {
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path (relative to root) with content.
	Write(path string, content []byte) error
	// Exists reports whether a file is present at path (relative to root).
	Exists(path string) (bool, error)
}
