// Package testutil provides shared test helpers for setting up vaults and archives.
package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/scaffold/internal/archive"
	"github.com/starford/scaffold/internal/vault"
)

// TestVault creates an initialized vault document in a temporary directory.
func TestVault(t *testing.T) *vault.Vault {
	t.Helper()
	v, err := vault.Open(filepath.Join(t.TempDir(), vault.DefaultPath))
	if err != nil {
		t.Fatal(err)
	}
	return v
}

// TestArchive creates a temporary SQLite archive that is automatically closed.
func TestArchive(t *testing.T) *archive.DB {
	t.Helper()
	db, err := archive.Open(filepath.Join(t.TempDir(), "scaffold-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Logger returns a JSON logger that only emits errors.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
