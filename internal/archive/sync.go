package archive

import (
	"log/slog"

	"github.com/starford/scaffold/internal/vault"
)

// Sync brings the archive up to date with store. Nothing is written when
// the archived checksum already matches the document on disk.
func Sync(db *DB, store *vault.Vault, logger *slog.Logger) error {
	current, err := store.Checksum()
	if err != nil {
		return err
	}
	archived, err := db.Checksum()
	if err != nil {
		return err
	}
	if archived == current {
		logger.Debug("sync: up to date", slog.String("checksum", current))
		return nil
	}

	snap, err := store.Snapshot()
	if err != nil {
		return err
	}
	if err := db.Replace(snap); err != nil {
		return err
	}
	logger.Debug("sync: archived",
		slog.String("checksum", snap.Checksum),
		slog.Int("events", len(snap.Events)),
		slog.Int("reinforcements", len(snap.Reinforcements)),
		slog.Int("holograms", len(snap.Holograms)))
	return nil
}
