package archive

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/scaffold/internal/models"
	"github.com/starford/scaffold/internal/vault"
)

const (
	metaChecksum = "checksum"
	metaSyncedAt = "synced_at"
)

// Checksum returns the vault checksum recorded by the last successful
// Replace, or "" if the archive has never been filled.
func (db *DB) Checksum() (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT value FROM meta WHERE key = ?`, metaChecksum).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("archive: get checksum: %w", err)
	}
	return cs, nil
}

// Count returns the number of archived rows of collection c.
func (db *DB) Count(c models.Collection) (int, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	var n int
	// c is one of the five validated table names.
	if err := db.conn.QueryRow(`SELECT count(*) FROM ` + string(c)).Scan(&n); err != nil {
		return 0, fmt.Errorf("archive: count %s: %w", c, err)
	}
	return n, nil
}

// Replace rewrites every table from snap within a single transaction.
func (db *DB) Replace(snap *vault.Snapshot) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("archive: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	for _, c := range models.Collections {
		if _, err := tx.Exec(`DELETE FROM ` + string(c)); err != nil {
			return fmt.Errorf("archive: clear %s: %w", c, err)
		}
	}

	for i, ev := range snap.Events {
		if _, err := tx.Exec(`INSERT INTO events (position, timestamp, description, outcome) VALUES (?, ?, ?, ?)`,
			i, ev.Timestamp, ev.Description, ev.Outcome); err != nil {
			return fmt.Errorf("archive: insert event: %w", err)
		}
	}
	if err := insertTexts(tx, models.Affirmations, snap.Affirmations); err != nil {
		return err
	}
	if err := insertTexts(tx, models.Reflections, snap.Reflections); err != nil {
		return err
	}
	for i, r := range snap.Reinforcements {
		if _, err := tx.Exec(`INSERT INTO reinforcements (position, concept, phase, text, drill_id) VALUES (?, ?, ?, ?, ?)`,
			i, r.Concept(), r.Phase(), r.Text(), r[models.KeyDrillID]); err != nil {
			return fmt.Errorf("archive: insert reinforcement: %w", err)
		}
	}
	for i, h := range snap.Holograms {
		if _, err := tx.Exec(`INSERT INTO holograms (position, concept, facet, description) VALUES (?, ?, ?, ?)`,
			i, h.Concept(), h.Facet(), h.Description()); err != nil {
			return fmt.Errorf("archive: insert hologram: %w", err)
		}
	}

	upsert := `INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := tx.Exec(upsert, metaChecksum, snap.Checksum); err != nil {
		return fmt.Errorf("archive: set checksum: %w", err)
	}
	if _, err := tx.Exec(upsert, metaSyncedAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("archive: set synced_at: %w", err)
	}
	return tx.Commit()
}

func insertTexts(tx *sql.Tx, c models.Collection, texts []string) error {
	stmt, err := tx.Prepare(`INSERT INTO ` + string(c) + ` (position, text) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("archive: prepare %s insert: %w", c, err)
	}
	defer stmt.Close()
	for i, text := range texts {
		if _, err := stmt.Exec(i, text); err != nil {
			return fmt.Errorf("archive: insert %s: %w", c, err)
		}
	}
	return nil
}
