// Package archive mirrors the vault document into a SQLite database so the
// journal can be queried with ordinary SQL tools. The vault stays the only
// source of truth; the archive is rebuilt from it whenever it changes.
package archive

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS events (
	position    INTEGER PRIMARY KEY,
	timestamp   TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	outcome     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS affirmations (
	position INTEGER PRIMARY KEY,
	text     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS reflections (
	position INTEGER PRIMARY KEY,
	text     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS reinforcements (
	position INTEGER PRIMARY KEY,
	concept  TEXT NOT NULL DEFAULT '',
	phase    TEXT NOT NULL DEFAULT '',
	text     TEXT NOT NULL DEFAULT '',
	drill_id TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS holograms (
	position    INTEGER PRIMARY KEY,
	concept     TEXT NOT NULL DEFAULT '',
	facet       TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_reinforcements_concept ON reinforcements(concept);
CREATE INDEX IF NOT EXISTS idx_holograms_concept ON holograms(concept);

CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL DEFAULT ''
);
`

// DB wraps a sql.DB with archive-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("archive: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("archive: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("archive: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
