// Package store implements the local note storage engine on SQLite.
//
// It owns the durable mapping from note identity to note record and is the
// single source of truth read by the list UI, the graph builder, and the
// MCP bridge. Identifiers are assigned by the store on first save and are
// immutable afterwards.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/opennote/opennote/internal/apperr"
)

// Schema version 2: notes plus the settings and api_keys tables that share
// the same engine instance. Timestamps are unix milliseconds.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id        TEXT NOT NULL,
	title          TEXT NOT NULL DEFAULT '',
	content        TEXT NOT NULL DEFAULT '',
	links          TEXT NOT NULL DEFAULT '[]',
	created_at     INTEGER NOT NULL,
	updated_at     INTEGER NOT NULL,
	is_synced      INTEGER NOT NULL DEFAULT 1,
	last_synced_at INTEGER
);

CREATE INDEX IF NOT EXISTS idx_notes_user ON notes(user_id);
CREATE INDEX IF NOT EXISTS idx_notes_updated ON notes(user_id, updated_at);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS api_keys (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	key        TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
`

// DB wraps a sql.DB with note-store operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// storageErr wraps a driver error as an apperr.ErrStorage so callers can
// classify failures without inspecting driver internals.
func storageErr(op string, err error) error {
	return fmt.Errorf("store: %s: %w: %v", op, apperr.ErrStorage, err)
}
