package store

import (
	"database/sql"
	"errors"

	"github.com/opennote/opennote/internal/apperr"
)

// GetSetting returns the value for a settings key, or apperr.ErrNotFound.
func (db *DB) GetSetting(key string) (string, error) {
	var v string
	err := db.conn.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperr.ErrNotFound
		}
		return "", storageErr("get setting", err)
	}
	return v, nil
}

// PutSetting inserts or replaces a settings key.
func (db *DB) PutSetting(key, value string) error {
	_, err := db.conn.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return storageErr("put setting", err)
	}
	return nil
}
