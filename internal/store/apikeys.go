package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// APIKey is a generated credential for the external tool bridge.
type APIKey struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateAPIKey generates and stores a new credential.
func (db *DB) CreateAPIKey(name string) (*APIKey, error) {
	key := "sk_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	now := time.Now().UnixMilli()

	res, err := db.conn.Exec(`
		INSERT INTO api_keys (key, name, created_at) VALUES (?, ?, ?)
	`, key, name, now)
	if err != nil {
		return nil, storageErr("create api key", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, storageErr("create api key id", err)
	}
	return &APIKey{ID: id, Key: key, Name: name, CreatedAt: time.UnixMilli(now)}, nil
}

// ListAPIKeys returns all credentials, oldest first.
func (db *DB) ListAPIKeys() ([]APIKey, error) {
	rows, err := db.conn.Query(`SELECT id, key, name, created_at FROM api_keys ORDER BY id`)
	if err != nil {
		return nil, storageErr("list api keys", err)
	}
	defer rows.Close()

	var out []APIKey
	for rows.Next() {
		var (
			k  APIKey
			ms int64
		)
		if err := rows.Scan(&k.ID, &k.Key, &k.Name, &ms); err != nil {
			return nil, storageErr("list api keys scan", err)
		}
		k.CreatedAt = time.UnixMilli(ms)
		out = append(out, k)
	}
	return out, rows.Err()
}

// DeleteAPIKey removes a credential. Missing ids are a no-op.
func (db *DB) DeleteAPIKey(id int64) error {
	if _, err := db.conn.Exec(`DELETE FROM api_keys WHERE id = ?`, id); err != nil {
		return storageErr("delete api key", err)
	}
	return nil
}

// ValidateAPIKey reports whether a presented key exists.
func (db *DB) ValidateAPIKey(key string) (bool, error) {
	var id int64
	err := db.conn.QueryRow(`SELECT id FROM api_keys WHERE key = ?`, key).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, storageErr("validate api key", err)
	}
	return true, nil
}
