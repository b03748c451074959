package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/opennote/opennote/internal/apperr"
)

// Note is a persisted note record.
type Note struct {
	ID           int64      `json:"id"`
	UserID       string     `json:"userId"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Links        []int64    `json:"links,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	IsSynced     bool       `json:"isSynced"`
	LastSyncedAt *time.Time `json:"lastSyncedAt,omitempty"`
}

// Draft is a partial note write. Nil fields are left untouched on update;
// a nil ID means "new note" and always triggers an insert.
type Draft struct {
	ID      *int64   `json:"id,omitempty"`
	Title   *string  `json:"title,omitempty"`
	Content *string  `json:"content,omitempty"`
	Links   *[]int64 `json:"links,omitempty"`
}

// ListAll returns every note for an owner. Order is unspecified; callers
// sort by UpdatedAt for display.
func (db *DB) ListAll(ownerID string) ([]Note, error) {
	rows, err := db.conn.Query(`
		SELECT id, user_id, title, content, links, created_at, updated_at, is_synced, last_synced_at
		FROM notes WHERE user_id = ?
	`, ownerID)
	if err != nil {
		return nil, storageErr("list", err)
	}
	defer rows.Close()

	var out []Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, storageErr("list scan", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list rows", err)
	}
	return out, nil
}

// Get returns a single note by id, or apperr.ErrNotFound for a missing key.
func (db *DB) Get(id int64) (*Note, error) {
	row := db.conn.QueryRow(`
		SELECT id, user_id, title, content, links, created_at, updated_at, is_synced, last_synced_at
		FROM notes WHERE id = ?
	`, id)
	n, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, storageErr("get", err)
	}
	return &n, nil
}

// Save persists a draft. A draft without an id is inserted with
// createdAt = updatedAt = now and a freshly assigned identifier; a draft
// with an id updates only the supplied fields plus updated_at. The id
// column itself is never part of the update payload, so the key cannot be
// corrupted by a retried save.
func (db *DB) Save(ownerID string, d Draft) (*Note, error) {
	now := time.Now().UnixMilli()

	if d.ID == nil {
		title, content := "", ""
		if d.Title != nil {
			title = *d.Title
		}
		if d.Content != nil {
			content = *d.Content
		}
		links := encodeLinks(d.Links)

		res, err := db.conn.Exec(`
			INSERT INTO notes (user_id, title, content, links, created_at, updated_at, is_synced)
			VALUES (?, ?, ?, ?, ?, ?, 1)
		`, ownerID, title, content, links, now, now)
		if err != nil {
			return nil, storageErr("insert", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, storageErr("insert id", err)
		}
		return db.Get(id)
	}

	// Partial update: build the SET clause from supplied fields only.
	set := []string{"updated_at = ?", "is_synced = 1"}
	args := []any{now}
	if d.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *d.Title)
	}
	if d.Content != nil {
		set = append(set, "content = ?")
		args = append(args, *d.Content)
	}
	if d.Links != nil {
		set = append(set, "links = ?")
		args = append(args, encodeLinks(d.Links))
	}
	args = append(args, *d.ID, ownerID)

	res, err := db.conn.Exec(
		`UPDATE notes SET `+strings.Join(set, ", ")+` WHERE id = ? AND user_id = ?`, args...)
	if err != nil {
		return nil, storageErr("update", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, storageErr("update affected", err)
	}
	if affected == 0 {
		return nil, apperr.ErrNotFound
	}
	return db.Get(*d.ID)
}

// Delete removes a note. Deleting a nonexistent id is a no-op.
func (db *DB) Delete(id int64) error {
	if _, err := db.conn.Exec(`DELETE FROM notes WHERE id = ?`, id); err != nil {
		return storageErr("delete", err)
	}
	return nil
}

// Count returns the total number of stored notes.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&n); err != nil {
		return 0, storageErr("count", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (Note, error) {
	var (
		n          Note
		linksJSON  string
		createdMS  int64
		updatedMS  int64
		syncedInt  int
		lastSynced sql.NullInt64
	)
	err := s.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &linksJSON,
		&createdMS, &updatedMS, &syncedInt, &lastSynced)
	if err != nil {
		return Note{}, err
	}
	n.CreatedAt = time.UnixMilli(createdMS)
	n.UpdatedAt = time.UnixMilli(updatedMS)
	n.IsSynced = syncedInt != 0
	if lastSynced.Valid {
		t := time.UnixMilli(lastSynced.Int64)
		n.LastSyncedAt = &t
	}
	// A corrupt links column degrades to "no explicit links" rather than
	// failing the whole read.
	_ = json.Unmarshal([]byte(linksJSON), &n.Links)
	return n, nil
}

func encodeLinks(links *[]int64) string {
	if links == nil || *links == nil {
		return "[]"
	}
	b, err := json.Marshal(*links)
	if err != nil {
		return "[]"
	}
	return string(b)
}
