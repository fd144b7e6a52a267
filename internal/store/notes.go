package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/mannaz/internal/apperr"
	"github.com/starford/mannaz/internal/models"
)

// Every note query below filters by user_id as well as id. That filter is
// the access-control mechanism: a note owned by someone else behaves
// exactly like a note that does not exist.

// InsertNote inserts a new note and fills in the assigned id.
func (db *DB) InsertNote(ctx context.Context, n *models.Note) error {
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO notes (title, content, created_at, updated_at, user_id)
		VALUES (?, ?, ?, ?, ?)
	`, n.Title, n.Content, n.CreatedAt, n.UpdatedAt, n.UserID)
	if err != nil {
		return fmt.Errorf("store: insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: note id: %w", err)
	}
	n.ID = id
	return nil
}

// NoteByID returns the note with the given id when it is owned by ownerID,
// or apperr.ErrNotFound.
func (db *DB) NoteByID(ctx context.Context, id, ownerID int64) (*models.Note, error) {
	return db.scanNote(db.conn.QueryRowContext(ctx, `
		SELECT id, title, content, created_at, updated_at, user_id
		FROM notes WHERE id = ? AND user_id = ?
	`, id, ownerID))
}

// UpdateNote sets title, content, and updated_at on the owned note and
// returns the updated row. apperr.ErrNotFound when no row matched.
func (db *DB) UpdateNote(ctx context.Context, id, ownerID int64, title, content string, updatedAt time.Time) (*models.Note, error) {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE notes SET title = ?, content = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, title, content, updatedAt, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("store: update note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("store: update note affected: %w", err)
	}
	if affected == 0 {
		return nil, apperr.ErrNotFound
	}
	return db.NoteByID(ctx, id, ownerID)
}

// DeleteNote removes the owned note. apperr.ErrNotFound when no row was
// removed, so a second delete of the same id reports "not found" rather
// than failing.
func (db *DB) DeleteNote(ctx context.Context, id, ownerID int64) error {
	res, err := db.conn.ExecContext(ctx, `
		DELETE FROM notes WHERE id = ? AND user_id = ?
	`, id, ownerID)
	if err != nil {
		return fmt.Errorf("store: delete note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete note affected: %w", err)
	}
	if affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ListNotes returns all notes owned by ownerID, most recently updated
// first.
func (db *DB) ListNotes(ctx context.Context, ownerID int64) ([]models.Note, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, title, content, created_at, updated_at, user_id
		FROM notes WHERE user_id = ?
		ORDER BY updated_at DESC, id DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("store: list notes: %w", err)
	}
	return collectNotes(rows)
}

// SearchNotes returns the owner's notes whose title or content contains
// term as a literal substring, most recently updated first. Matching uses
// SQLite's default LIKE collation: case-insensitive for ASCII letters,
// case-sensitive beyond ASCII.
func (db *DB) SearchNotes(ctx context.Context, term string, ownerID int64) ([]models.Note, error) {
	pattern := "%" + escapeLike(term) + "%"
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, title, content, created_at, updated_at, user_id
		FROM notes
		WHERE user_id = ? AND (title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\')
		ORDER BY updated_at DESC, id DESC
	`, ownerID, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("store: search notes: %w", err)
	}
	return collectNotes(rows)
}

// escapeLike escapes LIKE wildcards so the search term always matches
// literally.
func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}

func collectNotes(rows *sql.Rows) ([]models.Note, error) {
	defer rows.Close()
	var out []models.Note
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt, &n.UserID); err != nil {
			return nil, fmt.Errorf("store: scan note: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (db *DB) scanNote(row *sql.Row) (*models.Note, error) {
	var n models.Note
	err := row.Scan(&n.ID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt, &n.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: scan note: %w", err)
	}
	return &n, nil
}
