package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/mannaz/internal/apperr"
	"github.com/starford/mannaz/internal/models"
)

// CreateUser inserts a new user and fills in the assigned id.
// A duplicate email surfaces as apperr.ErrConflict.
func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.CreatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return apperr.ErrConflict
		}
		return fmt.Errorf("store: insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: user id: %w", err)
	}
	u.ID = id
	return nil
}

// UserByEmail returns the user with the given email, matched exactly as
// stored, or apperr.ErrNotFound.
func (db *DB) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.scanUser(db.conn.QueryRowContext(ctx, `
		SELECT id, email, password_hash, first_name, last_name, created_at
		FROM users WHERE email = ?
	`, email))
}

// UserByID returns the user with the given id, or apperr.ErrNotFound.
func (db *DB) UserByID(ctx context.Context, id int64) (*models.User, error) {
	return db.scanUser(db.conn.QueryRowContext(ctx, `
		SELECT id, email, password_hash, first_name, last_name, created_at
		FROM users WHERE id = ?
	`, id))
}

func (db *DB) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: scan user: %w", err)
	}
	return &u, nil
}
