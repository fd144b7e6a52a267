package store

import (
	"context"
	"time"

	"github.com/starford/mannaz/internal/models"
)

// UserStore defines the persistence operations the identity service needs.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id int64) (*models.User, error)
}

// NoteStore defines the persistence operations the note service needs.
// Every method that touches an existing note takes the owner id as a
// mandatory filter.
type NoteStore interface {
	InsertNote(ctx context.Context, n *models.Note) error
	NoteByID(ctx context.Context, id, ownerID int64) (*models.Note, error)
	UpdateNote(ctx context.Context, id, ownerID int64, title, content string, updatedAt time.Time) (*models.Note, error)
	DeleteNote(ctx context.Context, id, ownerID int64) error
	ListNotes(ctx context.Context, ownerID int64) ([]models.Note, error)
	SearchNotes(ctx context.Context, term string, ownerID int64) ([]models.Note, error)
}

// Verify *DB satisfies both interfaces at compile time.
var (
	_ UserStore = (*DB)(nil)
	_ NoteStore = (*DB)(nil)
)
