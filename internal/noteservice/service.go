// Package noteservice implements ownership-scoped note operations. Every
// operation takes the authenticated owner id as an explicit parameter and
// passes it down to the store as a query filter; there is no other
// authorization check.
package noteservice

import (
	"context"
	"strings"
	"time"

	"github.com/starford/mannaz/internal/apperr"
	"github.com/starford/mannaz/internal/models"
	"github.com/starford/mannaz/internal/store"
)

// Service coordinates note persistence.
type Service struct {
	store store.NoteStore
}

// NewService creates a new note service.
func NewService(st store.NoteStore) *Service {
	return &Service{store: st}
}

// List returns all notes owned by ownerID, most recently updated first.
func (s *Service) List(ctx context.Context, ownerID int64) ([]models.Note, error) {
	return s.store.ListNotes(ctx, ownerID)
}

// Search returns the owner's notes whose title or content contains term as
// a substring. A blank term behaves like List.
func (s *Service) Search(ctx context.Context, term string, ownerID int64) ([]models.Note, error) {
	if strings.TrimSpace(term) == "" {
		return s.List(ctx, ownerID)
	}
	return s.store.SearchNotes(ctx, term, ownerID)
}

// Get returns a single owned note, or apperr.ErrNotFound.
func (s *Service) Get(ctx context.Context, id, ownerID int64) (*models.Note, error) {
	return s.store.NoteByID(ctx, id, ownerID)
}

// Create persists a new note for ownerID with both timestamps set to now.
func (s *Service) Create(ctx context.Context, title, content string, ownerID int64) (*models.Note, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperr.ErrInvalidInput
	}
	now := time.Now().UTC()
	note := &models.Note{
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    ownerID,
	}
	if err := s.store.InsertNote(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Update replaces title and content on an owned note and refreshes its
// updated timestamp. apperr.ErrNotFound when the note is absent or owned
// by someone else.
func (s *Service) Update(ctx context.Context, id int64, title, content string, ownerID int64) (*models.Note, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperr.ErrInvalidInput
	}
	return s.store.UpdateNote(ctx, id, ownerID, title, content, time.Now().UTC())
}

// Delete removes an owned note. apperr.ErrNotFound when nothing was
// removed, which makes repeated deletes of the same id safe.
func (s *Service) Delete(ctx context.Context, id, ownerID int64) error {
	return s.store.DeleteNote(ctx, id, ownerID)
}
