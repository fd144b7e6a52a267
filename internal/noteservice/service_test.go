package noteservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/starford/mannaz/internal/apperr"
	"github.com/starford/mannaz/internal/models"
	"github.com/starford/mannaz/internal/store"
	"github.com/starford/mannaz/internal/testutil"
)

func testService(t *testing.T) (*Service, *store.DB) {
	t.Helper()
	db := testutil.TestDB(t)
	return NewService(db), db
}

func newOwner(t *testing.T, db *store.DB, email string) int64 {
	t.Helper()
	u := &models.User{
		Email:        email,
		PasswordHash: "$2a$10$fakehash",
		FirstName:    "Test",
		LastName:     "User",
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u.ID
}

func TestCreate_SetsBothTimestamps(t *testing.T) {
	svc, db := testService(t)
	owner := newOwner(t, db, "a@x.com")

	note, err := svc.Create(context.Background(), "T1", "C1", owner)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if note.ID == 0 {
		t.Error("expected assigned id")
	}
	if !note.CreatedAt.Equal(note.UpdatedAt) {
		t.Errorf("CreatedAt %v != UpdatedAt %v on create", note.CreatedAt, note.UpdatedAt)
	}
	if note.UserID != owner {
		t.Errorf("owner = %d, want %d", note.UserID, owner)
	}
}

func TestCreate_TitleRequired(t *testing.T) {
	svc, db := testService(t)
	owner := newOwner(t, db, "a@x.com")

	for _, title := range []string{"", "   ", "\t"} {
		if _, err := svc.Create(context.Background(), title, "body", owner); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("title %q: err = %v, want ErrInvalidInput", title, err)
		}
	}
}

func TestUpdate_RefreshesUpdatedAtOnly(t *testing.T) {
	svc, db := testService(t)
	owner := newOwner(t, db, "a@x.com")

	note, err := svc.Create(context.Background(), "T1", "C1", owner)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	updated, err := svc.Update(context.Background(), note.ID, "T2", "C2", owner)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "T2" || updated.Content != "C2" {
		t.Errorf("updated = %+v", updated)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Errorf("UpdatedAt %v not after CreatedAt %v", updated.UpdatedAt, updated.CreatedAt)
	}
	if !updated.CreatedAt.Equal(note.CreatedAt) {
		t.Errorf("CreatedAt changed on update")
	}
}

func TestUpdate_TitleRequired(t *testing.T) {
	svc, db := testService(t)
	owner := newOwner(t, db, "a@x.com")

	note, err := svc.Create(context.Background(), "T1", "C1", owner)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Update(context.Background(), note.ID, " ", "C2", owner); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestSearch_BlankTermListsAll(t *testing.T) {
	svc, db := testService(t)
	owner := newOwner(t, db, "a@x.com")

	if _, err := svc.Create(context.Background(), "alpha", "", owner); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(context.Background(), "beta", "", owner); err != nil {
		t.Fatal(err)
	}

	for _, term := range []string{"", "   "} {
		notes, err := svc.Search(context.Background(), term, owner)
		if err != nil {
			t.Fatalf("Search(%q): %v", term, err)
		}
		if len(notes) != 2 {
			t.Errorf("Search(%q) = %d notes, want 2", term, len(notes))
		}
	}
}

func TestSearch_MatchesTitleOrContent(t *testing.T) {
	svc, db := testService(t)
	owner := newOwner(t, db, "a@x.com")

	if _, err := svc.Create(context.Background(), "shopping list", "milk and eggs", owner); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(context.Background(), "work", "standup notes", owner); err != nil {
		t.Fatal(err)
	}

	byTitle, err := svc.Search(context.Background(), "shopping", owner)
	if err != nil {
		t.Fatal(err)
	}
	if len(byTitle) != 1 {
		t.Errorf("title match = %d notes, want 1", len(byTitle))
	}

	byContent, err := svc.Search(context.Background(), "eggs", owner)
	if err != nil {
		t.Fatal(err)
	}
	if len(byContent) != 1 {
		t.Errorf("content match = %d notes, want 1", len(byContent))
	}
}

func TestDelete_SecondCallNotFound(t *testing.T) {
	svc, db := testService(t)
	owner := newOwner(t, db, "a@x.com")

	note, err := svc.Create(context.Background(), "bye", "", owner)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(context.Background(), note.ID, owner); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := svc.Delete(context.Background(), note.ID, owner); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestOperations_InvisibleAcrossOwners(t *testing.T) {
	svc, db := testService(t)
	alice := newOwner(t, db, "alice@x.com")
	bob := newOwner(t, db, "bob@x.com")

	note, err := svc.Create(context.Background(), "private", "alice's note", alice)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Get(context.Background(), note.ID, bob); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get as bob err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Update(context.Background(), note.ID, "hijack", "", bob); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Update as bob err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(context.Background(), note.ID, bob); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Delete as bob err = %v, want ErrNotFound", err)
	}

	// Search as bob never returns alice's matching note.
	notes, err := svc.Search(context.Background(), "alice", bob)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("bob's search saw %d of alice's notes", len(notes))
	}
}
