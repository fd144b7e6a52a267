package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/starford/mannaz/internal/models"
)

// testDB creates a temporary database for store tests. Kept local because
// testutil depends on this package.
func testDB(t *testing.T) *DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "mannaz-store-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustCreateUser(t *testing.T, db *DB, email string) *models.User {
	t.Helper()
	u := &models.User{
		Email:        email,
		PasswordHash: "$2a$10$fakehashfakehashfakehash",
		FirstName:    "Test",
		LastName:     "User",
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	return u
}

func mustInsertNote(t *testing.T, db *DB, ownerID int64, title, content string) *models.Note {
	t.Helper()
	now := time.Now().UTC()
	n := &models.Note{
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    ownerID,
	}
	if err := db.InsertNote(context.Background(), n); err != nil {
		t.Fatalf("InsertNote(%s): %v", title, err)
	}
	return n
}
