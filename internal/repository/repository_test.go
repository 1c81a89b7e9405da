package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/taskdeck/taskdeck-go/internal/model"
)

// openTestDB opens an in-memory sqlite database with the schema
// applied. The pool is capped at one connection, so the database
// lives for the whole test.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewDB("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("NewDB() unexpected error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := Migrate(context.Background(), db, "sqlite3"); err != nil {
		t.Fatalf("Migrate() unexpected error: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *sql.DB, email string) int64 {
	t.Helper()

	user := &model.User{Email: email, PasswordHash: "x"}
	if err := NewUserRepository(db).Create(context.Background(), user); err != nil {
		t.Fatalf("seeding user %q: %v", email, err)
	}
	return user.ID
}

func seedTask(t *testing.T, repo *TaskRepository, ownerID int64, title string, priority int) *model.Task {
	t.Helper()

	task, err := repo.Create(context.Background(), ownerID, title, priority, nil)
	if err != nil {
		t.Fatalf("seeding task %q: %v", title, err)
	}
	return task
}

// insertTaskAt inserts a row with explicit timestamps, for tests that
// need deterministic created_at ties.
func insertTaskAt(t *testing.T, db *sql.DB, ownerID int64, title string, status model.Status, priority int, createdAt time.Time) int64 {
	t.Helper()

	result, err := db.Exec(
		`INSERT INTO tasks (title, status, priority, deadline, created_at, updated_at, owner_id)
			VALUES (?, ?, ?, NULL, ?, ?, ?)`,
		title, string(status), priority, createdAt, createdAt, ownerID,
	)
	if err != nil {
		t.Fatalf("inserting task %q: %v", title, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("LastInsertId() unexpected error: %v", err)
	}
	return id
}

func intPtr(v int) *int { return &v }
