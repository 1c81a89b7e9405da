package repository

import (
	"context"
	"testing"
)

func TestMigrateIdempotent(t *testing.T) {
	db := openTestDB(t)

	// Second run must be a no-op, not an error.
	if err := Migrate(context.Background(), db, "sqlite3"); err != nil {
		t.Fatalf("Migrate() second run unexpected error: %v", err)
	}
}

func TestMigrateBackfillsOwnerColumn(t *testing.T) {
	db, err := NewDB("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("NewDB() unexpected error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()

	// A legacy database: tasks table predating ownership.
	_, err = db.ExecContext(ctx, `CREATE TABLE tasks (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		title      TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'todo',
		priority   INTEGER NOT NULL DEFAULT 1,
		deadline   DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`)
	if err != nil {
		t.Fatalf("creating legacy table: %v", err)
	}
	_, err = db.ExecContext(ctx, `INSERT INTO tasks (title, created_at, updated_at)
		VALUES ('legacy row', '2020-01-01 00:00:00', '2020-01-01 00:00:00')`)
	if err != nil {
		t.Fatalf("inserting legacy row: %v", err)
	}

	if err := Migrate(ctx, db, "sqlite3"); err != nil {
		t.Fatalf("Migrate() unexpected error: %v", err)
	}

	// The legacy row survives with a NULL owner.
	var owners int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE owner_id IS NULL`).Scan(&owners)
	if err != nil {
		t.Fatalf("querying backfilled column: %v", err)
	}
	if owners != 1 {
		t.Errorf("rows with NULL owner_id = %d, want 1", owners)
	}
}

func TestMigrateUnknownDriver(t *testing.T) {
	db := openTestDB(t)

	if err := Migrate(context.Background(), db, "postgres"); err == nil {
		t.Error("Migrate() expected error for unsupported driver")
	}
}
