package repository

import (
	"context"
	"database/sql"
	"fmt"
)

var sqliteTables = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		title      TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'todo',
		priority   INTEGER NOT NULL DEFAULT 1,
		deadline   DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		owner_id   INTEGER REFERENCES users(id)
	)`,
}

// sqliteIndexes runs after ensureOwnerColumn: the owner_id index would
// fail on a legacy table that has not been backfilled yet.
var sqliteIndexes = []string{
	`CREATE INDEX IF NOT EXISTS ix_tasks_status ON tasks(status)`,
	`CREATE INDEX IF NOT EXISTS ix_tasks_priority ON tasks(priority)`,
	`CREATE INDEX IF NOT EXISTS ix_tasks_deadline ON tasks(deadline)`,
	`CREATE INDEX IF NOT EXISTS ix_tasks_owner_id ON tasks(owner_id)`,
}

var mysqlDDL = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT AUTO_INCREMENT PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at    DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id         BIGINT AUTO_INCREMENT PRIMARY KEY,
		title      VARCHAR(120) NOT NULL,
		status     VARCHAR(20) NOT NULL DEFAULT 'todo',
		priority   INT NOT NULL DEFAULT 1,
		deadline   DATETIME NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		owner_id   BIGINT NULL,
		INDEX ix_tasks_status (status),
		INDEX ix_tasks_priority (priority),
		INDEX ix_tasks_deadline (deadline),
		INDEX ix_tasks_owner_id (owner_id),
		CONSTRAINT fk_tasks_owner FOREIGN KEY (owner_id) REFERENCES users(id)
	)`,
}

// Migrate creates the schema if it does not exist. Statements are
// idempotent, so calling this on every startup is safe. On sqlite the
// owner_id backfill for legacy databases runs between table creation
// and index creation.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	switch driver {
	case "sqlite3":
		if err := execAll(ctx, db, sqliteTables); err != nil {
			return err
		}
		if err := ensureOwnerColumn(ctx, db); err != nil {
			return fmt.Errorf("backfilling owner_id: %w", err)
		}
		return execAll(ctx, db, sqliteIndexes)
	case "mysql":
		return execAll(ctx, db, mysqlDDL)
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}
}

func execAll(ctx context.Context, db *sql.DB, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("running migration: %w", err)
		}
	}
	return nil
}

// ensureOwnerColumn backfills tasks.owner_id on sqlite databases
// created before ownership existed. Legacy rows keep a NULL owner.
func ensureOwnerColumn(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, `PRAGMA table_info(tasks)`)
	if err != nil {
		return err
	}
	defer rows.Close()

	hasOwner := false
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notnull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &defaultVal, &pk); err != nil {
			return err
		}
		if name == "owner_id" {
			hasOwner = true
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if hasOwner {
		return nil
	}

	_, err = db.ExecContext(ctx, `ALTER TABLE tasks ADD COLUMN owner_id INTEGER REFERENCES users(id)`)
	return err
}
