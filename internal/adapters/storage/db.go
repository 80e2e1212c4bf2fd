package storage

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is bumped whenever InitDB's schema changes.
const SchemaVersion = 1

// DSN builds the modernc.org/sqlite connection string with the pragmas the stores rely on.
// PRE: path is a file path or ":memory:"
// POST: returns a DSN enabling WAL, foreign keys and a busy timeout
func DSN(path string) string {
	if path == ":memory:" {
		return path
	}
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
}

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables and indexes exist; safe to call repeatedly
func InitDB(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS event (
		id TEXT PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		start_ms INTEGER NOT NULL,
		end_ms INTEGER NOT NULL,
		location_type TEXT NOT NULL,
		venue TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		capacity INTEGER NOT NULL DEFAULT 0,
		ticket_type TEXT NOT NULL DEFAULT 'free',
		organizer_id TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_event_start ON event(start_ms);

	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&n); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if n == 0 {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", SchemaVersion); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
	}
	return nil
}

// CurrentSchemaVersion returns the version recorded in the database.
// PRE: InitDB has run
// POST: returns the stored version
func CurrentSchemaVersion(db *sql.DB) (int, error) {
	var v int
	err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	return v, err
}
