package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool, creating the parent directory
// of the database file when needed.
func New(dataSourceName string) (*sql.DB, error) {
	if dir := filepath.Dir(dataSourceName); dir != "." && dataSourceName != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dataSourceName+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS session_values (
		session_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		expires_at INTEGER, -- unix seconds; NULL rows live as long as the session does
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (session_id, key)
	);

	CREATE INDEX IF NOT EXISTS idx_session_values_expires ON session_values(expires_at);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
