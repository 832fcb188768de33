package database_test

import (
	"path/filepath"
	"testing"

	"github.com/isdelr/teamup-web/internal/database"
)

func TestNewAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "teamup.db")

	db, err := database.New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	// Running twice must be harmless.
	if err := database.Migrate(db); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	if _, err := db.Exec(`INSERT INTO session_values (session_id, key, value) VALUES ('s1', 'token', 'abc')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	var value string
	if err := db.QueryRow(`SELECT value FROM session_values WHERE session_id = 's1' AND key = 'token'`).Scan(&value); err != nil {
		t.Fatalf("select: %v", err)
	}
	if value != "abc" {
		t.Errorf("value: got %q, want %q", value, "abc")
	}
}
