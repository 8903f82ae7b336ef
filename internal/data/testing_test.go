//go:build integration

package data

import (
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
)

// setupTestDB creates a fresh in-memory SQLite database with all migrations applied.
// It returns the connection and a teardown function to be deferred.
func setupTestDB(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()

	// A named shared-cache database keeps every pooled connection on the same schema
	// while staying isolated from other tests.
	dsn := fmt.Sprintf("file:data-test-%d?mode=memory&cache=shared&_foreign_keys=on", time.Now().UnixNano())
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		t.Fatalf("Failed to connect to sqlite test database: %v", err)
	}

	if err := ApplyMigrations(db); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}

	teardown := func() {
		db.Close()
	}
	return db, teardown
}
