package testfixtures

import (
	"context"
	"testing"

	"github.com/example/rideshare-scheduler/internal/persistence/sqlite"
)

// OpenSQLite returns a migrated in-memory SQLite pool that is closed when
// the test finishes.
func OpenSQLite(t *testing.T) *sqlite.ConnectionPool {
	t.Helper()

	pool, err := sqlite.Open("file::memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	t.Cleanup(func() {
		if err := pool.Close(); err != nil {
			t.Errorf("failed to close sqlite pool: %v", err)
		}
	})

	if err := pool.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate sqlite schema: %v", err)
	}

	return pool
}

// OpenUnmigratedSQLite returns an in-memory pool without the recurrence
// schema, for exercising the store unavailable path.
func OpenUnmigratedSQLite(t *testing.T) *sqlite.ConnectionPool {
	t.Helper()

	pool, err := sqlite.Open("file::memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	t.Cleanup(func() {
		if err := pool.Close(); err != nil {
			t.Errorf("failed to close sqlite pool: %v", err)
		}
	})

	return pool
}
