package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// migration pairs a monotonically increasing version with the statements
// that bring the schema up to that version.
type migration struct {
	version    int
	statements []string
}

var migrations = []migration{
	{
		version: 1,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS recurrence_patterns (
				id TEXT PRIMARY KEY,
				driver_id TEXT NOT NULL,
				pattern_type TEXT NOT NULL CHECK (pattern_type IN ('daily', 'weekly', 'monthly')),
				weekdays INTEGER NOT NULL DEFAULT 0,
				day_of_month INTEGER NOT NULL DEFAULT 0 CHECK (day_of_month BETWEEN 0 AND 28),
				start_date TEXT NOT NULL,
				end_date TEXT,
				max_occurrences INTEGER CHECK (max_occurrences IS NULL OR max_occurrences >= 1),
				occurrences_created INTEGER NOT NULL DEFAULT 0,
				is_active INTEGER NOT NULL DEFAULT 1,
				departure_hour INTEGER NOT NULL CHECK (departure_hour BETWEEN 0 AND 23),
				departure_minute INTEGER NOT NULL CHECK (departure_minute BETWEEN 0 AND 59),
				origin TEXT NOT NULL,
				destination TEXT NOT NULL,
				seats INTEGER NOT NULL CHECK (seats >= 1),
				notes TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_recurrence_patterns_active
				ON recurrence_patterns (is_active, created_at)`,
			`CREATE TABLE IF NOT EXISTS ride_occurrences (
				id TEXT PRIMARY KEY,
				pattern_id TEXT REFERENCES recurrence_patterns (id) ON DELETE SET NULL,
				driver_id TEXT NOT NULL,
				origin TEXT NOT NULL,
				destination TEXT NOT NULL,
				seats INTEGER NOT NULL CHECK (seats >= 1),
				notes TEXT,
				occurrence_date TEXT NOT NULL,
				departure_at TEXT NOT NULL,
				created_at TEXT NOT NULL
			)`,
			// One occurrence per pattern per calendar date. This index is the
			// storage side of the extend-horizon idempotence contract.
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_ride_occurrences_pattern_date
				ON ride_occurrences (pattern_id, occurrence_date)
				WHERE pattern_id IS NOT NULL`,
			`CREATE INDEX IF NOT EXISTS idx_ride_occurrences_departure
				ON ride_occurrences (departure_at)`,
		},
	},
}

// Migrate applies pending schema migrations in version order. Each migration
// runs inside its own transaction and is recorded in schema_migrations.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	if _, err := cp.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	var current int
	if err := cp.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		err := cp.WithTransaction(ctx, func(tx *sql.Tx) error {
			for _, stmt := range m.statements {
				if _, err := tx.Exec(stmt); err != nil {
					return fmt.Errorf("migration %d failed: %w", m.version, err)
				}
			}
			_, err := tx.Exec(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
				m.version, time.Now().UTC().Format(time.RFC3339))
			return err
		})
		if err != nil {
			return err
		}
	}

	return nil
}
