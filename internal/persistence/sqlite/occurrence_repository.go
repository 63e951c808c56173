package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/rideshare-scheduler/internal/persistence"
)

// OccurrenceRepository implements persistence.OccurrenceRepository using SQLite.
type OccurrenceRepository struct {
	pool *ConnectionPool
}

// NewOccurrenceRepository creates a SQLite backed occurrence repository.
func NewOccurrenceRepository(pool *ConnectionPool) *OccurrenceRepository {
	return &OccurrenceRepository{pool: pool}
}

const occurrenceColumns = `id, pattern_id, driver_id, origin, destination, seats, notes,
	occurrence_date, departure_at, created_at`

// CreateOccurrence inserts one materialized ride instance. Inserting a
// second occurrence for the same pattern and date returns
// persistence.ErrDuplicate via the unique index.
func (r *OccurrenceRepository) CreateOccurrence(ctx context.Context, occurrence persistence.RideOccurrence) error {
	if occurrence.ID == "" || occurrence.DriverID == "" {
		return persistence.ErrConstraintViolation
	}

	occurrence.CreatedAt = time.Now().UTC()

	var patternID sql.NullString
	if occurrence.PatternID != nil {
		patternID.String = *occurrence.PatternID
		patternID.Valid = true
	}

	var notes sql.NullString
	if occurrence.Notes != nil {
		notes.String = *occurrence.Notes
		notes.Valid = true
	}

	query := fmt.Sprintf(`INSERT INTO ride_occurrences (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, occurrenceColumns)

	_, err := r.pool.db.ExecContext(ctx, query,
		occurrence.ID,
		patternID,
		occurrence.DriverID,
		occurrence.Origin,
		occurrence.Destination,
		occurrence.Seats,
		notes,
		occurrence.OccurrenceDate.UTC().Format(time.DateOnly),
		occurrence.DepartureAt.UTC().Format(time.RFC3339),
		occurrence.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return mapError(err)
	}

	return nil
}

// ListMaterializedDates returns the distinct occurrence dates persisted for
// a pattern, ascending.
func (r *OccurrenceRepository) ListMaterializedDates(ctx context.Context, patternID string) ([]time.Time, error) {
	if patternID == "" {
		return nil, nil
	}

	rows, err := r.pool.db.QueryContext(ctx,
		`SELECT DISTINCT occurrence_date FROM ride_occurrences WHERE pattern_id = ? ORDER BY occurrence_date ASC`,
		patternID,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, mapError(err)
		}
		date, err := parseDate(value)
		if err != nil {
			return nil, fmt.Errorf("failed to parse occurrence_date: %w", err)
		}
		dates = append(dates, date)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return dates, nil
}

// ListOccurrencesForPattern returns the materialized instances of a pattern
// ordered by departure.
func (r *OccurrenceRepository) ListOccurrencesForPattern(ctx context.Context, patternID string) ([]persistence.RideOccurrence, error) {
	if patternID == "" {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM ride_occurrences WHERE pattern_id = ? ORDER BY departure_at ASC, id ASC`, occurrenceColumns)

	rows, err := r.pool.db.QueryContext(ctx, query, patternID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var occurrences []persistence.RideOccurrence
	for rows.Next() {
		occurrence, err := scanOccurrence(rows)
		if err != nil {
			return nil, mapError(err)
		}
		occurrences = append(occurrences, occurrence)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return occurrences, nil
}

func scanOccurrence(row rowScanner) (persistence.RideOccurrence, error) {
	var occurrence persistence.RideOccurrence
	var patternID, notes sql.NullString
	var occurrenceDate, departureAt, createdAt string

	err := row.Scan(
		&occurrence.ID,
		&patternID,
		&occurrence.DriverID,
		&occurrence.Origin,
		&occurrence.Destination,
		&occurrence.Seats,
		&notes,
		&occurrenceDate,
		&departureAt,
		&createdAt,
	)
	if err != nil {
		return persistence.RideOccurrence{}, err
	}

	if patternID.Valid {
		v := patternID.String
		occurrence.PatternID = &v
	}
	if notes.Valid {
		v := notes.String
		occurrence.Notes = &v
	}
	if occurrence.OccurrenceDate, err = parseDate(occurrenceDate); err != nil {
		return persistence.RideOccurrence{}, fmt.Errorf("failed to parse occurrence_date: %w", err)
	}
	if occurrence.DepartureAt, err = time.Parse(time.RFC3339, departureAt); err != nil {
		return persistence.RideOccurrence{}, fmt.Errorf("failed to parse departure_at: %w", err)
	}
	if occurrence.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.RideOccurrence{}, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return occurrence, nil
}
