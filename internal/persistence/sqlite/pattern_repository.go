package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/rideshare-scheduler/internal/persistence"
)

// PatternRepository implements persistence.PatternRepository using SQLite.
type PatternRepository struct {
	pool *ConnectionPool
}

// NewPatternRepository creates a SQLite backed pattern repository.
func NewPatternRepository(pool *ConnectionPool) *PatternRepository {
	return &PatternRepository{pool: pool}
}

const patternColumns = `id, driver_id, pattern_type, weekdays, day_of_month, start_date, end_date,
	max_occurrences, occurrences_created, is_active, departure_hour, departure_minute,
	origin, destination, seats, notes, created_at, updated_at`

// CreatePattern inserts a new recurrence pattern record.
func (r *PatternRepository) CreatePattern(ctx context.Context, pattern persistence.RecurrencePattern) error {
	if pattern.ID == "" || pattern.DriverID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	pattern.CreatedAt = now
	pattern.UpdatedAt = now

	query := fmt.Sprintf(`INSERT INTO recurrence_patterns (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, patternColumns)

	var endDate sql.NullString
	if pattern.EndDate != nil {
		endDate.String = pattern.EndDate.UTC().Format(time.DateOnly)
		endDate.Valid = true
	}

	var maxOccurrences sql.NullInt64
	if pattern.MaxOccurrences != nil {
		maxOccurrences.Int64 = int64(*pattern.MaxOccurrences)
		maxOccurrences.Valid = true
	}

	var notes sql.NullString
	if pattern.Notes != nil {
		notes.String = *pattern.Notes
		notes.Valid = true
	}

	_, err := r.pool.db.ExecContext(ctx, query,
		pattern.ID,
		pattern.DriverID,
		pattern.PatternType,
		encodeWeekdays(pattern.Weekdays),
		pattern.DayOfMonth,
		pattern.StartDate.UTC().Format(time.DateOnly),
		endDate,
		maxOccurrences,
		pattern.OccurrencesCreated,
		boolToInt(pattern.IsActive),
		pattern.DepartureHour,
		pattern.DepartureMinute,
		pattern.Origin,
		pattern.Destination,
		pattern.Seats,
		notes,
		pattern.CreatedAt.Format(time.RFC3339),
		pattern.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return mapError(err)
	}

	return nil
}

// GetPattern retrieves a pattern by ID.
func (r *PatternRepository) GetPattern(ctx context.Context, id string) (persistence.RecurrencePattern, error) {
	if id == "" {
		return persistence.RecurrencePattern{}, persistence.ErrNotFound
	}

	query := fmt.Sprintf(`SELECT %s FROM recurrence_patterns WHERE id = ?`, patternColumns)
	pattern, err := scanPattern(r.pool.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return persistence.RecurrencePattern{}, mapError(err)
	}
	return pattern, nil
}

// ListActivePatterns returns active patterns ordered by creation time.
func (r *PatternRepository) ListActivePatterns(ctx context.Context) ([]persistence.RecurrencePattern, error) {
	query := fmt.Sprintf(`SELECT %s FROM recurrence_patterns WHERE is_active = 1 ORDER BY created_at ASC, id ASC`, patternColumns)

	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var patterns []persistence.RecurrencePattern
	for rows.Next() {
		pattern, err := scanPattern(rows)
		if err != nil {
			return nil, mapError(err)
		}
		patterns = append(patterns, pattern)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return patterns, nil
}

// UpdatePatternProgress advances the materialization counter and active flag.
// The counter never regresses and a deactivated pattern never reactivates.
func (r *PatternRepository) UpdatePatternProgress(ctx context.Context, id string, occurrencesCreated int, isActive bool) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var currentCount int
		var currentActive int
		err := tx.QueryRow(`SELECT occurrences_created, is_active FROM recurrence_patterns WHERE id = ?`, id).
			Scan(&currentCount, &currentActive)
		if err != nil {
			if err == sql.ErrNoRows {
				return persistence.ErrNotFound
			}
			return mapError(err)
		}

		if occurrencesCreated < currentCount {
			return persistence.ErrConstraintViolation
		}
		if currentActive == 0 && isActive {
			return persistence.ErrConstraintViolation
		}

		_, err = tx.Exec(`UPDATE recurrence_patterns SET occurrences_created = ?, is_active = ?, updated_at = ? WHERE id = ?`,
			occurrencesCreated,
			boolToInt(isActive),
			time.Now().UTC().Format(time.RFC3339),
			id,
		)
		if err != nil {
			return mapError(err)
		}
		return nil
	})
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPattern(row rowScanner) (persistence.RecurrencePattern, error) {
	var pattern persistence.RecurrencePattern
	var weekdayMask int64
	var startDate, createdAt, updatedAt string
	var endDate, notes sql.NullString
	var maxOccurrences sql.NullInt64
	var isActive int

	err := row.Scan(
		&pattern.ID,
		&pattern.DriverID,
		&pattern.PatternType,
		&weekdayMask,
		&pattern.DayOfMonth,
		&startDate,
		&endDate,
		&maxOccurrences,
		&pattern.OccurrencesCreated,
		&isActive,
		&pattern.DepartureHour,
		&pattern.DepartureMinute,
		&pattern.Origin,
		&pattern.Destination,
		&pattern.Seats,
		&notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.RecurrencePattern{}, err
	}

	pattern.Weekdays = decodeWeekdays(weekdayMask)
	pattern.IsActive = isActive != 0

	if pattern.StartDate, err = parseDate(startDate); err != nil {
		return persistence.RecurrencePattern{}, fmt.Errorf("failed to parse start_date: %w", err)
	}
	if endDate.Valid {
		parsed, err := parseDate(endDate.String)
		if err != nil {
			return persistence.RecurrencePattern{}, fmt.Errorf("failed to parse end_date: %w", err)
		}
		pattern.EndDate = &parsed
	}
	if maxOccurrences.Valid {
		v := int(maxOccurrences.Int64)
		pattern.MaxOccurrences = &v
	}
	if notes.Valid {
		v := notes.String
		pattern.Notes = &v
	}
	if pattern.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.RecurrencePattern{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if pattern.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.RecurrencePattern{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return pattern, nil
}

func parseDate(value string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, value, time.UTC)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// encodeWeekdays encodes weekdays as a bitmask for storage.
func encodeWeekdays(weekdays []time.Weekday) int64 {
	var mask int64
	for _, day := range weekdays {
		if day >= time.Sunday && day <= time.Saturday {
			mask |= 1 << uint(day)
		}
	}
	return mask
}

// decodeWeekdays decodes weekdays from a bitmask.
func decodeWeekdays(mask int64) []time.Weekday {
	var weekdays []time.Weekday
	for day := time.Sunday; day <= time.Saturday; day++ {
		if mask&(1<<uint(day)) != 0 {
			weekdays = append(weekdays, day)
		}
	}
	return weekdays
}
