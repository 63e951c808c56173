package persistence

import (
	"context"
	"time"
)

// PatternRepository stores recurrence pattern records.
type PatternRepository interface {
	CreatePattern(ctx context.Context, pattern RecurrencePattern) error
	GetPattern(ctx context.Context, id string) (RecurrencePattern, error)
	// ListActivePatterns returns every pattern still eligible for horizon
	// extension, ordered by creation time.
	ListActivePatterns(ctx context.Context) ([]RecurrencePattern, error)
	// UpdatePatternProgress advances the materialization counter and the
	// active flag. The counter is monotonically non decreasing and the
	// inactive state is terminal; implementations must reject regressions.
	UpdatePatternProgress(ctx context.Context, id string, occurrencesCreated int, isActive bool) error
}

// OccurrenceRepository stores materialized ride instances.
type OccurrenceRepository interface {
	CreateOccurrence(ctx context.Context, occurrence RideOccurrence) error
	// ListMaterializedDates returns the distinct occurrence dates already
	// persisted for a pattern, used for dedup during horizon extension.
	ListMaterializedDates(ctx context.Context, patternID string) ([]time.Time, error)
	ListOccurrencesForPattern(ctx context.Context, patternID string) ([]RideOccurrence, error)
}
