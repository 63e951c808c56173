package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/rideshare-scheduler/internal/persistence"
)

var (
	patternCounter    uint64
	occurrenceCounter uint64
)

// referenceTime is a Wednesday, which keeps weekday oriented fixtures easy
// to reason about.
var referenceTime = time.Date(2025, time.January, 1, 8, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// PatternOption configures the generated pattern fixture.
type PatternOption func(*persistence.RecurrencePattern)

// NewPatternFixture returns a deterministic weekly pattern record with
// optional overrides.
func NewPatternFixture(opts ...PatternOption) persistence.RecurrencePattern {
	idx := atomic.AddUint64(&patternCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := persistence.RecurrencePattern{
		ID:              fmt.Sprintf("pattern-%03d", idx),
		DriverID:        fmt.Sprintf("driver-%03d", idx),
		PatternType:     "weekly",
		Weekdays:        []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		StartDate:       time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		IsActive:        true,
		DepartureHour:   8,
		DepartureMinute: 30,
		Origin:          "Campus North",
		Destination:     "Central Station",
		Seats:           3,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithDayOfMonth configures a monthly pattern day.
func WithDayOfMonth(day int) PatternOption {
	return func(f *persistence.RecurrencePattern) {
		f.PatternType = "monthly"
		f.Weekdays = nil
		f.DayOfMonth = day
	}
}

// WithEndDate bounds the pattern by a calendar date.
func WithEndDate(endDate time.Time) PatternOption {
	return func(f *persistence.RecurrencePattern) {
		f.EndDate = &endDate
	}
}

// WithMaxOccurrences bounds the pattern by an occurrence count.
func WithMaxOccurrences(max int) PatternOption {
	return func(f *persistence.RecurrencePattern) {
		f.MaxOccurrences = &max
	}
}

// WithInactive marks the fixture as terminally inactive.
func WithInactive() PatternOption {
	return func(f *persistence.RecurrencePattern) {
		f.IsActive = false
	}
}

// OccurrenceOption configures the generated occurrence fixture.
type OccurrenceOption func(*persistence.RideOccurrence)

// NewOccurrenceFixture returns a deterministic ride occurrence, by default
// owned by the given pattern on the fixture reference date.
func NewOccurrenceFixture(pattern persistence.RecurrencePattern, opts ...OccurrenceOption) persistence.RideOccurrence {
	idx := atomic.AddUint64(&occurrenceCounter, 1)
	date := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(idx-1))
	patternID := pattern.ID
	fixture := persistence.RideOccurrence{
		ID:             fmt.Sprintf("occurrence-%03d", idx),
		PatternID:      &patternID,
		DriverID:       pattern.DriverID,
		Origin:         pattern.Origin,
		Destination:    pattern.Destination,
		Seats:          pattern.Seats,
		OccurrenceDate: date,
		DepartureAt:    time.Date(date.Year(), date.Month(), date.Day(), pattern.DepartureHour, pattern.DepartureMinute, 0, 0, time.UTC),
		CreatedAt:      referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithOccurrenceDate overrides the generated occurrence date and aligns the
// departure timestamp with it.
func WithOccurrenceDate(date time.Time) OccurrenceOption {
	return func(f *persistence.RideOccurrence) {
		f.OccurrenceDate = date
		f.DepartureAt = time.Date(date.Year(), date.Month(), date.Day(), f.DepartureAt.Hour(), f.DepartureAt.Minute(), 0, 0, time.UTC)
	}
}

// WithoutPattern detaches the occurrence from any pattern, mirroring the
// store unavailable fallback.
func WithoutPattern() OccurrenceOption {
	return func(f *persistence.RideOccurrence) {
		f.PatternID = nil
	}
}
