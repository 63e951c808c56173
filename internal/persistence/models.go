package persistence

import "time"

// RecurrencePattern represents a stored recurrence configuration together
// with the ride template snapshot taken when the driver posted it.
type RecurrencePattern struct {
	ID          string
	DriverID    string
	PatternType string
	Weekdays    []time.Weekday
	DayOfMonth  int
	StartDate   time.Time
	EndDate     *time.Time
	// MaxOccurrences is set only for count limited patterns.
	MaxOccurrences     *int
	OccurrencesCreated int
	IsActive           bool
	DepartureHour      int
	DepartureMinute    int

	// Template fields copied onto every generated occurrence.
	Origin      string
	Destination string
	Seats       int
	Notes       *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RideOccurrence represents one materialized ride instance. Template fields
// are copies taken at generation time; later pattern edits never alter rows
// that already exist.
type RideOccurrence struct {
	ID string
	// PatternID is nil for non-recurring rides, including the single ride
	// created by the store unavailable fallback.
	PatternID   *string
	DriverID    string
	Origin      string
	Destination string
	Seats       int
	Notes       *string
	// OccurrenceDate is the calendar date the occurrence was generated for,
	// midnight UTC. It backs the dedup contract for horizon extension.
	OccurrenceDate time.Time
	// DepartureAt is OccurrenceDate combined with the pattern's departure
	// time of day.
	DepartureAt time.Time
	CreatedAt   time.Time
}
