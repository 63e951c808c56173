package application

import "time"

// EndType selects which termination rule a pattern input carries.
type EndType string

const (
	// EndTypeNever keeps the pattern open ended.
	EndTypeNever EndType = "never"
	// EndTypeOnDate terminates the pattern after EndDate.
	EndTypeOnDate EndType = "on_date"
	// EndTypeAfterCount terminates the pattern after MaxOccurrences rides.
	EndTypeAfterCount EndType = "after_count"
)

// PatternInput captures the recurrence configuration a driver submits when
// posting a recurring ride.
type PatternInput struct {
	PatternType string
	// Weekdays uses 0=Sunday through 6=Saturday, required for weekly patterns.
	Weekdays   []int
	DayOfMonth int
	StartDate  time.Time
	EndType    EndType
	// EndDate is required when EndType is on_date.
	EndDate *time.Time
	// MaxOccurrences is required when EndType is after_count, 1 through 100.
	MaxOccurrences  *int
	DepartureHour   int
	DepartureMinute int
}

// RideTemplate carries the ride fields copied onto every generated
// occurrence. Copies, not references: editing a pattern later never rewrites
// rides that already exist.
type RideTemplate struct {
	DriverID    string
	Origin      string
	Destination string
	Seats       int
	Notes       *string
}

// CreateScheduleParams wraps the data required to create a recurring schedule.
type CreateScheduleParams struct {
	Input    PatternInput
	Template RideTemplate
	// HorizonDays bounds eager materialization; DefaultHorizonDays applies
	// when zero.
	HorizonDays int
}

// CreateScheduleResult reports the outcome of schedule creation.
type CreateScheduleResult struct {
	// PatternID is nil when the recurrence store was unavailable and the
	// call degraded to a single non-recurring ride.
	PatternID    *string
	CreatedCount int
	// Fallback is true when the degraded single ride path ran.
	Fallback bool
}

// ExtendResult reports how many occurrences a horizon extension created.
// Zero on a repeated call with an unchanged horizon, and zero for exhausted
// patterns, which is a normal terminal state rather than an error.
type ExtendResult struct {
	CreatedCount int
}
