package recurrence

import "time"

// PatternType identifies the cadence of a recurrence pattern.
type PatternType string

const (
	// PatternDaily generates an occurrence for every day in the active window.
	PatternDaily PatternType = "daily"
	// PatternWeekly generates occurrences on the selected weekdays.
	PatternWeekly PatternType = "weekly"
	// PatternMonthly generates one occurrence per month on a fixed day.
	PatternMonthly PatternType = "monthly"
)

// EndConditionKind distinguishes the three ways a pattern terminates.
type EndConditionKind int

const (
	// EndConditionNever keeps the pattern open ended.
	EndConditionNever EndConditionKind = iota
	// EndConditionOnDate terminates the pattern after a fixed calendar date.
	EndConditionOnDate
	// EndConditionAfterCount terminates the pattern once a fixed number of
	// occurrences has been materialized.
	EndConditionAfterCount
)

// EndCondition is a tagged value; exactly one variant is active, selected by
// Kind. EndDate is meaningful only for EndConditionOnDate, MaxOccurrences
// only for EndConditionAfterCount.
type EndCondition struct {
	Kind           EndConditionKind
	EndDate        time.Time
	MaxOccurrences int
}

// NeverEnds returns the open ended termination rule.
func NeverEnds() EndCondition {
	return EndCondition{Kind: EndConditionNever}
}

// EndsOn returns a termination rule bound to the given calendar date
// (inclusive). The time component of d is discarded.
func EndsOn(d time.Time) EndCondition {
	return EndCondition{Kind: EndConditionOnDate, EndDate: DateOnly(d)}
}

// EndsAfter returns a termination rule bound to a total occurrence count.
func EndsAfter(max int) EndCondition {
	return EndCondition{Kind: EndConditionAfterCount, MaxOccurrences: max}
}

// TimeOfDay is a wall clock departure time applied to every generated
// occurrence date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// On combines the time of day with a calendar date in the date's location.
func (t TimeOfDay) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, 0, 0, date.Location())
}

// Pattern describes a driver configured recurrence rule. Pattern values are
// immutable inputs to the calculator; the materializer owns mutation of the
// counter and active flag between calls.
type Pattern struct {
	ID   string
	Type PatternType

	// Weekdays selects the eligible days for weekly patterns. Unused for
	// daily and monthly patterns.
	Weekdays []time.Weekday

	// DayOfMonth selects the eligible day for monthly patterns, 1 through 28.
	// Values above the length of a candidate month skip that month entirely.
	DayOfMonth int

	// StartDate is the first calendar date the pattern can produce. Midnight,
	// no time component.
	StartDate time.Time

	End EndCondition

	// OccurrencesCreated counts instances already materialized for this
	// pattern. It bounds further generation for count limited patterns.
	OccurrencesCreated int

	// Active is false once the pattern reached its end condition or was
	// cancelled. Inactive patterns never produce occurrences again.
	Active bool

	Departure TimeOfDay
}

// DateOnly truncates t to midnight UTC, the canonical representation for
// occurrence dates throughout the calculator.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RemainingOccurrences returns how many more occurrences a count limited
// pattern may produce, or -1 when the pattern carries no count bound.
func (p Pattern) RemainingOccurrences() int {
	if p.End.Kind != EndConditionAfterCount {
		return -1
	}
	remaining := p.End.MaxOccurrences - p.OccurrencesCreated
	if remaining < 0 {
		return 0
	}
	return remaining
}
