package recurrence

import "time"

// maxLookaheadDays bounds the scan performed by NextOccurrence so that a
// malformed pattern (for example a weekly pattern with an empty weekday set)
// terminates instead of iterating forever. Two years, leap day included.
const maxLookaheadDays = 731

// OccursOn reports whether the pattern produces an occurrence on the given
// calendar date. The time component of date is ignored.
//
// The result is always false for inactive patterns, for dates before the
// pattern's start date, and for dates after a date bound end condition.
func OccursOn(p Pattern, date time.Time) bool {
	day := DateOnly(date)

	if !p.Active {
		return false
	}
	if day.Before(DateOnly(p.StartDate)) {
		return false
	}
	if p.End.Kind == EndConditionOnDate && day.After(DateOnly(p.End.EndDate)) {
		return false
	}

	switch p.Type {
	case PatternDaily:
		return true
	case PatternWeekly:
		for _, weekday := range p.Weekdays {
			if day.Weekday() == weekday {
				return true
			}
		}
		return false
	case PatternMonthly:
		return day.Day() == p.DayOfMonth
	default:
		return false
	}
}

// NextOccurrence returns the earliest date on or after from that satisfies
// OccursOn. The boolean result is false when no such date exists: the
// pattern is inactive, past its end date, or nothing matched within the
// bounded lookahead. An ended pattern is a normal terminal state, not an
// error, so no error value is involved.
func NextOccurrence(p Pattern, from time.Time) (time.Time, bool) {
	if !p.Active {
		return time.Time{}, false
	}

	candidate := DateOnly(from)
	start := DateOnly(p.StartDate)
	if candidate.Before(start) {
		candidate = start
	}

	for i := 0; i < maxLookaheadDays; i++ {
		if p.End.Kind == EndConditionOnDate && candidate.After(DateOnly(p.End.EndDate)) {
			return time.Time{}, false
		}
		if OccursOn(p, candidate) {
			return candidate, true
		}
		candidate = candidate.AddDate(0, 0, 1)
	}

	return time.Time{}, false
}

// OccurrencesInRange expands the pattern into an ascending, duplicate free
// sequence of dates within [from, to], both bounds inclusive. Generation
// stops at the range end, at the pattern's own end condition, or once the
// remaining occurrence budget of a count limited pattern is spent, whichever
// comes first. The function is pure: repeated calls with equal arguments
// yield equal sequences.
func OccurrencesInRange(p Pattern, from, to time.Time) []time.Time {
	end := DateOnly(to)
	remaining := p.RemainingOccurrences()
	if remaining == 0 {
		return nil
	}

	var dates []time.Time
	cursor := DateOnly(from)

	for {
		next, ok := NextOccurrence(p, cursor)
		if !ok || next.After(end) {
			break
		}
		dates = append(dates, next)
		if remaining > 0 && len(dates) >= remaining {
			break
		}
		cursor = next.AddDate(0, 0, 1)
	}

	return dates
}
