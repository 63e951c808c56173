package recurrence

import (
	"fmt"
	"strings"
	"time"
)

// describeDateLayout renders end dates the way the ride posting flow shows
// them, e.g. "12 Dec 2025".
const describeDateLayout = "2 Jan 2006"

// Describe renders a human readable summary of the pattern, for example
// "Repeats on Mon, Wed, Fri until 12 Dec 2025" or
// "Repeats every day for 10 rides". The summary always reflects the active
// end condition; it is presentation only and never consulted by generation.
func Describe(p Pattern) string {
	var b strings.Builder

	switch p.Type {
	case PatternDaily:
		b.WriteString("Repeats every day")
	case PatternWeekly:
		b.WriteString("Repeats on ")
		b.WriteString(strings.Join(weekdayNames(p.Weekdays), ", "))
	case PatternMonthly:
		fmt.Fprintf(&b, "Repeats monthly on day %d", p.DayOfMonth)
	default:
		b.WriteString("Does not repeat")
		return b.String()
	}

	switch p.End.Kind {
	case EndConditionOnDate:
		fmt.Fprintf(&b, " until %s", DateOnly(p.End.EndDate).Format(describeDateLayout))
	case EndConditionAfterCount:
		if p.End.MaxOccurrences == 1 {
			b.WriteString(" for 1 ride")
		} else {
			fmt.Fprintf(&b, " for %d rides", p.End.MaxOccurrences)
		}
	}

	return b.String()
}

// weekdayNames renders the selected weekdays in Sunday first calendar order,
// regardless of the order they were supplied in.
func weekdayNames(weekdays []time.Weekday) []string {
	selected := make(map[time.Weekday]struct{}, len(weekdays))
	for _, day := range weekdays {
		selected[day] = struct{}{}
	}

	names := make([]string, 0, len(selected))
	for day := time.Sunday; day <= time.Saturday; day++ {
		if _, ok := selected[day]; ok {
			names = append(names, day.String()[:3])
		}
	}
	return names
}
