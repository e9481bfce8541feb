package generic

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// PERIOD - Inclusive calendar range
// =============================================================================

// Period is an inclusive range of calendar days [Start, End].
//
// Examples:
//   - Payroll week: Mon 2025-03-03 .. Sun 2025-03-09
//   - Calendar year 2025: Jan 1 - Dec 31 (statutory deduction year)
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Validate rejects periods whose end precedes their start.
func (p Period) Validate() error {
	if p.End.Before(p.Start) {
		return fmt.Errorf("%w: %s", ErrInvalidPeriod, p)
	}
	return nil
}

// Days returns all days in the period as a slice of TimePoints.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	current := p.Start
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// WEEK CALCULATOR - Which payroll week a date falls into
// =============================================================================

// WeekFor returns the seven-day period containing date, starting on weekStart.
func WeekFor(date TimePoint, weekStart time.Weekday) Period {
	offset := (int(date.Weekday()) - int(weekStart) + 7) % 7
	start := date.AddDays(-offset)
	return Period{Start: start, End: start.AddDays(6)}
}

// ParseWeekday accepts English weekday names ("monday", "Sun").
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}
