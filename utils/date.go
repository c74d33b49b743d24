package utils

import "time"

// DateDiff is a calendar-unit breakdown of the span between two instants.
type DateDiff struct {
	Years  int // Full years in the span.
	Months int // Full months after the years.
	Days   int // Full days after the months.
}

// CalendarDiff computes the calendar-unit breakdown of end - start.
//
// The breakdown follows calendar arithmetic, not fixed-length units: one year
// from 2024-02-29 lands on 2025-03-01 per time.AddDate. A span where end is
// not after start yields a zero diff.
//
// Args:
//   - start: The start of the span.
//   - end: The end of the span.
//
// Returns:
//   - DateDiff: The calendar-unit breakdown.
func CalendarDiff(start, end time.Time) (diff DateDiff) {
	if !end.After(start) {
		return
	}

	for !start.AddDate(diff.Years+1, 0, 0).After(end) {
		diff.Years++
	}
	for !start.AddDate(diff.Years, diff.Months+1, 0).After(end) {
		diff.Months++
	}
	for !start.AddDate(diff.Years, diff.Months, diff.Days+1).After(end) {
		diff.Days++
	}

	return
}

// DaysUntil returns the number of days from now until t, fractional.
//
// Args:
//   - now: The reference instant.
//   - t: The target instant.
//
// Returns:
//   - float64: Days remaining; negative when t is in the past.
func DaysUntil(now, t time.Time) float64 {
	return t.Sub(now).Hours() / 24
}
