// Package calendar resolves the application's notion of "today". Every
// cadence, streak, and recovery rule keys off a calendar day rather than a
// raw timestamp, so cross-midnight sessions cannot double-dip a daily
// allowance. Days are plain "YYYY-MM-DD" strings in a configured location.
package calendar

import (
	"time"
)

// DayFormat is the canonical layout for a calendar day.
const DayFormat = "2006-01-02"

// Day is a calendar day in the form "YYYY-MM-DD".
type Day = string

// Clock abstracts the time source so services and tests share one notion of
// "now". The zero-value services use SystemClock.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock is a Clock pinned to a single instant, useful in tests.
type FixedClock struct{ T time.Time }

// Now returns the pinned instant.
func (f FixedClock) Now() time.Time { return f.T }

// DayOf converts an instant to its calendar day in loc. A nil loc means the
// process-local location.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DayFormat)
}

// Today returns the current calendar day in loc according to clk.
func Today(clk Clock, loc *time.Location) Day {
	if clk == nil {
		clk = SystemClock{}
	}
	return DayOf(clk.Now(), loc)
}

// Parse converts a Day back into a time.Time at midnight UTC. Malformed
// input yields the zero time and a non-nil error.
func Parse(d Day) (time.Time, error) {
	return time.Parse(DayFormat, d)
}

// IsNextDay reports whether b is exactly one calendar day after a.
// Malformed inputs are never "next day".
func IsNextDay(a, b Day) bool {
	return DaysBetween(a, b) == 1
}

// DaysBetween returns b-a in whole calendar days. It returns 0 when either
// day fails to parse, which callers treat as a date anomaly (streaks reset,
// recovery is skipped).
func DaysBetween(a, b Day) int {
	ta, err := Parse(a)
	if err != nil {
		return 0
	}
	tb, err := Parse(b)
	if err != nil {
		return 0
	}
	return int(tb.Sub(ta).Hours() / 24)
}
