package calendar

import (
	"testing"
	"time"
)

func TestDayOf_LocationBoundary(t *testing.T) {
	// 23:30 UTC on the 1st is already the 2nd in Athens (UTC+2/+3).
	athens, err := time.LoadLocation("Europe/Athens")
	if err != nil {
		t.Skipf("zoneinfo unavailable: %v", err)
	}
	instant := time.Date(2026, 1, 1, 23, 30, 0, 0, time.UTC)

	if got := DayOf(instant, time.UTC); got != "2026-01-01" {
		t.Fatalf("DayOf UTC = %q", got)
	}
	if got := DayOf(instant, athens); got != "2026-01-02" {
		t.Fatalf("DayOf Athens = %q", got)
	}
}

func TestToday_UsesClockAndDefaults(t *testing.T) {
	clk := FixedClock{T: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)}
	if got := Today(clk, time.UTC); got != "2026-03-15" {
		t.Fatalf("Today = %q", got)
	}
	// nil clock falls back to the system clock without panicking
	if got := Today(nil, time.UTC); len(got) != 10 {
		t.Fatalf("Today(nil) = %q", got)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	d := "2026-02-28"
	ts, err := Parse(d)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := ts.Format(DayFormat); got != d {
		t.Fatalf("round trip = %q", got)
	}
	if _, err := Parse("28/02/2026"); err == nil {
		t.Fatalf("expected error for malformed day")
	}
}

func TestIsNextDay(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"2026-01-01", "2026-01-02", true},
		{"2026-01-31", "2026-02-01", true},  // month boundary
		{"2026-12-31", "2027-01-01", true},  // year boundary
		{"2026-01-01", "2026-01-01", false}, // same day
		{"2026-01-01", "2026-01-03", false}, // gap
		{"2026-01-02", "2026-01-01", false}, // backwards
		{"garbage", "2026-01-01", false},    // anomaly
	}
	for _, c := range cases {
		if got := IsNextDay(c.a, c.b); got != c.want {
			t.Errorf("IsNextDay(%q, %q) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	if got := DaysBetween("2026-01-01", "2026-01-11"); got != 10 {
		t.Fatalf("DaysBetween = %d", got)
	}
	if got := DaysBetween("2026-01-11", "2026-01-01"); got != -10 {
		t.Fatalf("DaysBetween backwards = %d", got)
	}
	if got := DaysBetween("not-a-day", "2026-01-01"); got != 0 {
		t.Fatalf("DaysBetween anomaly = %d", got)
	}
}
