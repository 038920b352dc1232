package kst

import (
	"fmt"
	"strings"
	"time"
)

// Zone is the fixed reference timezone for every KPI in the system.
// The feed delivers timestamps as UTC; civil dates are read in KST (UTC+9).
// This is a deliberate fixed-offset rule, not a tz-database lookup: bucket
// boundaries downstream are defined against it and must not drift.
var Zone = time.FixedZone("KST", 9*60*60)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Parse normalizes a raw feed date string into a KST civil date-time.
// Date-only strings are taken as KST civil dates directly (no offset applied);
// strings with a time component are interpreted as UTC and shifted +9h.
// Returns false for empty or unparseable input.
func Parse(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if !strings.ContainsAny(s, "T ") {
		t, err := time.ParseInLocation("2006-01-02", s, Zone)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.In(Zone), true
		}
	}
	return time.Time{}, false
}

// civilDay truncates t to midnight of its KST calendar day.
func civilDay(t time.Time) time.Time {
	t = t.In(Zone)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Zone)
}

// SameDay reports whether a and b fall on the same KST calendar day.
func SameDay(a, b time.Time) bool {
	a, b = a.In(Zone), b.In(Zone)
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// DayDiff returns the whole-day difference between the KST calendar days of
// start and end, discarding time-of-day. May be negative.
func DayDiff(start, end time.Time) int {
	// Zone is a fixed offset, so 24h division is exact.
	return int(civilDay(end).Sub(civilDay(start)).Hours() / 24)
}

// MonthDiff returns the calendar month difference between start and end,
// ignoring day and time components.
func MonthDiff(start, end time.Time) int {
	start, end = start.In(Zone), end.In(Zone)
	return (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
}

// Week is an immutable Monday-through-Sunday window in KST.
type Week struct {
	start time.Time // Monday 00:00:00 KST
}

// WeekOf returns the week containing t, anchored on Monday 00:00 KST.
func WeekOf(t time.Time) Week {
	t = civilDay(t)
	offset := int(t.Weekday()) - 1
	if offset < 0 {
		offset = 6 // Sunday
	}
	return Week{start: t.AddDate(0, 0, -offset)}
}

// ParseWeek resolves a YYYY-MM-DD anchor date to its containing week.
func ParseWeek(s string) (Week, bool) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), Zone)
	if err != nil {
		return Week{}, false
	}
	return WeekOf(t), true
}

// Start returns Monday 00:00:00 KST.
func (w Week) Start() time.Time {
	return w.start
}

// End returns Sunday 23:59:59.999999999 KST.
func (w Week) End() time.Time {
	return w.start.AddDate(0, 0, 7).Add(-time.Nanosecond)
}

// Contains reports whether t falls inside the week, both ends inclusive.
func (w Week) Contains(t time.Time) bool {
	t = t.In(Zone)
	return !t.Before(w.start) && !t.After(w.End())
}

// Next returns the following week.
func (w Week) Next() Week {
	return Week{start: w.start.AddDate(0, 0, 7)}
}

// Prev returns the preceding week.
func (w Week) Prev() Week {
	return Week{start: w.start.AddDate(0, 0, -7)}
}

// Label renders the week range the way the dashboard header shows it.
func (w Week) Label() string {
	const f = "06/01/02"
	return w.start.Format(f) + " ~ " + w.End().Format(f)
}

// Month is a calendar year+month in KST.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the KST calendar month containing t.
func MonthOf(t time.Time) Month {
	t = t.In(Zone)
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a YYYY-MM month key.
func ParseMonth(s string) (Month, bool) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Month{}, false
	}
	return Month{Year: t.Year(), Month: t.Month()}, true
}

// Contains reports whether t falls inside the month.
func (m Month) Contains(t time.Time) bool {
	t = t.In(Zone)
	return t.Year() == m.Year && t.Month() == m.Month
}

// Prev returns the preceding calendar month.
func (m Month) Prev() Month {
	if m.Month == time.January {
		return Month{Year: m.Year - 1, Month: time.December}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

// String renders the YYYY-MM month key.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}
