// Package timeutil provides UTC calendar-day utilities for the LearnApp
// Practice Engine. All streak and activity math operates on UTC calendar
// dates so that multi-instance deployments agree on what "today" means.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// FormatDate is the standard date format (YYYY-MM-DD).
const FormatDate = "2006-01-02"

// DateOf truncates a time to its UTC calendar date (00:00:00 UTC).
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current UTC calendar date.
func Today() time.Time {
	return DateOf(time.Now())
}

// Yesterday returns the UTC calendar date one day before today.
func Yesterday() time.Time {
	return Today().AddDate(0, 0, -1)
}

// IsToday reports whether t falls on the current UTC calendar date.
func IsToday(t time.Time) bool {
	return DateOf(t).Equal(Today())
}

// IsYesterday reports whether t falls on yesterday's UTC calendar date.
func IsYesterday(t time.Time) bool {
	return DateOf(t).Equal(Yesterday())
}

// SameDate reports whether a and b fall on the same UTC calendar date.
func SameDate(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// DaysBetween returns the number of whole calendar days from a to b.
// Positive when b is after a, negative when before.
func DaysBetween(a, b time.Time) int {
	da := DateOf(a)
	db := DateOf(b)
	return int(db.Sub(da).Hours() / 24)
}

// IsConsecutive reports whether next is exactly one calendar day after prev.
func IsConsecutive(prev, next time.Time) bool {
	return DaysBetween(prev, next) == 1
}

// FormatDateStr formats a time as an ISO date string (YYYY-MM-DD) in UTC.
func FormatDateStr(t time.Time) string {
	return t.UTC().Format(FormatDate)
}

// ParseDate parses an ISO date string (YYYY-MM-DD) as a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(FormatDate, s, time.UTC)
}

// StartOfDay returns the start of the UTC day containing t.
func StartOfDay(t time.Time) time.Time {
	return DateOf(t)
}

// EndOfDay returns the last instant of the UTC day containing t.
func EndOfDay(t time.Time) time.Time {
	return DateOf(t).Add(24*time.Hour - time.Nanosecond)
}

// DaysSince returns the number of whole UTC days elapsed since t.
func DaysSince(t time.Time) int {
	return DaysBetween(t, time.Now())
}
