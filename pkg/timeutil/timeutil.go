// Package timeutil provides calendar-date helpers for streak tracking.
// Streaks count whole days of activity, so all comparisons here work on
// UTC calendar dates with the time-of-day stripped.
package timeutil

import "time"

// DateOnly truncates a time to midnight UTC, keeping only the calendar date.
func DateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current UTC calendar date.
func Today() time.Time {
	return DateOnly(time.Now())
}

// SameDay reports whether two times fall on the same UTC calendar date.
func SameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

// DaysBetween returns the number of whole calendar days from a to b.
// Positive when b is after a, negative when before.
func DaysBetween(a, b time.Time) int {
	da := DateOnly(a)
	db := DateOnly(b)
	return int(db.Sub(da).Hours() / 24)
}

// IsNextDay reports whether next is exactly one calendar day after prev.
func IsNextDay(prev, next time.Time) bool {
	return DaysBetween(prev, next) == 1
}

// ParseDate parses a YYYY-MM-DD string into a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}

// FormatDate renders a time as its YYYY-MM-DD UTC calendar date.
func FormatDate(t time.Time) string {
	return DateOnly(t).Format("2006-01-02")
}
