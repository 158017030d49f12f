package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateOnly(t *testing.T) {
	in := time.Date(2025, 3, 1, 23, 45, 12, 999, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), DateOnly(in))
}

func TestDateOnly_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 23:00 on Mar 1 in UTC-5 is 04:00 on Mar 2 in UTC.
	in := time.Date(2025, 3, 1, 23, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), DateOnly(in))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	b := time.Date(2025, 3, 4, 2, 0, 0, 0, time.UTC)

	assert.Equal(t, 3, DaysBetween(a, b))
	assert.Equal(t, -3, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
}

func TestIsNextDay(t *testing.T) {
	a := time.Date(2025, 2, 28, 23, 59, 0, 0, time.UTC)
	b := time.Date(2025, 3, 1, 0, 1, 0, 0, time.UTC)

	assert.True(t, IsNextDay(a, b))
	assert.False(t, IsNextDay(a, a))
	assert.False(t, IsNextDay(b, a))
}

func TestSameDay(t *testing.T) {
	a := time.Date(2025, 3, 1, 0, 0, 1, 0, time.UTC)
	b := time.Date(2025, 3, 1, 23, 59, 59, 0, time.UTC)

	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(a, a.Add(24*time.Hour)))
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-03-01")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("01/03/2025")
	assert.Error(t, err)
}

func TestFormatDate(t *testing.T) {
	in := time.Date(2025, 3, 1, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-01", FormatDate(in))
}
