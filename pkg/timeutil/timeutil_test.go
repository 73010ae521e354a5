package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateOf_TruncatesToUTCDate(t *testing.T) {
	// 23:30 in UTC+5 is 18:30 UTC the same day.
	plus5 := time.FixedZone("UTC+5", 5*3600)
	local := time.Date(2026, 3, 10, 23, 30, 0, 0, plus5)

	got := DateOf(local)

	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestDateOf_CrossesDateLineWestward(t *testing.T) {
	// 01:00 in UTC-3 is 04:00 UTC; same calendar date.
	// 01:00 in UTC+5 is 20:00 UTC the previous day.
	plus5 := time.FixedZone("UTC+5", 5*3600)
	local := time.Date(2026, 3, 10, 1, 0, 0, 0, plus5)

	got := DateOf(local)

	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), got)
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	b := time.Date(2026, 3, 12, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, 2, DaysBetween(a, b))
	assert.Equal(t, -2, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
}

func TestIsConsecutive(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	assert.True(t, IsConsecutive(day, day.AddDate(0, 0, 1)))
	assert.False(t, IsConsecutive(day, day))
	assert.False(t, IsConsecutive(day, day.AddDate(0, 0, 2)))
	assert.False(t, IsConsecutive(day.AddDate(0, 0, 1), day))
}

func TestParseDate_RoundTrip(t *testing.T) {
	parsed, err := ParseDate("2026-03-10")

	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), parsed)
	assert.Equal(t, "2026-03-10", FormatDateStr(parsed))
}

func TestParseDate_Invalid(t *testing.T) {
	_, err := ParseDate("10.03.2026")
	assert.Error(t, err)
}

func TestEndOfDay(t *testing.T) {
	ts := time.Date(2026, 3, 10, 7, 45, 0, 0, time.UTC)
	end := EndOfDay(ts)

	assert.Equal(t, 23, end.Hour())
	assert.True(t, SameDate(ts, end))
	assert.True(t, end.Before(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)))
}
