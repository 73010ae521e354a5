package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeStreak_Empty(t *testing.T) {
	summary := ComputeStreak(nil, date(2026, 3, 10))

	assert.Equal(t, 0, summary.CurrentStreak)
	assert.Equal(t, 0, summary.LongestStreak)
	assert.Equal(t, 0, summary.TotalActiveDays)
	assert.Nil(t, summary.LastActivityDate)
}

func TestComputeStreak_RunEndingToday(t *testing.T) {
	today := date(2026, 3, 10)
	days := []time.Time{
		date(2026, 3, 8),
		date(2026, 3, 9),
		date(2026, 3, 10),
	}

	summary := ComputeStreak(days, today)

	assert.Equal(t, 3, summary.CurrentStreak)
	assert.Equal(t, 3, summary.LongestStreak)
	assert.Equal(t, 3, summary.TotalActiveDays)
	assert.Equal(t, today, *summary.LastActivityDate)
}

func TestComputeStreak_RunEndingYesterdayStillAlive(t *testing.T) {
	today := date(2026, 3, 10)
	days := []time.Time{
		date(2026, 3, 7),
		date(2026, 3, 8),
		date(2026, 3, 9),
	}

	summary := ComputeStreak(days, today)

	assert.Equal(t, 3, summary.CurrentStreak)
	assert.Equal(t, 3, summary.LongestStreak)
}

func TestComputeStreak_StaleRunResetsCurrent(t *testing.T) {
	// Last activity two days ago: the current streak is broken, but
	// history still carries the longest run.
	today := date(2026, 3, 10)
	days := []time.Time{
		date(2026, 3, 4),
		date(2026, 3, 5),
		date(2026, 3, 6),
		date(2026, 3, 7),
		date(2026, 3, 8),
	}

	summary := ComputeStreak(days, today)

	assert.Equal(t, 0, summary.CurrentStreak)
	assert.Equal(t, 5, summary.LongestStreak)
	assert.Equal(t, 5, summary.TotalActiveDays)
}

func TestComputeStreak_GapSplitsRuns(t *testing.T) {
	today := date(2026, 3, 10)
	days := []time.Time{
		date(2026, 3, 1),
		date(2026, 3, 2),
		date(2026, 3, 3),
		date(2026, 3, 4),
		// gap
		date(2026, 3, 9),
		date(2026, 3, 10),
	}

	summary := ComputeStreak(days, today)

	assert.Equal(t, 2, summary.CurrentStreak)
	assert.Equal(t, 4, summary.LongestStreak)
	assert.Equal(t, 6, summary.TotalActiveDays)
}

func TestComputeStreak_SingleDayToday(t *testing.T) {
	today := date(2026, 3, 10)

	summary := ComputeStreak([]time.Time{today}, today)

	assert.Equal(t, 1, summary.CurrentStreak)
	assert.Equal(t, 1, summary.LongestStreak)
	assert.Equal(t, 1, summary.TotalActiveDays)
}

func TestComputeStreak_DeduplicatesAndNormalizes(t *testing.T) {
	// Multiple timestamps on the same UTC date count as one day, and
	// non-midnight inputs are truncated before comparison.
	today := date(2026, 3, 10)
	days := []time.Time{
		time.Date(2026, 3, 9, 8, 15, 0, 0, time.UTC),
		time.Date(2026, 3, 9, 22, 40, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 6, 5, 0, 0, time.UTC),
	}

	summary := ComputeStreak(days, today)

	assert.Equal(t, 2, summary.CurrentStreak)
	assert.Equal(t, 2, summary.LongestStreak)
	assert.Equal(t, 2, summary.TotalActiveDays)
}

func TestComputeStreak_UnorderedInput(t *testing.T) {
	today := date(2026, 3, 10)
	days := []time.Time{
		date(2026, 3, 10),
		date(2026, 3, 8),
		date(2026, 3, 9),
	}

	summary := ComputeStreak(days, today)

	assert.Equal(t, 3, summary.CurrentStreak)
}
