package activity

import (
	"sort"
	"time"

	"github.com/rdstettler/learnapp-sub001/pkg/timeutil"
)

// StreakSummary describes a user's consecutive-day activity runs.
type StreakSummary struct {
	// CurrentStreak - consecutive active days ending today or yesterday.
	// Zero when the most recent activity is older than yesterday.
	CurrentStreak int

	// LongestStreak - the longest consecutive-day run anywhere in history.
	LongestStreak int

	// TotalActiveDays - total number of distinct active days.
	TotalActiveDays int

	// LastActivityDate - the most recent active date, nil when none.
	LastActivityDate *time.Time
}

// ComputeStreak derives the streak summary from the user's activity
// dates. It is a pure function of the date set and the reference date
// "today" (a UTC calendar date); it performs no I/O.
//
// The current streak only counts when the run is still alive: the most
// recent date must be today or yesterday. The longest streak scans the
// whole history.
func ComputeStreak(dates []time.Time, today time.Time) StreakSummary {
	if len(dates) == 0 {
		return StreakSummary{}
	}

	// Normalize to distinct UTC calendar dates, ascending.
	seen := make(map[time.Time]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := timeutil.DateOf(d)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	summary := StreakSummary{TotalActiveDays: len(days)}
	last := days[len(days)-1]
	summary.LastActivityDate = &last

	// Longest streak: ascending scan with a running consecutive counter.
	run := 1
	longest := 1
	for i := 1; i < len(days); i++ {
		if timeutil.IsConsecutive(days[i-1], days[i]) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	summary.LongestStreak = longest

	// Current streak: anchored at today or yesterday, extended backward
	// until the first gap.
	today = timeutil.DateOf(today)
	if !last.Equal(today) && !last.Equal(today.AddDate(0, 0, -1)) {
		return summary
	}
	current := 1
	for i := len(days) - 1; i > 0; i-- {
		if !timeutil.IsConsecutive(days[i-1], days[i]) {
			break
		}
		current++
	}
	summary.CurrentStreak = current

	return summary
}
