package achievement

// Snapshot is the fixed set of aggregate statistics every achievement
// predicate is evaluated against. It is computed once per evaluation in
// a single batched round of queries, so one call's award set is
// internally consistent even if the underlying data changes mid-flight.
type Snapshot struct {
	TotalAnswered     int
	TotalCorrect      int
	DistinctApps      int
	LongestStreak     int
	CompletedSessions int
	FeedbackCount     int
	PerfectExercises  int
	MasteredExercises int
	DistinctExercises int
}

// Value returns the snapshot statistic for the given metric.
// Unknown metrics evaluate to zero, which can never satisfy a positive
// threshold.
func (s Snapshot) Value(m Metric) int {
	switch m {
	case MetricTotalAnswered:
		return s.TotalAnswered
	case MetricTotalCorrect:
		return s.TotalCorrect
	case MetricDistinctApps:
		return s.DistinctApps
	case MetricLongestStreak:
		return s.LongestStreak
	case MetricCompletedSessions:
		return s.CompletedSessions
	case MetricFeedbackCount:
		return s.FeedbackCount
	case MetricPerfectExercises:
		return s.PerfectExercises
	case MetricMasteredExercises:
		return s.MasteredExercises
	case MetricDistinctExercises:
		return s.DistinctExercises
	default:
		return 0
	}
}
