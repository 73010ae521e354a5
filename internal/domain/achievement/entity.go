// Package achievement defines the static achievement catalog and the
// batched evaluation of its predicates against a single aggregate
// snapshot. New achievements are added as catalog data, not code paths.
package achievement

import (
	"time"
)

// Tier groups achievements by difficulty for display purposes.
type Tier string

const (
	TierBronze Tier = "bronze"
	TierSilver Tier = "silver"
	TierGold   Tier = "gold"
)

// Metric identifies which snapshot statistic a definition thresholds on.
// The set is closed: every predicate is "metric >= threshold" over one
// of these fields.
type Metric string

const (
	MetricTotalAnswered     Metric = "total_answered"
	MetricTotalCorrect      Metric = "total_correct"
	MetricDistinctApps      Metric = "distinct_apps"
	MetricLongestStreak     Metric = "longest_streak"
	MetricCompletedSessions Metric = "completed_sessions"
	MetricFeedbackCount     Metric = "feedback_count"
	MetricPerfectExercises  Metric = "perfect_exercises"
	MetricMasteredExercises Metric = "mastered_exercises"
	MetricDistinctExercises Metric = "distinct_exercises"
)

// Definition is one immutable catalog entry.
type Definition struct {
	// ID - stable achievement identifier.
	ID string

	// Title - display name.
	Title string

	// Description - display description.
	Description string

	// Tier - display tier.
	Tier Tier

	// Metric - the snapshot statistic this achievement thresholds on.
	Metric Metric

	// Threshold - the minimum metric value that earns the achievement.
	Threshold int
}

// Satisfied evaluates the definition's predicate against a snapshot.
func (d Definition) Satisfied(s Snapshot) bool {
	return s.Value(d.Metric) >= d.Threshold
}

// Awarded records that a user earned an achievement. At most one row
// exists per (UserID, AchievementID); grants are monotonic and never
// revoked.
type Awarded struct {
	UserID        string
	AchievementID string
	AwardedAt     time.Time
}

// View is a catalog entry joined with the user's earned state, for the
// read-only listing operation.
type View struct {
	Definition
	Earned    bool
	AwardedAt *time.Time
}
