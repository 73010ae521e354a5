package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshot_Value(t *testing.T) {
	s := Snapshot{
		TotalAnswered:     42,
		TotalCorrect:      30,
		DistinctApps:      4,
		LongestStreak:     9,
		CompletedSessions: 3,
		FeedbackCount:     1,
		PerfectExercises:  6,
		MasteredExercises: 2,
		DistinctExercises: 17,
	}

	assert.Equal(t, 42, s.Value(MetricTotalAnswered))
	assert.Equal(t, 30, s.Value(MetricTotalCorrect))
	assert.Equal(t, 4, s.Value(MetricDistinctApps))
	assert.Equal(t, 9, s.Value(MetricLongestStreak))
	assert.Equal(t, 3, s.Value(MetricCompletedSessions))
	assert.Equal(t, 1, s.Value(MetricFeedbackCount))
	assert.Equal(t, 6, s.Value(MetricPerfectExercises))
	assert.Equal(t, 2, s.Value(MetricMasteredExercises))
	assert.Equal(t, 17, s.Value(MetricDistinctExercises))
}

func TestSnapshot_UnknownMetricIsZero(t *testing.T) {
	s := Snapshot{TotalAnswered: 100}
	assert.Equal(t, 0, s.Value(Metric("does_not_exist")))
}

func TestDefinition_Satisfied(t *testing.T) {
	def := Definition{ID: "answered_25", Metric: MetricTotalAnswered, Threshold: 25}

	assert.False(t, def.Satisfied(Snapshot{TotalAnswered: 24}))
	assert.True(t, def.Satisfied(Snapshot{TotalAnswered: 25}))
	assert.True(t, def.Satisfied(Snapshot{TotalAnswered: 26}))
}

func TestCatalog_UniqueIDsAndPositiveThresholds(t *testing.T) {
	seen := make(map[string]bool)
	for _, d := range Catalog() {
		assert.False(t, seen[d.ID], "duplicate achievement id %q", d.ID)
		seen[d.ID] = true
		assert.Positive(t, d.Threshold, "achievement %q must have a positive threshold", d.ID)
		assert.NotEmpty(t, d.Title)
	}
}

func TestCatalogByID_CoversCatalog(t *testing.T) {
	byID := CatalogByID()
	assert.Len(t, byID, len(Catalog()))
	assert.Contains(t, byID, "first_answer")
}
