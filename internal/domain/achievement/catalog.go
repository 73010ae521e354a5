package achievement

// Catalog returns the static achievement catalog. It is immutable at
// runtime; ordering matters only for display.
func Catalog() []Definition {
	return []Definition{
		{ID: "first_answer", Title: "First Steps", Description: "Answer your first exercise", Tier: TierBronze, Metric: MetricTotalAnswered, Threshold: 1},
		{ID: "answered_25", Title: "Getting Warm", Description: "Answer 25 exercises", Tier: TierBronze, Metric: MetricTotalAnswered, Threshold: 25},
		{ID: "answered_100", Title: "Centurion", Description: "Answer 100 exercises", Tier: TierSilver, Metric: MetricTotalAnswered, Threshold: 100},
		{ID: "answered_500", Title: "Marathon Mind", Description: "Answer 500 exercises", Tier: TierGold, Metric: MetricTotalAnswered, Threshold: 500},

		{ID: "correct_10", Title: "On Target", Description: "Get 10 answers right", Tier: TierBronze, Metric: MetricTotalCorrect, Threshold: 10},
		{ID: "correct_250", Title: "Sharp Shooter", Description: "Get 250 answers right", Tier: TierSilver, Metric: MetricTotalCorrect, Threshold: 250},

		{ID: "explorer_3", Title: "Explorer", Description: "Practice in 3 different apps", Tier: TierBronze, Metric: MetricDistinctApps, Threshold: 3},
		{ID: "explorer_6", Title: "Polymath", Description: "Practice in 6 different apps", Tier: TierSilver, Metric: MetricDistinctApps, Threshold: 6},

		{ID: "streak_3", Title: "Warming Up", Description: "Practice 3 days in a row", Tier: TierBronze, Metric: MetricLongestStreak, Threshold: 3},
		{ID: "streak_7", Title: "One Week Strong", Description: "Practice 7 days in a row", Tier: TierSilver, Metric: MetricLongestStreak, Threshold: 7},
		{ID: "streak_30", Title: "Unstoppable", Description: "Practice 30 days in a row", Tier: TierGold, Metric: MetricLongestStreak, Threshold: 30},

		{ID: "sessions_1", Title: "Session One", Description: "Complete your first session", Tier: TierBronze, Metric: MetricCompletedSessions, Threshold: 1},
		{ID: "sessions_10", Title: "Regular", Description: "Complete 10 sessions", Tier: TierSilver, Metric: MetricCompletedSessions, Threshold: 10},

		{ID: "feedback_1", Title: "Voice Heard", Description: "Submit your first feedback", Tier: TierBronze, Metric: MetricFeedbackCount, Threshold: 1},

		{ID: "perfect_5", Title: "Flawless Five", Description: "Keep 5 exercises free of mistakes", Tier: TierSilver, Metric: MetricPerfectExercises, Threshold: 5},
		{ID: "mastered_1", Title: "First Mastery", Description: "Master your first exercise", Tier: TierBronze, Metric: MetricMasteredExercises, Threshold: 1},
		{ID: "mastered_20", Title: "Master Craftsman", Description: "Master 20 exercises", Tier: TierGold, Metric: MetricMasteredExercises, Threshold: 20},

		{ID: "variety_50", Title: "Wide Net", Description: "Attempt 50 distinct exercises", Tier: TierSilver, Metric: MetricDistinctExercises, Threshold: 50},
	}
}

// CatalogByID returns the catalog indexed by achievement id.
func CatalogByID() map[string]Definition {
	defs := Catalog()
	byID := make(map[string]Definition, len(defs))
	for _, d := range defs {
		byID[d.ID] = d
	}
	return byID
}
