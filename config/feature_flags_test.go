package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureFlags_DefaultsAndEnvOverride(t *testing.T) {
	t.Setenv("FEATURE_ENGINE_PLANS", "false")
	t.Setenv("FEATURE_ENGINE_DISTRIBUTED_EVENTS", "true")

	flags := LoadFeatureFlags()

	assert.False(t, flags.IsEnabled(FeaturePlans))
	assert.True(t, flags.IsEnabled(FeatureDistributedEvents))
	assert.True(t, flags.IsEnabled(FeatureAchievements), "untouched flags keep their defaults")
}

func TestFeatureFlags_RolloutBucketIsStablePerUser(t *testing.T) {
	t.Setenv("FEATURE_ENGINE_SUGGESTIONS_ROLLOUT", "50")

	flags := LoadFeatureFlags()

	first := flags.IsEnabledFor(FeatureSuggestions, "user-42")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, flags.IsEnabledFor(FeatureSuggestions, "user-42"))
	}
}

func TestFeatureFlags_RolloutBoundaries(t *testing.T) {
	t.Setenv("FEATURE_ENGINE_SUGGESTIONS_ROLLOUT", "0")
	flags := LoadFeatureFlags()
	assert.False(t, flags.IsEnabledFor(FeatureSuggestions, "user-1"))

	t.Setenv("FEATURE_ENGINE_SUGGESTIONS_ROLLOUT", "100")
	flags = LoadFeatureFlags()
	assert.True(t, flags.IsEnabledFor(FeatureSuggestions, "user-1"))
}

func TestFeatureFlags_UserOverrideWinsOverRollout(t *testing.T) {
	t.Setenv("FEATURE_ENGINE_SUGGESTIONS_ROLLOUT", "0")
	flags := LoadFeatureFlags()

	flags.SetOverride("user-1", FeatureSuggestions, true)
	assert.True(t, flags.IsEnabledFor(FeatureSuggestions, "user-1"))

	flags.ClearOverride("user-1", FeatureSuggestions)
	assert.False(t, flags.IsEnabledFor(FeatureSuggestions, "user-1"))
}

func TestFeatureFlags_DisabledFlagIgnoresRollout(t *testing.T) {
	flags := LoadFeatureFlags()
	require.False(t, flags.IsEnabled(FeatureDistributedEvents))
	assert.False(t, flags.IsEnabledFor(FeatureDistributedEvents, "user-1"))
}
