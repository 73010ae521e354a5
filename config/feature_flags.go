package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags manages feature toggles with gradual rollout. Rollout
// assignment hashes the user id, so a user stays in or out of a feature
// across sessions.
type FeatureFlags struct {
	mu sync.RWMutex

	features map[string]*Feature

	// Per-user overrides for testing and support.
	userOverrides map[string]map[string]bool
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100). Users are assigned by id hash.
	RolloutPercent int
}

// Predefined feature flag names.
const (
	// FeaturePlans - multi-day plan generation.
	FeaturePlans = "engine.plans"

	// FeatureAchievements - achievement evaluation after activity.
	FeatureAchievements = "engine.achievements"

	// FeatureSuggestions - catalog suggestions in the not-enough-data state.
	FeatureSuggestions = "engine.suggestions"

	// FeatureStreakCache - Redis-backed streak summary caching.
	FeatureStreakCache = "engine.streak_cache"

	// FeatureDistributedEvents - Redis event bus fan-out across instances.
	FeatureDistributedEvents = "engine.distributed_events"
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:      make(map[string]*Feature),
		userOverrides: make(map[string]map[string]bool),
	}

	ff.initializeDefaults()
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	ff.features[FeaturePlans] = &Feature{
		Name:           FeaturePlans,
		Description:    "Multi-day plan generation",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureAchievements] = &Feature{
		Name:           FeatureAchievements,
		Description:    "Achievement evaluation after activity",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureSuggestions] = &Feature{
		Name:           FeatureSuggestions,
		Description:    "Catalog suggestions before first generation",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureStreakCache] = &Feature{
		Name:           FeatureStreakCache,
		Description:    "Redis-backed streak summary caching",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureDistributedEvents] = &Feature{
		Name:           FeatureDistributedEvents,
		Description:    "Redis event bus fan-out across instances",
		Enabled:        false,
		RolloutPercent: 100,
	}
}

// loadFromEnvironment applies FEATURE_* overrides.
// FEATURE_ENGINE_PLANS=false disables engine.plans;
// FEATURE_ENGINE_PLANS_ROLLOUT=25 sets its rollout percentage.
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envName := "FEATURE_" + strings.ToUpper(strings.ReplaceAll(name, ".", "_"))

		if val := os.Getenv(envName); val != "" {
			if enabled, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = enabled
			}
		}

		if val := os.Getenv(envName + "_ROLLOUT"); val != "" {
			if pct, err := strconv.Atoi(val); err == nil && pct >= 0 && pct <= 100 {
				feature.RolloutPercent = pct
			}
		}
	}
}

// IsEnabled checks whether a feature is enabled globally.
func (ff *FeatureFlags) IsEnabled(name string) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	feature, ok := ff.features[name]
	return ok && feature.Enabled
}

// IsEnabledFor checks whether a feature is enabled for a specific user,
// honoring overrides and rollout percentage.
func (ff *FeatureFlags) IsEnabledFor(name, userID string) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	if overrides, ok := ff.userOverrides[userID]; ok {
		if enabled, ok := overrides[name]; ok {
			return enabled
		}
	}

	feature, ok := ff.features[name]
	if !ok || !feature.Enabled {
		return false
	}

	if feature.RolloutPercent >= 100 {
		return true
	}
	if feature.RolloutPercent <= 0 {
		return false
	}

	return rolloutBucket(name, userID) < feature.RolloutPercent
}

// SetOverride forces a feature on or off for one user.
func (ff *FeatureFlags) SetOverride(userID, name string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if ff.userOverrides[userID] == nil {
		ff.userOverrides[userID] = make(map[string]bool)
	}
	ff.userOverrides[userID][name] = enabled
}

// ClearOverride removes a user's override for a feature.
func (ff *FeatureFlags) ClearOverride(userID, name string) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	delete(ff.userOverrides[userID], name)
}

// rolloutBucket maps (feature, user) to a stable bucket in [0, 100).
func rolloutBucket(name, userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	_, _ = h.Write([]byte(":"))
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % 100)
}
