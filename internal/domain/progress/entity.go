// Package progress implements the per-user, per-exercise mastery ledger.
// It is the single source of truth for what a learner has and has not
// mastered; the session orchestrator consults it to avoid re-surfacing
// already-mastered content.
package progress

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Mastery policy constants. These are fixed platform policy, not
// configurable per exercise.
const (
	// PerfectSuccessMin is the minimum success count for a "perfect" exercise.
	PerfectSuccessMin = 1

	// MasteredSuccessMin is the minimum success count for a "mastered" exercise.
	MasteredSuccessMin = 3
)

// Record is one row of the mastery ledger, keyed by (UserID, ExerciseID).
// Counters only ever increase, by one per recorded outcome. A record is
// created on the first outcome for its pair and never deleted.
type Record struct {
	// UserID - the learner this record belongs to.
	UserID string

	// ExerciseID - the exercise this record tracks.
	ExerciseID string

	// SuccessCount - number of correct outcomes recorded.
	SuccessCount int

	// FailureCount - number of incorrect outcomes recorded.
	FailureCount int

	// LastAttemptAt - when the most recent outcome was recorded.
	LastAttemptAt time.Time
}

// Attempts returns the total number of recorded outcomes.
func (r Record) Attempts() int {
	return r.SuccessCount + r.FailureCount
}

// Perfect reports whether the exercise has at least one success and
// zero failures.
func (r Record) Perfect() bool {
	return r.SuccessCount >= PerfectSuccessMin && r.FailureCount == 0
}

// Mastered reports whether the exercise is mastered: at least three
// successes and zero failures. Because the ledger only accumulates,
// mastery never reverts once reached.
func (r Record) Mastered() bool {
	return r.SuccessCount >= MasteredSuccessMin && r.FailureCount == 0
}

// Fingerprint computes the deterministic content fingerprint used to
// correlate generator output with ledger entries when no pre-existing
// exercise id is available: lowercase hex SHA-256 of the trimmed content.
func Fingerprint(content string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(content)))
	return hex.EncodeToString(sum[:])
}
