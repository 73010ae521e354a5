// Package shared contains common domain types, errors, and events that are
// used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation    = errors.New("validation error")
	ErrInvalidID     = errors.New("invalid ID")
	ErrInvalidInput  = errors.New("invalid input")
	ErrEmptyValue    = errors.New("value cannot be empty")
	ErrInvalidFormat = errors.New("invalid format")

	// State errors
	ErrInvalidState     = errors.New("invalid state")
	ErrStateTransition  = errors.New("invalid state transition")
	ErrAlreadyProcessed = errors.New("already processed")

	// Conflict errors. Uniqueness races on content resolution and
	// achievement awarding carry this kind; they are always recovered
	// internally and never surfaced to callers.
	ErrConflict = errors.New("uniqueness conflict")

	// Generation errors. The external content generator was unreachable,
	// timed out, or returned output that failed contract validation.
	ErrGeneration = errors.New("generation error")

	// Persistence errors. The store is unreachable; retryable.
	ErrPersistence = errors.New("persistence error")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "progress", "exercise", "session"
	Op      string // Operation that failed, e.g., "RecordOutcome", "Generate"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Progress domain errors
var (
	ErrProgressNotFound = NewDomainError("progress", "Get", ErrNotFound, "progress record not found")
)

// Exercise domain errors
var (
	ErrExerciseNotFound = NewDomainError("exercise", "Find", ErrNotFound, "exercise not found")
	ErrExerciseExists   = NewDomainError("exercise", "Create", ErrConflict, "exercise already exists for descriptor")
	ErrInvalidCategory  = NewDomainError("exercise", "Validate", ErrInvalidInput, "invalid exercise category")
)

// Achievement domain errors
var (
	ErrAchievementUnknown = NewDomainError("achievement", "Find", ErrNotFound, "unknown achievement")
	ErrAlreadyAwarded     = NewDomainError("achievement", "Award", ErrConflict, "achievement already awarded")
)

// Session domain errors
var (
	ErrNoPendingOutcomes = NewDomainError("session", "Generate", ErrNotFound, "no unprocessed outcomes to generate from")
	ErrNoActiveSession   = NewDomainError("session", "GetActive", ErrNotFound, "no active session")
	ErrNoActivePlan      = NewDomainError("plan", "GetActive", ErrNotFound, "no active plan")
	ErrPlanNotActive     = NewDomainError("plan", "Abandon", ErrInvalidState, "plan is not active")
)

// Generator errors
var (
	ErrGeneratorUnavailable = NewDomainError("generator", "Invoke", ErrGeneration, "content generator is unavailable")
	ErrGeneratorTimeout     = NewDomainError("generator", "Invoke", ErrGeneration, "content generator request timed out")
	ErrGeneratorResponse    = NewDomainError("generator", "Parse", ErrGeneration, "invalid response from content generator")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsConflict checks if the error is a uniqueness conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrAlreadyExists)
}

// IsGeneration checks if the error came from the content generator.
func IsGeneration(err error) bool {
	return errors.Is(err, ErrGeneration)
}

// IsPersistence checks if the error is a retryable store failure.
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPersistence) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}
