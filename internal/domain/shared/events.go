// Package shared contains common domain types, errors, and events that are
// used across all domain packages.
package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Progress events
	EventOutcomeRecorded  EventType = "progress.outcome_recorded"
	EventExerciseMastered EventType = "progress.exercise_mastered"

	// Activity events
	EventActivityDayRecorded EventType = "activity.day_recorded"

	// Achievement events
	EventAchievementUnlocked EventType = "achievement.unlocked"

	// Session events
	EventSessionGenerated EventType = "session.generated"
	EventTasksCompleted   EventType = "session.tasks_completed"

	// Plan events
	EventPlanGenerated EventType = "plan.generated"
	EventPlanAbandoned EventType = "plan.abandoned"

	// Feedback events
	EventFeedbackSubmitted EventType = "feedback.submitted"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
	}
}

// OutcomeRecordedEvent is emitted whenever a learner outcome is folded into
// the progress ledger. The aggregate ID is the user ID.
type OutcomeRecordedEvent struct {
	BaseEvent
	UserID     string `json:"user_id"`
	AppID      string `json:"app_id"`
	ExerciseID string `json:"exercise_id"`
	Correct    bool   `json:"correct"`
}

// NewOutcomeRecordedEvent creates a new OutcomeRecordedEvent.
func NewOutcomeRecordedEvent(userID, appID, exerciseID string, correct bool) OutcomeRecordedEvent {
	return OutcomeRecordedEvent{
		BaseEvent:  NewBaseEvent(EventOutcomeRecorded, userID),
		UserID:     userID,
		AppID:      appID,
		ExerciseID: exerciseID,
		Correct:    correct,
	}
}

// ExerciseMasteredEvent is emitted when an exercise crosses the mastery
// threshold for a user.
type ExerciseMasteredEvent struct {
	BaseEvent
	UserID     string `json:"user_id"`
	ExerciseID string `json:"exercise_id"`
}

// NewExerciseMasteredEvent creates a new ExerciseMasteredEvent.
func NewExerciseMasteredEvent(userID, exerciseID string) ExerciseMasteredEvent {
	return ExerciseMasteredEvent{
		BaseEvent:  NewBaseEvent(EventExerciseMastered, userID),
		UserID:     userID,
		ExerciseID: exerciseID,
	}
}

// AchievementUnlockedEvent is emitted when a user earns an achievement.
type AchievementUnlockedEvent struct {
	BaseEvent
	UserID        string `json:"user_id"`
	AchievementID string `json:"achievement_id"`
	Title         string `json:"title"`
}

// NewAchievementUnlockedEvent creates a new AchievementUnlockedEvent.
func NewAchievementUnlockedEvent(userID, achievementID, title string) AchievementUnlockedEvent {
	return AchievementUnlockedEvent{
		BaseEvent:     NewBaseEvent(EventAchievementUnlocked, userID),
		UserID:        userID,
		AchievementID: achievementID,
		Title:         title,
	}
}

// SessionGeneratedEvent is emitted when a new practice session is persisted.
type SessionGeneratedEvent struct {
	BaseEvent
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	TaskCount int    `json:"task_count"`
}

// NewSessionGeneratedEvent creates a new SessionGeneratedEvent.
func NewSessionGeneratedEvent(userID, sessionID string, taskCount int) SessionGeneratedEvent {
	return SessionGeneratedEvent{
		BaseEvent: NewBaseEvent(EventSessionGenerated, userID),
		UserID:    userID,
		SessionID: sessionID,
		TaskCount: taskCount,
	}
}

// TasksCompletedEvent is emitted when a learner finishes session tasks.
type TasksCompletedEvent struct {
	BaseEvent
	UserID  string   `json:"user_id"`
	TaskIDs []string `json:"task_ids"`
}

// NewTasksCompletedEvent creates a new TasksCompletedEvent.
func NewTasksCompletedEvent(userID string, taskIDs []string) TasksCompletedEvent {
	return TasksCompletedEvent{
		BaseEvent: NewBaseEvent(EventTasksCompleted, userID),
		UserID:    userID,
		TaskIDs:   taskIDs,
	}
}

// PlanAbandonedEvent is emitted when a user abandons their active plan.
type PlanAbandonedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	PlanID string `json:"plan_id"`
}

// NewPlanAbandonedEvent creates a new PlanAbandonedEvent.
func NewPlanAbandonedEvent(userID, planID string) PlanAbandonedEvent {
	return PlanAbandonedEvent{
		BaseEvent: NewBaseEvent(EventPlanAbandoned, userID),
		UserID:    userID,
		PlanID:    planID,
	}
}

// FeedbackSubmittedEvent is emitted when a user submits feedback.
type FeedbackSubmittedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
}

// NewFeedbackSubmittedEvent creates a new FeedbackSubmittedEvent.
func NewFeedbackSubmittedEvent(userID string) FeedbackSubmittedEvent {
	return FeedbackSubmittedEvent{
		BaseEvent: NewBaseEvent(EventFeedbackSubmitted, userID),
		UserID:    userID,
	}
}

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
