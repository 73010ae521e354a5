// Package session contains the session orchestration domain: raw outcome
// records queued for generation, generated practice sessions and their
// tasks, and multi-day plans. State is modeled with explicit enums so
// legal transitions are visible and testable.
package session

import (
	"time"
)

// OutcomeState is the processing state of a raw outcome record.
type OutcomeState string

const (
	// OutcomeUnprocessed - the record has not yet been folded into a
	// generation request. Default state.
	OutcomeUnprocessed OutcomeState = "unprocessed"

	// OutcomeConsumed - the record was folded into a generation request.
	// Terminal; the transition happens exactly once.
	OutcomeConsumed OutcomeState = "consumed"
)

// TaskState is the completion state of a session task.
type TaskState string

const (
	// TaskPending - the learner has not completed the task yet.
	TaskPending TaskState = "pending"

	// TaskCompleted - the learner finished the task.
	TaskCompleted TaskState = "completed"
)

// PlanStatus is the lifecycle state of a multi-day plan.
type PlanStatus string

const (
	PlanActive    PlanStatus = "active"
	PlanAbandoned PlanStatus = "abandoned"
)

// RawOutcome is emitted whenever a learner finishes a generator-produced
// exercise. Unprocessed records accumulate until the orchestrator folds
// them into the next generation request.
type RawOutcome struct {
	ID        string
	AppID     string
	UserID    string
	SessionID string
	Content   string
	State     OutcomeState
	CreatedAt time.Time
}

// TheoryBlock is one titled block of explanatory text attached to a session.
type TheoryBlock struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Session is one generated batch of practice tasks.
type Session struct {
	ID        string
	UserID    string
	Topic     string
	Text      string
	Theory    []TheoryBlock
	PlanID    string // empty for standalone sessions
	CreatedAt time.Time

	// Tasks - ordered tasks of this session, completed and pending alike.
	Tasks []*Task
}

// PendingCount returns the number of not-yet-completed tasks.
func (s *Session) PendingCount() int {
	n := 0
	for _, t := range s.Tasks {
		if t.State == TaskPending {
			n++
		}
	}
	return n
}

// Task is one generated exercise instance within a session. Tasks form
// session history and are never deleted.
type Task struct {
	ID         string
	SessionID  string
	AppID      string
	OrderIndex int
	Content    string
	State      TaskState

	// Day and Focus are set only for plan tasks: the day number within
	// the plan and the focus label for that day.
	Day   int
	Focus string
}

// Plan groups generated sessions across multiple days.
type Plan struct {
	ID        string
	UserID    string
	Topic     string
	Status    PlanStatus
	CreatedAt time.Time

	// Days - the per-day task groups, ordered by day number.
	Days []*PlanDay
}

// PlanDay is one day of a plan.
type PlanDay struct {
	Day   int
	Focus string
	Tasks []*Task
}
