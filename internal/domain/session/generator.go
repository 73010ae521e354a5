package session

import (
	"context"
	"encoding/json"
)

// AppDescriptor describes one eligible exercise app to the generator:
// its id and the JSON shape its task content must follow.
type AppDescriptor struct {
	ID           string `json:"id"`
	ContentShape string `json:"contentShape"`
}

// GeneratorRequest is what the orchestrator sends to the content
// generator: the pending outcomes, the eligible app catalog, and the
// user's language preference.
type GeneratorRequest struct {
	PendingOutcomes    []*RawOutcome   `json:"pendingOutcomes"`
	EligibleApps       []AppDescriptor `json:"eligibleApps"`
	LanguagePreference string          `json:"languagePreference"`

	// Days is the number of days to plan for. Zero requests a single
	// session; positive values request a day-grouped plan.
	Days int `json:"days,omitempty"`
}

// ResultAnalysis is the generator's retroactive grading of one pending
// outcome. A non-empty QuestionHashContent lets the engine fold the
// verdict into the ledger keyed by that content's fingerprint.
type ResultAnalysis struct {
	ResultID            string `json:"result_id"`
	IsCorrect           bool   `json:"is_correct"`
	QuestionHashContent string `json:"question_hash_content"`
}

// GeneratedTask is one exercise produced by the generator.
type GeneratedTask struct {
	AppID   string          `json:"app_id"`
	Content json.RawMessage `json:"content"`
}

// GeneratorResponse is the strict response contract for a single
// session. Responses that do not parse as this shape are rejected
// before anything is persisted.
type GeneratorResponse struct {
	ResultAnalysis []ResultAnalysis `json:"result_analysis"`
	Topic          string           `json:"topic"`
	Text           string           `json:"text"`
	Theory         []TheoryBlock    `json:"theory"`
	Tasks          []GeneratedTask  `json:"tasks"`
}

// GeneratedDay is one day of a plan-shaped response.
type GeneratedDay struct {
	Day   int             `json:"day"`
	Focus string          `json:"focus"`
	Tasks []GeneratedTask `json:"tasks"`
}

// PlanGeneratorResponse is the strict response contract for a multi-day
// plan.
type PlanGeneratorResponse struct {
	ResultAnalysis []ResultAnalysis `json:"result_analysis"`
	Topic          string           `json:"topic"`
	Text           string           `json:"text"`
	Theory         []TheoryBlock    `json:"theory"`
	Days           []GeneratedDay   `json:"days"`
}

// Generator is the port to the external content generator. The call is
// synchronous, not idempotent, and the sole external-latency operation
// in the engine; implementations impose timeouts and surface all
// failures as generation errors.
type Generator interface {
	// GenerateSession produces a single session's worth of content.
	GenerateSession(ctx context.Context, req GeneratorRequest) (*GeneratorResponse, error)

	// GeneratePlan produces day-grouped content for a multi-day plan.
	GeneratePlan(ctx context.Context, req GeneratorRequest) (*PlanGeneratorResponse, error)
}
