package generator

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE SCHEMAS
// ══════════════════════════════════════════════════════════════════════════════

// responseSchema pairs a named JSON Schema definition with lazy
// compilation for local validation.
type responseSchema struct {
	Name       string
	Definition json.RawMessage
}

// compiledSchemas caches compiled schemas by name.
var compiledSchemas sync.Map // map[string]*jsonschema.Schema

// Validate checks raw JSON against the schema. Failures are reported as
// generator response errors.
func (s *responseSchema) Validate(raw json.RawMessage) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", shared.ErrGeneratorResponse, err)
	}

	compiled, err := s.compiled()
	if err != nil {
		return fmt.Errorf("%w: compile schema %q: %v", shared.ErrGeneratorResponse, s.Name, err)
	}

	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("%w: schema validation failed: %v", shared.ErrGeneratorResponse, err)
	}

	return nil
}

func (s *responseSchema) compiled() (*jsonschema.Schema, error) {
	if cached, ok := compiledSchemas.Load(s.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	var parsed any
	if err := json.Unmarshal(s.Definition, &parsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", s.Name)
	if err := c.AddResource(schemaURL, parsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}

	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	compiledSchemas.Store(s.Name, compiled)
	return compiled, nil
}

// Shared schema fragments. Content stays a free-form object because its
// shape varies per app; the per-app contract travels in the prompt.
const resultAnalysisSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"properties": {
			"result_id": {"type": "string"},
			"is_correct": {"type": "boolean"},
			"question_hash_content": {"type": "string"}
		},
		"required": ["result_id", "is_correct", "question_hash_content"],
		"additionalProperties": false
	}
}`

const theorySchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"properties": {
			"title": {"type": "string"},
			"content": {"type": "string"}
		},
		"required": ["title", "content"],
		"additionalProperties": false
	}
}`

const tasksSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"properties": {
			"app_id": {"type": "string"},
			"content": {"type": "object"}
		},
		"required": ["app_id", "content"],
		"additionalProperties": false
	}
}`

// sessionSchema returns the strict schema for single-session responses.
func sessionSchema() *responseSchema {
	def := fmt.Sprintf(`{
		"type": "object",
		"properties": {
			"result_analysis": %s,
			"topic": {"type": "string"},
			"text": {"type": "string"},
			"theory": %s,
			"tasks": %s
		},
		"required": ["result_analysis", "topic", "text", "theory", "tasks"],
		"additionalProperties": false
	}`, resultAnalysisSchema, theorySchema, tasksSchema)

	return &responseSchema{Name: "practice_session", Definition: json.RawMessage(def)}
}

// planSchema returns the strict schema for multi-day plan responses.
func planSchema() *responseSchema {
	def := fmt.Sprintf(`{
		"type": "object",
		"properties": {
			"result_analysis": %s,
			"topic": {"type": "string"},
			"text": {"type": "string"},
			"theory": %s,
			"days": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {
						"day": {"type": "integer"},
						"focus": {"type": "string"},
						"tasks": %s
					},
					"required": ["day", "focus", "tasks"],
					"additionalProperties": false
				}
			}
		},
		"required": ["result_analysis", "topic", "text", "theory", "days"],
		"additionalProperties": false
	}`, resultAnalysisSchema, theorySchema, tasksSchema)

	return &responseSchema{Name: "practice_plan", Definition: json.RawMessage(def)}
}
