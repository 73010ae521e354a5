// Package generator implements the content generator client on top of an
// OpenAI-compatible chat completion API. The generator is asked for
// strictly structured JSON via a response schema, and every response is
// validated against the same schema before it reaches the orchestrator.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rdstettler/learnapp-sub001/internal/domain/session"
	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
	"github.com/rdstettler/learnapp-sub001/pkg/circuitbreaker"
	"github.com/rdstettler/learnapp-sub001/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the generator client.
type ClientConfig struct {
	// APIKey authenticates against the generator API.
	APIKey string

	// BaseURL overrides the API endpoint, for OpenAI-compatible backends.
	BaseURL string

	// Model is the model identifier to request.
	Model string

	// Timeout is the per-call budget, covering all retry attempts.
	Timeout time.Duration

	// MaxCompletionTokens bounds the response size.
	MaxCompletionTokens int

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(apiKey string) ClientConfig {
	return ClientConfig{
		APIKey:              apiKey,
		Model:               "gpt-4o-mini",
		Timeout:             90 * time.Second,
		MaxCompletionTokens: 8192,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client implements session.Generator.
type Client struct {
	config  ClientConfig
	api     *openai.Client
	logger  *slog.Logger
	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker
}

// NewClient creates a new generator client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Timeout == 0 {
		config.Timeout = 90 * time.Second
	}

	apiConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		apiConfig.BaseURL = config.BaseURL
	}

	logger := config.Logger
	return &Client{
		config:  config,
		api:     openai.NewClientWithConfig(apiConfig),
		logger:  logger,
		retrier: retry.GeneratorRetrier(),
		breaker: circuitbreaker.GeneratorBreaker(func(name string, from, to circuitbreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		}),
	}
}

// GenerateSession produces a single session's worth of content.
func (c *Client) GenerateSession(ctx context.Context, req session.GeneratorRequest) (*session.GeneratorResponse, error) {
	raw, err := c.complete(ctx, req, sessionSchema())
	if err != nil {
		return nil, err
	}

	var resp session.GeneratorResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrGeneratorResponse, err)
	}

	return &resp, nil
}

// GeneratePlan produces day-grouped content for a multi-day plan.
func (c *Client) GeneratePlan(ctx context.Context, req session.GeneratorRequest) (*session.PlanGeneratorResponse, error) {
	raw, err := c.complete(ctx, req, planSchema())
	if err != nil {
		return nil, err
	}

	var resp session.PlanGeneratorResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrGeneratorResponse, err)
	}

	return &resp, nil
}

// complete runs one schema-constrained completion through the circuit
// breaker and retrier and returns the validated raw JSON.
func (c *Client) complete(ctx context.Context, req session.GeneratorRequest, schema *responseSchema) (json.RawMessage, error) {
	userPrompt, err := buildUserPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrGeneration, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	start := time.Now()

	var raw json.RawMessage
	err = c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			var callErr error
			raw, callErr = c.call(ctx, userPrompt, schema)
			return callErr
		})
	})

	c.logger.Info("generator call finished",
		slog.String("schema", schema.Name),
		slog.Int("pending_outcomes", len(req.PendingOutcomes)),
		slog.Duration("latency", time.Since(start)),
		slog.Bool("success", err == nil),
	)

	if err != nil {
		return nil, c.mapError(err)
	}

	return raw, nil
}

func (c *Client) call(ctx context.Context, userPrompt string, schema *responseSchema) (json.RawMessage, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxCompletionTokens: c.config.MaxCompletionTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schema.Name,
				Schema: schema.Definition,
				Strict: true,
			},
		},
	}

	resp, err := c.api.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, classifyAPIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, retry.Permanent(fmt.Errorf("%w: no choices in response", shared.ErrGeneratorResponse))
	}

	raw := json.RawMessage(resp.Choices[0].Message.Content)

	// The schema is declared strict, but compatible backends do not all
	// enforce it. Validate locally before trusting the payload.
	if err := schema.Validate(raw); err != nil {
		return nil, retry.Retryable(err)
	}

	return raw, nil
}

// classifyAPIError decides retryability of transport-level failures.
func classifyAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return retry.Retryable(fmt.Errorf("%w: rate limited: %v", shared.ErrGeneratorUnavailable, err))
		case apiErr.HTTPStatusCode >= 500:
			return retry.Retryable(fmt.Errorf("%w: %v", shared.ErrGeneratorUnavailable, err))
		default:
			return retry.Permanent(fmt.Errorf("%w: %v", shared.ErrGeneratorUnavailable, err))
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return retry.Permanent(fmt.Errorf("%w: %v", shared.ErrGeneratorTimeout, err))
	}

	// Network-level errors are worth another attempt.
	return retry.Retryable(fmt.Errorf("%w: %v", shared.ErrGeneratorUnavailable, err))
}

// mapError translates breaker and context failures into domain errors.
func (c *Client) mapError(err error) error {
	switch {
	case errors.Is(err, circuitbreaker.ErrCircuitOpen),
		errors.Is(err, circuitbreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %v", shared.ErrGeneratorUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", shared.ErrGeneratorTimeout, err)
	case errors.Is(err, shared.ErrGeneration):
		return err
	default:
		return fmt.Errorf("%w: %v", shared.ErrGeneratorUnavailable, err)
	}
}

var _ session.Generator = (*Client)(nil)
