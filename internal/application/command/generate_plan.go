package command

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rdstettler/learnapp-sub001/internal/domain/progress"
	"github.com/rdstettler/learnapp-sub001/internal/domain/session"
	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
	"github.com/rdstettler/learnapp-sub001/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GENERATE PLAN COMMAND
// The multi-day variant of session generation: the generator returns
// day-grouped tasks, each carrying a day number and a focus label, but
// the generate/filter/persist/consume algorithm is identical per day.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultPlanDays is the number of days requested when the caller does
// not specify one.
const DefaultPlanDays = 5

// GeneratePlanCommand contains the data to generate a plan.
type GeneratePlanCommand struct {
	// UserID - trusted user identifier.
	UserID string

	// Days - how many days to plan for. Defaults to DefaultPlanDays.
	Days int

	// Language - language/spelling preference. Defaults to DefaultLanguage.
	Language string
}

// Validate validates the command.
func (c GeneratePlanCommand) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("generate_plan: user_id is required: %w", shared.ErrValidation)
	}
	if c.Days < 0 {
		return fmt.Errorf("generate_plan: days must not be negative: %w", shared.ErrValidation)
	}
	if c.Days > 30 {
		return fmt.Errorf("generate_plan: days must not exceed 30: %w", shared.ErrValidation)
	}
	return nil
}

// GeneratePlanResult contains the freshly persisted plan.
type GeneratePlanResult struct {
	// Plan - the persisted plan with its day-grouped tasks.
	Plan *session.Plan

	// FilteredMastered - how many generated tasks were dropped as mastered.
	FilteredMastered int

	// ConsumedOutcomes - how many raw outcome records this call consumed.
	ConsumedOutcomes int
}

// GeneratePlanHandler handles the GeneratePlanCommand.
type GeneratePlanHandler struct {
	outcomeRepo  session.OutcomeRepository
	sessionRepo  session.Repository
	progressRepo progress.Repository
	logRepo      session.GenerationLogRepository
	generator    session.Generator
	publisher    shared.EventPublisher
	log          *logger.Logger

	// buildTasks and auditing are shared with session generation.
	sessionHandler *GenerateSessionHandler
}

// NewGeneratePlanHandler creates a new GeneratePlanHandler.
func NewGeneratePlanHandler(
	outcomeRepo session.OutcomeRepository,
	sessionRepo session.Repository,
	progressRepo progress.Repository,
	logRepo session.GenerationLogRepository,
	generator session.Generator,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *GeneratePlanHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GeneratePlanHandler{
		outcomeRepo:  outcomeRepo,
		sessionRepo:  sessionRepo,
		progressRepo: progressRepo,
		logRepo:      logRepo,
		generator:    generator,
		publisher:    publisher,
		log:          log.With(logger.Component("generate_plan")),
		sessionHandler: NewGenerateSessionHandler(
			outcomeRepo, sessionRepo, progressRepo, logRepo, generator, publisher, log,
		),
	}
}

// Handle executes the generate plan command.
func (h *GeneratePlanHandler) Handle(ctx context.Context, cmd GeneratePlanCommand) (*GeneratePlanResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	days := cmd.Days
	if days == 0 {
		days = DefaultPlanDays
	}
	language := cmd.Language
	if language == "" {
		language = DefaultLanguage
	}

	pending, err := h.outcomeRepo.ListUnprocessed(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("generate_plan: list outcomes: %w", err)
	}
	if len(pending) == 0 {
		return nil, shared.ErrNoPendingOutcomes
	}

	req := session.GeneratorRequest{
		PendingOutcomes:    pending,
		EligibleApps:       eligibleApps(),
		LanguagePreference: language,
		Days:               days,
	}
	resp, err := h.generator.GeneratePlan(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate_plan: %w", err)
	}

	h.sessionHandler.recordAnalysis(ctx, cmd.UserID, resp.ResultAnalysis)

	plan := &session.Plan{
		ID:        uuid.NewString(),
		UserID:    cmd.UserID,
		Topic:     resp.Topic,
		Status:    session.PlanActive,
		CreatedAt: time.Now().UTC(),
	}

	filtered := 0
	for _, day := range sortedDays(resp.Days) {
		planDay := &session.PlanDay{
			Day:   day.Day,
			Focus: strings.TrimSpace(day.Focus),
		}
		// Each day persists as its own session row under the plan.
		daySessionID := uuid.NewString()
		n, err := h.sessionHandler.buildTasks(ctx, cmd.UserID, daySessionID, day.Tasks, func(t *session.Task) {
			t.Day = day.Day
			t.Focus = planDay.Focus
			planDay.Tasks = append(planDay.Tasks, t)
		})
		if err != nil {
			return nil, fmt.Errorf("generate_plan: day %d: %w", day.Day, err)
		}
		filtered += n
		if len(planDay.Tasks) > 0 {
			plan.Days = append(plan.Days, planDay)
		}
	}

	h.sessionHandler.auditLog(ctx, cmd.UserID, req, resp)

	consumedIDs := outcomeIDs(pending)
	if err := h.sessionRepo.SavePlan(ctx, plan, consumedIDs); err != nil {
		return nil, fmt.Errorf("generate_plan: persist: %w", err)
	}

	if h.publisher != nil {
		taskCount := 0
		for _, d := range plan.Days {
			taskCount += len(d.Tasks)
		}
		_ = h.publisher.Publish(shared.NewSessionGeneratedEvent(cmd.UserID, plan.ID, taskCount))
	}

	h.log.Info("plan generated",
		logger.UserID(cmd.UserID),
		logger.PlanID(plan.ID),
		logger.Int("days", len(plan.Days)),
		logger.Int("filtered_mastered", filtered),
	)

	return &GeneratePlanResult{
		Plan:             plan,
		FilteredMastered: filtered,
		ConsumedOutcomes: len(consumedIDs),
	}, nil
}

// sortedDays returns the generated days ordered by day number.
func sortedDays(days []session.GeneratedDay) []session.GeneratedDay {
	out := make([]session.GeneratedDay, len(days))
	copy(out, days)
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}
