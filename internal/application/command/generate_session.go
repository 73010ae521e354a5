package command

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rdstettler/learnapp-sub001/internal/domain/exercise"
	"github.com/rdstettler/learnapp-sub001/internal/domain/progress"
	"github.com/rdstettler/learnapp-sub001/internal/domain/session"
	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
	"github.com/rdstettler/learnapp-sub001/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GENERATE SESSION COMMAND
// The orchestration loop: consume queued raw outcomes, ask the content
// generator for new material, fold its retroactive grading into the
// ledger, filter out already-mastered tasks, and persist the remainder
// as a new session - atomically with marking the outcomes consumed.
// ══════════════════════════════════════════════════════════════════════════════

// NothingNewMessage is returned in place of generated text when every
// candidate task was filtered out as already mastered.
const NothingNewMessage = "You have mastered everything we could come up with - nothing new to practice right now."

// DefaultLanguage is the language/spelling preference used when the
// caller supplies none.
const DefaultLanguage = "de-CH"

// GenerateSessionCommand contains the data to generate a session.
type GenerateSessionCommand struct {
	// UserID - trusted user identifier.
	UserID string

	// Language - language/spelling preference passed to the generator.
	// Defaults to DefaultLanguage.
	Language string
}

// Validate validates the command.
func (c GenerateSessionCommand) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("generate_session: user_id is required: %w", shared.ErrValidation)
	}
	return nil
}

// GenerateSessionResult contains the freshly persisted session.
type GenerateSessionResult struct {
	// Session - the persisted session with its ordered tasks. May carry
	// zero tasks and a "nothing new" text when everything was mastered.
	Session *session.Session

	// FilteredMastered - how many generated tasks were dropped as mastered.
	FilteredMastered int

	// ConsumedOutcomes - how many raw outcome records this call consumed.
	ConsumedOutcomes int
}

// GenerateSessionHandler handles the GenerateSessionCommand.
type GenerateSessionHandler struct {
	outcomeRepo  session.OutcomeRepository
	sessionRepo  session.Repository
	progressRepo progress.Repository
	logRepo      session.GenerationLogRepository
	generator    session.Generator
	publisher    shared.EventPublisher
	log          *logger.Logger
}

// NewGenerateSessionHandler creates a new GenerateSessionHandler.
func NewGenerateSessionHandler(
	outcomeRepo session.OutcomeRepository,
	sessionRepo session.Repository,
	progressRepo progress.Repository,
	logRepo session.GenerationLogRepository,
	generator session.Generator,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *GenerateSessionHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GenerateSessionHandler{
		outcomeRepo:  outcomeRepo,
		sessionRepo:  sessionRepo,
		progressRepo: progressRepo,
		logRepo:      logRepo,
		generator:    generator,
		publisher:    publisher,
		log:          log.With(logger.Component("generate_session")),
	}
}

// Handle executes the generate session command.
func (h *GenerateSessionHandler) Handle(ctx context.Context, cmd GenerateSessionCommand) (*GenerateSessionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	language := cmd.Language
	if language == "" {
		language = DefaultLanguage
	}

	// Step 1: fetch the pending batch.
	pending, err := h.outcomeRepo.ListUnprocessed(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("generate_session: list outcomes: %w", err)
	}
	if len(pending) == 0 {
		return nil, shared.ErrNoPendingOutcomes
	}

	// Steps 2-3: call the generator. On any failure nothing has been
	// written and the pending records stay unprocessed for a later try.
	req := session.GeneratorRequest{
		PendingOutcomes:    pending,
		EligibleApps:       eligibleApps(),
		LanguagePreference: language,
	}
	resp, err := h.generator.GenerateSession(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate_session: %w", err)
	}

	// Step 4: fold the generator's retroactive grading into the ledger.
	h.recordAnalysis(ctx, cmd.UserID, resp.ResultAnalysis)

	// Step 5: filter mastered tasks and build the session.
	newSession := &session.Session{
		ID:        uuid.NewString(),
		UserID:    cmd.UserID,
		Topic:     resp.Topic,
		Text:      resp.Text,
		Theory:    resp.Theory,
		CreatedAt: time.Now().UTC(),
	}
	filtered, err := h.buildTasks(ctx, cmd.UserID, newSession.ID, resp.Tasks, func(t *session.Task) {
		newSession.Tasks = append(newSession.Tasks, t)
	})
	if err != nil {
		return nil, fmt.Errorf("generate_session: %w", err)
	}
	if len(newSession.Tasks) == 0 {
		newSession.Text = NothingNewMessage
	}

	// Step 6: audit log, best-effort.
	h.auditLog(ctx, cmd.UserID, req, resp)

	// Steps 5+7 persistence: tasks and the consumed flags commit together.
	consumedIDs := outcomeIDs(pending)
	if err := h.sessionRepo.SaveGenerated(ctx, newSession, consumedIDs); err != nil {
		return nil, fmt.Errorf("generate_session: persist: %w", err)
	}

	if h.publisher != nil {
		_ = h.publisher.Publish(shared.NewSessionGeneratedEvent(cmd.UserID, newSession.ID, len(newSession.Tasks)))
	}

	h.log.Info("session generated",
		logger.UserID(cmd.UserID),
		logger.SessionID(newSession.ID),
		logger.Int("tasks", len(newSession.Tasks)),
		logger.Int("filtered_mastered", filtered),
		logger.Int("consumed_outcomes", len(consumedIDs)),
	)

	return &GenerateSessionResult{
		Session:          newSession,
		FilteredMastered: filtered,
		ConsumedOutcomes: len(consumedIDs),
	}, nil
}

// recordAnalysis folds result_analysis entries with content into the
// ledger, keyed by the deterministic fingerprint of that content. This
// lets the generator retroactively grade ambiguous procedural exercises.
func (h *GenerateSessionHandler) recordAnalysis(ctx context.Context, userID string, analysis []session.ResultAnalysis) {
	now := time.Now().UTC()
	for _, a := range analysis {
		if strings.TrimSpace(a.QuestionHashContent) == "" {
			continue
		}
		fp := progress.Fingerprint(a.QuestionHashContent)
		if err := h.progressRepo.RecordOutcome(ctx, userID, fp, a.IsCorrect, now); err != nil {
			// The grading is advisory; a failed fold must not abort generation.
			h.log.Warn("failed to fold result analysis",
				logger.UserID(userID), logger.ExerciseID(fp), logger.Err(err))
		}
	}
}

// buildTasks fingerprints each generated task, drops the ones the user
// has already mastered, and appends the survivors with sequential order
// indexes via emit.
func (h *GenerateSessionHandler) buildTasks(ctx context.Context, userID, sessionID string, generated []session.GeneratedTask, emit func(*session.Task)) (filtered int, err error) {
	type candidate struct {
		task session.GeneratedTask
		fp   string
	}
	candidates := make([]candidate, 0, len(generated))
	fps := make([]string, 0, len(generated))
	for _, t := range generated {
		content := strings.TrimSpace(string(t.Content))
		if content == "" || content == "null" || content == `""` {
			continue
		}
		fp := progress.Fingerprint(content)
		candidates = append(candidates, candidate{task: t, fp: fp})
		fps = append(fps, fp)
	}

	records, err := h.progressRepo.GetByExerciseIDs(ctx, userID, fps)
	if err != nil {
		return 0, fmt.Errorf("mastery lookup: %w", err)
	}

	order := 0
	for _, c := range candidates {
		if rec, ok := records[c.fp]; ok && rec.Mastered() {
			filtered++
			continue
		}
		emit(&session.Task{
			ID:         uuid.NewString(),
			SessionID:  sessionID,
			AppID:      c.task.AppID,
			OrderIndex: order,
			Content:    string(c.task.Content),
			State:      session.TaskPending,
		})
		order++
	}
	return filtered, nil
}

// auditLog persists the generation interaction. Failures are logged and
// swallowed; auditing must never fail the call.
func (h *GenerateSessionHandler) auditLog(ctx context.Context, userID string, req any, resp any) {
	if h.logRepo == nil {
		return
	}
	reqJSON, _ := json.Marshal(req)
	respJSON, _ := json.Marshal(resp)
	entry := &session.GenerationLog{
		ID:       uuid.NewString(),
		UserID:   userID,
		Request:  string(reqJSON),
		Response: string(respJSON),
	}
	if err := h.logRepo.Save(ctx, entry); err != nil {
		h.log.Warn("failed to persist generation log", logger.UserID(userID), logger.Err(err))
	}
}

// eligibleApps maps the app catalog to generator descriptors.
func eligibleApps() []session.AppDescriptor {
	apps := exercise.Apps()
	out := make([]session.AppDescriptor, len(apps))
	for i, a := range apps {
		out[i] = session.AppDescriptor{ID: a.ID, ContentShape: a.ContentShape}
	}
	return out
}

// outcomeIDs extracts the ids of a raw outcome batch.
func outcomeIDs(outcomes []*session.RawOutcome) []string {
	ids := make([]string, len(outcomes))
	for i, o := range outcomes {
		ids[i] = o.ID
	}
	return ids
}
