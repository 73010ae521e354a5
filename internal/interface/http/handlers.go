package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rdstettler/learnapp-sub001/config"
	"github.com/rdstettler/learnapp-sub001/internal/application/command"
	"github.com/rdstettler/learnapp-sub001/internal/application/query"
	"github.com/rdstettler/learnapp-sub001/internal/domain/achievement"
	"github.com/rdstettler/learnapp-sub001/internal/domain/session"
	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
	"github.com/rdstettler/learnapp-sub001/pkg/logger"
)

// headerUserID carries the pre-authenticated user identity.
const headerUserID = "X-User-ID"

// maxBodyBytes bounds request body size.
const maxBodyBytes = 1 << 20 // 1 MB

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleHealth reports readiness: the process is up and stores respond.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ok",
		"uptime": s.Uptime().String(),
	}

	if s.deps.HealthChecker != nil {
		ctx, cancel := contextWithTimeout(r, 3*time.Second)
		defer cancel()

		if err := s.deps.HealthChecker.Ping(ctx); err != nil {
			status["status"] = "degraded"
			status["store"] = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
	}

	writeJSON(w, http.StatusOK, status)
}

// handleLive reports liveness: the process is up.
func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS & ACTIVITY HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// recordOutcomeRequest is the body of POST /api/v1/outcomes.
type recordOutcomeRequest struct {
	AppID      string `json:"app_id"`
	ExerciseID string `json:"exercise_id,omitempty"`
	Category   string `json:"category,omitempty"`
	Correct    bool   `json:"correct"`
	Content    string `json:"content,omitempty"`
	SessionID  string `json:"session_id,omitempty"`
}

// recordOutcomeResponse is the reply of POST /api/v1/outcomes.
type recordOutcomeResponse struct {
	ExerciseID   string    `json:"exercise_id"`
	SuccessCount int       `json:"success_count"`
	FailureCount int       `json:"failure_count"`
	Perfect      bool      `json:"perfect"`
	Mastered     bool      `json:"mastered"`
	RecordedAt   time.Time `json:"recorded_at"`
}

func (s *Server) handleRecordOutcome(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req recordOutcomeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.RecordOutcomeHandler.Handle(r.Context(), command.RecordOutcomeCommand{
		UserID:     userID,
		AppID:      req.AppID,
		ExerciseID: req.ExerciseID,
		Category:   req.Category,
		Correct:    req.Correct,
		Content:    req.Content,
		SessionID:  req.SessionID,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	resp := recordOutcomeResponse{
		ExerciseID: result.ExerciseID,
		RecordedAt: result.RecordedAt,
	}
	// The command tolerates a missing ledger read-back; the outcome
	// itself is already durable at this point.
	if result.Record != nil {
		resp.SuccessCount = result.Record.SuccessCount
		resp.FailureCount = result.Record.FailureCount
		resp.Perfect = result.Record.Perfect()
		resp.Mastered = result.Record.Mastered()
	}

	writeJSON(w, http.StatusOK, resp)
}

// streakResponse is the reply of GET /api/v1/streak.
type streakResponse struct {
	CurrentStreak    int    `json:"current_streak"`
	LongestStreak    int    `json:"longest_streak"`
	TotalActiveDays  int    `json:"total_active_days"`
	LastActivityDate string `json:"last_activity_date,omitempty"`
}

func (s *Server) handleGetStreak(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	summary, err := s.deps.GetStreakHandler.Handle(r.Context(), query.GetStreakQuery{UserID: userID})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	resp := streakResponse{
		CurrentStreak:   summary.CurrentStreak,
		LongestStreak:   summary.LongestStreak,
		TotalActiveDays: summary.TotalActiveDays,
	}
	if summary.LastActivityDate != nil {
		resp.LastActivityDate = summary.LastActivityDate.Format("2006-01-02")
	}

	writeJSON(w, http.StatusOK, resp)
}

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// achievementView is the wire form of one achievement.
type achievementView struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Tier        string     `json:"tier"`
	Earned      bool       `json:"earned"`
	AwardedAt   *time.Time `json:"awarded_at,omitempty"`
}

func toAchievementView(v achievement.View) achievementView {
	return achievementView{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		Tier:        string(v.Tier),
		Earned:      v.Earned,
		AwardedAt:   v.AwardedAt,
	}
}

func (s *Server) handleListAchievements(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	views, err := s.deps.ListAchievementsHandler.Handle(r.Context(), query.ListAchievementsQuery{UserID: userID})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	resp := make([]achievementView, len(views))
	for i, v := range views {
		resp[i] = toAchievementView(v)
	}

	writeJSON(w, http.StatusOK, resp)
}

// checkAchievementsResponse is the reply of POST /api/v1/achievements/check.
type checkAchievementsResponse struct {
	NewlyAwarded []achievementView `json:"newly_awarded"`
	CheckedAt    time.Time         `json:"checked_at"`
}

func (s *Server) handleCheckAchievements(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	result, err := s.deps.CheckAchievementsHandler.Handle(r.Context(), command.CheckAchievementsCommand{UserID: userID})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	newly := make([]achievementView, len(result.NewlyAwarded))
	for i, def := range result.NewlyAwarded {
		newly[i] = toAchievementView(achievement.View{Definition: def, Earned: true})
	}

	writeJSON(w, http.StatusOK, checkAchievementsResponse{
		NewlyAwarded: newly,
		CheckedAt:    result.CheckedAt,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// taskView is the wire form of one session task.
type taskView struct {
	ID         string          `json:"id"`
	AppID      string          `json:"app_id"`
	OrderIndex int             `json:"order_index"`
	Content    json.RawMessage `json:"content"`
	State      string          `json:"state"`
	Day        int             `json:"day,omitempty"`
	Focus      string          `json:"focus,omitempty"`
}

// sessionView is the wire form of one session.
type sessionView struct {
	ID        string                `json:"id"`
	Topic     string                `json:"topic"`
	Text      string                `json:"text"`
	Theory    []session.TheoryBlock `json:"theory,omitempty"`
	PlanID    string                `json:"plan_id,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	Tasks     []taskView            `json:"tasks"`
}

func toSessionView(s *session.Session) sessionView {
	v := sessionView{
		ID:        s.ID,
		Topic:     s.Topic,
		Text:      s.Text,
		Theory:    s.Theory,
		PlanID:    s.PlanID,
		CreatedAt: s.CreatedAt,
		Tasks:     make([]taskView, len(s.Tasks)),
	}
	for i, t := range s.Tasks {
		v.Tasks[i] = toTaskView(t)
	}
	return v
}

func toTaskView(t *session.Task) taskView {
	return taskView{
		ID:         t.ID,
		AppID:      t.AppID,
		OrderIndex: t.OrderIndex,
		Content:    json.RawMessage(t.Content),
		State:      string(t.State),
		Day:        t.Day,
		Focus:      t.Focus,
	}
}

// activeSessionResponse is the reply of GET /api/v1/session.
type activeSessionResponse struct {
	State           string          `json:"state"`
	Session         *sessionView    `json:"session,omitempty"`
	PendingOutcomes int             `json:"pending_outcomes"`
	Suggested       []suggestedItem `json:"suggested,omitempty"`
}

// suggestedItem is one catalog exercise suggested to bridge the gap
// until enough outcome data has accumulated.
type suggestedItem struct {
	ID         string `json:"id"`
	AppID      string `json:"app_id"`
	Descriptor string `json:"descriptor"`
}

func (s *Server) handleGetActiveSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	result, err := s.deps.GetActiveSessionHandler.Handle(r.Context(), query.GetActiveSessionQuery{UserID: userID})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	resp := activeSessionResponse{
		State:           string(result.State),
		PendingOutcomes: result.PendingOutcomes,
	}
	if result.Session != nil {
		v := toSessionView(result.Session)
		resp.Session = &v
	}
	if s.featureEnabled(config.FeatureSuggestions, userID) {
		for _, item := range result.Suggested {
			resp.Suggested = append(resp.Suggested, suggestedItem{
				ID:         item.ID,
				AppID:      item.AppID,
				Descriptor: item.Descriptor,
			})
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// generateSessionRequest is the body of POST /api/v1/session/generate.
type generateSessionRequest struct {
	Language string `json:"language,omitempty"`
}

// generateSessionResponse is the reply of POST /api/v1/session/generate.
type generateSessionResponse struct {
	Session          sessionView `json:"session"`
	FilteredMastered int         `json:"filtered_mastered"`
	ConsumedOutcomes int         `json:"consumed_outcomes"`
}

func (s *Server) handleGenerateSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req generateSessionRequest
	if r.ContentLength > 0 && !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.GenerateSessionHandler.Handle(r.Context(), command.GenerateSessionCommand{
		UserID:   userID,
		Language: req.Language,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, generateSessionResponse{
		Session:          toSessionView(result.Session),
		FilteredMastered: result.FilteredMastered,
		ConsumedOutcomes: result.ConsumedOutcomes,
	})
}

// completeTasksRequest is the body of POST /api/v1/session/tasks/complete.
type completeTasksRequest struct {
	TaskIDs []string `json:"task_ids"`
}

// completeTasksResponse is the reply of POST /api/v1/session/tasks/complete.
type completeTasksResponse struct {
	Completed int `json:"completed"`
}

func (s *Server) handleCompleteTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req completeTasksRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.CompleteTasksHandler.Handle(r.Context(), command.CompleteTasksCommand{
		UserID:  userID,
		TaskIDs: req.TaskIDs,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, completeTasksResponse{Completed: result.Completed})
}

// ══════════════════════════════════════════════════════════════════════════════
// PLAN HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// planDayView is the wire form of one plan day.
type planDayView struct {
	Day   int        `json:"day"`
	Focus string     `json:"focus"`
	Tasks []taskView `json:"tasks"`
}

// planView is the wire form of one plan.
type planView struct {
	ID        string        `json:"id"`
	Topic     string        `json:"topic"`
	Status    string        `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	Days      []planDayView `json:"days"`
}

func toPlanView(p *session.Plan) planView {
	v := planView{
		ID:        p.ID,
		Topic:     p.Topic,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
		Days:      make([]planDayView, len(p.Days)),
	}
	for i, d := range p.Days {
		dayView := planDayView{
			Day:   d.Day,
			Focus: d.Focus,
			Tasks: make([]taskView, len(d.Tasks)),
		}
		for j, t := range d.Tasks {
			dayView.Tasks[j] = toTaskView(t)
		}
		v.Days[i] = dayView
	}
	return v
}

func (s *Server) handleGetActivePlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if !s.requirePlans(w, userID) {
		return
	}

	plan, err := s.deps.GetActivePlanHandler.Handle(r.Context(), query.GetActivePlanQuery{UserID: userID})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPlanView(plan))
}

// generatePlanRequest is the body of POST /api/v1/plan/generate.
type generatePlanRequest struct {
	Days     int    `json:"days,omitempty"`
	Language string `json:"language,omitempty"`
}

// generatePlanResponse is the reply of POST /api/v1/plan/generate.
type generatePlanResponse struct {
	Plan             planView `json:"plan"`
	FilteredMastered int      `json:"filtered_mastered"`
	ConsumedOutcomes int      `json:"consumed_outcomes"`
}

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if !s.requirePlans(w, userID) {
		return
	}

	var req generatePlanRequest
	if r.ContentLength > 0 && !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.GeneratePlanHandler.Handle(r.Context(), command.GeneratePlanCommand{
		UserID:   userID,
		Days:     req.Days,
		Language: req.Language,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, generatePlanResponse{
		Plan:             toPlanView(result.Plan),
		FilteredMastered: result.FilteredMastered,
		ConsumedOutcomes: result.ConsumedOutcomes,
	})
}

func (s *Server) handleAbandonPlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if !s.requirePlans(w, userID) {
		return
	}

	if err := s.deps.AbandonPlanHandler.Handle(r.Context(), command.AbandonPlanCommand{UserID: userID}); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})
}

// ══════════════════════════════════════════════════════════════════════════════
// FEEDBACK HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// submitFeedbackRequest is the body of POST /api/v1/feedback.
type submitFeedbackRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req submitFeedbackRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	if err := s.deps.SubmitFeedbackHandler.Handle(r.Context(), command.SubmitFeedbackCommand{
		UserID:  userID,
		Message: req.Message,
	}); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "received"})
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST / ERROR HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// requireUser extracts the trusted user identity or rejects the request.
// featureEnabled consults the feature gate; a nil gate enables everything.
func (s *Server) featureEnabled(name, userID string) bool {
	if s.deps.Features == nil {
		return true
	}
	return s.deps.Features.IsEnabledFor(name, userID)
}

// requirePlans rejects plan requests for users outside the plans rollout.
func (s *Server) requirePlans(w http.ResponseWriter, userID string) bool {
	if !s.featureEnabled(config.FeaturePlans, userID) {
		writeJSONError(w, http.StatusForbidden, "feature_disabled", "Plans are not enabled for this user")
		return false
	}
	return true
}

func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get(headerUserID)
	if userID == "" {
		writeJSONError(w, http.StatusBadRequest, "missing_user", "X-User-ID header is required")
		return "", false
	}
	return userID, true
}

// decodeBody decodes a JSON request body, rejecting oversized or
// malformed payloads.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dest); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body is not valid JSON: "+err.Error())
		return false
	}

	return true
}

// writeDomainError maps domain errors onto HTTP status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case shared.IsConflict(err),
		errors.Is(err, shared.ErrInvalidState),
		errors.Is(err, shared.ErrStateTransition):
		writeJSONError(w, http.StatusConflict, "conflict", err.Error())
	case shared.IsGeneration(err):
		writeJSONError(w, http.StatusBadGateway, "generation_failed", err.Error())
	case shared.IsPersistence(err):
		writeJSONError(w, http.StatusServiceUnavailable, "store_unavailable", err.Error())
	default:
		s.logger.Error("unhandled error",
			logger.String("path", r.URL.Path),
			logger.String("request_id", getRequestID(r.Context())),
			logger.Err(err),
		)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

// contextWithTimeout derives a bounded context from the request.
func contextWithTimeout(r *http.Request, d time.Duration) (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}
