package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/application/command"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/application/query"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/achievement"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/conversation"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/shared"
	"github.com/BrunoPessoa22/tutoria-ia-backend/pkg/logger"
	"github.com/BrunoPessoa22/tutoria-ia-backend/pkg/timeutil"
)

var validate = validator.New()

// decodeJSON reads and validates a JSON request body into v.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	defer body.Close()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return false
	}
	return true
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "ok"
	healthy := true
	if s.deps.DB != nil {
		if err := s.deps.DB.Ping(ctx); err != nil {
			dbStatus = "unreachable"
			healthy = false
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"healthy":  healthy,
		"database": dbStatus,
		"uptime":   s.Uptime().String(),
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// IDENTITY-PROVIDER WEBHOOK
// ══════════════════════════════════════════════════════════════════════════════

// clerkEvent mirrors the provider's webhook payload shape.
type clerkEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
	} `json:"data"`
}

func (e clerkEvent) email() string {
	if len(e.Data.EmailAddresses) == 0 {
		return ""
	}
	return e.Data.EmailAddresses[0].EmailAddress
}

func (e clerkEvent) name() string {
	return strings.TrimSpace(strings.TrimSpace(e.Data.FirstName) + " " + strings.TrimSpace(e.Data.LastName))
}

// verifyWebhookSignature checks the HMAC-SHA256 hex signature of the raw
// body against the shared secret.
func (s *Server) verifyWebhookSignature(body []byte, signature string) bool {
	if s.config.WebhookSecret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(s.config.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

func (s *Server) handleClerkWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "failed to read request body")
		return
	}

	if !s.verifyWebhookSignature(body, r.Header.Get("X-Webhook-Signature")) {
		writeJSONError(w, http.StatusUnauthorized, "invalid_signature", "webhook signature verification failed")
		return
	}

	var event clerkEvent
	if err := json.Unmarshal(body, &event); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "webhook payload is not valid JSON")
		return
	}

	switch event.Type {
	case "user.created", "user.updated":
		u, err := s.deps.SyncUser.Handle(r.Context(), command.SyncUserCommand{
			ClerkID: event.Data.ID,
			Email:   event.email(),
			Name:    event.name(),
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user_id": u.ID})

	case "user.deleted":
		err := s.deps.DeleteUser.Handle(r.Context(), command.DeleteUserCommand{ClerkID: event.Data.ID})
		if err != nil {
			// A delete for an unknown user is fine; the provider retries
			// otherwise.
			if !shared.IsNotFound(err) {
				writeDomainError(w, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": true})

	default:
		s.logger.Debug("ignoring webhook event", logger.String("type", event.Type))
		writeJSON(w, http.StatusOK, map[string]any{"ignored": true})
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS & STREAKS
// ══════════════════════════════════════════════════════════════════════════════

type recordCompletionRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Level  int       `json:"level" validate:"min=0"`
	Module int       `json:"module" validate:"min=0"`
	Lesson int       `json:"lesson" validate:"min=1"`
}

type achievementResponse struct {
	Type        string    `json:"type"`
	LevelEarned int       `json:"level_earned"`
	EarnedAt    time.Time `json:"earned_at"`
}

func toAchievementResponses(in []*achievement.Achievement) []achievementResponse {
	out := make([]achievementResponse, 0, len(in))
	for _, a := range in {
		out = append(out, achievementResponse{Type: a.Type, LevelEarned: a.LevelEarned, EarnedAt: a.EarnedAt})
	}
	return out
}

func (s *Server) handleRecordCompletion(w http.ResponseWriter, r *http.Request) {
	var req recordCompletionRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	res, err := s.deps.RecordCompletion.Handle(r.Context(), command.RecordCompletionCommand{
		UserID: req.UserID,
		Level:  req.Level,
		Module: req.Module,
		Lesson: req.Lesson,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"changed":                 res.Changed,
		"current_level":           res.Progress.CurrentLevel,
		"current_module":          res.Progress.CurrentModule,
		"current_lesson":          res.Progress.CurrentLesson,
		"total_lessons_completed": res.Progress.TotalLessonsCompleted,
		"new_achievements":        toAchievementResponses(res.NewAchievements),
	})
}

type recordActivityRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`

	// ActivityDate is a calendar date ("2006-01-02"); empty means today.
	ActivityDate string `json:"activity_date,omitempty"`
}

func (s *Server) handleRecordActivity(w http.ResponseWriter, r *http.Request) {
	var req recordActivityRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	date := timeutil.Today()
	if req.ActivityDate != "" {
		var err error
		date, err = timeutil.ParseDate(req.ActivityDate)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "validation_error", "activity_date must be YYYY-MM-DD")
			return
		}
	}

	res, err := s.deps.RecordActivity.Handle(r.Context(), command.RecordActivityCommand{
		UserID:       req.UserID,
		ActivityDate: date,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transition":       res.Transition.String(),
		"current_streak":   res.Streak.CurrentStreak,
		"longest_streak":   res.Streak.LongestStreak,
		"new_achievements": toAchievementResponses(res.NewAchievements),
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// CONVERSATION & QUESTION LOGGING
// ══════════════════════════════════════════════════════════════════════════════

type messageRequest struct {
	Role    string `json:"role" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type logConversationRequest struct {
	UserID          uuid.UUID        `json:"user_id" validate:"required"`
	Level           int              `json:"level" validate:"min=0"`
	LessonNumber    int              `json:"lesson_number" validate:"min=1"`
	Messages        []messageRequest `json:"messages" validate:"required,min=1,dive"`
	DurationSeconds int              `json:"duration_seconds" validate:"min=0"`
}

func (s *Server) handleLogConversation(w http.ResponseWriter, r *http.Request) {
	var req logConversationRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	messages := make([]conversation.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, conversation.Message{Role: m.Role, Content: m.Content})
	}

	c, err := s.deps.LogConversation.Handle(r.Context(), command.LogConversationCommand{
		UserID:          req.UserID,
		Level:           req.Level,
		LessonNumber:    req.LessonNumber,
		Messages:        messages,
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":         c.ID,
		"created_at": c.CreatedAt,
	})
}

type logQuestionRequest struct {
	UserID       *uuid.UUID `json:"user_id,omitempty"`
	StudentLevel string     `json:"student_level,omitempty"`
	LessonNumber int        `json:"lesson_number" validate:"min=0"`
	Question     string     `json:"question" validate:"required"`
	Response     string     `json:"response" validate:"required"`
	Module       string     `json:"module,omitempty"`
	LessonName   string     `json:"lesson_name,omitempty"`
}

func (s *Server) handleLogQuestion(w http.ResponseWriter, r *http.Request) {
	var req logQuestionRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	q, err := s.deps.LogQuestion.Handle(r.Context(), command.LogQuestionCommand{
		UserID:       req.UserID,
		StudentLevel: req.StudentLevel,
		LessonNumber: req.LessonNumber,
		Question:     req.Question,
		Response:     req.Response,
		Module:       req.Module,
		LessonName:   req.LessonName,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":        q.ID,
		"timestamp": q.Timestamp,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// READ PATHS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleGetUserStats(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "user id must be a UUID")
		return
	}

	stats, err := s.deps.GetUserStats.Handle(r.Context(), query.GetUserStatsQuery{UserID: userID})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "user id must be a UUID")
		return
	}

	snapshot, err := s.deps.GetProgress.Handle(r.Context(), query.GetProgressQuery{UserID: userID})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleListAchievements(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "user id must be a UUID")
		return
	}

	achievements, err := s.deps.ListAchievements.Handle(r.Context(), query.ListAchievementsQuery{UserID: userID})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"achievements": toAchievementResponses(achievements),
		"total":        len(achievements),
	})
}

type conversationResponse struct {
	ID              uuid.UUID              `json:"id"`
	Level           int                    `json:"level"`
	LessonNumber    int                    `json:"lesson_number"`
	Messages        []conversation.Message `json:"messages"`
	DurationSeconds int                    `json:"duration_seconds"`
	CreatedAt       time.Time              `json:"created_at"`
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "user id must be a UUID")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			writeJSONError(w, http.StatusBadRequest, "validation_error", "limit must be a positive integer")
			return
		}
	}

	conversations, err := s.deps.ListConversations.Handle(r.Context(), query.ListConversationsQuery{
		UserID: userID,
		Limit:  limit,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]conversationResponse, 0, len(conversations))
	for _, c := range conversations {
		out = append(out, conversationResponse{
			ID:              c.ID,
			Level:           c.Level,
			LessonNumber:    c.LessonNumber,
			Messages:        c.Messages,
			DurationSeconds: c.DurationSeconds,
			CreatedAt:       c.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"conversations": out,
		"total":         len(out),
	})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "user id must be a UUID")
		return
	}

	if err := s.deps.DeleteUser.Handle(r.Context(), command.DeleteUserCommand{UserID: userID}); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
