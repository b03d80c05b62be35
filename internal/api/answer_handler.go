package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pulseprep/pulseprep-api/internal/api/shared"
	"github.com/pulseprep/pulseprep-api/internal/orchestrator"
	"github.com/pulseprep/pulseprep-api/internal/platform/logger"
)

// AnswerService is the slice of the orchestrator the answer webhook uses.
type AnswerService interface {
	ProcessAnswer(
		ctx context.Context,
		userID, contentID uuid.UUID,
		selectedOption string,
		answeredAt time.Time,
	) (*orchestrator.AnswerOutcome, error)
}

// AnswerRequest represents the webhook body for submitting an answer.
type AnswerRequest struct {
	UserID         string `json:"user_id"         validate:"required,uuid"`
	ContentID      string `json:"content_id"      validate:"required,uuid"`
	SelectedOption string `json:"selected_option" validate:"required"`
}

// AnswerResponse represents the processing outcome returned to the caller.
type AnswerResponse struct {
	Status            string `json:"status"`
	Correct           bool   `json:"correct"`
	Difficulty        string `json:"difficulty"`
	DifficultyChanged bool   `json:"difficulty_changed"`
	Streak            int    `json:"streak"`
}

// AnswerHandler handles answer submissions from delivery channels that call
// back over HTTP instead of the built-in Telegram listener.
type AnswerHandler struct {
	service  AnswerService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAnswerHandler creates a new AnswerHandler.
func NewAnswerHandler(service AnswerService, log *slog.Logger) *AnswerHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AnswerHandler")
	}
	if service == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("service cannot be nil for AnswerHandler")
	}
	return &AnswerHandler{
		service:  service,
		validate: validator.New(),
		logger:   log.With(slog.String("component", "answer_handler")),
	}
}

// SubmitAnswer handles POST /api/webhook/answers.
func (h *AnswerHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Debug("answer request failed validation", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	// UUID format is already guaranteed by validation.
	userID := uuid.MustParse(req.UserID)
	contentID := uuid.MustParse(req.ContentID)

	outcome, err := h.service.ProcessAnswer(
		r.Context(), userID, contentID, req.SelectedOption, time.Now())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	status := http.StatusOK
	if outcome.Status == orchestrator.AnswerDuplicate {
		// The original processing already happened; report it idempotently.
		shared.RespondWithJSON(w, r, status, AnswerResponse{
			Status: string(outcome.Status),
		})
		return
	}

	log.Debug("answer processed via webhook",
		slog.String("user_id", req.UserID),
		slog.Bool("correct", outcome.Correct))
	shared.RespondWithJSON(w, r, status, AnswerResponse{
		Status:            string(outcome.Status),
		Correct:           outcome.Correct,
		Difficulty:        outcome.Difficulty.String(),
		DifficultyChanged: outcome.DifficultyChanged,
		Streak:            outcome.Streak,
	})
}
