// Package api provides HTTP handlers for the API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pulseprep/pulseprep-api/internal/api/shared"
	"github.com/pulseprep/pulseprep-api/internal/orchestrator"
	"github.com/pulseprep/pulseprep-api/internal/platform/logger"
)

// DistributionService is the slice of the orchestrator the admin endpoints
// use.
type DistributionService interface {
	Distribute(
		ctx context.Context,
		userIDs []uuid.UUID,
		asOf time.Time,
	) (*orchestrator.Summary, error)
	DeliverNewItem(ctx context.Context, userID uuid.UUID) (*orchestrator.DeliveryOutcome, error)
}

// AdminHandler handles operator-triggered distribution requests.
type AdminHandler struct {
	service  DistributionService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service DistributionService, log *slog.Logger) *AdminHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AdminHandler")
	}
	if service == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("service cannot be nil for AdminHandler")
	}
	return &AdminHandler{
		service:  service,
		validate: validator.New(),
		logger:   log.With(slog.String("component", "admin_handler")),
	}
}

// DistributeRequest optionally narrows a distribution run. An empty body
// (or empty fields) means every opted-in user, anchored to now.
type DistributeRequest struct {
	UserIDs []string `json:"user_ids" validate:"omitempty,dive,uuid"`
	AsOf    string   `json:"as_of"    validate:"omitempty,datetime=2006-01-02"`
}

// Distribute handles POST /api/admin/distribute. It runs a distribution
// round synchronously and reports the summary, including the per-user
// outcomes. Re-running is safe: users who already received their item for
// the day are skipped.
func (h *AdminHandler) Distribute(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req DistributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Debug("distribute request failed validation", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	userIDs := make([]uuid.UUID, 0, len(req.UserIDs))
	for _, id := range req.UserIDs {
		userIDs = append(userIDs, uuid.MustParse(id)) // format guaranteed by validation
	}
	var asOf time.Time
	if req.AsOf != "" {
		asOf, _ = time.Parse(time.DateOnly, req.AsOf)
	}

	log.Info("manual distribution triggered",
		slog.Int("targets", len(userIDs)),
		slog.String("as_of", req.AsOf))

	summary, err := h.service.Distribute(r.Context(), userIDs, asOf)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}

// DeliveryResponse represents the response data for a single delivery.
type DeliveryResponse struct {
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	ContentID string `json:"content_id,omitempty"`
	Day       string `json:"day,omitempty"`
}

// DeliverToUser handles POST /api/admin/users/{id}/deliver, issuing (or
// confirming) the day's item for one user.
func (h *AdminHandler) DeliverToUser(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user ID")
		return
	}

	outcome, err := h.service.DeliverNewItem(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	resp := DeliveryResponse{Status: string(outcome.Status), Reason: outcome.Reason}
	if outcome.Record != nil {
		resp.ContentID = outcome.Record.ContentID.String()
		resp.Day = outcome.Record.Day.Format("2006-01-02")
	}

	log.Debug("single-user delivery handled",
		slog.String("user_id", userID.String()),
		slog.String("status", resp.Status))
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
