package api

import (
	"errors"
	"net/http"

	"github.com/pulseprep/pulseprep-api/internal/domain"
	"github.com/pulseprep/pulseprep-api/internal/orchestrator"
	"github.com/pulseprep/pulseprep-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, orchestrator.ErrUnknownContent):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest

	// No content could be selected or generated; the request was fine.
	case errors.Is(err, orchestrator.ErrContentExhausted):
		return http.StatusServiceUnavailable

	case errors.Is(err, orchestrator.ErrDeliveryFailed):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for the error. Messages
// are intentionally generic; details stay in the logs under the trace ID.
func GetSafeErrorMessage(err error) string {
	switch {
	case errors.Is(err, store.ErrUserStateNotFound):
		return "User not found"
	case errors.Is(err, store.ErrContentNotFound):
		return "Content not found"
	case errors.Is(err, orchestrator.ErrUnknownContent):
		return "No delivery found for this content"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"
	case errors.Is(err, domain.ErrValidation):
		return "Invalid request"
	case errors.Is(err, orchestrator.ErrContentExhausted):
		return "No content available right now"
	case errors.Is(err, orchestrator.ErrDeliveryFailed):
		return "Delivery channel unavailable"
	default:
		return "An internal error occurred"
	}
}
