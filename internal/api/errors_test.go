package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pulseprep/pulseprep-api/internal/domain"
	"github.com/pulseprep/pulseprep-api/internal/orchestrator"
	"github.com/pulseprep/pulseprep-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		err  error
		want int
	}{
		{"user not found", store.ErrUserStateNotFound, http.StatusNotFound},
		{"content not found", store.ErrContentNotFound, http.StatusNotFound},
		{"unknown content", orchestrator.ErrUnknownContent, http.StatusNotFound},
		{"duplicate delivery", store.ErrDuplicateDelivery, http.StatusConflict},
		{"validation", domain.ErrValidation, http.StatusBadRequest},
		{"exhausted", orchestrator.ErrContentExhausted, http.StatusServiceUnavailable},
		{"delivery failed", orchestrator.ErrDeliveryFailed, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{
			"wrapped not found",
			fmt.Errorf("loading user state: %w", store.ErrUserStateNotFound),
			http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessageNeverLeaksDetails(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("pq: connection to 10.0.0.5 refused: %w", errors.New("dial tcp"))
	msg := GetSafeErrorMessage(err)

	assert.Equal(t, "An internal error occurred", msg)
	assert.NotContains(t, msg, "10.0.0.5")
}
