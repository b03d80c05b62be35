package generation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/pulseprep/pulseprep-api/internal/platform/logger"
)

// RetryPolicy shapes the backoff applied to provider calls.
type RetryPolicy struct {
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int

	// BaseDelay is the delay before the first retry; subsequent delays grow
	// exponentially with up to 50% jitter.
	BaseDelay time.Duration
}

// DefaultRetryPolicy matches the configured defaults: three retries starting
// at two seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, BaseDelay: 2 * time.Second}
}

// Retry invokes fn until it succeeds, a permanent error occurs, the policy
// is exhausted, or the context is done. ErrContentBlocked is permanent;
// everything else (including ErrInvalidResponse, since sampling is
// nondeterministic) is retried.
func Retry[T any](ctx context.Context, policy RetryPolicy, fn func() (T, error)) (T, error) {
	var zero T
	log := logger.FromContext(ctx)

	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(policy.BaseDelay, attempt)
			log.Debug("retrying generation call",
				"attempt", attempt+1,
				"max_attempts", policy.MaxRetries+1,
				"delay", delay)

			select {
			case <-ctx.Done():
				return zero, fmt.Errorf("generation cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		if errors.Is(err, ErrContentBlocked) {
			return zero, err
		}

		lastErr = err
		log.Warn("generation attempt failed",
			"attempt", attempt+1,
			"error", err)
	}

	return zero, fmt.Errorf("generation failed after %d attempts: %w",
		policy.MaxRetries+1, lastErr)
}

func backoffDelay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	exp := float64(base) * math.Pow(2, float64(attempt-1))
	jitter := 1 + rand.Float64()/2 // 1.0 to 1.5
	return time.Duration(exp * jitter)
}
