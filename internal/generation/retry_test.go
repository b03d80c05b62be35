package generation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond}
}

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	result, err := Retry(context.Background(), fastPolicy(), func() (string, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
}

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	t.Parallel()

	calls := 0
	result, err := Retry(context.Background(), fastPolicy(), func() (int, error) {
		calls++
		if calls < 3 {
			return 0, fmt.Errorf("%w: rate limited", ErrTransientFailure)
		}
		return 7, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 7, result)
	assert.Equal(t, 3, calls)
}

func TestRetryExhaustsPolicy(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := Retry(context.Background(), fastPolicy(), func() (int, error) {
		calls++
		return 0, ErrTransientFailure
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransientFailure)
	assert.Equal(t, 3, calls) // first attempt plus two retries
}

func TestRetryStopsOnBlockedContent(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := Retry(context.Background(), fastPolicy(), func() (int, error) {
		calls++
		return 0, fmt.Errorf("%w: safety filter", ErrContentBlocked)
	})

	assert.ErrorIs(t, err, ErrContentBlocked)
	assert.Equal(t, 1, calls)
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Retry(ctx, RetryPolicy{MaxRetries: 5, BaseDelay: time.Hour}, func() (int, error) {
		calls++
		return 0, ErrTransientFailure
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, calls)
}
