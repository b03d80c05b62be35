package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseprep/pulseprep-api/internal/orchestrator"
)

type fakeDistributor struct {
	calls      int
	gotUserIDs []uuid.UUID
	gotAsOf    time.Time
	summary    orchestrator.Summary
	err        error
}

func (f *fakeDistributor) Distribute(
	_ context.Context, userIDs []uuid.UUID, asOf time.Time,
) (*orchestrator.Summary, error) {
	f.calls++
	f.gotUserIDs = userIDs
	f.gotAsOf = asOf
	if f.err != nil {
		return nil, f.err
	}
	return &f.summary, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRejectsBadInputs(t *testing.T) {
	t.Parallel()

	_, err := New(nil, &fakeDistributor{}, 8)
	assert.Error(t, err)

	_, err = New(testLogger(), nil, 8)
	assert.Error(t, err)

	_, err = New(testLogger(), &fakeDistributor{}, 24)
	assert.Error(t, err)

	_, err = New(testLogger(), &fakeDistributor{}, -1)
	assert.Error(t, err)
}

func TestRunInvokesDistributor(t *testing.T) {
	t.Parallel()

	dist := &fakeDistributor{summary: orchestrator.Summary{Sent: 3}}
	s, err := New(testLogger(), dist, 8)
	require.NoError(t, err)

	s.run(context.Background())
	assert.Equal(t, 1, dist.calls)
	assert.Empty(t, dist.gotUserIDs) // the daily run targets everyone
	assert.True(t, dist.gotAsOf.IsZero())
}

func TestRunToleratesDistributionError(t *testing.T) {
	t.Parallel()

	dist := &fakeDistributor{err: errors.New("db down")}
	s, err := New(testLogger(), dist, 8)
	require.NoError(t, err)

	// Must not panic; the next day's run should still happen.
	s.run(context.Background())
	assert.Equal(t, 1, dist.calls)
}

func TestStartAndStop(t *testing.T) {
	t.Parallel()

	s, err := New(testLogger(), &fakeDistributor{}, 8)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}
