package orchestrator

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Outcome describes how one user fared within a distribution run.
type Outcome struct {
	Status DeliveryStatus `json:"status"`
	Reason string         `json:"reason,omitempty"`
}

// Summary aggregates one distribution run. Failed counts users whose
// delivery errored or panicked; their failures never touch other users.
// Outcomes holds the per-user verdicts behind the counts.
type Summary struct {
	Eligible int                   `json:"eligible"`
	Sent     int                   `json:"sent"`
	Skipped  int                   `json:"skipped"`
	Failed   int                   `json:"failed"`
	Elapsed  time.Duration         `json:"elapsed"`
	Outcomes map[uuid.UUID]Outcome `json:"outcomes"`
}

// Distribute delivers the daily item to each target user, at most
// workerCount users in flight at a time. An empty userIDs targets every
// opted-in user; a zero asOf anchors the run to the current time. Each user
// runs under their own timeout and panic guard, so one bad user costs one
// slot, not the run. The summary is returned even when some users failed;
// the error is non-nil only when the eligible set could not be resolved at
// all.
func (o *Orchestrator) Distribute(
	ctx context.Context,
	userIDs []uuid.UUID,
	asOf time.Time,
) (*Summary, error) {
	start := o.now()
	if asOf.IsZero() {
		asOf = start
	}

	if len(userIDs) == 0 {
		var err error
		userIDs, err = o.userStates.ListOptedInUserIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing opted-in users: %w", err)
		}
	}

	o.logger.InfoContext(ctx, "distribution started",
		"eligible", len(userIDs),
		"workers", o.workerCount)

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		summary = &Summary{
			Eligible: len(userIDs),
			Outcomes: make(map[uuid.UUID]Outcome, len(userIDs)),
		}
		sem = make(chan struct{}, o.workerCount)
	)

	for _, userID := range userIDs {
		select {
		case <-ctx.Done():
			o.logger.WarnContext(ctx, "distribution cancelled", "error", ctx.Err())
			wg.Wait()
			summary.Elapsed = o.now().Sub(start)
			return summary, fmt.Errorf("distribution cancelled: %w", ctx.Err())
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(userID uuid.UUID) {
			defer wg.Done()
			defer func() { <-sem }()

			out := o.deliverOne(ctx, userID, asOf)

			mu.Lock()
			summary.Outcomes[userID] = out
			switch out.Status {
			case DeliverySent:
				summary.Sent++
			case DeliverySkipped:
				summary.Skipped++
			default:
				summary.Failed++
			}
			mu.Unlock()
		}(userID)
	}

	wg.Wait()
	summary.Elapsed = o.now().Sub(start)

	o.logger.InfoContext(ctx, "distribution finished",
		"eligible", summary.Eligible,
		"sent", summary.Sent,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"elapsed", summary.Elapsed)

	return summary, nil
}

// deliveryFailed is the internal status for users whose delivery errored.
const deliveryFailed DeliveryStatus = "failed"

func (o *Orchestrator) deliverOne(
	ctx context.Context,
	userID uuid.UUID,
	asOf time.Time,
) (out Outcome) {
	defer func() {
		if p := recover(); p != nil {
			o.logger.ErrorContext(ctx, "panic while delivering to user",
				"user_id", userID,
				"panic", p,
				"stack", string(debug.Stack()))
			out = Outcome{Status: deliveryFailed, Reason: fmt.Sprintf("panic: %v", p)}
		}
	}()

	userCtx, cancel := context.WithTimeout(ctx, o.userTimeout)
	defer cancel()

	outcome, err := o.deliverForDay(userCtx, userID, asOf)
	if err != nil {
		o.logger.ErrorContext(ctx, "delivery to user failed",
			"user_id", userID, "error", err)
		return Outcome{Status: deliveryFailed, Reason: err.Error()}
	}

	return Outcome{Status: outcome.Status, Reason: outcome.Reason}
}
