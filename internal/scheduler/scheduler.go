// Package scheduler triggers the daily distribution run at a fixed UTC hour.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/pulseprep/pulseprep-api/internal/orchestrator"
)

// Distributor is the slice of the orchestrator the scheduler needs.
type Distributor interface {
	Distribute(
		ctx context.Context,
		userIDs []uuid.UUID,
		asOf time.Time,
	) (*orchestrator.Summary, error)
}

// Scheduler owns the cron loop for daily distribution.
type Scheduler struct {
	logger      *slog.Logger
	distributor Distributor
	hour        int
	cron        *gocron.Scheduler
}

// New builds a Scheduler that fires daily at the given UTC hour.
func New(log *slog.Logger, distributor Distributor, hour int) (*Scheduler, error) {
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if distributor == nil {
		return nil, errors.New("distributor cannot be nil")
	}
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("distribution hour %d out of range", hour)
	}

	return &Scheduler{
		logger:      log.With(slog.String("component", "scheduler")),
		distributor: distributor,
		hour:        hour,
		cron:        gocron.NewScheduler(time.UTC),
	}, nil
}

// Start registers the daily job and launches the cron loop in the
// background. Stop must be called on shutdown.
func (s *Scheduler) Start(ctx context.Context) error {
	at := fmt.Sprintf("%02d:00", s.hour)
	_, err := s.cron.Every(1).Day().At(at).Do(func() {
		s.run(ctx)
	})
	if err != nil {
		return fmt.Errorf("registering distribution job: %w", err)
	}

	s.cron.StartAsync()
	s.logger.Info("daily distribution scheduled", "at_utc", at)
	return nil
}

// Stop halts the cron loop. Running jobs are not interrupted; they observe
// ctx themselves.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	// All opted-in users, anchored to the trigger time.
	summary, err := s.distributor.Distribute(ctx, nil, time.Time{})
	if err != nil {
		s.logger.Error("scheduled distribution failed", "error", err)
		return
	}
	s.logger.Info("scheduled distribution completed",
		"sent", summary.Sent,
		"skipped", summary.Skipped,
		"failed", summary.Failed)
}
