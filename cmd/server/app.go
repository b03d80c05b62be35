package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/pulseprep/pulseprep-api/internal/config"
	"github.com/pulseprep/pulseprep-api/internal/content"
	"github.com/pulseprep/pulseprep-api/internal/delivery"
	"github.com/pulseprep/pulseprep-api/internal/generation"
	"github.com/pulseprep/pulseprep-api/internal/orchestrator"
	"github.com/pulseprep/pulseprep-api/internal/platform/gemini"
	"github.com/pulseprep/pulseprep-api/internal/platform/openai"
	"github.com/pulseprep/pulseprep-api/internal/platform/postgres"
	"github.com/pulseprep/pulseprep-api/internal/platform/telegram"
	"github.com/pulseprep/pulseprep-api/internal/scheduler"
	"github.com/pulseprep/pulseprep-api/internal/store"
)

// application bundles the wired dependencies of the server process.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStateStore store.UserStateStore
	contentStore   store.ContentStore

	orchestrator *orchestrator.Orchestrator
	scheduler    *scheduler.Scheduler
	listener     *telegram.Listener // nil without a Telegram token
}

// newApplication wires stores, generation, delivery and the orchestrator.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
	db *sql.DB,
) (*application, error) {
	userStateStore := postgres.NewUserStateStore(db, log)
	contentStore := postgres.NewContentStore(db, log)
	deliveryStore := postgres.NewDeliveryStore(db, log)
	answerStore := postgres.NewAnswerStore(db, log)

	generator, err := setupGenerator(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	selector := content.NewSelector(log, contentStore, generator, cfg.Generation.Topic)

	var (
		channel   delivery.Channel
		tgChannel *telegram.Channel
	)
	if cfg.Telegram.Token != "" {
		tgChannel, err = telegram.NewChannel(log, cfg.Telegram.Token)
		if err != nil {
			return nil, fmt.Errorf("failed to set up telegram channel: %w", err)
		}
		channel = tgChannel
	} else {
		log.Warn("no telegram token configured, deliveries go to the log only")
		channel, err = delivery.NewLogChannel(log)
		if err != nil {
			return nil, err
		}
	}

	orch, err := orchestrator.New(orchestrator.Params{
		Logger:          log,
		DB:              db,
		UserStates:      userStateStore,
		Contents:        contentStore,
		Deliveries:      deliveryStore,
		Answers:         answerStore,
		Selector:        selector,
		Channel:         channel,
		DeliveryRetries: cfg.Distribute.DeliveryRetries,
		WorkerCount:     cfg.Distribute.WorkerCount,
		UserTimeout:     time.Duration(cfg.Distribute.UserTimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up orchestrator: %w", err)
	}

	sched, err := scheduler.New(log, orch, cfg.Distribute.Hour)
	if err != nil {
		return nil, fmt.Errorf("failed to set up scheduler: %w", err)
	}

	app := &application{
		config:         cfg,
		logger:         log,
		db:             db,
		userStateStore: userStateStore,
		contentStore:   contentStore,
		orchestrator:   orch,
		scheduler:      sched,
	}

	if tgChannel != nil {
		app.listener, err = telegram.NewListener(
			log, tgChannel, orch, userStateStore, contentStore)
		if err != nil {
			return nil, fmt.Errorf("failed to set up telegram listener: %w", err)
		}
	}

	return app, nil
}

// setupGenerator builds the configured generation backend, or returns nil
// when generation is disabled.
func setupGenerator(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
) (generation.Generator, error) {
	switch cfg.Generation.Provider {
	case "gemini":
		gen, err := gemini.NewGenerator(ctx, log, cfg.Generation)
		if err != nil {
			return nil, fmt.Errorf("failed to set up gemini generator: %w", err)
		}
		return gen, nil
	case "openai":
		gen, err := openai.NewGenerator(log, cfg.Generation)
		if err != nil {
			return nil, fmt.Errorf("failed to set up openai generator: %w", err)
		}
		return gen, nil
	case "":
		log.Info("content generation disabled, selection uses the static pool only")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Generation.Provider)
	}
}

// start launches the scheduler, the Telegram listener (when configured) and
// the HTTP server, then blocks until shutdown.
func (app *application) start(ctx context.Context) error {
	if err := app.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer app.scheduler.Stop()

	if app.listener != nil {
		go func() {
			if err := app.listener.Run(ctx); err != nil && ctx.Err() == nil {
				app.logger.Error("telegram listener stopped unexpectedly", "error", err)
			}
		}()
	}

	return app.startHTTPServer(ctx, app.setupRouter())
}
