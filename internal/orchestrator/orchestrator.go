// Package orchestrator coordinates the daily assessment cycle: issuing at
// most one new item per user per day, processing answers through the
// adaptation engine, and fanning deliveries out across the opted-in user
// base with bounded concurrency.
package orchestrator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/pulseprep/pulseprep-api/internal/content"
	"github.com/pulseprep/pulseprep-api/internal/delivery"
	"github.com/pulseprep/pulseprep-api/internal/domain"
	"github.com/pulseprep/pulseprep-api/internal/domain/adapt"
	"github.com/pulseprep/pulseprep-api/internal/store"
)

const defaultRetryBaseDelay = 2 * time.Second

// ItemSelector abstracts content selection so the orchestrator does not
// depend on the concrete fallback ladder.
type ItemSelector interface {
	Select(
		ctx context.Context,
		difficulty domain.Difficulty,
		excluded []uuid.UUID,
	) (*domain.ContentItem, error)
}

// Params collects the orchestrator's dependencies.
type Params struct {
	Logger     *slog.Logger
	DB         *sql.DB
	UserStates store.UserStateStore
	Contents   store.ContentStore
	Deliveries store.DeliveryStore
	Answers    store.AnswerStore
	Selector   ItemSelector
	Channel    delivery.Channel

	// DeliveryRetries is the number of additional delivery attempts after the
	// first before the user is counted as failed for the day.
	DeliveryRetries int

	// WorkerCount bounds the fan-out concurrency of Distribute.
	WorkerCount int

	// UserTimeout caps how long one user's delivery may take during fan-out.
	UserTimeout time.Duration
}

// Orchestrator owns the per-user assessment lifecycle. All mutation of a
// user's state flows through here, serialized per user by a keyed mutex.
type Orchestrator struct {
	logger     *slog.Logger
	db         *sql.DB
	userStates store.UserStateStore
	contents   store.ContentStore
	deliveries store.DeliveryStore
	answers    store.AnswerStore
	selector   ItemSelector
	channel    delivery.Channel

	deliveryRetries int
	workerCount     int
	userTimeout     time.Duration
	retryBaseDelay  time.Duration

	locks *keyedMutex

	// Swapped in tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
	runTx func(ctx context.Context, db *sql.DB, fn store.TxFn) error
}

// New validates the dependencies and builds an Orchestrator.
func New(p Params) (*Orchestrator, error) {
	switch {
	case p.Logger == nil:
		return nil, errors.New("logger cannot be nil")
	case p.UserStates == nil:
		return nil, errors.New("user state store cannot be nil")
	case p.Contents == nil:
		return nil, errors.New("content store cannot be nil")
	case p.Deliveries == nil:
		return nil, errors.New("delivery store cannot be nil")
	case p.Answers == nil:
		return nil, errors.New("answer store cannot be nil")
	case p.Selector == nil:
		return nil, errors.New("selector cannot be nil")
	case p.Channel == nil:
		return nil, errors.New("channel cannot be nil")
	}

	workerCount := p.WorkerCount
	if workerCount <= 0 {
		workerCount = 10
	}
	userTimeout := p.UserTimeout
	if userTimeout <= 0 {
		userTimeout = time.Minute
	}

	return &Orchestrator{
		logger:          p.Logger.With(slog.String("component", "orchestrator")),
		db:              p.DB,
		userStates:      p.UserStates,
		contents:        p.Contents,
		deliveries:      p.Deliveries,
		answers:         p.Answers,
		selector:        p.Selector,
		channel:         p.Channel,
		deliveryRetries: p.DeliveryRetries,
		workerCount:     workerCount,
		userTimeout:     userTimeout,
		retryBaseDelay:  defaultRetryBaseDelay,
		locks:           newKeyedMutex(),
		now:             time.Now,
		sleep:           sleepCtx,
		runTx:           store.RunInTransaction,
	}, nil
}

// DeliveryStatus describes how a delivery request for one user concluded.
type DeliveryStatus string

const (
	// DeliverySent means a new item was delivered and recorded.
	DeliverySent DeliveryStatus = "sent"

	// DeliverySkipped means the user already had a delivery for the day or is
	// opted out; nothing was sent.
	DeliverySkipped DeliveryStatus = "skipped"
)

// DeliveryOutcome reports the result of one DeliverNewItem call.
type DeliveryOutcome struct {
	Status DeliveryStatus
	Reason string // set when Status is DeliverySkipped

	// Record is the delivery for the day: the new one when sent, the existing
	// one when skipped due to idempotency. Nil when skipped for opt-out.
	Record *domain.DeliveryRecord

	// Item is the delivered content. Nil unless Status is DeliverySent.
	Item *domain.ContentItem
}

// DeliverNewItem issues at most one new item to the user for the current
// calendar day. Repeat calls on the same day return a skipped outcome with
// the existing record. The delivery record is written only after the channel
// accepts the item, so a failed send leaves the day retryable.
func (o *Orchestrator) DeliverNewItem(
	ctx context.Context,
	userID uuid.UUID,
) (*DeliveryOutcome, error) {
	return o.deliverForDay(ctx, userID, o.now())
}

// deliverForDay is DeliverNewItem anchored to an explicit point in time, so
// a distribution run delivers against one consistent day even when it
// straddles midnight.
func (o *Orchestrator) deliverForDay(
	ctx context.Context,
	userID uuid.UUID,
	asOf time.Time,
) (*DeliveryOutcome, error) {
	unlock := o.locks.lock(userID)
	defer unlock()

	state, err := o.userStates.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading user state: %w", err)
	}
	if !state.OptedIn {
		return &DeliveryOutcome{Status: DeliverySkipped, Reason: "opted out"}, nil
	}

	day := domain.DayOf(asOf)
	existing, err := o.deliveries.GetForDay(ctx, userID, day)
	if err == nil {
		return &DeliveryOutcome{
			Status: DeliverySkipped,
			Reason: "already delivered today",
			Record: existing,
		}, nil
	}
	if !store.IsNotFound(err) {
		return nil, fmt.Errorf("checking existing delivery: %w", err)
	}

	excluded, err := o.answers.ListAnsweredContentIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing answered content: %w", err)
	}

	item, err := o.selector.Select(ctx, state.Difficulty, excluded)
	if err != nil {
		if errors.Is(err, content.ErrExhausted) {
			return nil, fmt.Errorf("%w: %s", ErrContentExhausted, userID)
		}
		return nil, fmt.Errorf("selecting item: %w", err)
	}

	if err := o.deliverWithRetry(ctx, state, item); err != nil {
		return nil, err
	}

	rec, err := domain.NewDeliveryRecord(userID, item.ID, day)
	if err != nil {
		return nil, fmt.Errorf("building delivery record: %w", err)
	}
	if err := o.deliveries.Create(ctx, rec); err != nil {
		if store.IsDuplicate(err) {
			// Lost a race with a concurrent trigger; the item reached the
			// user twice but only one record exists. Resolve to skipped.
			existing, getErr := o.deliveries.GetForDay(ctx, userID, day)
			if getErr != nil {
				return nil, fmt.Errorf("resolving duplicate delivery: %w", getErr)
			}
			return &DeliveryOutcome{
				Status: DeliverySkipped,
				Reason: "already delivered today",
				Record: existing,
			}, nil
		}
		return nil, fmt.Errorf("recording delivery: %w", err)
	}

	o.logger.InfoContext(ctx, "item delivered",
		"user_id", userID,
		"content_id", item.ID,
		"difficulty", item.Difficulty.String(),
		"day", day.Format(time.DateOnly))

	return &DeliveryOutcome{Status: DeliverySent, Record: rec, Item: item}, nil
}

func (o *Orchestrator) deliverWithRetry(
	ctx context.Context,
	state *domain.UserState,
	item *domain.ContentItem,
) error {
	var lastErr error
	for attempt := 0; attempt <= o.deliveryRetries; attempt++ {
		if attempt > 0 {
			if err := o.sleep(ctx, retryBackoff(o.retryBaseDelay, attempt)); err != nil {
				return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
			}
		}

		handle, err := o.channel.Deliver(ctx, state, item)
		if err == nil {
			o.logger.DebugContext(ctx, "channel accepted item",
				"user_id", state.ID, "handle", handle)
			return nil
		}
		if errors.Is(err, delivery.ErrUnreachable) {
			// Retrying cannot help a blocked or deleted chat.
			return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
		}

		lastErr = err
		o.logger.WarnContext(ctx, "delivery attempt failed",
			"user_id", state.ID,
			"attempt", attempt+1,
			"error", err)
	}

	return fmt.Errorf("%w after %d attempts: %v",
		ErrDeliveryFailed, o.deliveryRetries+1, lastErr)
}

// retryBackoff doubles the delay on every attempt with up to 50% jitter, so
// a flapping channel is not hammered on a fixed cadence.
func retryBackoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	exp := float64(base) * math.Pow(2, float64(attempt-1))
	jitter := 1 + rand.Float64()/2 // 1.0 to 1.5
	return time.Duration(exp * jitter)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// AnswerStatus describes how an answer submission concluded.
type AnswerStatus string

const (
	// AnswerProcessed means the answer was evaluated and state updated.
	AnswerProcessed AnswerStatus = "processed"

	// AnswerDuplicate means the delivery already has an answer record; the
	// submission changed nothing.
	AnswerDuplicate AnswerStatus = "duplicate"
)

// AnswerOutcome reports the result of one ProcessAnswer call.
type AnswerOutcome struct {
	Status            AnswerStatus
	Correct           bool
	Difficulty        domain.Difficulty
	DifficultyChanged bool
	Streak            int
}

// ProcessAnswer evaluates a user's response to previously delivered content:
// it grades the selection, runs the adaptation engine, and persists the new
// user state together with the immutable answer record in one transaction.
// A second submission for the same delivery is a no-op reported as duplicate.
func (o *Orchestrator) ProcessAnswer(
	ctx context.Context,
	userID, contentID uuid.UUID,
	selectedOption string,
	answeredAt time.Time,
) (*AnswerOutcome, error) {
	unlock := o.locks.lock(userID)
	defer unlock()

	state, err := o.userStates.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading user state: %w", err)
	}

	rec, err := o.deliveries.GetByUserAndContent(ctx, userID, contentID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, fmt.Errorf("%w: content %s", ErrUnknownContent, contentID)
		}
		return nil, fmt.Errorf("resolving delivery: %w", err)
	}

	if _, err := o.answers.GetByDeliveryID(ctx, rec.ID); err == nil {
		return &AnswerOutcome{Status: AnswerDuplicate}, nil
	} else if !store.IsNotFound(err) {
		return nil, fmt.Errorf("checking for existing answer: %w", err)
	}

	if answeredAt.IsZero() {
		answeredAt = o.now()
	}
	answeredAt = answeredAt.UTC()
	if err := o.deliveries.MarkAnswered(ctx, rec.ID, selectedOption, answeredAt); err != nil {
		return nil, fmt.Errorf("marking delivery answered: %w", err)
	}
	rec.Answered = true
	rec.AnsweredAt = &answeredAt
	rec.SelectedOption = &selectedOption

	item, err := o.contents.GetByID(ctx, rec.ContentID)
	if err != nil {
		return nil, fmt.Errorf("loading content for grading: %w", err)
	}
	correct := item.IsCorrect(selectedOption)

	result, err := adapt.Evaluate(adapt.Input{
		Correct:            correct,
		Difficulty:         state.Difficulty,
		Streak:             state.Streak,
		ConsecutiveCorrect: state.ConsecutiveCorrect,
		LastAnswerDay:      state.LastAnswerDay,
		Today:              answeredAt,
	})
	if err != nil {
		return nil, fmt.Errorf("adapting difficulty: %w", err)
	}

	answer, err := domain.NewAnswerRecord(rec, correct, state.Difficulty,
		state.Streak, result.Streak)
	if err != nil {
		return nil, fmt.Errorf("building answer record: %w", err)
	}

	previousDifficulty := state.Difficulty
	today := domain.DayOf(answeredAt)
	state.Difficulty = result.Difficulty
	state.Streak = result.Streak
	state.ConsecutiveCorrect = result.ConsecutiveCorrect
	state.TotalAnswered++
	if correct {
		state.TotalCorrect++
	}
	state.LastAnswerDay = &today
	state.UpdatedAt = o.now().UTC()

	err = o.runTx(ctx, o.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := o.userStates.WithTx(tx).Upsert(ctx, state); err != nil {
			return fmt.Errorf("persisting user state: %w", err)
		}
		if err := o.answers.WithTx(tx).Create(ctx, answer); err != nil {
			return fmt.Errorf("persisting answer record: %w", err)
		}
		return nil
	})
	if err != nil {
		if store.IsDuplicate(err) {
			return &AnswerOutcome{Status: AnswerDuplicate}, nil
		}
		return nil, err
	}

	outcome := &AnswerOutcome{
		Status:            AnswerProcessed,
		Correct:           correct,
		Difficulty:        state.Difficulty,
		DifficultyChanged: state.Difficulty != previousDifficulty,
		Streak:            state.Streak,
	}

	o.notify(ctx, state, item, outcome)

	o.logger.InfoContext(ctx, "answer processed",
		"user_id", userID,
		"content_id", contentID,
		"correct", correct,
		"difficulty", state.Difficulty.String(),
		"streak", state.Streak)

	return outcome, nil
}

// notify sends feedback after processing. Feedback is best-effort: the state
// change is already committed, so a channel failure only costs the message.
func (o *Orchestrator) notify(
	ctx context.Context,
	state *domain.UserState,
	item *domain.ContentItem,
	outcome *AnswerOutcome,
) {
	fb := delivery.Feedback{
		Correct:           outcome.Correct,
		CorrectOption:     item.CorrectOption,
		Explanation:       item.Explanation,
		Difficulty:        outcome.Difficulty,
		DifficultyChanged: outcome.DifficultyChanged,
		Streak:            outcome.Streak,
	}
	if err := o.channel.Notify(ctx, state, fb); err != nil {
		o.logger.WarnContext(ctx, "feedback notification failed",
			"user_id", state.ID, "error", err)
	}
}
