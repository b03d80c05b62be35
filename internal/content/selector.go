// Package content selects the item to deliver to a user. Selection prefers
// unseen authored items at the user's current difficulty and degrades through
// a fixed fallback ladder, ending with on-demand generation, before giving up.
package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pulseprep/pulseprep-api/internal/domain"
	"github.com/pulseprep/pulseprep-api/internal/generation"
	"github.com/pulseprep/pulseprep-api/internal/store"
)

// ErrExhausted indicates that no item could be selected at any rung of the
// fallback ladder, including generation.
var ErrExhausted = errors.New("no deliverable content available")

// Selector picks one content item for a user given their difficulty and the
// set of items they have already answered.
type Selector struct {
	logger       *slog.Logger
	contentStore store.ContentStore
	generator    generation.Generator // nil when generation is disabled
	topic        string
}

// NewSelector creates a Selector. The generator may be nil, in which case the
// generation rung of the ladder is skipped.
func NewSelector(
	log *slog.Logger,
	contentStore store.ContentStore,
	generator generation.Generator,
	topic string,
) *Selector {
	if log == nil {
		panic("logger cannot be nil")
	}
	if contentStore == nil {
		panic("contentStore cannot be nil")
	}
	return &Selector{
		logger:       log.With(slog.String("component", "content_selector")),
		contentStore: contentStore,
		generator:    generator,
		topic:        topic,
	}
}

// Select returns one item for the given difficulty, trying each fallback rung
// in order:
//
//  1. an unseen item at the requested difficulty
//  2. any item at the requested difficulty, repeats allowed
//  3. an unseen item at any difficulty
//  4. a freshly generated item, persisted before delivery
//  5. any item at any difficulty, repeats allowed
//
// If every rung comes up empty it returns ErrExhausted.
func (s *Selector) Select(
	ctx context.Context,
	difficulty domain.Difficulty,
	excluded []uuid.UUID,
) (*domain.ContentItem, error) {
	if !difficulty.Valid() {
		return nil, fmt.Errorf("%w: difficulty %d", domain.ErrValidation, int(difficulty))
	}

	item, err := s.contentStore.RandomByDifficulty(ctx, difficulty, excluded)
	if err == nil {
		return item, nil
	}
	if !store.IsNotFound(err) {
		return nil, fmt.Errorf("selecting unseen item at difficulty %s: %w", difficulty, err)
	}

	item, err = s.contentStore.RandomByDifficulty(ctx, difficulty, nil)
	if err == nil {
		s.logger.DebugContext(ctx, "unseen pool empty, repeating item",
			"difficulty", difficulty.String())
		return item, nil
	}
	if !store.IsNotFound(err) {
		return nil, fmt.Errorf("selecting repeat item at difficulty %s: %w", difficulty, err)
	}

	item, err = s.contentStore.RandomAny(ctx, excluded)
	if err == nil {
		s.logger.DebugContext(ctx, "difficulty pool empty, crossing difficulty",
			"requested_difficulty", difficulty.String(),
			"selected_difficulty", item.Difficulty.String())
		return item, nil
	}
	if !store.IsNotFound(err) {
		return nil, fmt.Errorf("selecting unseen item at any difficulty: %w", err)
	}

	if s.generator != nil {
		item, err = s.generate(ctx, difficulty)
		if err == nil {
			return item, nil
		}
		s.logger.WarnContext(ctx, "generation fallback failed",
			"difficulty", difficulty.String(),
			"error", err)
	}

	item, err = s.contentStore.RandomAny(ctx, nil)
	if err == nil {
		s.logger.DebugContext(ctx, "all pools empty, repeating any item")
		return item, nil
	}
	if !store.IsNotFound(err) {
		return nil, fmt.Errorf("selecting repeat item at any difficulty: %w", err)
	}

	return nil, ErrExhausted
}

// generate produces a new item and persists it so future selections can reuse
// it. A persistence failure discards the item rather than delivering content
// the system has no record of.
func (s *Selector) generate(
	ctx context.Context,
	difficulty domain.Difficulty,
) (*domain.ContentItem, error) {
	item, err := s.generator.GenerateItem(ctx, difficulty, s.topic)
	if err != nil {
		return nil, fmt.Errorf("generating item: %w", err)
	}
	if err := s.contentStore.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("persisting generated item: %w", err)
	}

	s.logger.InfoContext(ctx, "generated new content item",
		"item_id", item.ID,
		"difficulty", difficulty.String())
	return item, nil
}
