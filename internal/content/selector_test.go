package content

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseprep/pulseprep-api/internal/domain"
	"github.com/pulseprep/pulseprep-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newItem(t *testing.T, difficulty domain.Difficulty) *domain.ContentItem {
	t.Helper()
	item, err := domain.NewContentItem(
		"Which ocean is the deepest?",
		[]string{"Pacific", "Atlantic", "Indian", "Arctic"},
		"Pacific",
		"The Mariana Trench in the Pacific reaches nearly 11 km.",
		difficulty,
		"geography",
		domain.SourceAuthored,
	)
	require.NoError(t, err)
	return item
}

// fakeContentStore scripts each selection method independently so tests can
// drive the selector down specific fallback rungs.
type fakeContentStore struct {
	byDifficultyExcluding *domain.ContentItem
	byDifficultyAny       *domain.ContentItem
	anyExcluding          *domain.ContentItem
	anyRepeats            *domain.ContentItem
	queryErr              error
	createErr             error

	created []*domain.ContentItem
	calls   []string
}

func (f *fakeContentStore) GetByID(_ context.Context, _ uuid.UUID) (*domain.ContentItem, error) {
	return nil, store.ErrContentNotFound
}

func (f *fakeContentStore) Create(_ context.Context, item *domain.ContentItem) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, item)
	return nil
}

func (f *fakeContentStore) RandomByDifficulty(
	_ context.Context,
	_ domain.Difficulty,
	excluded []uuid.UUID,
) (*domain.ContentItem, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var item *domain.ContentItem
	if len(excluded) > 0 {
		f.calls = append(f.calls, "difficulty_excluding")
		item = f.byDifficultyExcluding
	} else {
		f.calls = append(f.calls, "difficulty_repeats")
		item = f.byDifficultyAny
	}
	if item == nil {
		return nil, store.ErrContentNotFound
	}
	return item, nil
}

func (f *fakeContentStore) RandomAny(
	_ context.Context,
	excluded []uuid.UUID,
) (*domain.ContentItem, error) {
	var item *domain.ContentItem
	if len(excluded) > 0 {
		f.calls = append(f.calls, "any_excluding")
		item = f.anyExcluding
	} else {
		f.calls = append(f.calls, "any_repeats")
		item = f.anyRepeats
	}
	if item == nil {
		return nil, store.ErrContentNotFound
	}
	return item, nil
}

func (f *fakeContentStore) WithTx(_ *sql.Tx) store.ContentStore { return f }

type fakeGenerator struct {
	item  *domain.ContentItem
	err   error
	calls int
}

func (f *fakeGenerator) GenerateItem(
	_ context.Context,
	_ domain.Difficulty,
	_ string,
) (*domain.ContentItem, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.item, nil
}

func TestSelectPrefersUnseenAtDifficulty(t *testing.T) {
	t.Parallel()

	want := newItem(t, domain.DifficultyMedium)
	fs := &fakeContentStore{byDifficultyExcluding: want}
	gen := &fakeGenerator{}
	sel := NewSelector(testLogger(), fs, gen, "geography")

	got, err := sel.Select(context.Background(),
		domain.DifficultyMedium, []uuid.UUID{uuid.New()})

	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, []string{"difficulty_excluding"}, fs.calls)
	assert.Zero(t, gen.calls)
}

func TestSelectRepeatsAtDifficultyBeforeCrossing(t *testing.T) {
	t.Parallel()

	repeat := newItem(t, domain.DifficultyHard)
	fs := &fakeContentStore{byDifficultyAny: repeat}
	sel := NewSelector(testLogger(), fs, nil, "")

	got, err := sel.Select(context.Background(),
		domain.DifficultyHard, []uuid.UUID{repeat.ID})

	require.NoError(t, err)
	assert.Equal(t, repeat, got)
	assert.Equal(t, []string{"difficulty_excluding", "difficulty_repeats"}, fs.calls)
}

func TestSelectCrossesDifficultyWhenPoolEmpty(t *testing.T) {
	t.Parallel()

	other := newItem(t, domain.DifficultyIntro)
	fs := &fakeContentStore{anyExcluding: other}
	sel := NewSelector(testLogger(), fs, nil, "")

	got, err := sel.Select(context.Background(),
		domain.DifficultyExpert, []uuid.UUID{uuid.New()})

	require.NoError(t, err)
	assert.Equal(t, other, got)
	assert.Equal(t,
		[]string{"difficulty_excluding", "difficulty_repeats", "any_excluding"},
		fs.calls)
}

func TestSelectGeneratesAndPersistsWhenStoreEmpty(t *testing.T) {
	t.Parallel()

	generated := newItem(t, domain.DifficultyMedium)
	fs := &fakeContentStore{}
	gen := &fakeGenerator{item: generated}
	sel := NewSelector(testLogger(), fs, gen, "geography")

	got, err := sel.Select(context.Background(),
		domain.DifficultyMedium, []uuid.UUID{uuid.New()})

	require.NoError(t, err)
	assert.Equal(t, generated, got)
	assert.Equal(t, 1, gen.calls)
	require.Len(t, fs.created, 1)
	assert.Equal(t, generated, fs.created[0])
}

func TestSelectFallsBackToRepeatsWhenGenerationFails(t *testing.T) {
	t.Parallel()

	repeat := newItem(t, domain.DifficultyIntro)
	fs := &fakeContentStore{anyRepeats: repeat}
	gen := &fakeGenerator{err: errors.New("provider down")}
	sel := NewSelector(testLogger(), fs, gen, "")

	got, err := sel.Select(context.Background(),
		domain.DifficultyMedium, []uuid.UUID{uuid.New()})

	require.NoError(t, err)
	assert.Equal(t, repeat, got)
	assert.Equal(t, 1, gen.calls)
}

func TestSelectDiscardsGeneratedItemOnPersistFailure(t *testing.T) {
	t.Parallel()

	generated := newItem(t, domain.DifficultyMedium)
	repeat := newItem(t, domain.DifficultyIntro)
	fs := &fakeContentStore{anyRepeats: repeat, createErr: errors.New("insert failed")}
	gen := &fakeGenerator{item: generated}
	sel := NewSelector(testLogger(), fs, gen, "")

	got, err := sel.Select(context.Background(),
		domain.DifficultyMedium, []uuid.UUID{uuid.New()})

	require.NoError(t, err)
	assert.Equal(t, repeat, got)
}

func TestSelectExhaustedWithoutGenerator(t *testing.T) {
	t.Parallel()

	fs := &fakeContentStore{}
	sel := NewSelector(testLogger(), fs, nil, "")

	_, err := sel.Select(context.Background(), domain.DifficultyMedium, nil)

	assert.ErrorIs(t, err, ErrExhausted)
	assert.Zero(t, len(fs.created))
}

func TestSelectPropagatesStoreFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	fs := &fakeContentStore{queryErr: boom}
	sel := NewSelector(testLogger(), fs, nil, "")

	_, err := sel.Select(context.Background(), domain.DifficultyMedium, nil)

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrExhausted)
}

func TestSelectRejectsInvalidDifficulty(t *testing.T) {
	t.Parallel()

	sel := NewSelector(testLogger(), &fakeContentStore{}, nil, "")

	_, err := sel.Select(context.Background(), domain.Difficulty(9), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
