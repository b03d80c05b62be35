package importer

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pulseprep/pulseprep-api/internal/domain"
	"github.com/pulseprep/pulseprep-api/internal/store"
)

type recordingContentStore struct {
	created    []*domain.ContentItem
	duplicates map[string]bool // by prompt
}

func (r *recordingContentStore) GetByID(_ context.Context, _ uuid.UUID) (*domain.ContentItem, error) {
	return nil, store.ErrContentNotFound
}

func (r *recordingContentStore) Create(_ context.Context, item *domain.ContentItem) error {
	if r.duplicates[item.Prompt] {
		return store.ErrDuplicate
	}
	r.created = append(r.created, item)
	return nil
}

func (r *recordingContentStore) RandomByDifficulty(
	_ context.Context, _ domain.Difficulty, _ []uuid.UUID,
) (*domain.ContentItem, error) {
	return nil, store.ErrContentNotFound
}

func (r *recordingContentStore) RandomAny(
	_ context.Context, _ []uuid.UUID,
) (*domain.ContentItem, error) {
	return nil, store.ErrContentNotFound
}

func (r *recordingContentStore) WithTx(_ *sql.Tx) store.ContentStore { return r }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var header = []any{
	"prompt", "option_a", "option_b", "option_c", "option_d",
	"correct_option", "explanation", "difficulty", "topic",
}

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "bank.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func goodRow(prompt string) []any {
	return []any{
		prompt, "Paris", "Lyon", "Nice", "Lille",
		"Paris", "Paris has been the capital since 987.", "intro", "geography",
	}
}

func TestRunImportsValidRows(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, [][]any{
		goodRow("Capital of France?"),
		{
			"2^10?", "1024", "512", "2048", "256",
			"1024", "2 to the 10th power.", "2", "math",
		},
	})

	cs := &recordingContentStore{}
	imp, err := New(testLogger(), cs)
	require.NoError(t, err)

	report, err := imp.Run(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Imported)
	assert.Zero(t, report.Failed)
	require.Len(t, cs.created, 2)

	first := cs.created[0]
	assert.Equal(t, "Capital of France?", first.Prompt)
	assert.Equal(t, domain.DifficultyIntro, first.Difficulty)
	assert.Equal(t, domain.SourceAuthored, first.Source)
	assert.Equal(t, "geography", first.Topic)

	assert.Equal(t, domain.DifficultyMedium, cs.created[1].Difficulty)
}

func TestRunCountsBadRowsWithoutAborting(t *testing.T) {
	t.Parallel()

	badDifficulty := goodRow("Bad difficulty")
	badDifficulty[7] = "legendary"

	wrongAnswer := goodRow("Answer not in options")
	wrongAnswer[5] = "Marseille"

	path := writeWorkbook(t, [][]any{
		goodRow("Keeper"),
		badDifficulty,
		wrongAnswer,
	})

	cs := &recordingContentStore{}
	imp, err := New(testLogger(), cs)
	require.NoError(t, err)

	report, err := imp.Run(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 2, report.Failed)
}

func TestRunSkipsDuplicates(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, [][]any{goodRow("Existing prompt")})

	cs := &recordingContentStore{duplicates: map[string]bool{"Existing prompt": true}}
	imp, err := New(testLogger(), cs)
	require.NoError(t, err)

	report, err := imp.Run(context.Background(), path)
	require.NoError(t, err)

	assert.Zero(t, report.Imported)
	assert.Equal(t, 1, report.Skipped)
}

func TestRunRejectsMissingFile(t *testing.T) {
	t.Parallel()

	imp, err := New(testLogger(), &recordingContentStore{})
	require.NoError(t, err)

	_, err = imp.Run(context.Background(), filepath.Join(t.TempDir(), "absent.xlsx"))
	assert.Error(t, err)
}

func TestParseDifficultyForms(t *testing.T) {
	t.Parallel()

	for cell, want := range map[string]domain.Difficulty{
		"intro": domain.DifficultyIntro, "Expert": domain.DifficultyExpert,
		"1": domain.DifficultyIntro, "4": domain.DifficultyExpert,
		" 3 ": domain.DifficultyHard,
	} {
		got, err := parseDifficulty(cell)
		require.NoError(t, err, "cell %q", cell)
		assert.Equal(t, want, got, "cell %q", cell)
	}

	for _, cell := range []string{"", "0", "5", "banana"} {
		_, err := parseDifficulty(cell)
		assert.Error(t, err, "cell %q", cell)
	}
}
