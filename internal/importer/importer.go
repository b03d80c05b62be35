// Package importer loads authored assessment items from an Excel workbook
// into the content store. Expected columns, in order: prompt, four options,
// correct option, explanation, difficulty, topic. The first row is a header
// and is skipped.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pulseprep/pulseprep-api/internal/domain"
	"github.com/pulseprep/pulseprep-api/internal/store"
)

const columnCount = 9

// Report summarizes one import run.
type Report struct {
	Imported int
	Skipped  int // duplicates
	Failed   int // rows that did not parse or validate
}

// Importer reads workbook rows into the content store.
type Importer struct {
	logger   *slog.Logger
	contents store.ContentStore
}

// New creates an Importer.
func New(log *slog.Logger, contents store.ContentStore) (*Importer, error) {
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if contents == nil {
		return nil, errors.New("content store cannot be nil")
	}
	return &Importer{
		logger:   log.With(slog.String("component", "importer")),
		contents: contents,
	}, nil
}

// Run imports every data row of the workbook's first sheet. Bad rows are
// counted and logged but do not abort the run.
func (i *Importer) Run(ctx context.Context, path string) (Report, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			i.logger.Warn("failed to close workbook", "error", err)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Report{}, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Report{}, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return Report{}, errors.New("workbook has no data rows")
	}

	var report Report
	for idx, row := range rows[1:] {
		rowNum := idx + 2 // 1-based, after the header

		item, err := parseRow(row)
		if err != nil {
			i.logger.Warn("skipping bad row", "row", rowNum, "error", err)
			report.Failed++
			continue
		}

		if err := i.contents.Create(ctx, item); err != nil {
			if store.IsDuplicate(err) {
				report.Skipped++
				continue
			}
			return report, fmt.Errorf("storing row %d: %w", rowNum, err)
		}
		report.Imported++
	}

	i.logger.Info("import finished",
		"imported", report.Imported,
		"skipped", report.Skipped,
		"failed", report.Failed)

	return report, nil
}

// parseRow builds a validated item from one workbook row.
func parseRow(row []string) (*domain.ContentItem, error) {
	if len(row) < columnCount-1 { // topic may be omitted
		return nil, fmt.Errorf("expected at least %d columns, got %d", columnCount-1, len(row))
	}

	options := make([]string, 0, domain.OptionCount)
	for _, cell := range row[1 : 1+domain.OptionCount] {
		options = append(options, strings.TrimSpace(cell))
	}

	difficulty, err := parseDifficulty(row[7])
	if err != nil {
		return nil, err
	}

	topic := ""
	if len(row) > 8 {
		topic = strings.TrimSpace(row[8])
	}

	return domain.NewContentItem(
		strings.TrimSpace(row[0]),
		options,
		strings.TrimSpace(row[5]),
		strings.TrimSpace(row[6]),
		difficulty,
		topic,
		domain.SourceAuthored,
	)
}

// parseDifficulty accepts both the numeric level and its name.
func parseDifficulty(cell string) (domain.Difficulty, error) {
	cell = strings.ToLower(strings.TrimSpace(cell))

	switch cell {
	case "intro":
		return domain.DifficultyIntro, nil
	case "medium":
		return domain.DifficultyMedium, nil
	case "hard":
		return domain.DifficultyHard, nil
	case "expert":
		return domain.DifficultyExpert, nil
	}

	n, err := strconv.Atoi(cell)
	if err != nil {
		return 0, fmt.Errorf("unrecognized difficulty %q", cell)
	}
	d := domain.Difficulty(n)
	if !d.Valid() {
		return 0, fmt.Errorf("difficulty %d out of range", n)
	}
	return d, nil
}
