package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pulseprep/pulseprep-api/internal/domain"
	"github.com/pulseprep/pulseprep-api/internal/platform/logger"
	"github.com/pulseprep/pulseprep-api/internal/store"
)

// AnswerStore implements store.AnswerStore on PostgreSQL. A unique
// constraint on delivery_id makes answer creation idempotent under retries.
type AnswerStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewAnswerStore creates a PostgreSQL-backed answer store.
func NewAnswerStore(db store.DBTX, log *slog.Logger) *AnswerStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &AnswerStore{
		db:     db,
		logger: log.With(slog.String("component", "answer_store")),
	}
}

var _ store.AnswerStore = (*AnswerStore)(nil)

// Create implements store.AnswerStore.Create.
func (s *AnswerStore) Create(ctx context.Context, rec *domain.AnswerRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := rec.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO answer_records (id, user_id, content_id, delivery_id,
			selected_option, correct, latency_ms, difficulty,
			streak_before, streak_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var latencyMs sql.NullInt64
	if rec.Latency != nil {
		latencyMs = sql.NullInt64{Int64: rec.Latency.Milliseconds(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.UserID,
		rec.ContentID,
		rec.DeliveryID,
		rec.SelectedOption,
		rec.Correct,
		latencyMs,
		int(rec.Difficulty),
		rec.StreakBefore,
		rec.StreakAfter,
		rec.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "answer_records_delivery_id_key") {
			return store.ErrDuplicateAnswer
		}
		if isUniqueViolation(err, "") {
			return store.ErrDuplicate
		}
		log.Error("failed to create answer record",
			"user_id", rec.UserID, "delivery_id", rec.DeliveryID, "error", err)
		return fmt.Errorf("failed to create answer record: %w", err)
	}

	return nil
}

// GetByDeliveryID implements store.AnswerStore.GetByDeliveryID.
func (s *AnswerStore) GetByDeliveryID(
	ctx context.Context,
	deliveryID uuid.UUID,
) (*domain.AnswerRecord, error) {
	query := `
		SELECT id, user_id, content_id, delivery_id, selected_option, correct,
			latency_ms, difficulty, streak_before, streak_after, created_at
		FROM answer_records
		WHERE delivery_id = $1
	`

	var (
		rec        domain.AnswerRecord
		latencyMs  sql.NullInt64
		difficulty int
	)

	err := s.db.QueryRowContext(ctx, query, deliveryID).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.ContentID,
		&rec.DeliveryID,
		&rec.SelectedOption,
		&rec.Correct,
		&latencyMs,
		&difficulty,
		&rec.StreakBefore,
		&rec.StreakAfter,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAnswerNotFound
		}
		return nil, fmt.Errorf("failed to get answer record: %w", err)
	}

	rec.Difficulty = domain.Difficulty(difficulty)
	if latencyMs.Valid {
		latency := time.Duration(latencyMs.Int64) * time.Millisecond
		rec.Latency = &latency
	}

	return &rec, nil
}

// ListAnsweredContentIDs implements store.AnswerStore.ListAnsweredContentIDs.
func (s *AnswerStore) ListAnsweredContentIDs(
	ctx context.Context,
	userID uuid.UUID,
) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT content_id FROM answer_records WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answered content IDs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan content ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate answered content IDs: %w", err)
	}

	return ids, nil
}

// WithTx implements store.AnswerStore.WithTx.
func (s *AnswerStore) WithTx(tx *sql.Tx) store.AnswerStore {
	return &AnswerStore{db: tx, logger: s.logger}
}
