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

// DeliveryStore implements store.DeliveryStore on PostgreSQL. The
// delivery_records table carries a unique (user_id, day) constraint, which
// is the durable idempotency anchor for daily delivery.
type DeliveryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewDeliveryStore creates a PostgreSQL-backed delivery store.
func NewDeliveryStore(db store.DBTX, log *slog.Logger) *DeliveryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &DeliveryStore{
		db:     db,
		logger: log.With(slog.String("component", "delivery_store")),
	}
}

var _ store.DeliveryStore = (*DeliveryStore)(nil)

const deliveryColumns = `id, user_id, content_id, day, delivered_at,
	answered, answered_at, selected_option`

// GetForDay implements store.DeliveryStore.GetForDay.
func (s *DeliveryStore) GetForDay(
	ctx context.Context,
	userID uuid.UUID,
	day time.Time,
) (*domain.DeliveryRecord, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM delivery_records WHERE user_id = $1 AND day = $2`,
		deliveryColumns,
	)
	return scanDelivery(s.db.QueryRowContext(ctx, query, userID, domain.DayOf(day)))
}

// GetByUserAndContent implements store.DeliveryStore.GetByUserAndContent.
func (s *DeliveryStore) GetByUserAndContent(
	ctx context.Context,
	userID, contentID uuid.UUID,
) (*domain.DeliveryRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM delivery_records
		WHERE user_id = $1 AND content_id = $2
		ORDER BY delivered_at DESC
		LIMIT 1
	`, deliveryColumns)
	return scanDelivery(s.db.QueryRowContext(ctx, query, userID, contentID))
}

// Create implements store.DeliveryStore.Create.
func (s *DeliveryStore) Create(ctx context.Context, rec *domain.DeliveryRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := rec.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO delivery_records (id, user_id, content_id, day, delivered_at,
			answered, answered_at, selected_option)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.UserID,
		rec.ContentID,
		rec.Day,
		rec.DeliveredAt,
		rec.Answered,
		nullableTime(rec.AnsweredAt),
		nullableString(rec.SelectedOption),
	)
	if err != nil {
		if isUniqueViolation(err, "delivery_records_user_id_day_key") {
			return store.ErrDuplicateDelivery
		}
		if isUniqueViolation(err, "") {
			return store.ErrDuplicate
		}
		log.Error("failed to create delivery record",
			"user_id", rec.UserID, "content_id", rec.ContentID, "error", err)
		return fmt.Errorf("failed to create delivery record: %w", err)
	}

	return nil
}

// MarkAnswered implements store.DeliveryStore.MarkAnswered.
func (s *DeliveryStore) MarkAnswered(
	ctx context.Context,
	deliveryID uuid.UUID,
	selectedOption string,
	answeredAt time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE delivery_records
		SET answered = TRUE, answered_at = $1, selected_option = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, answeredAt.UTC(), selectedOption, deliveryID)
	if err != nil {
		log.Error("failed to mark delivery answered", "delivery_id", deliveryID, "error", err)
		return fmt.Errorf("failed to mark delivery answered: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrDeliveryNotFound
	}

	return nil
}

// WithTx implements store.DeliveryStore.WithTx.
func (s *DeliveryStore) WithTx(tx *sql.Tx) store.DeliveryStore {
	return &DeliveryStore{db: tx, logger: s.logger}
}

func scanDelivery(row *sql.Row) (*domain.DeliveryRecord, error) {
	var (
		rec        domain.DeliveryRecord
		answeredAt sql.NullTime
		selected   sql.NullString
	)

	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.ContentID,
		&rec.Day,
		&rec.DeliveredAt,
		&rec.Answered,
		&answeredAt,
		&selected,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDeliveryNotFound
		}
		return nil, fmt.Errorf("failed to get delivery record: %w", err)
	}

	rec.Day = domain.DayOf(rec.Day)
	if answeredAt.Valid {
		t := answeredAt.Time.UTC()
		rec.AnsweredAt = &t
	}
	if selected.Valid {
		rec.SelectedOption = &selected.String
	}

	return &rec, nil
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
