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

// UserStateStore implements store.UserStateStore on PostgreSQL.
type UserStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewUserStateStore creates a PostgreSQL-backed user state store.
// The connection must be initialized and managed by the caller.
func NewUserStateStore(db store.DBTX, log *slog.Logger) *UserStateStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &UserStateStore{
		db:     db,
		logger: log.With(slog.String("component", "user_state_store")),
	}
}

var _ store.UserStateStore = (*UserStateStore)(nil)

const userStateColumns = `id, chat_id, difficulty, streak, consecutive_correct,
	total_answered, total_correct, opted_in, last_answer_day, created_at, updated_at`

// GetByID implements store.UserStateStore.GetByID.
func (s *UserStateStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserState, error) {
	query := fmt.Sprintf(`SELECT %s FROM user_states WHERE id = $1`, userStateColumns)
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

// GetByChatID implements store.UserStateStore.GetByChatID.
func (s *UserStateStore) GetByChatID(ctx context.Context, chatID int64) (*domain.UserState, error) {
	query := fmt.Sprintf(`SELECT %s FROM user_states WHERE chat_id = $1`, userStateColumns)
	return s.scanOne(s.db.QueryRowContext(ctx, query, chatID))
}

// Upsert implements store.UserStateStore.Upsert.
func (s *UserStateStore) Upsert(ctx context.Context, state *domain.UserState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO user_states (id, chat_id, difficulty, streak, consecutive_correct,
			total_answered, total_correct, opted_in, last_answer_day, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			difficulty = EXCLUDED.difficulty,
			streak = EXCLUDED.streak,
			consecutive_correct = EXCLUDED.consecutive_correct,
			total_answered = EXCLUDED.total_answered,
			total_correct = EXCLUDED.total_correct,
			opted_in = EXCLUDED.opted_in,
			last_answer_day = EXCLUDED.last_answer_day,
			updated_at = EXCLUDED.updated_at
	`

	state.UpdatedAt = time.Now().UTC()

	var lastAnswerDay sql.NullTime
	if state.LastAnswerDay != nil {
		lastAnswerDay = sql.NullTime{Time: *state.LastAnswerDay, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		state.ID,
		state.ChatID,
		int(state.Difficulty),
		state.Streak,
		state.ConsecutiveCorrect,
		state.TotalAnswered,
		state.TotalCorrect,
		state.OptedIn,
		lastAnswerDay,
		state.CreatedAt,
		state.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to upsert user state", "user_id", state.ID, "error", err)
		return fmt.Errorf("failed to upsert user state: %w", err)
	}

	return nil
}

// ListOptedInUserIDs implements store.UserStateStore.ListOptedInUserIDs.
func (s *UserStateStore) ListOptedInUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM user_states WHERE opted_in`)
	if err != nil {
		return nil, fmt.Errorf("failed to list opted-in users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate opted-in users: %w", err)
	}

	return ids, nil
}

// WithTx implements store.UserStateStore.WithTx.
func (s *UserStateStore) WithTx(tx *sql.Tx) store.UserStateStore {
	return &UserStateStore{db: tx, logger: s.logger}
}

func (s *UserStateStore) scanOne(row *sql.Row) (*domain.UserState, error) {
	var (
		state         domain.UserState
		difficulty    int
		lastAnswerDay sql.NullTime
	)

	err := row.Scan(
		&state.ID,
		&state.ChatID,
		&difficulty,
		&state.Streak,
		&state.ConsecutiveCorrect,
		&state.TotalAnswered,
		&state.TotalCorrect,
		&state.OptedIn,
		&lastAnswerDay,
		&state.CreatedAt,
		&state.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserStateNotFound
		}
		return nil, fmt.Errorf("failed to get user state: %w", err)
	}

	state.Difficulty = domain.Difficulty(difficulty)
	if lastAnswerDay.Valid {
		day := domain.DayOf(lastAnswerDay.Time)
		state.LastAnswerDay = &day
	}

	return &state, nil
}
