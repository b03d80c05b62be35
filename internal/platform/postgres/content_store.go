package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pulseprep/pulseprep-api/internal/domain"
	"github.com/pulseprep/pulseprep-api/internal/platform/logger"
	"github.com/pulseprep/pulseprep-api/internal/store"
)

// ContentStore implements store.ContentStore on PostgreSQL. Options are
// stored as a JSONB array; random selection uses ORDER BY random(), which
// is uniform over the candidate set and cheap at this pool size.
type ContentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewContentStore creates a PostgreSQL-backed content store.
func NewContentStore(db store.DBTX, log *slog.Logger) *ContentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &ContentStore{
		db:     db,
		logger: log.With(slog.String("component", "content_store")),
	}
}

var _ store.ContentStore = (*ContentStore)(nil)

const contentColumns = `id, prompt, options, correct_option, explanation,
	difficulty, topic, source, created_at`

// GetByID implements store.ContentStore.GetByID.
func (s *ContentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContentItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM content_items WHERE id = $1`, contentColumns)
	return scanContentItem(s.db.QueryRowContext(ctx, query, id))
}

// Create implements store.ContentStore.Create.
func (s *ContentStore) Create(ctx context.Context, item *domain.ContentItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		return err
	}

	options, err := json.Marshal(item.Options)
	if err != nil {
		return fmt.Errorf("failed to marshal options: %w", err)
	}

	query := `
		INSERT INTO content_items (id, prompt, options, correct_option, explanation,
			difficulty, topic, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = s.db.ExecContext(ctx, query,
		item.ID,
		item.Prompt,
		options,
		item.CorrectOption,
		item.Explanation,
		int(item.Difficulty),
		item.Topic,
		string(item.Source),
		item.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return store.ErrDuplicate
		}
		log.Error("failed to create content item", "content_id", item.ID, "error", err)
		return fmt.Errorf("failed to create content item: %w", err)
	}

	return nil
}

// RandomByDifficulty implements store.ContentStore.RandomByDifficulty.
func (s *ContentStore) RandomByDifficulty(
	ctx context.Context,
	difficulty domain.Difficulty,
	excluded []uuid.UUID,
) (*domain.ContentItem, error) {
	args := []any{int(difficulty)}
	query := fmt.Sprintf(`
		SELECT %s FROM content_items
		WHERE difficulty = $1 AND %s
		ORDER BY random()
		LIMIT 1
	`, contentColumns, notInClause("id", excluded, &args))

	return scanContentItem(s.db.QueryRowContext(ctx, query, args...))
}

// RandomAny implements store.ContentStore.RandomAny.
func (s *ContentStore) RandomAny(
	ctx context.Context,
	excluded []uuid.UUID,
) (*domain.ContentItem, error) {
	var args []any
	query := fmt.Sprintf(`
		SELECT %s FROM content_items
		WHERE %s
		ORDER BY random()
		LIMIT 1
	`, contentColumns, notInClause("id", excluded, &args))

	return scanContentItem(s.db.QueryRowContext(ctx, query, args...))
}

// WithTx implements store.ContentStore.WithTx.
func (s *ContentStore) WithTx(tx *sql.Tx) store.ContentStore {
	return &ContentStore{db: tx, logger: s.logger}
}

func scanContentItem(row *sql.Row) (*domain.ContentItem, error) {
	var (
		item       domain.ContentItem
		options    []byte
		difficulty int
		source     string
	)

	err := row.Scan(
		&item.ID,
		&item.Prompt,
		&options,
		&item.CorrectOption,
		&item.Explanation,
		&difficulty,
		&item.Topic,
		&source,
		&item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to get content item: %w", err)
	}

	if err := json.Unmarshal(options, &item.Options); err != nil {
		return nil, fmt.Errorf("failed to unmarshal options: %w", err)
	}
	item.Difficulty = domain.Difficulty(difficulty)
	item.Source = domain.ContentSource(source)

	return &item, nil
}
