package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pulseprep/pulseprep-api/internal/domain"
)

// ContentStore defines the persistence contract for content items.
// Items are immutable after creation, so there are no update operations.
type ContentStore interface {
	// GetByID retrieves a content item by its unique ID.
	// Returns ErrContentNotFound if the item does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ContentItem, error)

	// Create persists a new content item. The item must pass domain
	// validation; returns ErrDuplicate if the ID already exists.
	Create(ctx context.Context, item *domain.ContentItem) error

	// RandomByDifficulty returns one item at the given difficulty chosen
	// uniformly at random among items whose IDs are not in excluded.
	// Returns ErrContentNotFound when no candidate remains.
	RandomByDifficulty(
		ctx context.Context,
		difficulty domain.Difficulty,
		excluded []uuid.UUID,
	) (*domain.ContentItem, error)

	// RandomAny returns one item of any difficulty chosen uniformly at
	// random among items whose IDs are not in excluded. A nil or empty
	// excluded set means any item qualifies.
	// Returns ErrContentNotFound when the pool has no candidate.
	RandomAny(ctx context.Context, excluded []uuid.UUID) (*domain.ContentItem, error)

	// WithTx returns a ContentStore bound to the given transaction.
	WithTx(tx *sql.Tx) ContentStore
}
