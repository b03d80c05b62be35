package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pulseprep/pulseprep-api/internal/domain"
)

// AnswerStore defines the persistence contract for answer records.
// Records are immutable after creation.
type AnswerStore interface {
	// Create persists a new answer record. Returns ErrDuplicateAnswer when
	// a record already exists for the delivery, which makes answer
	// processing safe to retry.
	Create(ctx context.Context, rec *domain.AnswerRecord) error

	// GetByDeliveryID retrieves the answer record for a delivery, if any.
	// Returns ErrAnswerNotFound when the delivery has not been processed.
	GetByDeliveryID(ctx context.Context, deliveryID uuid.UUID) (*domain.AnswerRecord, error)

	// ListAnsweredContentIDs returns the IDs of every content item the user
	// has an answer record for. This is the exclusion set used by content
	// selection to avoid repeats.
	ListAnsweredContentIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	// WithTx returns an AnswerStore bound to the given transaction.
	WithTx(tx *sql.Tx) AnswerStore
}
