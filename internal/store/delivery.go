package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pulseprep/pulseprep-api/internal/domain"
)

// DeliveryStore defines the persistence contract for delivery records.
// Records are append-mostly: created once when an item is issued and
// mutated once when the answer arrives. They are never deleted.
type DeliveryStore interface {
	// GetForDay retrieves the delivery for (user, calendar day), if any.
	// The day is normalized to UTC midnight by the implementation.
	// Returns ErrDeliveryNotFound when the user has no delivery that day.
	GetForDay(ctx context.Context, userID uuid.UUID, day time.Time) (*domain.DeliveryRecord, error)

	// GetByUserAndContent retrieves the most recent delivery of the given
	// content to the given user. The answer path uses this to resolve the
	// delivery a webhook submission refers to.
	// Returns ErrDeliveryNotFound if the content was never delivered.
	GetByUserAndContent(
		ctx context.Context,
		userID, contentID uuid.UUID,
	) (*domain.DeliveryRecord, error)

	// Create persists a new delivery record. Returns ErrDuplicateDelivery
	// when a record already exists for the (user, day) pair; this enforces
	// the at-most-one-per-day invariant at the storage layer.
	Create(ctx context.Context, rec *domain.DeliveryRecord) error

	// MarkAnswered records the user's selected option on the delivery.
	// Returns ErrDeliveryNotFound if the delivery does not exist. Calling it
	// twice overwrites the selection; the answer path guards against double
	// processing via the AnswerStore uniqueness instead.
	MarkAnswered(
		ctx context.Context,
		deliveryID uuid.UUID,
		selectedOption string,
		answeredAt time.Time,
	) error

	// WithTx returns a DeliveryStore bound to the given transaction.
	WithTx(tx *sql.Tx) DeliveryStore
}
