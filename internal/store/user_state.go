package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pulseprep/pulseprep-api/internal/domain"
)

// UserStateStore defines the persistence contract for user state.
//
// A user's state row is exclusively owned by the per-user execution path for
// the duration of one adapt-and-persist cycle; the orchestrator serializes
// access per user, so implementations do not need row-level locking beyond
// ordinary transaction semantics.
type UserStateStore interface {
	// GetByID retrieves a user's state by its unique ID.
	// Returns ErrUserStateNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UserState, error)

	// GetByChatID retrieves a user's state by delivery-channel address.
	// Returns ErrUserStateNotFound if no user is bound to the chat.
	GetByChatID(ctx context.Context, chatID int64) (*domain.UserState, error)

	// Upsert inserts the state if new or replaces the stored row otherwise.
	// The state must pass domain validation.
	Upsert(ctx context.Context, state *domain.UserState) error

	// ListOptedInUserIDs returns the IDs of all users currently opted in to
	// daily delivery. Order is unspecified.
	ListOptedInUserIDs(ctx context.Context) ([]uuid.UUID, error)

	// WithTx returns a UserStateStore bound to the given transaction.
	WithTx(tx *sql.Tx) UserStateStore
}
