package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	// Entity-specific variants below wrap it so callers can match either.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would violate a uniqueness
	// constraint (e.g. a second delivery for the same user and day).
	ErrDuplicate = errors.New("entity already exists")

	// ErrUserStateNotFound indicates the requested user state does not exist.
	ErrUserStateNotFound = fmt.Errorf("%w: user state", ErrNotFound)

	// ErrContentNotFound indicates no content item matched the query.
	ErrContentNotFound = fmt.Errorf("%w: content item", ErrNotFound)

	// ErrDeliveryNotFound indicates the requested delivery record does not exist.
	ErrDeliveryNotFound = fmt.Errorf("%w: delivery record", ErrNotFound)

	// ErrAnswerNotFound indicates the requested answer record does not exist.
	ErrAnswerNotFound = fmt.Errorf("%w: answer record", ErrNotFound)

	// ErrDuplicateDelivery indicates a delivery already exists for the
	// (user, day) pair. This is the idempotency anchor surfacing as an error
	// when two delivery paths race.
	ErrDuplicateDelivery = fmt.Errorf("%w: delivery for user and day", ErrDuplicate)

	// ErrDuplicateAnswer indicates an answer record already exists for the
	// delivery. Answer processing treats this as "already done", not a fault.
	ErrDuplicateAnswer = fmt.Errorf("%w: answer for delivery", ErrDuplicate)
)

// IsNotFound reports whether err is any kind of "not found" store error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicate reports whether err is any kind of uniqueness-violation error.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
