package orchestrator

import "errors"

var (
	// ErrContentExhausted indicates that no item could be found or generated
	// for the user. The user is skipped for the day; nothing is persisted.
	ErrContentExhausted = errors.New("no content available for user")

	// ErrDeliveryFailed indicates the channel rejected the item on every
	// attempt. No delivery record exists, so the next trigger retries cleanly.
	ErrDeliveryFailed = errors.New("item delivery failed")

	// ErrUnknownContent indicates an answer referenced content that was never
	// delivered to the user. Typically a stale or forged submission.
	ErrUnknownContent = errors.New("answer references undelivered content")
)
