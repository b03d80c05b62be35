package generation

import "errors"

// Errors returned by generator implementations. The selection path only
// distinguishes "got an item" from "did not"; these exist so logs and retry
// logic can tell configuration faults from transient provider trouble.
var (
	// ErrInvalidConfig indicates the generator was constructed with missing
	// or malformed configuration.
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrTransientFailure indicates a retryable provider fault (network,
	// rate limit, 5xx).
	ErrTransientFailure = errors.New("transient generation failure")

	// ErrInvalidResponse indicates the provider returned output that could
	// not be parsed into a valid assessment item. Not retryable as-is, but
	// the retry loop treats it as worth one more attempt since sampling is
	// nondeterministic.
	ErrInvalidResponse = errors.New("invalid generation response")

	// ErrContentBlocked indicates the provider refused the prompt. Permanent
	// for the given input.
	ErrContentBlocked = errors.New("generation content blocked")
)
