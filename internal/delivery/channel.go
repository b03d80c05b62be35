// Package delivery defines the outbound channel contract. The orchestrator
// speaks to users only through this interface; the concrete transport lives
// under internal/platform.
package delivery

import (
	"context"
	"errors"

	"github.com/pulseprep/pulseprep-api/internal/domain"
)

// ErrUnreachable indicates the channel could not reach the user at all
// (blocked bot, deleted chat). The orchestrator treats it as a per-user
// failure, not a systemic one.
var ErrUnreachable = errors.New("user unreachable on delivery channel")

// Feedback is the outcome message sent to a user after their answer has been
// processed.
type Feedback struct {
	// Correct reports whether the user's selection matched the item.
	Correct bool

	// CorrectOption is included so incorrect answers still teach something.
	CorrectOption string

	// Explanation accompanies the verdict when the item carries one.
	Explanation string

	// Difficulty is the user's difficulty after adaptation.
	Difficulty domain.Difficulty

	// DifficultyChanged reports whether adaptation moved the user.
	DifficultyChanged bool

	// Streak is the user's daily streak after adaptation.
	Streak int
}

// Channel delivers assessment items and feedback to users.
type Channel interface {
	// Deliver presents the item to the user and returns a channel-specific
	// handle for the presented message (e.g. a message ID). The item's
	// correct option must not be revealed by delivery.
	Deliver(ctx context.Context, user *domain.UserState, item *domain.ContentItem) (string, error)

	// Notify sends post-answer feedback. Failures are logged by callers but
	// never roll back answer processing.
	Notify(ctx context.Context, user *domain.UserState, fb Feedback) error
}
