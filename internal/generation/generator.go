// Package generation defines the contract for the generative content
// fallback: producing one assessment item on demand when the static pool
// cannot serve a user. Provider implementations live under
// internal/platform; this package owns the prompt, the response schema and
// the validation both providers share.
package generation

import (
	"context"

	"github.com/pulseprep/pulseprep-api/internal/domain"
)

// Generator produces a single assessment item at the requested difficulty.
// Implementations must return items that pass domain validation (exactly
// four options, correct option among them).
type Generator interface {
	// GenerateItem creates one new item. The topic seeds the question
	// subject; an empty topic lets the provider choose freely.
	GenerateItem(
		ctx context.Context,
		difficulty domain.Difficulty,
		topic string,
	) (*domain.ContentItem, error)
}
