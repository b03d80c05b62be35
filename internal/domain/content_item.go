package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContentSource records how a content item came to exist.
type ContentSource string

// Provenance values for content items.
const (
	SourceAuthored  ContentSource = "authored"  // bulk-loaded, pre-deployment
	SourceGenerated ContentSource = "generated" // produced on demand by the LLM fallback
)

// OptionCount is the fixed number of answer options every item carries.
const OptionCount = 4

// ContentItem is a single assessment question. Items are immutable once
// created; the correctness check compares the selected option to
// CorrectOption by exact string equality, so option order never matters.
type ContentItem struct {
	ID            uuid.UUID     `json:"id"`
	Prompt        string        `json:"prompt"`
	Options       []string      `json:"options"` // exactly four, distinct
	CorrectOption string        `json:"correct_option"`
	Explanation   string        `json:"explanation"`
	Difficulty    Difficulty    `json:"difficulty"`
	Topic         string        `json:"topic"`
	Source        ContentSource `json:"source"`
	CreatedAt     time.Time     `json:"created_at"`
}

// NewContentItem assembles and validates a content item.
func NewContentItem(
	prompt string,
	options []string,
	correctOption string,
	explanation string,
	difficulty Difficulty,
	topic string,
	source ContentSource,
) (*ContentItem, error) {
	item := &ContentItem{
		ID:            uuid.New(),
		Prompt:        prompt,
		Options:       options,
		CorrectOption: correctOption,
		Explanation:   explanation,
		Difficulty:    difficulty,
		Topic:         topic,
		Source:        source,
		CreatedAt:     time.Now().UTC(),
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks the ContentItem invariants: exactly four distinct options
// and a correct option that is a member of the option set.
func (c *ContentItem) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyContentID
	}
	if c.Prompt == "" {
		return ErrEmptyPrompt
	}
	if len(c.Options) != OptionCount {
		return ErrWrongOptionCount
	}

	seen := make(map[string]bool, OptionCount)
	for _, opt := range c.Options {
		if seen[opt] {
			return ErrDuplicateOption
		}
		seen[opt] = true
	}

	if !seen[c.CorrectOption] {
		return ErrCorrectNotInOption
	}
	if !c.Difficulty.Valid() {
		return ErrInvalidDifficulty
	}
	if c.Source != SourceAuthored && c.Source != SourceGenerated {
		return ErrInvalidSource
	}
	return nil
}

// IsCorrect reports whether the selected option matches the designated
// correct option. Exact equality, no fuzzy matching.
func (c *ContentItem) IsCorrect(selected string) bool {
	return selected == c.CorrectOption
}
