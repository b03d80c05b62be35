package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pulseprep/pulseprep-api/internal/domain"
)

// ItemPayload is the JSON shape every provider is asked to produce.
type ItemPayload struct {
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectOption string   `json:"correct_option"`
	Explanation   string   `json:"explanation"`
	Topic         string   `json:"topic"`
}

var difficultyGuidance = map[domain.Difficulty]string{
	domain.DifficultyIntro:  "suitable for a beginner; a single well-known fact",
	domain.DifficultyMedium: "requires solid general knowledge; no trick phrasing",
	domain.DifficultyHard:   "requires detailed knowledge most people lack",
	domain.DifficultyExpert: "requires specialist-level knowledge; fine distinctions matter",
}

// BuildPrompt renders the generation prompt for one item at the given
// difficulty. Both providers use the same prompt so item quality does not
// depend on the configured backend.
func BuildPrompt(difficulty domain.Difficulty, topic string) string {
	var b strings.Builder

	b.WriteString("Write one multiple-choice quiz question")
	if topic != "" {
		fmt.Fprintf(&b, " about %s", topic)
	}
	fmt.Fprintf(&b, ".\n\nDifficulty: %s (%s).\n", difficulty, difficultyGuidance[difficulty])
	b.WriteString(`
Requirements:
- exactly four answer options, all plausible, exactly one correct
- options must be distinct and self-contained (no "all of the above")
- a one- or two-sentence explanation of the correct answer

Respond with a single JSON object with the keys "prompt", "options",
"correct_option", "explanation" and "topic". "correct_option" must be
copied verbatim from "options".`)

	return b.String()
}

// ParseItem decodes a provider's JSON payload into a validated ContentItem
// at the requested difficulty. Malformed or rule-breaking payloads return
// ErrInvalidResponse.
func ParseItem(
	raw []byte,
	difficulty domain.Difficulty,
	fallbackTopic string,
) (*domain.ContentItem, error) {
	var payload ItemPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	topic := payload.Topic
	if topic == "" {
		topic = fallbackTopic
	}

	item, err := domain.NewContentItem(
		payload.Prompt,
		payload.Options,
		payload.CorrectOption,
		payload.Explanation,
		difficulty,
		topic,
		domain.SourceGenerated,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return item, nil
}
