package generation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseprep/pulseprep-api/internal/domain"
)

func validPayload() ItemPayload {
	return ItemPayload{
		Prompt:        "Which planet has the most moons?",
		Options:       []string{"Saturn", "Jupiter", "Uranus", "Neptune"},
		CorrectOption: "Saturn",
		Explanation:   "Saturn overtook Jupiter after a wave of small-moon discoveries.",
		Topic:         "astronomy",
	}
}

func TestBuildPromptMentionsDifficultyAndTopic(t *testing.T) {
	t.Parallel()

	prompt := BuildPrompt(domain.DifficultyExpert, "chemistry")
	assert.Contains(t, prompt, "expert")
	assert.Contains(t, prompt, "chemistry")
	assert.Contains(t, prompt, "correct_option")

	noTopic := BuildPrompt(domain.DifficultyIntro, "")
	assert.NotContains(t, noTopic, "about")
}

func TestParseItem(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(validPayload())
	require.NoError(t, err)

	item, err := ParseItem(raw, domain.DifficultyHard, "")
	require.NoError(t, err)

	assert.Equal(t, "Saturn", item.CorrectOption)
	assert.Equal(t, domain.DifficultyHard, item.Difficulty)
	assert.Equal(t, domain.SourceGenerated, item.Source)
	assert.Equal(t, "astronomy", item.Topic)
}

func TestParseItemUsesFallbackTopic(t *testing.T) {
	t.Parallel()

	payload := validPayload()
	payload.Topic = ""
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	item, err := ParseItem(raw, domain.DifficultyMedium, "general knowledge")
	require.NoError(t, err)
	assert.Equal(t, "general knowledge", item.Topic)
}

func TestParseItemRejectsBadPayloads(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		mutate func(p *ItemPayload)
	}{
		{
			name:   "three options",
			mutate: func(p *ItemPayload) { p.Options = p.Options[:3] },
		},
		{
			name:   "correct option not in options",
			mutate: func(p *ItemPayload) { p.CorrectOption = "Mars" },
		},
		{
			name:   "empty prompt",
			mutate: func(p *ItemPayload) { p.Prompt = "" },
		},
		{
			name: "duplicate options",
			mutate: func(p *ItemPayload) {
				p.Options = []string{"Saturn", "Saturn", "Uranus", "Neptune"}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			payload := validPayload()
			tc.mutate(&payload)
			raw, err := json.Marshal(payload)
			require.NoError(t, err)

			_, err = ParseItem(raw, domain.DifficultyMedium, "")
			assert.ErrorIs(t, err, ErrInvalidResponse)
		})
	}
}

func TestParseItemRejectsNonJSON(t *testing.T) {
	t.Parallel()

	_, err := ParseItem([]byte("not json at all"), domain.DifficultyMedium, "")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}
