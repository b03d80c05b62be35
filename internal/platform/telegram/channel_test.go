package telegram

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseprep/pulseprep-api/internal/delivery"
	"github.com/pulseprep/pulseprep-api/internal/domain"
)

func sampleItem(t *testing.T) *domain.ContentItem {
	t.Helper()
	item, err := domain.NewContentItem(
		"Which HTTP status code means Too Many Requests?",
		[]string{"429", "503", "418", "409"},
		"429",
		"429 signals rate limiting.",
		domain.DifficultyMedium,
		"web",
		domain.SourceAuthored,
	)
	require.NoError(t, err)
	return item
}

func TestCallbackDataRoundTrip(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	data := encodeCallbackData(id, 2)
	assert.LessOrEqual(t, len(data), 64, "telegram caps callback data at 64 bytes")

	gotID, gotIdx, err := decodeCallbackData(data)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, 2, gotIdx)
}

func TestDecodeCallbackDataRejectsGarbage(t *testing.T) {
	t.Parallel()

	testCases := []string{
		"",
		"noop",
		"ans:not-a-uuid:0",
		"ans:" + uuid.NewString() + ":9",
		"ans:" + uuid.NewString() + ":-1",
		"other:" + uuid.NewString() + ":0",
		"ans:" + uuid.NewString(),
	}
	for _, data := range testCases {
		_, _, err := decodeCallbackData(data)
		assert.Error(t, err, "data %q", data)
	}
}

func TestRenderItemHidesAnswer(t *testing.T) {
	t.Parallel()

	item := sampleItem(t)
	text := renderItem(item)

	assert.Contains(t, text, item.Prompt)
	assert.Contains(t, text, "medium")
	assert.NotContains(t, text, item.Explanation)
}

func TestOptionKeyboardOneButtonPerOption(t *testing.T) {
	t.Parallel()

	item := sampleItem(t)
	kb := optionKeyboard(item)

	require.Len(t, kb.InlineKeyboard, domain.OptionCount)
	for i, row := range kb.InlineKeyboard {
		require.Len(t, row, 1)
		assert.Equal(t, item.Options[i], row[0].Text)

		gotID, gotIdx, err := decodeCallbackData(*row[0].CallbackData)
		require.NoError(t, err)
		assert.Equal(t, item.ID, gotID)
		assert.Equal(t, i, gotIdx)
	}
}

func TestRenderFeedback(t *testing.T) {
	t.Parallel()

	correct := renderFeedback(delivery.Feedback{
		Correct:    true,
		Streak:     5,
		Difficulty: domain.DifficultyHard,
	})
	assert.Contains(t, correct, "Correct")
	assert.Contains(t, correct, "Streak: 5")
	assert.NotContains(t, correct, "level is now")

	wrong := renderFeedback(delivery.Feedback{
		Correct:           false,
		CorrectOption:     "429",
		Explanation:       "429 signals rate limiting.",
		Difficulty:        domain.DifficultyIntro,
		DifficultyChanged: true,
	})
	assert.Contains(t, wrong, "429")
	assert.Contains(t, wrong, "rate limiting")
	assert.Contains(t, wrong, "intro")
}
