package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserState(t *testing.T) {
	t.Parallel()

	state, err := NewUserState(12345)
	require.NoError(t, err)

	assert.Equal(t, DifficultyMedium, state.Difficulty)
	assert.Equal(t, 0, state.Streak)
	assert.Equal(t, 0, state.ConsecutiveCorrect)
	assert.True(t, state.OptedIn)
	assert.Nil(t, state.LastAnswerDay)
}

func TestNewUserStateRejectsZeroChatID(t *testing.T) {
	t.Parallel()

	_, err := NewUserState(0)
	assert.ErrorIs(t, err, ErrEmptyChatID)
}

func TestUserStateValidate(t *testing.T) {
	t.Parallel()

	base := func() *UserState {
		return &UserState{
			ID:            uuid.New(),
			ChatID:        99,
			Difficulty:    DifficultyHard,
			TotalAnswered: 10,
			TotalCorrect:  7,
		}
	}

	testCases := []struct {
		name    string
		mutate  func(s *UserState)
		wantErr error
	}{
		{name: "valid state", mutate: func(s *UserState) {}, wantErr: nil},
		{name: "nil ID", mutate: func(s *UserState) { s.ID = uuid.Nil }, wantErr: ErrEmptyUserID},
		{
			name:    "out of range difficulty",
			mutate:  func(s *UserState) { s.Difficulty = 0 },
			wantErr: ErrInvalidDifficulty,
		},
		{
			name:    "negative streak",
			mutate:  func(s *UserState) { s.Streak = -1 },
			wantErr: ErrNegativeStreak,
		},
		{
			name:    "negative consecutive",
			mutate:  func(s *UserState) { s.ConsecutiveCorrect = -2 },
			wantErr: ErrNegativeConsecutive,
		},
		{
			name:    "correct exceeds answered",
			mutate:  func(s *UserState) { s.TotalCorrect = 11 },
			wantErr: ErrNegativeTotals,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := base()
			tc.mutate(s)
			err := s.Validate()

			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestDayOf(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+5", 5*60*60)
	local := time.Date(2025, 6, 15, 2, 30, 0, 0, loc) // 2025-06-14 21:30 UTC

	day := DayOf(local)
	assert.Equal(t, time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC), day)

	// Idempotent on already-normalized values.
	assert.Equal(t, day, DayOf(day))
}
