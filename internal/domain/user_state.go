package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserState tracks one participant's difficulty progression and streak.
// There is exactly one record per user; it is mutated only by applying the
// output of the adaptation engine inside the per-user execution path.
type UserState struct {
	ID                 uuid.UUID  `json:"id"`
	ChatID             int64      `json:"chat_id"` // delivery-channel address
	Difficulty         Difficulty `json:"difficulty"`
	Streak             int        `json:"streak"`              // consecutive calendar days with a correct answer
	ConsecutiveCorrect int        `json:"consecutive_correct"` // back-to-back correct answers, drives promotion
	TotalAnswered      int        `json:"total_answered"`
	TotalCorrect       int        `json:"total_correct"`
	OptedIn            bool       `json:"opted_in"`
	LastAnswerDay      *time.Time `json:"last_answer_day,omitempty"` // UTC midnight of the last answered day
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// NewUserState creates state for a first-time participant with the default
// mid-level difficulty and zeroed counters.
func NewUserState(chatID int64) (*UserState, error) {
	now := time.Now().UTC()
	state := &UserState{
		ID:         uuid.New(),
		ChatID:     chatID,
		Difficulty: DefaultDifficulty,
		OptedIn:    true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := state.Validate(); err != nil {
		return nil, err
	}

	return state, nil
}

// Validate checks the UserState invariants.
func (s *UserState) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if s.ChatID == 0 {
		return ErrEmptyChatID
	}
	if !s.Difficulty.Valid() {
		return ErrInvalidDifficulty
	}
	if s.Streak < 0 {
		return ErrNegativeStreak
	}
	if s.ConsecutiveCorrect < 0 {
		return ErrNegativeConsecutive
	}
	if s.TotalAnswered < 0 || s.TotalCorrect < 0 || s.TotalCorrect > s.TotalAnswered {
		return ErrNegativeTotals
	}
	return nil
}

// DayOf truncates t to its UTC calendar day (midnight). All day-granular
// bookkeeping (delivery idempotency, streak gaps) uses this normalization.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
