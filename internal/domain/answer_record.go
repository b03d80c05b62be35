package domain

import (
	"time"

	"github.com/google/uuid"
)

// AnswerRecord is the durable trace of one processed response. Exactly one
// exists per answered DeliveryRecord and it is immutable after creation;
// corrections are out of scope for the engine.
type AnswerRecord struct {
	ID             uuid.UUID      `json:"id"`
	UserID         uuid.UUID      `json:"user_id"`
	ContentID      uuid.UUID      `json:"content_id"`
	DeliveryID     uuid.UUID      `json:"delivery_id"`
	SelectedOption string         `json:"selected_option"`
	Correct        bool           `json:"correct"`
	Latency        *time.Duration `json:"latency,omitempty"` // delivery to answer, when known
	Difficulty     Difficulty     `json:"difficulty"`        // level at time of answer
	StreakBefore   int            `json:"streak_before"`
	StreakAfter    int            `json:"streak_after"`
	CreatedAt      time.Time      `json:"created_at"`
}

// NewAnswerRecord builds the answer trace for an answered delivery.
// The delivery must already carry the received answer; callers pass the
// delivery rather than raw IDs so the invariant is checkable here.
func NewAnswerRecord(
	delivery *DeliveryRecord,
	correct bool,
	difficulty Difficulty,
	streakBefore, streakAfter int,
) (*AnswerRecord, error) {
	if delivery == nil || !delivery.Answered {
		return nil, ErrUnansweredDelivery
	}

	rec := &AnswerRecord{
		ID:             uuid.New(),
		UserID:         delivery.UserID,
		ContentID:      delivery.ContentID,
		DeliveryID:     delivery.ID,
		SelectedOption: derefOption(delivery.SelectedOption),
		Correct:        correct,
		Difficulty:     difficulty,
		StreakBefore:   streakBefore,
		StreakAfter:    streakAfter,
		CreatedAt:      time.Now().UTC(),
	}

	if delivery.AnsweredAt != nil {
		latency := delivery.AnsweredAt.Sub(delivery.DeliveredAt)
		if latency >= 0 {
			rec.Latency = &latency
		}
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}

	return rec, nil
}

// Validate checks the AnswerRecord invariants.
func (r *AnswerRecord) Validate() error {
	if r.ID == uuid.Nil || r.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if r.ContentID == uuid.Nil {
		return ErrEmptyContentID
	}
	if r.DeliveryID == uuid.Nil {
		return ErrEmptyDeliveryID
	}
	if r.SelectedOption == "" {
		return ErrEmptySelectedOption
	}
	if !r.Difficulty.Valid() {
		return ErrInvalidDifficulty
	}
	if r.StreakBefore < 0 || r.StreakAfter < 0 {
		return ErrNegativeStreak
	}
	return nil
}

func derefOption(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
