package domain

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryRecord links one content item to one user for one calendar day.
// The unique (user, day) pair is the idempotency anchor that guarantees
// at-most-one new item per user per day, even under duplicate triggers.
// Records are never deleted; they form the audit trail of what was shown.
type DeliveryRecord struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	ContentID      uuid.UUID  `json:"content_id"`
	Day            time.Time  `json:"day"` // UTC midnight
	DeliveredAt    time.Time  `json:"delivered_at"`
	Answered       bool       `json:"answered"`
	AnsweredAt     *time.Time `json:"answered_at,omitempty"`
	SelectedOption *string    `json:"selected_option,omitempty"` // recorded by the delivery channel
}

// NewDeliveryRecord creates an unanswered delivery for the given day.
// The day is normalized to UTC midnight before storage.
func NewDeliveryRecord(userID, contentID uuid.UUID, day time.Time) (*DeliveryRecord, error) {
	rec := &DeliveryRecord{
		ID:          uuid.New(),
		UserID:      userID,
		ContentID:   contentID,
		Day:         DayOf(day),
		DeliveredAt: time.Now().UTC(),
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}

	return rec, nil
}

// Validate checks the DeliveryRecord invariants.
func (r *DeliveryRecord) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyDeliveryID
	}
	if r.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if r.ContentID == uuid.Nil {
		return ErrEmptyContentID
	}
	if r.Answered && (r.SelectedOption == nil || *r.SelectedOption == "") {
		return ErrEmptySelectedOption
	}
	return nil
}
