package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is the root of all domain validation failures, so callers
// can classify any invariant violation with a single errors.Is check.
var ErrValidation = errors.New("domain validation failed")

// Entity validation errors. All wrap ErrValidation.
var (
	ErrEmptyUserID         = fmt.Errorf("%w: user ID cannot be empty", ErrValidation)
	ErrEmptyChatID         = fmt.Errorf("%w: chat ID cannot be empty", ErrValidation)
	ErrInvalidDifficulty   = fmt.Errorf("%w: difficulty must be between 1 and 4", ErrValidation)
	ErrNegativeStreak      = fmt.Errorf("%w: streak cannot be negative", ErrValidation)
	ErrNegativeConsecutive = fmt.Errorf(
		"%w: consecutive-correct count cannot be negative",
		ErrValidation,
	)
	ErrNegativeTotals = fmt.Errorf("%w: answer totals cannot be negative", ErrValidation)

	ErrEmptyContentID     = fmt.Errorf("%w: content ID cannot be empty", ErrValidation)
	ErrEmptyPrompt        = fmt.Errorf("%w: content prompt cannot be empty", ErrValidation)
	ErrWrongOptionCount   = fmt.Errorf("%w: content must have exactly four options", ErrValidation)
	ErrDuplicateOption    = fmt.Errorf("%w: content options must be distinct", ErrValidation)
	ErrCorrectNotInOption = fmt.Errorf(
		"%w: correct option must be one of the options",
		ErrValidation,
	)
	ErrInvalidSource = fmt.Errorf("%w: content source must be authored or generated", ErrValidation)

	ErrEmptyDeliveryID     = fmt.Errorf("%w: delivery ID cannot be empty", ErrValidation)
	ErrEmptySelectedOption = fmt.Errorf("%w: selected option cannot be empty", ErrValidation)
	ErrUnansweredDelivery  = fmt.Errorf(
		"%w: answer record requires an answered delivery",
		ErrValidation,
	)
)
