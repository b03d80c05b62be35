// Package adapt implements the difficulty adaptation engine: a pure,
// deterministic mapping from (current state, answer correctness, elapsed-day
// gap) to (new difficulty, new streak, new consecutive-correct count).
//
// The engine performs no I/O and holds no state. Rule precedence, highest
// first:
//
//  1. Gap check — a gap of more than one calendar day since the last answer
//     hard-resets to the floor difficulty and zeroes both counters, even if
//     today's answer is correct. Evaluating the gap before correctness is a
//     deliberate product decision; see DESIGN.md before changing it.
//  2. Correct branch — streak grows on the first answer of the day, the
//     consecutive-correct counter grows always, and reaching the promotion
//     threshold promotes (saturating) and resets the counter, including at
//     the ceiling.
//  3. Incorrect branch — both counters reset and difficulty demotes
//     (saturating).
package adapt

import (
	"errors"
	"fmt"
	"time"

	"github.com/pulseprep/pulseprep-api/internal/domain"
)

// PromotionThreshold is the consecutive-correct count that triggers a
// difficulty promotion.
const PromotionThreshold = 3

// ErrInvalidInput indicates the input violates the engine's invariants.
// This is never clamped away: malformed state means upstream data
// corruption and must surface loudly.
var ErrInvalidInput = errors.New("adaptation input invalid")

// Input carries everything the engine needs. LastAnswerDay is nil for users
// who have never answered; both day fields are normalized to UTC midnight
// internally, so callers may pass arbitrary instants.
type Input struct {
	Correct            bool
	Difficulty         domain.Difficulty
	Streak             int
	ConsecutiveCorrect int
	LastAnswerDay      *time.Time
	Today              time.Time
}

// Result is the state the caller should persist.
type Result struct {
	Difficulty         domain.Difficulty
	Streak             int
	ConsecutiveCorrect int
}

// Evaluate applies the adaptation rules to the input. It is total over all
// valid inputs and returns ErrInvalidInput for anything else.
func Evaluate(in Input) (Result, error) {
	if err := validate(in); err != nil {
		return Result{}, err
	}

	today := domain.DayOf(in.Today)

	// Gap check takes precedence over correctness: a missed day resets to
	// the floor regardless of how today's answer went.
	if in.LastAnswerDay != nil {
		last := domain.DayOf(*in.LastAnswerDay)
		if daysBetween(last, today) > 1 {
			return Result{
				Difficulty:         domain.DifficultyIntro,
				Streak:             0,
				ConsecutiveCorrect: 0,
			}, nil
		}
	}

	if !in.Correct {
		return Result{
			Difficulty:         in.Difficulty.Demote(),
			Streak:             0,
			ConsecutiveCorrect: 0,
		}, nil
	}

	streak := in.Streak
	if in.LastAnswerDay == nil || !domain.DayOf(*in.LastAnswerDay).Equal(today) {
		// First answer of the day extends the streak; later answers on the
		// same day do not.
		streak++
	}

	consecutive := in.ConsecutiveCorrect + 1
	difficulty := in.Difficulty
	if consecutive >= PromotionThreshold {
		// The counter resets even at the ceiling, so an expert-level user
		// starts a fresh run-up after every third correct answer.
		difficulty = difficulty.Promote()
		consecutive = 0
	}

	return Result{
		Difficulty:         difficulty,
		Streak:             streak,
		ConsecutiveCorrect: consecutive,
	}, nil
}

func validate(in Input) error {
	if !in.Difficulty.Valid() {
		return fmt.Errorf("%w: difficulty %d out of range", ErrInvalidInput, int(in.Difficulty))
	}
	if in.Streak < 0 {
		return fmt.Errorf("%w: negative streak %d", ErrInvalidInput, in.Streak)
	}
	if in.ConsecutiveCorrect < 0 {
		return fmt.Errorf(
			"%w: negative consecutive-correct count %d",
			ErrInvalidInput,
			in.ConsecutiveCorrect,
		)
	}
	if in.Today.IsZero() {
		return fmt.Errorf("%w: today is unset", ErrInvalidInput)
	}
	if in.LastAnswerDay != nil &&
		domain.DayOf(*in.LastAnswerDay).After(domain.DayOf(in.Today)) {
		return fmt.Errorf("%w: last answer day is in the future", ErrInvalidInput)
	}
	return nil
}

// daysBetween counts whole calendar days from a to b. Both arguments must
// already be UTC midnights.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
