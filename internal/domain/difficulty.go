package domain

import "fmt"

// Difficulty is a bounded ordinal classification of content and user
// proficiency. Valid values are 1 (easiest) through 4 (hardest).
//
// Promotion and demotion saturate at the bounds instead of wrapping or
// erroring, so callers never have to guard the arithmetic themselves.
type Difficulty int

// The four difficulty levels.
const (
	DifficultyIntro  Difficulty = 1
	DifficultyMedium Difficulty = 2
	DifficultyHard   Difficulty = 3
	DifficultyExpert Difficulty = 4
)

// DefaultDifficulty is assigned to users on first interaction.
const DefaultDifficulty = DifficultyMedium

// Valid reports whether d is within the 1..4 range.
func (d Difficulty) Valid() bool {
	return d >= DifficultyIntro && d <= DifficultyExpert
}

// Promote returns the next-harder difficulty, saturating at the ceiling.
func (d Difficulty) Promote() Difficulty {
	if d >= DifficultyExpert {
		return DifficultyExpert
	}
	return d + 1
}

// Demote returns the next-easier difficulty, saturating at the floor.
func (d Difficulty) Demote() Difficulty {
	if d <= DifficultyIntro {
		return DifficultyIntro
	}
	return d - 1
}

// String implements fmt.Stringer for logging and error messages.
func (d Difficulty) String() string {
	switch d {
	case DifficultyIntro:
		return "intro"
	case DifficultyMedium:
		return "medium"
	case DifficultyHard:
		return "hard"
	case DifficultyExpert:
		return "expert"
	default:
		return fmt.Sprintf("invalid(%d)", int(d))
	}
}
