package domain

import (
	"fmt"
	"strings"
)

// Difficulty is the tier of a question; it fixes the value of a correct answer.
type Difficulty string

const (
	Easy   Difficulty = "EASY"
	Medium Difficulty = "MEDIUM"
	Hard   Difficulty = "HARD"
)

// Points returns the value of a correct answer at this difficulty.
func (d Difficulty) Points() int {
	switch d {
	case Easy:
		return 1
	case Medium:
		return 2
	case Hard:
		return 3
	}
	return 0
}

// ParseDifficulty maps a label to a tier. Unknown labels are rejected rather
// than silently defaulting to EASY.
func ParseDifficulty(raw string) (Difficulty, error) {
	switch d := Difficulty(strings.ToUpper(strings.TrimSpace(raw))); d {
	case Easy, Medium, Hard:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, raw)
	}
}

// Score maps (difficulty, correctness) to awarded points: the full tier value
// on a correct answer, zero otherwise. Pure and deterministic.
func Score(d Difficulty, correct bool) int {
	if !correct {
		return 0
	}
	return d.Points()
}
