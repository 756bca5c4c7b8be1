// Package dice implements deterministic dice rolling for skill checks.
package dice

import "errors"

// ErrMissingDice indicates a roll request had no dice specified.
var ErrMissingDice = errors.New("at least one die must be provided")

// ErrInvalidDiceSpec indicates a die specification has invalid fields.
var ErrInvalidDiceSpec = errors.New("dice must have positive sides and count")

// Spec describes a die to roll and how many times to roll it.
type Spec struct {
	Sides int
	Count int
}

// Request describes a full roll: one or more dice specs and a seed.
type Request struct {
	Dice []Spec
	Seed int64
}

// Roll holds the individual results for one dice specification.
type Roll struct {
	Sides   int
	Results []int
	Total   int
}

// Result aggregates every roll in a request.
type Result struct {
	Rolls []Roll
	Total int
}
