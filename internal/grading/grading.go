// Package grading defines the external grading collaborator consumed by the
// engine: a component that turns a free-text description of a health action
// into a numeric score and a rationale. The engine treats graders as pure
// (they never touch ledger, cadence, or streak state) and passes their
// failures through unchanged so callers can retry.
//
// Sign convention: Score is user-beneficial-positive. A salad grades around
// +60, a triple cheeseburger around -40. The vitality ledger applies the
// NEGATED score to the monster, so beneficial actions harm it.
package grading

import "context"

// Result is a graded submission.
type Result struct {
	// Score is the graded magnitude, beneficial-positive.
	Score float64 `json:"score"`
	// Label is a short human-readable name for the graded action
	// (e.g. a cleaned-up food name). Used as the death cause when the
	// resulting delta kills the monster.
	Label string `json:"label"`
	// Reasoning is the collaborator's free-text rationale.
	Reasoning string `json:"reasoning"`
}

// Grader is the grading collaborator contract. Implementations must honor
// ctx for cancellation and must not mutate any engine state.
type Grader interface {
	Grade(ctx context.Context, description string) (*Result, error)
}

// GraderFunc adapts a function to the Grader interface.
type GraderFunc func(ctx context.Context, description string) (*Result, error)

// Grade calls f.
func (f GraderFunc) Grade(ctx context.Context, description string) (*Result, error) {
	return f(ctx, description)
}
