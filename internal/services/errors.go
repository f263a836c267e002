// Package services implements the vitality engine: the monster's health
// ledger and lifecycle, the daily cadence guard, streak tracking, the points
// economy, and the action orchestrator that ties them together. This file
// centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer. None of them is fatal: every externally
// visible error here is recoverable by a retry or by redirecting the user to
// the monster-creation flow.
package services

import "errors"

var (
	// ErrMonsterNotFound indicates the owner has no live monster. It is
	// surfaced to the caller (redirect to creation), never silently healed
	// by creating one.
	ErrMonsterNotFound = errors.New("no live monster")

	// ErrMonsterExists is returned when creation is attempted while a live
	// monster already exists for the owner.
	ErrMonsterExists = errors.New("monster already exists")

	// ErrGradingFailed wraps a grading-collaborator failure or timeout.
	// No engine state has been mutated when it is returned.
	ErrGradingFailed = errors.New("grading failed")

	// ErrUnknownKind is returned for an action kind the registry does not
	// know.
	ErrUnknownKind = errors.New("unknown action kind")

	// ErrEmptyDescription is returned when a graded submission contains no
	// usable text.
	ErrEmptyDescription = errors.New("description is empty")

	// ErrInvalidAmount is returned for non-positive consumption amounts
	// (session minutes, point credits below zero).
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrSessionNotFound indicates the timed session does not exist or is
	// not owned by the caller.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionCompleted is returned when a timed session is completed a
	// second time.
	ErrSessionCompleted = errors.New("session already completed")

	// ErrNotBudgeted is returned when a timed-session operation targets an
	// action kind without a per-day budget.
	ErrNotBudgeted = errors.New("action kind has no daily budget")
)
