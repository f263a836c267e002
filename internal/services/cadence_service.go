// Package services – CadenceService
//
// The daily cadence guard. Two policy shapes share one backing record:
// single-attempt kinds insert a completion row exactly once per
// (owner, kind, day), and budgeted kinds accumulate consumed units into the
// row under conditional writes. Denials never mutate anything.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-nemesis-backend/internal/calendar"
	"github.com/tbourn/go-nemesis-backend/internal/repo"
)

// Consumption is the outcome of a cadence check.
type Consumption struct {
	// Allowed reports whether the attempt fit in today's allowance.
	Allowed bool
	// Remaining is the allowance left after this call (unchanged on
	// denial). Always 0 for single-attempt kinds.
	Remaining float64
}

// CadenceService enforces per-(owner, kind, day) allowance policies.
type CadenceService struct {
	DB *gorm.DB
}

// NewCadenceService constructs a CadenceService.
func NewCadenceService(db *gorm.DB) *CadenceService {
	return &CadenceService{DB: db}
}

// TryConsume attempts to consume amount units of the (owner, kind) allowance
// for day. limit is the kind's daily cap: 1 for single-attempt kinds (with
// amount 1), or the unit budget for budgeted kinds. The check-then-write is
// atomic in both shapes, so a double-submit cannot consume twice.
func (s *CadenceService) TryConsume(ctx context.Context, ownerID, kind string, day calendar.Day, amount, limit float64) (Consumption, error) {
	return s.tryConsume(ctx, s.DB, ownerID, kind, day, amount, limit)
}

// tryConsume is TryConsume against an explicit handle, so callers can run
// the cadence check inside an enclosing transaction.
func (s *CadenceService) tryConsume(ctx context.Context, db *gorm.DB, ownerID, kind string, day calendar.Day, amount, limit float64) (Consumption, error) {
	if amount <= 0 {
		return Consumption{}, ErrInvalidAmount
	}

	// Single-attempt: the unique index is the whole policy. First insert
	// wins; a duplicate means today's attempt is spent.
	if limit <= 1 {
		_, err := repo.CreateCompletion(ctx, db, ownerID, kind, day, 1)
		if errors.Is(err, repo.ErrDuplicate) {
			return Consumption{Allowed: false, Remaining: 0}, nil
		}
		if err != nil {
			return Consumption{}, err
		}
		return Consumption{Allowed: true, Remaining: 0}, nil
	}

	// Budgeted: conditional insert or guarded accumulate, retried when a
	// concurrent consumer moves the total first.
	for attempt := 0; attempt < 3; attempt++ {
		rec, err := repo.GetCompletion(ctx, db, ownerID, kind, day)
		if repo.IsNotFound(err) {
			if amount > limit {
				return Consumption{Allowed: false, Remaining: limit}, nil
			}
			if _, cerr := repo.CreateCompletion(ctx, db, ownerID, kind, day, amount); cerr != nil {
				if errors.Is(cerr, repo.ErrDuplicate) {
					continue // raced another first consumer; re-read
				}
				return Consumption{}, cerr
			}
			return Consumption{Allowed: true, Remaining: limit - amount}, nil
		}
		if err != nil {
			return Consumption{}, err
		}

		remaining := limit - rec.Used
		if remaining < 0 {
			remaining = 0
		}
		if amount > remaining {
			return Consumption{Allowed: false, Remaining: remaining}, nil
		}
		if uerr := repo.AddCompletionUsedChecked(ctx, db, rec.ID, rec.Used, amount); uerr != nil {
			if errors.Is(uerr, repo.ErrStale) {
				continue
			}
			return Consumption{}, uerr
		}
		return Consumption{Allowed: true, Remaining: remaining - amount}, nil
	}
	return Consumption{}, repo.ErrStale
}

// Remaining reports today's unconsumed allowance without consuming anything.
func (s *CadenceService) Remaining(ctx context.Context, ownerID, kind string, day calendar.Day, limit float64) (float64, error) {
	rec, err := repo.GetCompletion(ctx, s.DB, ownerID, kind, day)
	if repo.IsNotFound(err) {
		return limit, nil
	}
	if err != nil {
		return 0, err
	}
	remaining := limit - rec.Used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
