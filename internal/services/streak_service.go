// Package services – StreakService
//
// Consecutive-day tracking per (owner, action kind). Bump is idempotent for
// same-day re-entry, increments on exactly-next-day, and resets to 1 on any
// gap or date anomaly. Concurrent same-day bumps are resolved by a guard on
// the last date: the loser re-reads and lands on the idempotent path.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-nemesis-backend/internal/calendar"
	"github.com/tbourn/go-nemesis-backend/internal/domain"
	"github.com/tbourn/go-nemesis-backend/internal/repo"
)

// StreakService maintains consecutive-day counters.
type StreakService struct {
	DB *gorm.DB
}

// NewStreakService constructs a StreakService.
func NewStreakService(db *gorm.DB) *StreakService {
	return &StreakService{DB: db}
}

// Bump advances the streak for (owner, kind) on day and returns the
// resulting count.
func (s *StreakService) Bump(ctx context.Context, ownerID, kind string, day calendar.Day) (int, error) {
	for attempt := 0; attempt < 3; attempt++ {
		rec, err := repo.GetStreak(ctx, s.DB, ownerID, kind)
		if repo.IsNotFound(err) {
			created, cerr := repo.CreateStreak(ctx, s.DB, ownerID, kind, day)
			if errors.Is(cerr, repo.ErrDuplicate) {
				continue // raced a concurrent first bump; re-read
			}
			if cerr != nil {
				return 0, cerr
			}
			return created.Count, nil
		}
		if err != nil {
			return 0, err
		}

		switch {
		case rec.LastDate == day:
			// Same-day re-entry is idempotent.
			return rec.Count, nil
		case calendar.IsNextDay(rec.LastDate, day):
			if uerr := repo.UpdateStreakChecked(ctx, s.DB, rec.ID, rec.LastDate, rec.Count+1, day); uerr != nil {
				if errors.Is(uerr, repo.ErrStale) {
					continue
				}
				return 0, uerr
			}
			return rec.Count + 1, nil
		default:
			// Gap of two or more days, or a date anomaly: reset.
			if uerr := repo.UpdateStreakChecked(ctx, s.DB, rec.ID, rec.LastDate, 1, day); uerr != nil {
				if errors.Is(uerr, repo.ErrStale) {
					continue
				}
				return 0, uerr
			}
			return 1, nil
		}
	}
	return 0, repo.ErrStale
}

// List returns all streak records for ownerID.
func (s *StreakService) List(ctx context.Context, ownerID string) ([]domain.Streak, error) {
	return repo.ListStreaks(ctx, s.DB, ownerID)
}
