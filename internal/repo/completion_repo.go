// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// DailyCompletion model used by the cadence guard.
//
// The unique index on (owner_id, action_kind, date) turns check-then-write
// into a plain conditional insert for single-attempt kinds: the first insert
// wins, concurrent duplicates surface as ErrDuplicate. Budgeted kinds update
// the accumulator with a used-value guard so two racing consumers cannot both
// fit in the same remaining budget.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-nemesis-backend/internal/domain"
)

// GetCompletion returns the completion record for (owner, kind, date), or
// ErrNotFound when today's allowance is untouched.
func GetCompletion(ctx context.Context, db *gorm.DB, ownerID, kind, date string) (*domain.DailyCompletion, error) {
	var rec domain.DailyCompletion
	err := db.WithContext(ctx).
		Where("owner_id = ? AND action_kind = ? AND date = ?", ownerID, kind, date).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateCompletion inserts the first consumption for (owner, kind, date) and
// returns ErrDuplicate on a unique violation, which callers treat as "the
// allowance was already consumed today".
func CreateCompletion(ctx context.Context, db *gorm.DB, ownerID, kind, date string, used float64) (*domain.DailyCompletion, error) {
	now := time.Now().UTC()
	rec := &domain.DailyCompletion{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		ActionKind: kind,
		Date:       date,
		Used:       used,
		CreatedAt:  now,
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// AddCompletionUsedChecked increases the accumulator guarded by the used
// value the caller read. Zero rows affected means a concurrent consumer
// changed the total first, reported as ErrStale so the caller can re-read
// and re-evaluate the remaining budget.
func AddCompletionUsedChecked(ctx context.Context, db *gorm.DB, id string, priorUsed, amount float64) error {
	res := db.WithContext(ctx).
		Model(&domain.DailyCompletion{}).
		Where("id = ? AND used = ?", id, priorUsed).
		Update("used", priorUsed+amount)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

// IsNotFound reports whether err is the repo's not-found sentinel.
func IsNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }
