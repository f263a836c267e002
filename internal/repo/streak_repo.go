// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Streak
// model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-nemesis-backend/internal/domain"
)

// GetStreak fetches the streak for (owner, kind), or ErrNotFound.
func GetStreak(ctx context.Context, db *gorm.DB, ownerID, kind string) (*domain.Streak, error) {
	var s domain.Streak
	err := db.WithContext(ctx).
		Where("owner_id = ? AND action_kind = ?", ownerID, kind).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListStreaks returns all streaks for ownerID ordered by action kind.
func ListStreaks(ctx context.Context, db *gorm.DB, ownerID string) ([]domain.Streak, error) {
	var out []domain.Streak
	err := db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("action_kind asc").
		Find(&out).Error
	return out, err
}

// CreateStreak inserts a fresh streak with count 1. Returns ErrDuplicate if a
// concurrent bump created the row first.
func CreateStreak(ctx context.Context, db *gorm.DB, ownerID, kind, lastDate string) (*domain.Streak, error) {
	s := &domain.Streak{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		ActionKind: kind,
		Count:      1,
		LastDate:   lastDate,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return s, nil
}

// UpdateStreakChecked writes count/lastDate guarded by the lastDate the
// caller read, so two same-day bumps cannot double-increment: the loser's
// guard no longer matches and it gets ErrStale.
func UpdateStreakChecked(ctx context.Context, db *gorm.DB, id string, priorLastDate string, count int, lastDate string) error {
	res := db.WithContext(ctx).
		Model(&domain.Streak{}).
		Where("id = ? AND last_date = ?", id, priorLastDate).
		Updates(map[string]any{"count": count, "last_date": lastDate})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}
