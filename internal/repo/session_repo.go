// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for timed sessions
// (budgeted action kinds with an explicit start/complete pair).
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-nemesis-backend/internal/domain"
)

// CreateSession opens a timed session for (owner, kind).
func CreateSession(ctx context.Context, db *gorm.DB, ownerID, kind string, startedAt time.Time) (*domain.TimedSession, error) {
	s := &domain.TimedSession{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		ActionKind: kind,
		StartedAt:  startedAt,
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetSession fetches a session by ID ensuring it belongs to ownerID.
func GetSession(ctx context.Context, db *gorm.DB, id, ownerID string) (*domain.TimedSession, error) {
	var s domain.TimedSession
	err := db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CompleteSession stamps CompletedAt, guarded so a session can only complete
// once. Zero rows affected means it was already completed (or never existed),
// reported as ErrStale.
func CompleteSession(ctx context.Context, db *gorm.DB, id, ownerID string, completedAt time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.TimedSession{}).
		Where("id = ? AND owner_id = ? AND completed_at IS NULL", id, ownerID).
		Update("completed_at", completedAt)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}
