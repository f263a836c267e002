// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for TombEntry, the
// append-only death archive, plus the aggregate query used for conditional
// (ETag) responses on the graveyard listing.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-nemesis-backend/internal/domain"
)

// CreateTombEntry appends one death record. Rows are immutable once written.
func CreateTombEntry(ctx context.Context, db *gorm.DB, ownerID, name, imageRef, cause string, diedAt time.Time) (*domain.TombEntry, error) {
	t := &domain.TombEntry{
		ID:       uuid.NewString(),
		OwnerID:  ownerID,
		Name:     name,
		ImageRef: imageRef,
		Cause:    cause,
		DiedAt:   diedAt,
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// LatestTombEntry returns the most recent death record for ownerID, or
// ErrNotFound. Used by the death-race loser to report the same outcome the
// winner produced.
func LatestTombEntry(ctx context.Context, db *gorm.DB, ownerID string) (*domain.TombEntry, error) {
	var t domain.TombEntry
	err := db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("died_at desc").
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CountTombEntries returns the total number of tomb entries for ownerID.
func CountTombEntries(ctx context.Context, db *gorm.DB, ownerID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.TombEntry{}).
		Where("owner_id = ?", ownerID).
		Count(&total).Error
	return total, err
}

// ListTombEntriesPage returns a page of tomb entries for ownerID, newest
// death first. The caller computes offset and limit.
func ListTombEntriesPage(ctx context.Context, db *gorm.DB, ownerID string, offset, limit int) ([]domain.TombEntry, error) {
	var out []domain.TombEntry
	err := db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("died_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// TombStats returns aggregate metadata for an owner's graveyard: the total
// number of entries and the most recent death time. Used by the HTTP layer
// for ETag generation; when the owner has no entries, maxDiedAt is nil.
func TombStats(ctx context.Context, db *gorm.DB, ownerID string) (count int64, maxDiedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.TombEntry{}).Where("owner_id = ?", ownerID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest died_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		DiedAt time.Time
	}
	if err = q.Select("died_at").Order("died_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.DiedAt, nil
}
