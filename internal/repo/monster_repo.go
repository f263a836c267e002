// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Monster
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no business logic, only CRUD persistence and the conditional
// writes the lifecycle rules depend on.
//
// Error semantics:
//   - When a monster is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - UpdateMonsterChecked and DeleteMonsterChecked return ErrStale when the
//     row exists but the caller's version is no longer current.
//   - On other DB errors, the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-nemesis-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrStale indicates a conditional write lost a version race: the record was
// mutated (or deleted) by a concurrent request after the caller read it.
var ErrStale = errors.New("stale version")

// ErrDuplicate indicates an insert violated a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate")

// isUniqueViolation reports whether err is a uniqueness-constraint failure.
// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}

// CreateMonster inserts a live monster for ownerID at full health. It returns
// ErrDuplicate when the owner already has a live monster.
func CreateMonster(ctx context.Context, db *gorm.DB, ownerID, name, imageRef string, generated bool, health float64) (*domain.Monster, error) {
	m := &domain.Monster{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		ImageRef:  imageRef,
		Health:    health,
		Generated: generated,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return m, nil
}

// GetMonster fetches the live monster owned by ownerID, or ErrNotFound.
func GetMonster(ctx context.Context, db *gorm.DB, ownerID string) (*domain.Monster, error) {
	var m domain.Monster
	if err := db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMonsterChecked writes health and the recovery date guarded by the
// version the caller read. Zero rows affected means a concurrent mutation or
// deletion won the race, reported as ErrStale.
func UpdateMonsterChecked(ctx context.Context, db *gorm.DB, id string, version int, health float64, lastRecoveryDate *string) error {
	updates := map[string]any{
		"health":  health,
		"version": version + 1,
	}
	if lastRecoveryDate != nil {
		updates["last_recovery_date"] = *lastRecoveryDate
	}
	res := db.WithContext(ctx).
		Model(&domain.Monster{}).
		Where("id = ? AND version = ?", id, version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

// DeleteMonsterChecked removes the monster row guarded by version. Exactly
// one of two racing deletes can succeed; the loser gets ErrStale.
func DeleteMonsterChecked(ctx context.Context, db *gorm.DB, id string, version int) error {
	res := db.WithContext(ctx).
		Where("id = ? AND version = ?", id, version).
		Delete(&domain.Monster{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}
