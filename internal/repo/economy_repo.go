// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Economy
// model (the running points total per owner).
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-nemesis-backend/internal/domain"
)

// GetEconomy fetches the economy row for ownerID, or ErrNotFound.
func GetEconomy(ctx context.Context, db *gorm.DB, ownerID string) (*domain.Economy, error) {
	var e domain.Economy
	if err := db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEconomy inserts a zero-point economy row for ownerID. Returns
// ErrDuplicate if the row already exists.
func CreateEconomy(ctx context.Context, db *gorm.DB, ownerID string) (*domain.Economy, error) {
	e := &domain.Economy{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Points:    0,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return e, nil
}

// AddPoints atomically increments the points total in the database (points
// never decrease; callers validate amount >= 0). The SQL-side increment makes
// concurrent credits additive rather than last-writer-wins.
func AddPoints(ctx context.Context, db *gorm.DB, ownerID string, amount int) error {
	return db.WithContext(ctx).
		Model(&domain.Economy{}).
		Where("owner_id = ?", ownerID).
		Update("points", gorm.Expr("points + ?", amount)).Error
}
