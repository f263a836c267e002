// Package services – EconomyService
//
// The points and tier economy. Points only ever increase; the tier is a pure
// function of the running total over fixed ascending thresholds and is
// recomputed on every read, never stored. Credit returns both the old and
// new totals so callers can detect a tier-up at the call site.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-nemesis-backend/internal/domain"
	"github.com/tbourn/go-nemesis-backend/internal/repo"
)

// Tier is a discrete reward level derived from cumulative points.
type Tier string

// Tiers in ascending order.
const (
	TierNone   Tier = "NONE"
	TierBronze Tier = "BRONZE"
	TierSilver Tier = "SILVER"
	TierGold   Tier = "GOLD"
)

// Fixed tier thresholds (inclusive lower bounds).
const (
	BronzeThreshold = 250
	SilverThreshold = 500
	GoldThreshold   = 1000
)

// TierFor maps a points total to its tier. Monotonic non-decreasing in
// points; boundary values land in the higher tier (250 points is Bronze).
func TierFor(points int) Tier {
	switch {
	case points >= GoldThreshold:
		return TierGold
	case points >= SilverThreshold:
		return TierSilver
	case points >= BronzeThreshold:
		return TierBronze
	default:
		return TierNone
	}
}

// CreditOutcome reports a points credit with enough context for the caller
// to announce a tier-up exactly once.
type CreditOutcome struct {
	OldPoints int  `json:"old_points"`
	NewPoints int  `json:"new_points"`
	OldTier   Tier `json:"old_tier"`
	NewTier   Tier `json:"new_tier"`
	TierUp    bool `json:"tier_up"`
}

// EconomyService accumulates reward points per owner.
type EconomyService struct {
	DB *gorm.DB
}

// NewEconomyService constructs an EconomyService.
func NewEconomyService(db *gorm.DB) *EconomyService {
	return &EconomyService{DB: db}
}

// Credit adds points (>= 0) to the owner's running total, creating the
// economy row on first use. The increment happens SQL-side so concurrent
// credits are additive.
func (s *EconomyService) Credit(ctx context.Context, ownerID string, points int) (*CreditOutcome, error) {
	if points < 0 {
		return nil, ErrInvalidAmount
	}

	var out CreditOutcome
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := repo.GetEconomy(ctx, tx, ownerID)
		if repo.IsNotFound(err) {
			if rec, err = repo.CreateEconomy(ctx, tx, ownerID); err != nil && !errors.Is(err, repo.ErrDuplicate) {
				return err
			}
			if rec == nil {
				if rec, err = repo.GetEconomy(ctx, tx, ownerID); err != nil {
					return err
				}
			}
		} else if err != nil {
			return err
		}

		if err := repo.AddPoints(ctx, tx, ownerID, points); err != nil {
			return err
		}

		out = CreditOutcome{
			OldPoints: rec.Points,
			NewPoints: rec.Points + points,
			OldTier:   TierFor(rec.Points),
			NewTier:   TierFor(rec.Points + points),
		}
		out.TierUp = out.NewTier != out.OldTier
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns the owner's economy row, synthesizing a zero-point view when
// none exists yet.
func (s *EconomyService) Get(ctx context.Context, ownerID string) (*domain.Economy, Tier, error) {
	rec, err := repo.GetEconomy(ctx, s.DB, ownerID)
	if repo.IsNotFound(err) {
		return &domain.Economy{OwnerID: ownerID, Points: 0}, TierNone, nil
	}
	if err != nil {
		return nil, TierNone, err
	}
	return rec, TierFor(rec.Points), nil
}
