package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-nemesis-backend/internal/domain"
	"github.com/tbourn/go-nemesis-backend/internal/grading"
)

// SQLStore persists cache entries in the application database. Expiry is
// evaluated at read time against StoredAt; stale rows are simply overwritten
// by the next Put for the same key.
type SQLStore struct {
	DB  *gorm.DB
	TTL time.Duration
}

// NewSQLStore constructs a SQLStore. A non-positive ttl falls back to
// DefaultTTL.
func NewSQLStore(db *gorm.DB, ttl time.Duration) *SQLStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SQLStore{DB: db, TTL: ttl}
}

// Name implements Store.
func (s *SQLStore) Name() string { return "sql" }

// Get returns a non-expired entry for key, or a miss.
func (s *SQLStore) Get(ctx context.Context, key string) (*grading.Result, bool, error) {
	var rec domain.GradeCacheEntry
	err := s.DB.WithContext(ctx).Where("key = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if time.Since(rec.StoredAt) >= s.TTL {
		return nil, false, nil
	}
	return &grading.Result{Score: rec.Score, Label: rec.Label, Reasoning: rec.Reasoning}, true, nil
}

// Put upserts the entry for key with a fresh StoredAt.
func (s *SQLStore) Put(ctx context.Context, key string, res *grading.Result) error {
	rec := domain.GradeCacheEntry{
		ID:        uuid.NewString(),
		Key:       key,
		Score:     res.Score,
		Label:     res.Label,
		Reasoning: res.Reasoning,
		StoredAt:  time.Now().UTC(),
	}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "label", "reasoning", "stored_at"}),
	}).Create(&rec).Error
}
