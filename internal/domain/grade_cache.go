package domain

import "time"

// GradeCacheEntry is the SQL backend row for the grading cache. Entries are
// keyed by the normalized submission text and valid for a fixed window after
// StoredAt; expired rows are treated as absent and lazily overwritten.
type GradeCacheEntry struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Key       string    `json:"key"        gorm:"type:varchar(512);not null;uniqueIndex:ux_grade_cache_key"`
	Score     float64   `json:"score"      gorm:"not null"`
	Label     string    `json:"label"      gorm:"type:varchar(255)"`
	Reasoning string    `json:"reasoning"  gorm:"type:text"`
	StoredAt  time.Time `json:"stored_at"  gorm:"not null"`
}

// TableName returns the database table name for GradeCacheEntry.
func (GradeCacheEntry) TableName() string { return "grade_cache_entries" }
