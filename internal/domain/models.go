// Package domain defines the persistence models for the vitality engine:
// the live monster, tomb entries, daily completions, streaks, and the user
// economy. These types are mapped with GORM and form the core data layer of
// the application. All records are partitioned by OwnerID; there is no
// cross-user state.
package domain

import (
	"time"
)

// Monster is the live antagonist owned by a user. At most one live row exists
// per owner; when health drops to the death threshold the row is deleted and
// replaced by a TombEntry in the same transaction.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - OwnerID: identifier of the owning user; unique among live rows.
//   - Name / ImageRef: display identity, carried to the tomb on death.
//   - Health: real-valued health. Clamped at MaxHealth on every upward
//     mutation; no floor below the death threshold check.
//   - Generated: whether the image was AI-generated.
//   - LastRecoveryDate: calendar day ("YYYY-MM-DD") of the last nightly
//     recovery grant; nil until the first grant.
//   - Version: optimistic-concurrency counter. Every mutation is a
//     conditional write on (id, version) so a stale client cannot overwrite
//     a newer state or resurrect a deleted monster.
type Monster struct {
	ID               string    `json:"id"         gorm:"type:char(36);primaryKey"`
	OwnerID          string    `json:"owner_id"   gorm:"type:varchar(64);not null;uniqueIndex:ux_monster_owner"`
	Name             string    `json:"name"       gorm:"type:varchar(255);not null"`
	ImageRef         string    `json:"image_ref"  gorm:"type:varchar(512)"`
	Health           float64   `json:"health"     gorm:"not null"`
	Generated        bool      `json:"generated"  gorm:"not null;default:false"`
	LastRecoveryDate *string   `json:"last_recovery_date,omitempty" gorm:"type:varchar(10)"`
	Version          int       `json:"-"          gorm:"not null;default:0"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName returns the database table name for Monster.
func (Monster) TableName() string { return "monsters" }

// TombEntry is the immutable archival record written when a monster dies.
// Exactly one entry is produced per death; rows are never updated or deleted.
//
// Cause is the human-readable label of the action that pushed health to the
// threshold (a food name, "a riddle's outcome", and so on).
type TombEntry struct {
	ID       string    `json:"id"        gorm:"type:char(36);primaryKey"`
	OwnerID  string    `json:"owner_id"  gorm:"type:varchar(64);not null;index:idx_tomb_owner"`
	Name     string    `json:"name"      gorm:"type:varchar(255);not null"`
	ImageRef string    `json:"image_ref" gorm:"type:varchar(512)"`
	Cause    string    `json:"cause"     gorm:"type:varchar(512);not null"`
	DiedAt   time.Time `json:"died_at"   gorm:"not null;index:idx_tomb_owner,priority:2"`
}

// TableName returns the database table name for TombEntry.
func (TombEntry) TableName() string { return "tomb_entries" }

// DailyCompletion records consumption of a daily allowance for one
// (owner, action kind, day). The unique index makes check-then-write for
// single-attempt kinds a plain conditional insert; budgeted kinds accumulate
// into Used under a transaction.
//
// Used is 1 for single-attempt kinds and a running minute (or unit) total for
// budgeted kinds.
type DailyCompletion struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	OwnerID    string    `json:"owner_id"    gorm:"type:varchar(64);not null;uniqueIndex:ux_completion_owner_kind_date"`
	ActionKind string    `json:"action_kind" gorm:"type:varchar(64);not null;uniqueIndex:ux_completion_owner_kind_date"`
	Date       string    `json:"date"        gorm:"type:varchar(10);not null;uniqueIndex:ux_completion_owner_kind_date"`
	Used       float64   `json:"used"        gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the database table name for DailyCompletion.
func (DailyCompletion) TableName() string { return "daily_completions" }

// Streak tracks consecutive-day completion of one action kind by one owner.
// Count is at least 1 whenever the row exists; LastDate is the calendar day
// of the most recent bump.
type Streak struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	OwnerID    string    `json:"owner_id"    gorm:"type:varchar(64);not null;uniqueIndex:ux_streak_owner_kind"`
	ActionKind string    `json:"action_kind" gorm:"type:varchar(64);not null;uniqueIndex:ux_streak_owner_kind"`
	Count      int       `json:"count"       gorm:"not null;default:1"`
	LastDate   string    `json:"last_date"   gorm:"type:varchar(10);not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the database table name for Streak.
func (Streak) TableName() string { return "streaks" }

// Economy accumulates reward points per owner. Points never decrease; the
// tier is always derived from Points on read and never stored.
type Economy struct {
	ID        string    `json:"id"       gorm:"type:char(36);primaryKey"`
	OwnerID   string    `json:"owner_id" gorm:"type:varchar(64);not null;uniqueIndex:ux_economy_owner"`
	Points    int       `json:"points"   gorm:"not null;default:0;check:points >= 0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Economy.
func (Economy) TableName() string { return "economies" }

// TimedSession is an in-flight budgeted session (e.g. a mindfulness timer).
// It is opened by the start operation and closed by the complete operation;
// the daily budget is only consumed on completion.
type TimedSession struct {
	ID          string     `json:"id"           gorm:"type:char(36);primaryKey"`
	OwnerID     string     `json:"owner_id"     gorm:"type:varchar(64);not null;index:idx_session_owner"`
	ActionKind  string     `json:"action_kind"  gorm:"type:varchar(64);not null"`
	StartedAt   time.Time  `json:"started_at"   gorm:"not null"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TableName returns the database table name for TimedSession.
func (TimedSession) TableName() string { return "timed_sessions" }
