// Package services – ActionService
//
// The orchestrator behind every feature surface. One submission flows
// grade (cached) → cadence → ledger → lifecycle → streak → economy, with
// the ordering contract that a grading failure or cadence denial leaves all
// ledger, streak, and economy state untouched. Feature pages supply only an
// action kind and its input; every rule lives in the registry and the
// services composed here.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// the owner and action kind.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-nemesis-backend/internal/cache"
	"github.com/tbourn/go-nemesis-backend/internal/calendar"
	"github.com/tbourn/go-nemesis-backend/internal/domain"
	"github.com/tbourn/go-nemesis-backend/internal/grading"
	"github.com/tbourn/go-nemesis-backend/internal/repo"
)

// Status discriminates an ActionResult.
type Status string

// Possible result states for a submitted action.
const (
	StatusApplied     Status = "applied"
	StatusDenied      Status = "denied"
	StatusMonsterDied Status = "monster_died"
)

// Denial reasons surfaced with StatusDenied.
const (
	DeniedCadence          = "daily allowance exhausted"
	DeniedSessionCompleted = "session already completed"
	DeniedBudgetEmpty      = "no budget remaining today"
)

// errUnwindDeniedStamp aborts the completion transaction when the budget
// check denies, rolling the session stamp back. Never escapes the service.
var errUnwindDeniedStamp = errors.New("roll back denied completion")

// ActionResult is the discriminated outcome returned to the UI layer for
// every engine operation.
type ActionResult struct {
	Status Status `json:"status"`
	Kind   string `json:"kind"`

	// NewHealth is present for applied results.
	NewHealth float64 `json:"new_health,omitempty"`

	// StreakCount, PointsAwarded, Tier and TierUp are present for applied
	// results that credited the user.
	StreakCount   int  `json:"streak_count,omitempty"`
	PointsAwarded int  `json:"points_awarded,omitempty"`
	Tier          Tier `json:"tier,omitempty"`
	TierUp        bool `json:"tier_up,omitempty"`

	// Remaining carries the unconsumed allowance on denials and budgeted
	// applications.
	Remaining float64 `json:"remaining"`

	// FromCache reports that the grade was served by the grading cache.
	FromCache bool `json:"from_cache,omitempty"`

	// DeniedReason explains a StatusDenied result.
	DeniedReason string `json:"denied_reason,omitempty"`

	// Tomb is the archival record for StatusMonsterDied results.
	Tomb *domain.TombEntry `json:"tomb,omitempty"`
}

// SessionStart is returned when a timed session opens.
type SessionStart struct {
	Session   *domain.TimedSession `json:"session"`
	Remaining float64              `json:"remaining"`
}

// ActionService coordinates the engine's components for each user action.
type ActionService struct {
	DB       *gorm.DB
	Monsters *MonsterService
	Cadence  *CadenceService
	Streaks  *StreakService
	Economy  *EconomyService
	Cache    *cache.Cache
	Grader   grading.Grader
	Kinds    Registry

	Clock calendar.Clock
	Loc   *time.Location
}

// today resolves the engine's current calendar day.
func (s *ActionService) today() calendar.Day {
	return calendar.Today(s.Clock, s.Loc)
}

// policy resolves kind against the registry.
func (s *ActionService) policy(kind string) (KindPolicy, error) {
	p, ok := s.Kinds.Get(strings.ToLower(strings.TrimSpace(kind)))
	if !ok {
		return KindPolicy{}, ErrUnknownKind
	}
	return p, nil
}

// SubmitGradedAction grades a free-text submission (through the cache),
// consumes today's cadence allowance, applies the negated score to the
// monster, and, if it is still alive, bumps the streak, applies any streak
// bonus damage, and credits base points.
func (s *ActionService) SubmitGradedAction(ctx context.Context, ownerID, kind, description string) (*ActionResult, error) {
	tr := otel.Tracer("services/ActionService")
	ctx, span := tr.Start(ctx, "SubmitGradedAction",
		trace.WithAttributes(
			attribute.String("owner.id", ownerID),
			attribute.String("action.kind", kind),
		),
	)
	defer span.End()

	p, err := s.policy(kind)
	if err != nil {
		return nil, err
	}
	if !p.Graded {
		return nil, fmt.Errorf("%w: %q is not a graded kind", ErrUnknownKind, kind)
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrEmptyDescription
	}

	// Surface the missing-monster case before spending a grading call.
	if _, err := s.Monsters.Get(ctx, ownerID); err != nil {
		return nil, err
	}

	key := cache.NormalizeKey(p.Kind, description)
	res, fromCache, err := s.Cache.GetOrCompute(ctx, key, func(ctx context.Context) (*grading.Result, error) {
		return s.Grader.Grade(ctx, description)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGradingFailed, err)
	}

	day := s.today()
	cons, err := s.Cadence.TryConsume(ctx, ownerID, p.Kind, day, 1, p.DailyLimit)
	if err != nil {
		return nil, err
	}
	if !cons.Allowed {
		cadenceDenials.WithLabelValues(p.Kind).Inc()
		return &ActionResult{
			Status: StatusDenied, Kind: p.Kind,
			Remaining: cons.Remaining, FromCache: fromCache,
			DeniedReason: DeniedCadence,
		}, nil
	}

	cause := res.Label
	if cause == "" {
		cause = p.Label
	}
	out, err := s.Monsters.ApplyDelta(ctx, ownerID, -res.Score, cause)
	if err != nil {
		return nil, err
	}
	if out.DiedNow {
		monsterDeaths.WithLabelValues(p.Kind).Inc()
		return &ActionResult{
			Status: StatusMonsterDied, Kind: p.Kind,
			Remaining: cons.Remaining, FromCache: fromCache, Tomb: out.Tomb,
		}, nil
	}

	return s.finishApplied(ctx, ownerID, p, day, out, cons.Remaining, fromCache)
}

// SubmitFixedOutcomeAction applies the fixed delta for an outcome kind
// (quiz, riddle, medication): a win harms the monster and credits the user,
// a loss strengthens the monster and credits nothing. Both consume the day's
// attempt.
func (s *ActionService) SubmitFixedOutcomeAction(ctx context.Context, ownerID, kind, label string, won bool) (*ActionResult, error) {
	tr := otel.Tracer("services/ActionService")
	ctx, span := tr.Start(ctx, "SubmitFixedOutcomeAction",
		trace.WithAttributes(
			attribute.String("owner.id", ownerID),
			attribute.String("action.kind", kind),
			attribute.Bool("won", won),
		),
	)
	defer span.End()

	p, err := s.policy(kind)
	if err != nil {
		return nil, err
	}
	if p.Graded || p.Budgeted {
		return nil, fmt.Errorf("%w: %q is not an outcome kind", ErrUnknownKind, kind)
	}
	if _, err := s.Monsters.Get(ctx, ownerID); err != nil {
		return nil, err
	}

	day := s.today()
	cons, err := s.Cadence.TryConsume(ctx, ownerID, p.Kind, day, 1, p.DailyLimit)
	if err != nil {
		return nil, err
	}
	if !cons.Allowed {
		cadenceDenials.WithLabelValues(p.Kind).Inc()
		return &ActionResult{
			Status: StatusDenied, Kind: p.Kind,
			Remaining: cons.Remaining, DeniedReason: DeniedCadence,
		}, nil
	}

	delta := p.LoseDelta
	if won {
		delta = p.WinDelta
	}
	cause := strings.TrimSpace(label)
	if cause == "" {
		cause = p.Label
	}
	out, err := s.Monsters.ApplyDelta(ctx, ownerID, delta, cause)
	if err != nil {
		return nil, err
	}
	if out.DiedNow {
		monsterDeaths.WithLabelValues(p.Kind).Inc()
		return &ActionResult{
			Status: StatusMonsterDied, Kind: p.Kind,
			Remaining: cons.Remaining, Tomb: out.Tomb,
		}, nil
	}

	if !won {
		// The attempt is spent, but a loss earns neither streak nor
		// points.
		actionsApplied.WithLabelValues(p.Kind).Inc()
		return &ActionResult{
			Status: StatusApplied, Kind: p.Kind,
			NewHealth: out.NewHealth, Remaining: cons.Remaining,
		}, nil
	}
	return s.finishApplied(ctx, ownerID, p, day, out, cons.Remaining, false)
}

// StartTimedSession opens a session for a budgeted kind when any budget
// remains today. The budget itself is only consumed on completion.
func (s *ActionService) StartTimedSession(ctx context.Context, ownerID, kind string) (*SessionStart, *ActionResult, error) {
	p, err := s.policy(kind)
	if err != nil {
		return nil, nil, err
	}
	if !p.Budgeted || p.PerUnitDamage == 0 {
		return nil, nil, ErrNotBudgeted
	}
	if _, err := s.Monsters.Get(ctx, ownerID); err != nil {
		return nil, nil, err
	}

	day := s.today()
	remaining, err := s.Cadence.Remaining(ctx, ownerID, p.Kind, day, p.DailyLimit)
	if err != nil {
		return nil, nil, err
	}
	if remaining <= 0 {
		cadenceDenials.WithLabelValues(p.Kind).Inc()
		return nil, &ActionResult{
			Status: StatusDenied, Kind: p.Kind,
			Remaining: 0, DeniedReason: DeniedBudgetEmpty,
		}, nil
	}

	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock.Now().UTC()
	}
	sess, err := repo.CreateSession(ctx, s.DB, ownerID, p.Kind, now)
	if err != nil {
		return nil, nil, err
	}
	return &SessionStart{Session: sess, Remaining: remaining}, nil, nil
}

// CompleteTimedSession closes a session with the minutes actually spent,
// consumes them from the day budget, and applies per-minute damage. A
// completion that does not fit in the remaining budget is denied with the
// remaining amount and leaves the budget untouched.
func (s *ActionService) CompleteTimedSession(ctx context.Context, ownerID, sessionID string, minutes float64) (*ActionResult, error) {
	tr := otel.Tracer("services/ActionService")
	ctx, span := tr.Start(ctx, "CompleteTimedSession",
		trace.WithAttributes(
			attribute.String("owner.id", ownerID),
			attribute.String("session.id", sessionID),
		),
	)
	defer span.End()

	if minutes <= 0 {
		return nil, ErrInvalidAmount
	}

	sess, err := repo.GetSession(ctx, s.DB, sessionID, ownerID)
	if repo.IsNotFound(err) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if sess.CompletedAt != nil {
		return nil, ErrSessionCompleted
	}

	p, err := s.policy(sess.ActionKind)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock.Now().UTC()
	}

	// Stamp and consume in one transaction: a denied consumption rolls the
	// stamp back, so the session stays open and the same completion can be
	// retried with minutes that fit the remaining budget.
	day := s.today()
	var cons Consumption
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CompleteSession(ctx, tx, sess.ID, ownerID, now); err != nil {
			return err
		}
		c, err := s.Cadence.tryConsume(ctx, tx, ownerID, p.Kind, day, minutes, p.DailyLimit)
		if err != nil {
			return err
		}
		cons = c
		if !c.Allowed {
			return errUnwindDeniedStamp
		}
		return nil
	})
	if errors.Is(err, errUnwindDeniedStamp) {
		cadenceDenials.WithLabelValues(p.Kind).Inc()
		return &ActionResult{
			Status: StatusDenied, Kind: p.Kind,
			Remaining: cons.Remaining, DeniedReason: DeniedCadence,
		}, nil
	}
	if errors.Is(err, repo.ErrStale) {
		return nil, ErrSessionCompleted
	}
	if err != nil {
		return nil, err
	}

	out, err := s.Monsters.ApplyDelta(ctx, ownerID, -(p.PerUnitDamage * minutes), p.Label)
	if err != nil {
		return nil, err
	}
	if out.DiedNow {
		monsterDeaths.WithLabelValues(p.Kind).Inc()
		return &ActionResult{
			Status: StatusMonsterDied, Kind: p.Kind,
			Remaining: cons.Remaining, Tomb: out.Tomb,
		}, nil
	}
	return s.finishApplied(ctx, ownerID, p, day, out, cons.Remaining, false)
}

// CheckRecovery runs the opportunistic nightly recovery for the owner.
func (s *ActionService) CheckRecovery(ctx context.Context, ownerID string) (*RecoveryOutcome, error) {
	return s.Monsters.MaybeRecover(ctx, ownerID)
}

// finishApplied runs the post-ledger tail of a successful action: streak
// bump, bonus damage, and the points credit. Bonus damage can itself cross
// the death threshold, in which case the result flips to monster_died and no
// points are credited.
func (s *ActionService) finishApplied(ctx context.Context, ownerID string, p KindPolicy, day calendar.Day, out *DeltaOutcome, remaining float64, fromCache bool) (*ActionResult, error) {
	count, err := s.Streaks.Bump(ctx, ownerID, p.Kind, day)
	if err != nil {
		return nil, err
	}

	newHealth := out.NewHealth
	if p.StreakBonus != nil {
		if bonus := p.StreakBonus.Bonus(count); bonus > 0 {
			bout, err := s.Monsters.ApplyDelta(ctx, ownerID, -bonus, p.Label+" (streak bonus)")
			if err != nil {
				return nil, err
			}
			if bout.DiedNow {
				monsterDeaths.WithLabelValues(p.Kind).Inc()
				return &ActionResult{
					Status: StatusMonsterDied, Kind: p.Kind,
					StreakCount: count, Remaining: remaining,
					FromCache: fromCache, Tomb: bout.Tomb,
				}, nil
			}
			newHealth = bout.NewHealth
		}
	}

	credit, err := s.Economy.Credit(ctx, ownerID, p.BasePoints)
	if err != nil {
		return nil, err
	}

	actionsApplied.WithLabelValues(p.Kind).Inc()
	return &ActionResult{
		Status: StatusApplied, Kind: p.Kind,
		NewHealth:     newHealth,
		StreakCount:   count,
		PointsAwarded: p.BasePoints,
		Tier:          credit.NewTier,
		TierUp:        credit.TierUp,
		Remaining:     remaining,
		FromCache:     fromCache,
	}, nil
}
