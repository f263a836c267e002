// Package services – action-kind policies.
//
// Every user-facing feature surface maps to one action kind, and each kind
// carries its full rule set here: the daily cadence shape, the streak bonus
// curve, base reward points, and how the health delta is derived. Feature
// pages stay thin; the registry is the single place these rules live.
package services

// BonusPolicy derives a bonus damage magnitude from a streak count. The
// curve must be monotonic and capped; the concrete shape is a per-kind
// tunable, not a constant.
type BonusPolicy interface {
	Bonus(count int) float64
}

// StepBonus awards one unit of bonus per Every consecutive days, capped:
// min(Cap, count/Every).
type StepBonus struct {
	Every int
	Cap   float64
}

// Bonus implements BonusPolicy.
func (p StepBonus) Bonus(count int) float64 {
	if p.Every <= 0 {
		return 0
	}
	b := float64(count / p.Every)
	if b > p.Cap {
		b = p.Cap
	}
	return b
}

// PercentBonus awards PerDay units per consecutive day, capped:
// min(Cap, count*PerDay).
type PercentBonus struct {
	PerDay float64
	Cap    float64
}

// Bonus implements BonusPolicy.
func (p PercentBonus) Bonus(count int) float64 {
	b := float64(count) * p.PerDay
	if b > p.Cap {
		b = p.Cap
	}
	return b
}

// KindPolicy is the complete rule set for one action kind.
type KindPolicy struct {
	// Kind is the registry key (stable, lowercase).
	Kind string
	// Label is the human-readable form used in death causes and logs.
	Label string

	// Graded marks kinds whose delta comes from the grading collaborator.
	Graded bool

	// Budgeted marks kinds with a per-day unit budget consumed in
	// arbitrary amounts; unbudgeted kinds are single-attempt-per-day.
	Budgeted bool
	// DailyLimit is 1 for single-attempt kinds and the unit budget
	// (entries, minutes) for budgeted kinds.
	DailyLimit float64

	// PerUnitDamage converts consumed units to monster damage for
	// budgeted, non-graded kinds (e.g. minutes of mindfulness).
	PerUnitDamage float64

	// WinDelta / LoseDelta are the fixed monster deltas for outcome kinds.
	// WinDelta is negative (the monster is harmed); LoseDelta is positive.
	WinDelta  float64
	LoseDelta float64

	// BasePoints is credited to the economy on a successful completion.
	BasePoints int

	// StreakBonus derives extra monster damage from the current streak.
	StreakBonus BonusPolicy
}

// Registry resolves action kinds to their policies.
type Registry map[string]KindPolicy

// Get returns the policy for kind.
func (r Registry) Get(kind string) (KindPolicy, bool) {
	p, ok := r[kind]
	return p, ok
}

// DefaultRegistry is the product's action-kind catalogue. The shapes mirror
// the feature surfaces: graded free-text logs, fixed-outcome challenges, and
// a budgeted timed session.
func DefaultRegistry() Registry {
	kinds := []KindPolicy{
		{
			Kind: "food", Label: "a logged meal",
			Graded: true, Budgeted: true, DailyLimit: 3,
			BasePoints:  10,
			StreakBonus: StepBonus{Every: 3, Cap: 10},
		},
		{
			Kind: "exercise", Label: "an exercise session",
			Graded: true, DailyLimit: 1,
			BasePoints:  15,
			StreakBonus: PercentBonus{PerDay: 1, Cap: 15},
		},
		{
			Kind: "affirmation", Label: "an internalized affirmation",
			Graded: true, DailyLimit: 1,
			BasePoints:  10,
			StreakBonus: StepBonus{Every: 3, Cap: 8},
		},
		{
			Kind: "quiz", Label: "a quiz outcome",
			DailyLimit: 1, WinDelta: -15, LoseDelta: 10,
			BasePoints:  20,
			StreakBonus: StepBonus{Every: 3, Cap: 10},
		},
		{
			Kind: "riddle", Label: "a riddle's outcome",
			DailyLimit: 1, WinDelta: -12, LoseDelta: 8,
			BasePoints:  15,
			StreakBonus: StepBonus{Every: 3, Cap: 8},
		},
		{
			Kind: "mindfulness", Label: "a mindful breathing session",
			Budgeted: true, DailyLimit: 3, PerUnitDamage: 5,
			BasePoints:  10,
			StreakBonus: PercentBonus{PerDay: 0.5, Cap: 10},
		},
		{
			Kind: "medication", Label: "a medication taken on schedule",
			DailyLimit: 1, WinDelta: -10, LoseDelta: 5,
			BasePoints:  10,
			StreakBonus: StepBonus{Every: 5, Cap: 6},
		},
	}

	r := make(Registry, len(kinds))
	for _, k := range kinds {
		r[k.Kind] = k
	}
	return r
}
