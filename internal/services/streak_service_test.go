package services

import (
	"context"
	"testing"

	"github.com/tbourn/go-nemesis-backend/internal/calendar"
)

func TestStreakService_Bump_Lifecycle(t *testing.T) {
	svc := NewStreakService(newServiceDB(t))
	ctx := context.Background()

	// First completion ever starts the streak at 1.
	n, err := svc.Bump(ctx, "u1", "food", calendar.Day("2026-05-01"))
	if err != nil || n != 1 {
		t.Fatalf("first bump: n=%d err=%v", n, err)
	}

	// Same-day re-entry is idempotent.
	n, err = svc.Bump(ctx, "u1", "food", calendar.Day("2026-05-01"))
	if err != nil || n != 1 {
		t.Fatalf("same-day bump: n=%d err=%v", n, err)
	}

	// Consecutive days increment.
	n, _ = svc.Bump(ctx, "u1", "food", calendar.Day("2026-05-02"))
	if n != 2 {
		t.Fatalf("next-day bump: n=%d", n)
	}
	n, _ = svc.Bump(ctx, "u1", "food", calendar.Day("2026-05-03"))
	if n != 3 {
		t.Fatalf("third day: n=%d", n)
	}

	// A missed day resets to 1, not 0.
	n, _ = svc.Bump(ctx, "u1", "food", calendar.Day("2026-05-05"))
	if n != 1 {
		t.Fatalf("after gap: n=%d", n)
	}
}

func TestStreakService_Bump_KindsAreIndependent(t *testing.T) {
	svc := NewStreakService(newServiceDB(t))
	ctx := context.Background()

	_, _ = svc.Bump(ctx, "u1", "food", calendar.Day("2026-05-01"))
	_, _ = svc.Bump(ctx, "u1", "food", calendar.Day("2026-05-02"))
	n, _ := svc.Bump(ctx, "u1", "exercise", calendar.Day("2026-05-02"))
	if n != 1 {
		t.Fatalf("exercise streak should start fresh: n=%d", n)
	}

	streaks, err := svc.List(ctx, "u1")
	if err != nil || len(streaks) != 2 {
		t.Fatalf("list: %d err=%v", len(streaks), err)
	}
}

func TestStreakService_Bump_BackwardsDateResets(t *testing.T) {
	svc := NewStreakService(newServiceDB(t))
	ctx := context.Background()

	_, _ = svc.Bump(ctx, "u1", "food", calendar.Day("2026-05-03"))
	_, _ = svc.Bump(ctx, "u1", "food", calendar.Day("2026-05-04"))

	// A clock anomaly moving the day backwards is treated as a reset, the
	// same as a gap.
	n, err := svc.Bump(ctx, "u1", "food", calendar.Day("2026-05-01"))
	if err != nil || n != 1 {
		t.Fatalf("backwards day: n=%d err=%v", n, err)
	}
}

func TestStreakService_List_EmptyOwner(t *testing.T) {
	svc := NewStreakService(newServiceDB(t))
	streaks, err := svc.List(context.Background(), "nobody")
	if err != nil || len(streaks) != 0 {
		t.Fatalf("empty owner: %d err=%v", len(streaks), err)
	}
}
