package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-nemesis-backend/internal/calendar"
)

func TestCadenceService_SingleAttempt_ExactlyOncePerDay(t *testing.T) {
	svc := NewCadenceService(newServiceDB(t))
	ctx := context.Background()
	day := calendar.Day("2026-05-01")

	c, err := svc.TryConsume(ctx, "u1", "food", day, 1, 1)
	if err != nil || !c.Allowed {
		t.Fatalf("first attempt: c=%+v err=%v", c, err)
	}
	c, err = svc.TryConsume(ctx, "u1", "food", day, 1, 1)
	if err != nil || c.Allowed {
		t.Fatalf("second attempt must be denied: c=%+v err=%v", c, err)
	}

	// A new day, a different kind, and a different owner are all fresh.
	if c, _ := svc.TryConsume(ctx, "u1", "food", calendar.Day("2026-05-02"), 1, 1); !c.Allowed {
		t.Fatal("next day should be allowed")
	}
	if c, _ := svc.TryConsume(ctx, "u1", "exercise", day, 1, 1); !c.Allowed {
		t.Fatal("other kind should be allowed")
	}
	if c, _ := svc.TryConsume(ctx, "u2", "food", day, 1, 1); !c.Allowed {
		t.Fatal("other owner should be allowed")
	}
}

func TestCadenceService_Budgeted_AccumulateAndDeny(t *testing.T) {
	svc := NewCadenceService(newServiceDB(t))
	ctx := context.Background()
	day := calendar.Day("2026-05-01")

	c, err := svc.TryConsume(ctx, "u1", "mindfulness", day, 4, 10)
	if err != nil || !c.Allowed || c.Remaining != 6 {
		t.Fatalf("first draw: c=%+v err=%v", c, err)
	}
	c, err = svc.TryConsume(ctx, "u1", "mindfulness", day, 6, 10)
	if err != nil || !c.Allowed || c.Remaining != 0 {
		t.Fatalf("exact fit: c=%+v err=%v", c, err)
	}

	// Budget exhausted: denied without mutation, Remaining reports 0.
	c, err = svc.TryConsume(ctx, "u1", "mindfulness", day, 1, 10)
	if err != nil || c.Allowed || c.Remaining != 0 {
		t.Fatalf("over budget: c=%+v err=%v", c, err)
	}
	if rem, _ := svc.Remaining(ctx, "u1", "mindfulness", day, 10); rem != 0 {
		t.Fatalf("remaining = %v", rem)
	}
}

func TestCadenceService_Budgeted_OversizedFirstDrawDenied(t *testing.T) {
	svc := NewCadenceService(newServiceDB(t))
	ctx := context.Background()
	day := calendar.Day("2026-05-01")

	c, err := svc.TryConsume(ctx, "u1", "mindfulness", day, 11, 10)
	if err != nil || c.Allowed || c.Remaining != 10 {
		t.Fatalf("oversized draw: c=%+v err=%v", c, err)
	}
	// The denial wrote nothing, so the full budget still fits.
	if c, _ := svc.TryConsume(ctx, "u1", "mindfulness", day, 10, 10); !c.Allowed {
		t.Fatal("full budget should still be available")
	}
}

func TestCadenceService_InvalidAmount(t *testing.T) {
	svc := NewCadenceService(newServiceDB(t))
	day := calendar.Day("2026-05-01")
	for _, amount := range []float64{0, -3} {
		if _, err := svc.TryConsume(context.Background(), "u1", "mindfulness", day, amount, 10); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %v: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestCadenceService_Remaining_PeekDoesNotConsume(t *testing.T) {
	svc := NewCadenceService(newServiceDB(t))
	ctx := context.Background()
	day := calendar.Day("2026-05-01")

	if rem, err := svc.Remaining(ctx, "u1", "mindfulness", day, 10); err != nil || rem != 10 {
		t.Fatalf("untouched budget: rem=%v err=%v", rem, err)
	}
	_, _ = svc.TryConsume(ctx, "u1", "mindfulness", day, 3, 10)
	if rem, _ := svc.Remaining(ctx, "u1", "mindfulness", day, 10); rem != 7 {
		t.Fatalf("after draw: rem=%v", rem)
	}
	// Peeking twice reads the same value.
	if rem, _ := svc.Remaining(ctx, "u1", "mindfulness", day, 10); rem != 7 {
		t.Fatalf("second peek: rem=%v", rem)
	}
}
