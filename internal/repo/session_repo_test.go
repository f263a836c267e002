package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-nemesis-backend/internal/domain"
)

func TestSessions_CreateGetComplete(t *testing.T) {
	db := newRepoDB(t, &domain.TimedSession{})
	ctx := context.Background()

	started := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	s, err := CreateSession(ctx, db, "u1", "mindfulness", started)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if s.CompletedAt != nil {
		t.Fatalf("fresh session should be open: %+v", s)
	}

	// Ownership is part of the lookup key.
	if _, err := GetSession(ctx, db, s.ID, "someone-else"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong owner, got %v", err)
	}

	got, err := GetSession(ctx, db, s.ID, "u1")
	if err != nil || got.ActionKind != "mindfulness" {
		t.Fatalf("get: %+v err=%v", got, err)
	}

	done := started.Add(3 * time.Minute)
	if err := CompleteSession(ctx, db, s.ID, "u1", done); err != nil {
		t.Fatalf("complete: %v", err)
	}
	// Completing twice is the double-submit the guard exists for.
	if err := CompleteSession(ctx, db, s.ID, "u1", done); !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale on re-complete, got %v", err)
	}

	got, _ = GetSession(ctx, db, s.ID, "u1")
	if got.CompletedAt == nil {
		t.Fatalf("completed_at not stamped: %+v", got)
	}
}
