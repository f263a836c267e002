package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-nemesis-backend/internal/domain"
)

func TestTombEntries_AppendAndLatest(t *testing.T) {
	db := newRepoDB(t, &domain.TombEntry{})
	ctx := context.Background()

	t1 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(48 * time.Hour)

	if _, err := CreateTombEntry(ctx, db, "u1", "First", "a.png", "a logged meal", t1); err != nil {
		t.Fatalf("create 1: %v", err)
	}
	if _, err := CreateTombEntry(ctx, db, "u1", "Second", "b.png", "a quiz outcome", t2); err != nil {
		t.Fatalf("create 2: %v", err)
	}
	if _, err := CreateTombEntry(ctx, db, "u2", "Other", "", "x", t1); err != nil {
		t.Fatalf("create other owner: %v", err)
	}

	latest, err := LatestTombEntry(ctx, db, "u1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Name != "Second" || latest.Cause != "a quiz outcome" {
		t.Fatalf("latest = %+v", latest)
	}

	if _, err := LatestTombEntry(ctx, db, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	n, err := CountTombEntries(ctx, db, "u1")
	if err != nil || n != 2 {
		t.Fatalf("count=%d err=%v", n, err)
	}
}

func TestListTombEntriesPage_NewestFirst(t *testing.T) {
	db := newRepoDB(t, &domain.TombEntry{})
	ctx := context.Background()

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		name := string(rune('A' + i))
		if _, err := CreateTombEntry(ctx, db, "u1", name, "", "c", base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	page, err := ListTombEntriesPage(ctx, db, "u1", 0, 2)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(page) != 2 || page[0].Name != "E" || page[1].Name != "D" {
		t.Fatalf("page 1 order: %+v", page)
	}

	page, err = ListTombEntriesPage(ctx, db, "u1", 4, 2)
	if err != nil || len(page) != 1 || page[0].Name != "A" {
		t.Fatalf("last page: %+v err=%v", page, err)
	}
}

func TestTombStats(t *testing.T) {
	db := newRepoDB(t, &domain.TombEntry{})
	ctx := context.Background()

	// Empty graveyard.
	n, maxTS, err := TombStats(ctx, db, "u1")
	if err != nil || n != 0 || maxTS != nil {
		t.Fatalf("empty stats: n=%d max=%v err=%v", n, maxTS, err)
	}

	t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	_, _ = CreateTombEntry(ctx, db, "u1", "A", "", "c", t1)
	_, _ = CreateTombEntry(ctx, db, "u1", "B", "", "c", t2)

	n, maxTS, err = TombStats(ctx, db, "u1")
	if err != nil || n != 2 || maxTS == nil {
		t.Fatalf("stats: n=%d max=%v err=%v", n, maxTS, err)
	}
	if !maxTS.Equal(t2) {
		t.Fatalf("max died_at = %v, want %v", maxTS, t2)
	}
}
