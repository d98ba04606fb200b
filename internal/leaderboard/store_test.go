package leaderboard

import (
	"context"
	"testing"
	"time"

	"github.com/maelmnr/Triangle-game/internal/database"
	"github.com/maelmnr/Triangle-game/internal/migrations"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()

	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	return NewSQLiteStore(db)
}

func TestTopOrdering(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	entries := []Entry{
		{PlayerName: "Ada", Score: 300, Efficiency: 100, CreatedAt: base},
		{PlayerName: "Grace", Score: 500, Efficiency: 125, CreatedAt: base.Add(time.Minute)},
		{PlayerName: "Edsger", Score: 500, Efficiency: 250, CreatedAt: base.Add(2 * time.Minute)},
		{PlayerName: "Barbara", Score: 100, Efficiency: 50, CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, e := range entries {
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("recording %s: %v", e.PlayerName, err)
		}
	}

	top, err := store.Top(ctx, 3)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}

	wantOrder := []string{"Edsger", "Grace", "Ada"}
	if len(top) != len(wantOrder) {
		t.Fatalf("Top returned %d entries, want %d", len(top), len(wantOrder))
	}
	for i, want := range wantOrder {
		if top[i].PlayerName != want {
			t.Errorf("rank %d = %s, want %s", i+1, top[i].PlayerName, want)
		}
	}
}

func TestTopStableAcrossCalls(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// Identical score and efficiency; creation order breaks the tie.
	for i, name := range []string{"first", "second", "third"} {
		e := Entry{PlayerName: name, Score: 200, Efficiency: 66.7, CreatedAt: base.Add(time.Duration(i) * time.Second)}
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("recording: %v", err)
		}
	}

	first, err := store.Top(ctx, 10)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := store.Top(ctx, 10)
		if err != nil {
			t.Fatalf("Top (repeat): %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("Top length changed between calls")
		}
		for j := range again {
			if again[j] != first[j] {
				t.Fatalf("Top not stable: call %d rank %d = %+v, want %+v", i, j, again[j], first[j])
			}
		}
	}
}

func TestTopEmpty(t *testing.T) {
	store := testStore(t)
	top, err := store.Top(context.Background(), 10)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(top) != 0 {
		t.Errorf("Top on empty store returned %d entries", len(top))
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	e := Entry{PlayerName: "Ada", Score: 1, Efficiency: 1, CreatedAt: time.Now().UTC()}
	if err := store.Record(ctx, e); err != nil {
		t.Fatalf("recording: %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	top, err := store.Top(ctx, 10)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(top) != 0 {
		t.Errorf("leaderboard not empty after reset: %d entries", len(top))
	}
}
