package server

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/maelmnr/Triangle-game/internal/catalog"
	"github.com/maelmnr/Triangle-game/internal/game"
)

func testGame(t *testing.T, id string) *game.Game {
	t.Helper()

	cat, err := catalog.Load(strings.NewReader(testCatalog))
	if err != nil {
		t.Fatalf("loading test catalog: %v", err)
	}
	tri, err := game.NewTriangle([3]catalog.City{
		mustLookup(t, cat, "Alfa"),
		mustLookup(t, cat, "Bravo"),
		mustLookup(t, cat, "Charlie"),
	})
	if err != nil {
		t.Fatalf("building triangle: %v", err)
	}
	g, err := game.New(id, []string{"Ana"}, game.DifficultyEasy, tri, cat, game.Rules{})
	if err != nil {
		t.Fatalf("creating game: %v", err)
	}
	return g
}

func mustLookup(t *testing.T, cat *catalog.Catalog, name string) catalog.City {
	t.Helper()
	c, err := cat.Lookup(name)
	if err != nil {
		t.Fatalf("lookup %s: %v", name, err)
	}
	return c
}

func TestSessionsPutWithDelete(t *testing.T) {
	s := NewSessions()
	g := testGame(t, "g1")
	s.Put(g, map[string]string{"tok": "p1"})

	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}

	err := s.With("g1", func(got *game.Game, tokens map[string]string) error {
		if got.ID != "g1" {
			t.Errorf("got game %s", got.ID)
		}
		if tokens["tok"] != "p1" {
			t.Errorf("tokens = %v", tokens)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("With: %v", err)
	}

	if err := s.With("missing", func(*game.Game, map[string]string) error { return nil }); !errors.Is(err, ErrNoSuchGame) {
		t.Errorf("With on missing game = %v, want ErrNoSuchGame", err)
	}

	s.Delete("g1")
	if s.Len() != 0 {
		t.Errorf("Len after delete = %d", s.Len())
	}
	// Deleting twice is a no-op.
	s.Delete("g1")
}

func TestSessionsSerializeSameGame(t *testing.T) {
	s := NewSessions()
	s.Put(testGame(t, "g1"), map[string]string{"tok": "p1"})

	// Hammer one game from many goroutines; the per-session lock must keep
	// the unsynchronized game internals consistent under the race detector.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.With("g1", func(g *game.Game, _ map[string]string) error {
					g.Guess("p1", "Delta") // duplicate after the first, still mutates LastActive path
					_ = g.GuessCount()
					return nil
				})
			}
		}()
	}
	wg.Wait()
}

func TestSessionsSweep(t *testing.T) {
	s := NewSessions()

	stale := testGame(t, "stale")
	stale.LastActive = time.Now().UTC().Add(-2 * time.Hour)
	s.Put(stale, nil)

	fresh := testGame(t, "fresh")
	s.Put(fresh, nil)

	if n := s.Sweep(time.Hour); n != 1 {
		t.Fatalf("Sweep removed %d games, want 1", n)
	}
	if err := s.With("stale", func(*game.Game, map[string]string) error { return nil }); !errors.Is(err, ErrNoSuchGame) {
		t.Error("stale game survived the sweep")
	}
	if err := s.With("fresh", func(*game.Game, map[string]string) error { return nil }); err != nil {
		t.Errorf("fresh game was swept: %v", err)
	}
}
