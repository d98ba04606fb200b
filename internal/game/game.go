// Package game implements the round state machine: a triangle of three
// cities, one to four players taking turns, and population-based scoring for
// guesses that land inside the triangle.
package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/maelmnr/Triangle-game/internal/catalog"
)

// Status is the game lifecycle state. There are exactly two: a game is
// playable or it is over.
type Status string

const (
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

const (
	MinPlayers = 1
	MaxPlayers = 4

	// DefaultRounds is the number of consuming guesses each player gets
	// unless the match configures otherwise.
	DefaultRounds = 3
)

// Player is one participant with a running score.
type Player struct {
	ID      string
	Name    string
	Score   int
	Guesses int
}

// Efficiency is the player's score per consuming guess, the leaderboard
// tiebreaker.
func (p Player) Efficiency() float64 {
	if p.Guesses == 0 {
		return 0
	}
	return float64(p.Score) / float64(p.Guesses)
}

// Rules are the configurable parts of a match: when it ends, how population
// maps to points, and whether scores stay hidden until the end.
type Rules struct {
	// GuessLimit is the total number of consuming guesses before the game
	// finishes.
	GuessLimit int
	// Blind hides scores and containment results until the game finishes,
	// so players can't steer later guesses by earlier outcomes.
	Blind bool
	// Score maps population to points. Nil means LogCurve.
	Score ScoreFunc
}

// GuessResult is the outcome of a single consuming guess.
type GuessResult struct {
	City   catalog.City
	Inside bool
	Points int
}

// GuessRecord is one entry of the game's guess history.
type GuessRecord struct {
	PlayerID string
	City     catalog.City
	Inside   bool
	Points   int
}

// Game is one active round. It is not safe for concurrent use: each game is
// owned by exactly one session, and the session layer serializes access.
type Game struct {
	ID         string
	Difficulty Difficulty
	Triangle   Triangle
	Players    []Player
	Turn       int
	Status     Status
	CreatedAt  time.Time
	LastActive time.Time

	rules      Rules
	catalog    *catalog.Catalog
	guessed    map[string]struct{}
	history    []GuessRecord
	guessCount int
}

// New starts a game: triangle set, guessed set empty, first player to move.
func New(id string, playerNames []string, difficulty Difficulty, tri Triangle, cat *catalog.Catalog, rules Rules) (*Game, error) {
	if len(playerNames) < MinPlayers || len(playerNames) > MaxPlayers {
		return nil, fmt.Errorf("player count %d outside %d..%d", len(playerNames), MinPlayers, MaxPlayers)
	}
	if rules.GuessLimit <= 0 {
		rules.GuessLimit = DefaultRounds * len(playerNames)
	}
	if rules.Score == nil {
		rules.Score = LogCurve
	}

	players := make([]Player, len(playerNames))
	for i, name := range playerNames {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("player %d has an empty name", i+1)
		}
		players[i] = Player{ID: fmt.Sprintf("p%d", i+1), Name: name}
	}

	now := time.Now().UTC()
	return &Game{
		ID:         id,
		Difficulty: difficulty,
		Triangle:   tri,
		Players:    players,
		Status:     StatusActive,
		CreatedAt:  now,
		LastActive: now,
		rules:      rules,
		catalog:    cat,
		guessed:    make(map[string]struct{}),
	}, nil
}

// Rules returns the match configuration.
func (g *Game) GuessLimit() int { return g.rules.GuessLimit }

// Blind reports whether scores are hidden while the game is active.
func (g *Game) Blind() bool { return g.rules.Blind }

// GuessCount is the number of consuming guesses so far.
func (g *Game) GuessCount() int { return g.guessCount }

// History returns the guess history in submission order.
func (g *Game) History() []GuessRecord { return g.history }

// CurrentPlayer returns the player whose turn it is, or nil when finished.
func (g *Game) CurrentPlayer() *Player {
	if g.Status != StatusActive {
		return nil
	}
	return &g.Players[g.Turn]
}

// PlayerByID finds a player in this game.
func (g *Game) PlayerByID(id string) (*Player, error) {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return &g.Players[i], nil
		}
	}
	return nil, fmt.Errorf("player %q: %w", id, ErrUnknownPlayer)
}

// Guess evaluates cityName for the given player.
//
// Rejections that do not consume a turn: unknown city, duplicate city,
// out-of-turn, finished game. A consuming guess scores points if the city is
// inside the triangle (zero otherwise), advances the turn to the next player,
// and finishes the game once the guess limit is reached.
func (g *Game) Guess(playerID, cityName string) (GuessResult, error) {
	if g.Status == StatusFinished {
		return GuessResult{}, ErrGameFinished
	}

	player, err := g.PlayerByID(playerID)
	if err != nil {
		return GuessResult{}, err
	}
	if player.ID != g.Players[g.Turn].ID {
		return GuessResult{}, ErrOutOfTurn
	}

	city, err := g.catalog.Lookup(cityName)
	if err != nil {
		return GuessResult{}, err
	}

	key := strings.ToLower(city.Name)
	if _, dup := g.guessed[key]; dup {
		return GuessResult{}, fmt.Errorf("%s: %w", city.Name, ErrDuplicateGuess)
	}

	// Triangle vertices can't be guessed either; they define the boundary.
	for _, v := range g.Triangle.Vertices {
		if strings.EqualFold(v.Name, city.Name) {
			return GuessResult{}, fmt.Errorf("%s is a triangle vertex: %w", city.Name, ErrDuplicateGuess)
		}
	}

	result := GuessResult{City: city, Inside: g.Triangle.Contains(city)}
	if result.Inside {
		result.Points = g.rules.Score(city.Population)
	}

	g.guessed[key] = struct{}{}
	g.history = append(g.history, GuessRecord{
		PlayerID: player.ID,
		City:     city,
		Inside:   result.Inside,
		Points:   result.Points,
	})
	player.Guesses++
	player.Score += result.Points
	g.guessCount++
	g.LastActive = time.Now().UTC()

	if g.guessCount >= g.rules.GuessLimit {
		g.Status = StatusFinished
	} else {
		g.Turn = (g.Turn + 1) % len(g.Players)
	}

	return result, nil
}
