package server

import (
	"errors"
	"sync"
	"time"

	"github.com/maelmnr/Triangle-game/internal/game"
)

// ErrNoSuchGame is returned when a game ID doesn't resolve to a live session.
var ErrNoSuchGame = errors.New("no such game")

// session pairs a game with its player credentials. The mutex serializes all
// access to the game, which itself is not safe for concurrent use.
type session struct {
	mu     sync.Mutex
	game   *game.Game
	tokens map[string]string // bearer token -> player ID
}

// Sessions is the in-memory store of live games, keyed by game ID. Handlers
// receive it explicitly; there is no process-wide singleton. Concurrent
// requests against different games run in parallel, requests against the same
// game are serialized by the per-session mutex.
type Sessions struct {
	mu    sync.RWMutex
	games map[string]*session
}

func NewSessions() *Sessions {
	return &Sessions{games: make(map[string]*session)}
}

// Put registers a new game with its token-to-player mapping.
func (s *Sessions) Put(g *game.Game, tokens map[string]string) {
	s.mu.Lock()
	s.games[g.ID] = &session{game: g, tokens: tokens}
	s.mu.Unlock()
}

// With runs fn with exclusive access to the game. fn must not retain the
// *game.Game or the token map past its return.
func (s *Sessions) With(gameID string, fn func(g *game.Game, tokens map[string]string) error) error {
	s.mu.RLock()
	sess, ok := s.games[gameID]
	s.mu.RUnlock()
	if !ok {
		return ErrNoSuchGame
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess.game, sess.tokens)
}

// Delete drops a game from the store. Deleting an unknown ID is a no-op.
func (s *Sessions) Delete(gameID string) {
	s.mu.Lock()
	delete(s.games, gameID)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// Sweep removes games idle for longer than maxIdle and returns how many were
// dropped. Finished games count as idle from their last guess.
func (s *Sessions) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().UTC().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, sess := range s.games {
		sess.mu.Lock()
		idle := sess.game.LastActive.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.games, id)
			n++
		}
	}
	return n
}

// playerIDForToken resolves a bearer token against a session's credentials.
func playerIDForToken(tokens map[string]string, token string) (string, bool) {
	id, ok := tokens[token]
	return id, ok
}
