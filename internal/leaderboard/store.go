// Package leaderboard persists finalized game results and ranks them.
// Entries are append-only: recorded once when a game finishes, never mutated.
package leaderboard

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entry is one finalized result. Efficiency is score per consuming guess,
// the ranking tiebreaker.
type Entry struct {
	PlayerName string    `json:"playerName"`
	Score      int       `json:"score"`
	Efficiency float64   `json:"efficiency"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Store is the persistence boundary. Record failures propagate to the
// caller; they are surfaced as warnings and never retried automatically.
type Store interface {
	Record(ctx context.Context, e Entry) error
	Top(ctx context.Context, n int) ([]Entry, error)
	Reset(ctx context.Context) error
}

// SQLiteStore implements Store on the leaderboard_entries table.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Record appends one entry. Each write is a single INSERT, so readers never
// observe a partial entry.
func (s *SQLiteStore) Record(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leaderboard_entries (id, player_name, score, efficiency, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, uuid.NewString(), e.PlayerName, e.Score, e.Efficiency, e.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("recording leaderboard entry for %q: %w", e.PlayerName, err)
	}
	return nil
}

// Top returns the n highest-ranked entries: score descending, efficiency
// descending, then oldest first. Stable across calls when nothing new is
// recorded.
func (s *SQLiteStore) Top(ctx context.Context, n int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT player_name, score, efficiency, created_at
		FROM leaderboard_entries
		ORDER BY score DESC, efficiency DESC, created_at ASC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var createdAt string
		if err := rows.Scan(&e.PlayerName, &e.Score, &e.Efficiency, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning leaderboard entry: %w", err)
		}
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing entry timestamp: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Reset wipes the leaderboard. Exposed only through the ops endpoint.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM leaderboard_entries`); err != nil {
		return fmt.Errorf("resetting leaderboard: %w", err)
	}
	return nil
}

var _ Store = (*SQLiteStore)(nil)
