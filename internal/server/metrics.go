package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricGamesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trianglegame",
		Name:      "games_started_total",
		Help:      "Games created.",
	})

	// result is "inside", "outside", or "rejected" (unknown city, duplicate,
	// out of turn, finished game).
	metricGuesses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trianglegame",
		Name:      "guesses_total",
		Help:      "Guess submissions by outcome.",
	}, []string{"result"})

	metricLeaderboardWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trianglegame",
		Name:      "leaderboard_writes_total",
		Help:      "Leaderboard persistence attempts by status.",
	}, []string{"status"})
)
