package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"

	"github.com/maelmnr/Triangle-game/internal/game"
)

func addRoutes(r chi.Router, logger *slog.Logger, opts Options) {
	broker := NewBroker()
	score := opts.Score
	if score == nil {
		score = game.LogCurve
	}
	rounds := opts.Rounds
	if rounds <= 0 {
		rounds = game.DefaultRounds
	}

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Triangle Game API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, opts.DB))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws/echo", handleWSEcho(logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/games", handleCreateGame(logger, opts.Sessions, opts.Catalog, rounds, score, opts.BaseURL))

		// Per-game routes require a player bearer token.
		r.Route("/games/{gameID}", func(r chi.Router) {
			r.Get("/", handleGameState(opts.Sessions))
			r.Post("/guesses", handleGuess(logger, opts.Sessions, broker, opts.Board))
			r.Delete("/", handleAbandonGame(logger, opts.Sessions, broker))
			r.Get("/events", handleEvents(opts.Sessions, broker))
			r.Get("/invites/{playerID}/qr", handleInviteQR(logger, opts.Sessions, opts.BaseURL))
		})

		r.Get("/leaderboard", handleLeaderboardTop(logger, opts.Board))
		r.Delete("/leaderboard", handleLeaderboardReset(logger, opts.Board, opts.OpsKeyHash))
	})

	if opts.SPADir != "" {
		if info, err := os.Stat(opts.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", opts.SPADir)
			r.NotFound(handleSPA(opts.SPADir))
		}
	}
}
