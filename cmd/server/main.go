package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/maelmnr/Triangle-game/internal/catalog"
	"github.com/maelmnr/Triangle-game/internal/config"
	"github.com/maelmnr/Triangle-game/internal/database"
	"github.com/maelmnr/Triangle-game/internal/game"
	"github.com/maelmnr/Triangle-game/internal/leaderboard"
	"github.com/maelmnr/Triangle-game/internal/migrations"
	"github.com/maelmnr/Triangle-game/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	// --- City catalog ---
	cat, err := catalog.New()
	if err != nil {
		return fmt.Errorf("loading city catalog: %w", err)
	}
	logger.Info("city catalog loaded", "cities", cat.Size())

	// --- HTTP server ---
	sessions := server.NewSessions()
	srv := server.New(cfg.HTTPAddr, logger, server.Options{
		Sessions:   sessions,
		Board:      leaderboard.NewSQLiteStore(db),
		Catalog:    cat,
		DB:         db,
		BaseURL:    cfg.BaseURL,
		OpsKeyHash: cfg.OpsKeyHash,
		SPADir:     cfg.SPADir,
		Rounds:     cfg.DefaultRounds,
		Score:      game.CurveByName(cfg.ScoreCurve),
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	// Idle games hold memory until someone finishes or abandons them; sweep
	// the ones nobody touched within the TTL.
	g.Go(func() error {
		ttl := time.Duration(cfg.GameTTLMinutes) * time.Minute
		if ttl <= 0 {
			ttl = 2 * time.Hour
		}
		ticker := time.NewTicker(ttl / 4)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := sessions.Sweep(ttl); n > 0 {
					logger.Info("swept idle games", "count", n, "remaining", sessions.Len())
				}
			}
		}
	})

	return g.Wait()
}
