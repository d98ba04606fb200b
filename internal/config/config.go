package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/leaderboard.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"../web/dist"`

	// BaseURL is the public URL of this deployment, used to build invite
	// links and their QR codes.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// OpsKeyHash is a bcrypt hash guarding the leaderboard reset endpoint.
	// Empty disables the endpoint.
	OpsKeyHash string `env:"OPS_KEY_HASH" envDefault:""`

	// DefaultRounds is the number of guesses per player when a match
	// doesn't set its own limit.
	DefaultRounds int `env:"DEFAULT_ROUNDS" envDefault:"3"`

	// ScoreCurve selects the population-to-points curve: "log" or "linear".
	ScoreCurve string `env:"SCORE_CURVE" envDefault:"log"`

	// GameTTL is how long an idle game survives before the session sweeper
	// discards it, in minutes.
	GameTTLMinutes int `env:"GAME_TTL_MINUTES" envDefault:"120"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
