package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/maelmnr/Triangle-game/internal/catalog"
	"github.com/maelmnr/Triangle-game/internal/game"
	"github.com/maelmnr/Triangle-game/internal/leaderboard"
)

// maxRoundsPerPlayer bounds client-supplied rounds and guess limits.
const maxRoundsPerPlayer = 10

type CreateGameRequest struct {
	Players    []string `json:"players"`
	Difficulty string   `json:"difficulty"`
	Region     string   `json:"region,omitempty"`
	Rounds     int      `json:"rounds,omitempty"`
	GuessLimit int      `json:"guessLimit,omitempty"`
	Blind      bool     `json:"blind,omitempty"`
}

// VertexInfo is one corner of the round's triangle.
type VertexInfo struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// PlayerCredential carries a player's bearer token, returned once at game
// creation. The creator hands these out; the server never re-issues them.
type PlayerCredential struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Token    string `json:"token"`
	JoinURL  string `json:"joinUrl"`
}

type CreateGameResponse struct {
	GameID     string             `json:"gameId"`
	Difficulty string             `json:"difficulty"`
	Triangle   []VertexInfo       `json:"triangle"`
	Players    []PlayerCredential `json:"players"`
	GuessLimit int                `json:"guessLimit"`
	Blind      bool               `json:"blind"`
}

type PlayerStanding struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Guesses int    `json:"guesses"`
	// Score is omitted in blind games until they finish.
	Score *int `json:"score,omitempty"`
}

type TurnInfo struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type GuessInfo struct {
	PlayerID string  `json:"playerId"`
	City     string  `json:"city"`
	Country  string  `json:"country"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Inside   *bool   `json:"inside,omitempty"`
	Points   *int    `json:"points,omitempty"`
}

type FinalScore struct {
	PlayerName string  `json:"playerName"`
	Score      int     `json:"score"`
	Efficiency float64 `json:"efficiency"`
}

type GameStateResponse struct {
	GameID     string           `json:"gameId"`
	Status     string           `json:"status"`
	Difficulty string           `json:"difficulty"`
	Blind      bool             `json:"blind"`
	GuessLimit int              `json:"guessLimit"`
	GuessCount int              `json:"guessCount"`
	You        string           `json:"you"`
	Triangle   []VertexInfo     `json:"triangle"`
	Players    []PlayerStanding `json:"players"`
	Turn       *TurnInfo        `json:"turn,omitempty"`
	Guesses    []GuessInfo      `json:"guesses"`
	Results    []FinalScore     `json:"results,omitempty"`
}

type GuessRequest struct {
	City string `json:"city"`
}

type GuessResponse struct {
	City       string    `json:"city"`
	Country    string    `json:"country"`
	Population int       `json:"population,omitempty"`
	Inside     *bool     `json:"inside,omitempty"`
	Points     *int      `json:"points,omitempty"`
	Finished   bool      `json:"finished"`
	NextTurn   *TurnInfo `json:"nextTurn,omitempty"`
	// LeaderboardSaved is set on the finishing guess: false means the scores
	// stand for this match but didn't make it into the persistent board.
	LeaderboardSaved *bool        `json:"leaderboardSaved,omitempty"`
	Results          []FinalScore `json:"results,omitempty"`
}

func handleCreateGame(logger *slog.Logger, sessions *Sessions, cat *catalog.Catalog, rounds int, score game.ScoreFunc, baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateGameRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		difficulty, err := game.ParseDifficulty(req.Difficulty)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if len(req.Players) < game.MinPlayers || len(req.Players) > game.MaxPlayers {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("players must be %d..%d names", game.MinPlayers, game.MaxPlayers))
			return
		}

		limit := req.GuessLimit
		if limit <= 0 {
			perPlayer := req.Rounds
			if perPlayer <= 0 {
				perPlayer = rounds
			}
			limit = perPlayer * len(req.Players)
		}
		// Unbounded limits would leave games running until the TTL sweeper
		// reclaims them.
		if limit > maxRoundsPerPlayer*len(req.Players) {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("guess limit is capped at %d per player", maxRoundsPerPlayer))
			return
		}

		gen := game.NewGenerator(cat, rand.New(rand.NewSource(time.Now().UnixNano())))
		tri, err := gen.Generate(difficulty, req.Region)
		if err != nil {
			if errors.Is(err, game.ErrGeneration) {
				writeError(w, http.StatusUnprocessableEntity,
					"could not build a triangle for this difficulty and region; try an easier tier or a wider region")
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		g, err := game.New(uuid.NewString(), req.Players, difficulty, tri, cat, game.Rules{
			GuessLimit: limit,
			Blind:      req.Blind,
			Score:      score,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		tokens := make(map[string]string, len(g.Players))
		creds := make([]PlayerCredential, len(g.Players))
		for i, p := range g.Players {
			tok := uuid.NewString()
			tokens[tok] = p.ID
			creds[i] = PlayerCredential{
				PlayerID: p.ID,
				Name:     p.Name,
				Token:    tok,
				JoinURL:  joinURL(baseURL, g.ID, tok),
			}
		}
		sessions.Put(g, tokens)
		metricGamesStarted.Inc()

		logger.Info("game created",
			"game_id", g.ID,
			"difficulty", string(difficulty),
			"players", len(g.Players),
			"guess_limit", g.GuessLimit(),
		)

		writeJSON(w, http.StatusCreated, CreateGameResponse{
			GameID:     g.ID,
			Difficulty: string(difficulty),
			Triangle:   triangleInfo(g),
			Players:    creds,
			GuessLimit: g.GuessLimit(),
			Blind:      g.Blind(),
		})
	}
}

func handleGameState(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "gameID")
		token := bearerToken(r)

		var resp GameStateResponse
		err := sessions.With(gameID, func(g *game.Game, tokens map[string]string) error {
			playerID, ok := playerIDForToken(tokens, token)
			if !ok {
				return errBadToken
			}
			resp = stateResponse(g, playerID)
			return nil
		})
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleGuess(logger *slog.Logger, sessions *Sessions, broker *Broker, board leaderboard.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "gameID")
		token := bearerToken(r)

		var req GuessRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.City) == "" {
			writeError(w, http.StatusBadRequest, "city is required")
			return
		}

		var resp GuessResponse
		err := sessions.With(gameID, func(g *game.Game, tokens map[string]string) error {
			playerID, ok := playerIDForToken(tokens, token)
			if !ok {
				return errBadToken
			}
			player, err := g.PlayerByID(playerID)
			if err != nil {
				return err
			}

			result, err := g.Guess(playerID, req.City)
			if err != nil {
				metricGuesses.WithLabelValues("rejected").Inc()
				return err
			}
			if result.Inside {
				metricGuesses.WithLabelValues("inside").Inc()
			} else {
				metricGuesses.WithLabelValues("outside").Inc()
			}

			finished := g.Status == game.StatusFinished
			hidden := g.Blind() && !finished

			resp = GuessResponse{
				City:     result.City.Name,
				Country:  result.City.Country,
				Finished: finished,
			}
			event := Event{Type: "guess", PlayerName: player.Name, City: result.City.Name}
			if !hidden {
				resp.Population = result.City.Population
				resp.Inside = ptr(result.Inside)
				resp.Points = ptr(result.Points)
				event.Inside = ptr(result.Inside)
				event.Points = ptr(result.Points)
			}
			broker.Publish(g.ID, event)

			if finished {
				resp.Results = finalScores(g)
				saved := recordScores(r, logger, board, g)
				resp.LeaderboardSaved = &saved
				broker.Publish(g.ID, Event{Type: "finished"})
			} else if cur := g.CurrentPlayer(); cur != nil {
				resp.NextTurn = &TurnInfo{PlayerID: cur.ID, Name: cur.Name}
			}
			return nil
		})
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleAbandonGame(logger *slog.Logger, sessions *Sessions, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "gameID")
		token := bearerToken(r)

		err := sessions.With(gameID, func(g *game.Game, tokens map[string]string) error {
			if _, ok := playerIDForToken(tokens, token); !ok {
				return errBadToken
			}
			return nil
		})
		if err != nil {
			writeSessionError(w, err)
			return
		}

		sessions.Delete(gameID)
		broker.Publish(gameID, Event{Type: "abandoned"})
		logger.Info("game abandoned", "game_id", gameID)
		w.WriteHeader(http.StatusNoContent)
	}
}

var errBadToken = errors.New("token does not belong to this game")

// writeSessionError maps game and session errors to HTTP statuses. Unknown
// cities are 404 and leave the game untouched; duplicate, out-of-turn, and
// finished-game rejections are 409 conflicts.
func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoSuchGame):
		writeError(w, http.StatusNotFound, "game not found")
	case errors.Is(err, errBadToken), errors.Is(err, game.ErrUnknownPlayer):
		writeError(w, http.StatusUnauthorized, errBadToken.Error())
	case errors.Is(err, catalog.ErrUnknownCity):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrDuplicateGuess),
		errors.Is(err, game.ErrOutOfTurn),
		errors.Is(err, game.ErrGameFinished):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func stateResponse(g *game.Game, playerID string) GameStateResponse {
	finished := g.Status == game.StatusFinished
	hidden := g.Blind() && !finished

	players := make([]PlayerStanding, len(g.Players))
	for i, p := range g.Players {
		players[i] = PlayerStanding{ID: p.ID, Name: p.Name, Guesses: p.Guesses}
		if !hidden {
			players[i].Score = ptr(p.Score)
		}
	}

	guesses := make([]GuessInfo, 0, len(g.History()))
	for _, rec := range g.History() {
		info := GuessInfo{
			PlayerID: rec.PlayerID,
			City:     rec.City.Name,
			Country:  rec.City.Country,
			Lat:      rec.City.Lat,
			Lng:      rec.City.Lng,
		}
		if !hidden {
			info.Inside = ptr(rec.Inside)
			info.Points = ptr(rec.Points)
		}
		guesses = append(guesses, info)
	}

	resp := GameStateResponse{
		GameID:     g.ID,
		Status:     string(g.Status),
		Difficulty: string(g.Difficulty),
		Blind:      g.Blind(),
		GuessLimit: g.GuessLimit(),
		GuessCount: g.GuessCount(),
		You:        playerID,
		Triangle:   triangleInfo(g),
		Players:    players,
		Guesses:    guesses,
	}
	if cur := g.CurrentPlayer(); cur != nil {
		resp.Turn = &TurnInfo{PlayerID: cur.ID, Name: cur.Name}
	}
	if finished {
		resp.Results = finalScores(g)
	}
	return resp
}

func triangleInfo(g *game.Game) []VertexInfo {
	out := make([]VertexInfo, 3)
	for i, v := range g.Triangle.Vertices {
		out[i] = VertexInfo{Name: v.Name, Country: v.Country, Lat: v.Lat, Lng: v.Lng}
	}
	return out
}

func finalScores(g *game.Game) []FinalScore {
	out := make([]FinalScore, len(g.Players))
	for i, p := range g.Players {
		out[i] = FinalScore{PlayerName: p.Name, Score: p.Score, Efficiency: p.Efficiency()}
	}
	return out
}

// recordScores persists one leaderboard entry per player. Failures are logged
// and surfaced as leaderboardSaved=false; the match result itself stands.
func recordScores(r *http.Request, logger *slog.Logger, board leaderboard.Store, g *game.Game) bool {
	// The client may drop the connection right after its finishing guess;
	// the write must not be canceled with the request.
	ctx := context.WithoutCancel(r.Context())

	saved := true
	now := time.Now().UTC()
	for _, p := range g.Players {
		entry := leaderboard.Entry{
			PlayerName: p.Name,
			Score:      p.Score,
			Efficiency: p.Efficiency(),
			CreatedAt:  now,
		}
		if err := board.Record(ctx, entry); err != nil {
			logger.Warn("leaderboard write failed", "game_id", g.ID, "player", p.Name, "error", err)
			metricLeaderboardWrites.WithLabelValues("error").Inc()
			saved = false
			continue
		}
		metricLeaderboardWrites.WithLabelValues("ok").Inc()
	}
	return saved
}

func joinURL(baseURL, gameID, token string) string {
	return fmt.Sprintf("%s/play/%s?token=%s", strings.TrimRight(baseURL, "/"), gameID, token)
}

func ptr[T any](v T) *T { return &v }
