package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/maelmnr/Triangle-game/internal/leaderboard"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 100
)

type LeaderboardResponse struct {
	Entries []leaderboard.Entry `json:"entries"`
}

func handleLeaderboardTop(logger *slog.Logger, board leaderboard.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultTopLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = min(n, maxTopLimit)
		}

		entries, err := board.Top(r.Context(), limit)
		if err != nil {
			logger.Error("leaderboard read failed", "error", err)
			writeError(w, http.StatusInternalServerError, "leaderboard unavailable")
			return
		}
		if entries == nil {
			entries = []leaderboard.Entry{}
		}
		writeJSON(w, http.StatusOK, LeaderboardResponse{Entries: entries})
	}
}

// handleLeaderboardReset wipes the board. Guarded by an operator key checked
// against a bcrypt hash from config; no hash configured means no resets.
func handleLeaderboardReset(logger *slog.Logger, board leaderboard.Store, opsKeyHash string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if opsKeyHash == "" {
			writeError(w, http.StatusForbidden, "leaderboard reset is disabled")
			return
		}
		key := r.Header.Get("X-Ops-Key")
		if err := bcrypt.CompareHashAndPassword([]byte(opsKeyHash), []byte(key)); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid ops key")
			return
		}

		if err := board.Reset(r.Context()); err != nil {
			logger.Error("leaderboard reset failed", "error", err)
			writeError(w, http.StatusInternalServerError, "reset failed")
			return
		}
		logger.Info("leaderboard reset")
		w.WriteHeader(http.StatusNoContent)
	}
}
