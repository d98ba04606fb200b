package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/maelmnr/Triangle-game/internal/game"
)

var errNoSuchPlayer = errors.New("no such player in this game")

// handleInviteQR renders a player's join link as a QR PNG, so the game
// creator can hand a phone-scannable invite to each player. Requires the
// creator to present any valid token for the game.
func handleInviteQR(logger *slog.Logger, sessions *Sessions, baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "gameID")
		playerID := chi.URLParam(r, "playerID")
		token := bearerToken(r)

		var link string
		err := sessions.With(gameID, func(g *game.Game, tokens map[string]string) error {
			if _, ok := playerIDForToken(tokens, token); !ok {
				return errBadToken
			}
			for tok, pid := range tokens {
				if pid == playerID {
					link = joinURL(baseURL, g.ID, tok)
					return nil
				}
			}
			return errNoSuchPlayer
		})
		if errors.Is(err, errNoSuchPlayer) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			writeSessionError(w, err)
			return
		}

		png, err := qrcode.Encode(link, qrcode.Medium, 256)
		if err != nil {
			logger.Error("qr encode failed", "game_id", gameID, "error", err)
			writeError(w, http.StatusInternalServerError, "could not render QR code")
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		w.Write(png)
	}
}
