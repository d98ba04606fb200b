package server

import (
	"net/http"
	"strings"
)

// bearerToken extracts the player token from the Authorization header.
// SSE and QR endpoints accept a token query parameter instead, since
// EventSource and <img> can't set headers.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if tok, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return tok
	}
	return r.URL.Query().Get("token")
}
