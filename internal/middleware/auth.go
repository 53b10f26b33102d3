package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/vancomm/minesweeper-host/internal/config"
)

type CtxKey int

const (
	CtxGameClaims CtxKey = iota
)

// Auth guards routes carrying a game {id}: the request must present a token
// issued for that game. Routes without an id pass through untouched.
func Auth(log *slog.Logger, jwt *config.JWT, cookies *config.Cookies) Middleware {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := mux.Vars(r)["id"]
			if !ok {
				h.ServeHTTP(w, r)
				return
			}

			token, ok := cookies.Token(r)
			if !ok {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			claims, err := jwt.ParseGameClaims(token)
			if err != nil {
				log.Debug("rejected game token", slog.Any("error", err))
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			if claims.GameId != id {
				log.Debug(
					"token issued for another game",
					slog.String("id", id),
					slog.String("claims.GameId", claims.GameId),
				)
				w.WriteHeader(http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), CtxGameClaims, claims)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
