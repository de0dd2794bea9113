// Package api implements the portfolio REST API using chi.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/auth"
)

type ctxKey int

const claimsKey ctxKey = iota

// RequireAuth returns middleware that validates a Bearer session token.
// A missing token is answered with 401, a bad or expired one with 403.
func RequireAuth(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				writeJSON(w, http.StatusUnauthorized, errorBody("access token required"))
				return
			}
			claims, err := tokens.Parse(raw)
			if err != nil {
				writeJSON(w, http.StatusForbidden, errorBody("invalid or expired token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// claimsFrom returns the session claims stored by RequireAuth.
func claimsFrom(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey).(*auth.Claims)
	return c
}

func tooManyRequests(w http.ResponseWriter, _ *http.Request) {
	writeError(w, "rate limit", apperr.ErrRateLimited)
}
