// Package api implements the Mannaz REST API using chi.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/starford/mannaz/internal/authservice"
)

// TokenValidator verifies a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*authservice.Claims, error)
}

type contextKey string

const userIDKey contextKey = "user_id"

// RequireAuth returns middleware that validates the "Authorization:
// Bearer <token>" header and stores the authenticated user id in the
// request context. Requests with a missing, malformed, expired, or
// tampered token are rejected before any handler runs.
func RequireAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			claims, err := validator.ValidateToken(strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ownerID retrieves the authenticated user id stored by RequireAuth.
func ownerID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}
