package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/taskdeck/taskdeck-go/internal/model"
	"github.com/taskdeck/taskdeck-go/internal/service"
)

type contextKey string

const userKey contextKey = "user"

// RequireAuth returns middleware that validates a Bearer token from
// the Authorization header and resolves it to a live user. Missing
// header, bad token, and deleted user all produce the same 401.
func RequireAuth(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || token == "" {
				writeJSONError(w, http.StatusUnauthorized, "could not validate credentials")
				return
			}

			user, err := auth.ResolveToken(r.Context(), token)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "could not validate credentials")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext extracts the authenticated user from the request
// context.
func UserFromContext(ctx context.Context) (model.UserPublic, bool) {
	user, ok := ctx.Value(userKey).(model.UserPublic)
	return user, ok
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
