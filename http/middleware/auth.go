package middleware

import (
	"context"
	"net/http"
	"strings"

	"coursehub/http/response"
	"coursehub/services"
)

type contextKey string

const userContextKey contextKey = "authenticatedUser"

// RequireAuth rejects requests without a valid Bearer token and injects the
// token claims into the request context
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response.Fail(w, http.StatusUnauthorized, "User is not authenticated")
			return
		}

		claims, err := services.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response.Fail(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// UserFromContext returns the authenticated user's claims, if any
func UserFromContext(ctx context.Context) (*services.Claims, bool) {
	claims, ok := ctx.Value(userContextKey).(*services.Claims)
	return claims, ok
}
