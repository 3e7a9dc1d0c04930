package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
	"github.com/vncsmyrnk/salesvote/internal/core/ports"
)

type contextKey string

const IdentityKey contextKey = "identity"

const accessTokenCookie = "access_token"

// Authenticate attaches the identity of a valid access token, taken from the
// access_token cookie or a Bearer Authorization header, to the request
// context. Requests without a valid token pass through anonymously.
func Authenticate(authService ports.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if cookie, err := r.Cookie(accessTokenCookie); err == nil {
					token = cookie.Value
				}
			}
			if token != "" {
				if identity, err := authService.ParseAccessToken(token); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), IdentityKey, identity))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identityFromContext(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized: missing user context")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func identityFromContext(ctx context.Context) *domain.Identity {
	identity, _ := ctx.Value(IdentityKey).(*domain.Identity)
	return identity
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
