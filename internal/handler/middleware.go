package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/vasiliy-maslov/pedido-service/internal/auth"
)

type contextKey string

const claimsKey contextKey = "auth_claims"

// Authenticator validates the Bearer token and stores the claims in the
// request context for RequireRoles to check.
func Authenticator(tokens *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token := strings.TrimPrefix(header, "Bearer ")
			if token == "" || token == header {
				respondWithError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := tokens.ValidateToken(token)
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims stored by Authenticator.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

// RequireRoles rejects requests whose token scope carries none of the
// given roles.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			scopes := strings.Fields(claims.Scope)
			for _, role := range roles {
				for _, scope := range scopes {
					if scope == role {
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			respondWithError(w, http.StatusForbidden, "insufficient role")
		})
	}
}
