package httpx

import (
	"net/http"
	"strings"

	"bookmarket/internal/platform/crypto"
)

// AuthMiddleware verifies the bearer token and stores the account ID in the
// request context.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				Unauthorized(w, r)
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := crypto.ParseToken(secret, token)
			if err != nil || claims.Sub == "" {
				Unauthorized(w, r)
				return
			}

			if rw, ok := w.(*responseWriter); ok {
				rw.userID = claims.Sub
			}
			ctx := ContextWithUser(r.Context(), claims.Sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
