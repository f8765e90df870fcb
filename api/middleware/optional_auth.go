package middleware

import (
	"context"
	"net/http"
	"strings"

	pkgauth "github.com/dukahub/dukahub-backend/pkg/auth"
	"github.com/dukahub/dukahub-backend/pkg/config"
	"github.com/dukahub/dukahub-backend/pkg/logger"
)

// OptionalAuth seeds the context with claims when a valid bearer token is
// present and passes the request through untouched otherwise. Cart routes use
// it so the same endpoints serve both guests and logged-in shoppers.
func OptionalAuth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				// An invalid token downgrades to guest rather than failing.
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID.String())
			ctx = context.WithValue(ctx, ctxRole, string(claims.Role))
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
