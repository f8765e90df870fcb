package middleware

import (
	"net/http"
	"strings"
)

const sessionIDHeader = "X-Session-Id"

// GuestSession copies the guest cart session header into the request context.
// Anonymous shoppers carry this identifier instead of a bearer token.
func GuestSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(sessionIDHeader))
			if sessionID == "" {
				sessionID = strings.TrimSpace(r.URL.Query().Get("session_id"))
			}
			if sessionID != "" {
				r = r.WithContext(WithSessionID(r.Context(), sessionID))
			}
			next.ServeHTTP(w, r)
		})
	}
}
