package middleware

import (
	"crypto/subtle"
	"net/http"
)

// RequireAdminKey guards the lead query endpoints with a constant-time
// comparison against the configured key. With no key configured the
// endpoints are disabled entirely rather than left open.
func RequireAdminKey(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				http.NotFound(w, r)
				return
			}

			provided := r.Header.Get("X-Admin-Key")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"ok":false,"code":"FORBIDDEN","message":"Forbidden"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
