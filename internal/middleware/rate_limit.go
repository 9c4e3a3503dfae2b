package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimitConfig holds the coarse per-IP limit applied to the token
// issuance endpoint. The submission endpoint has its own persistent
// limiter; this one only stops tight token-minting loops.
type RateLimitConfig struct {
	RequestsPerMinute int
}

// DefaultTokenRateLimit allows 30 token requests per IP per minute.
func DefaultTokenRateLimit() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 30,
	}
}

// RateLimitByIP creates a middleware that rate limits requests by client IP.
// The key comes from RemoteAddr, never from forwarded headers a direct
// client could rotate to reset its budget.
func RateLimitByIP(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		1*time.Minute,
		httprate.WithKeyByIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"ok":false,"code":"RATE_LIMIT","message":"Too many requests"}`))
		}),
	)
}
