package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	pkghttp "github.com/lifecarechoice/leadgate/pkg/http"
	pkglogger "github.com/lifecarechoice/leadgate/pkg/logger"
)

type outcomeKeyType struct{}

var outcomeKey = outcomeKeyType{}

type requestOutcome struct {
	errorCode string
}

// SetErrorCode records the rejection code for the current request so the
// request log line carries it. No-op outside the RequestLogger middleware.
func SetErrorCode(r *http.Request, code string) {
	if outcome, ok := r.Context().Value(outcomeKey).(*requestOutcome); ok {
		outcome.errorCode = code
	}
}

// RequestLogger appends one structured log entry per request: client IP,
// path, status, duration, and the rejection code when a handler set one.
func RequestLogger(logger *slog.Logger, ipConfig *pkghttp.IPConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			outcome := &requestOutcome{}
			r = r.WithContext(context.WithValue(r.Context(), outcomeKey, outcome))

			wrapped := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(wrapped, r)

			clientIP := pkghttp.ExtractClientIP(r, ipConfig)
			durationMs := time.Since(start).Milliseconds()

			pkglogger.LogRequest(logger, clientIP, r.URL.Path, wrapped.Status(), durationMs, outcome.errorCode)
		})
	}
}
