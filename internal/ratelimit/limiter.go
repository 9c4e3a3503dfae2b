// Package ratelimit bounds how many lead submissions one client may make
// inside a rolling window.
package ratelimit

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"github.com/lifecarechoice/leadgate/internal/kvstore"
)

// counter is the persisted per-client record. The window restarts when the
// elapsed time since FirstAttempt exceeds the configured window.
type counter struct {
	Count        int       `json:"count"`
	FirstAttempt time.Time `json:"first_attempt"`
	LastAttempt  time.Time `json:"last_attempt"`
}

// Result is the outcome of one rate-limit check. RetryAfter is only set
// when the request is denied and is always at least one second.
type Result struct {
	Allowed    bool
	RetryAfter int
}

type Config struct {
	MaxRequests int
	Window      time.Duration
}

// Limiter counts requests per client in a fixed window, persisting one
// record per client in the injected store.
//
// Storage failures fail open: an unreadable or unwritable counter allows
// the request rather than blocking legitimate traffic. This is a deliberate
// availability-over-strictness tradeoff for an anti-abuse heuristic; the
// failure is logged so operators notice a blind limiter.
type Limiter struct {
	store  kvstore.Store
	config Config
	logger *slog.Logger
	now    func() time.Time
}

func NewLimiter(store kvstore.Store, config Config, logger *slog.Logger) *Limiter {
	return &Limiter{
		store:  store,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// Check records one request from clientID and reports whether it is within
// the window's budget.
func (l *Limiter) Check(ctx context.Context, clientID string) Result {
	now := l.now()

	var entry counter
	raw, ok, err := l.store.Get(ctx, clientID)
	if err != nil {
		l.logger.Error("rate limit read failed, allowing request",
			slog.String("client_id", clientID),
			slog.Any("error", err))
		return Result{Allowed: true}
	}

	if ok {
		if err := json.Unmarshal(raw, &entry); err != nil {
			l.logger.Error("corrupt rate limit counter, allowing request",
				slog.String("client_id", clientID),
				slog.Any("error", err))
			return Result{Allowed: true}
		}
	}

	if !ok || now.Sub(entry.FirstAttempt) > l.config.Window {
		entry = counter{Count: 1, FirstAttempt: now, LastAttempt: now}
	} else {
		entry.Count++
		entry.LastAttempt = now
	}

	// Records untouched for 2x the window are stale and expire on their own.
	updated, err := json.Marshal(entry)
	if err == nil {
		err = l.store.Set(ctx, clientID, updated, 2*l.config.Window)
	}
	if err != nil {
		l.logger.Error("rate limit write failed, allowing request",
			slog.String("client_id", clientID),
			slog.Any("error", err))
		return Result{Allowed: true}
	}

	if entry.Count > l.config.MaxRequests {
		retryAfter := int(math.Ceil(entry.FirstAttempt.Add(l.config.Window).Sub(now).Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		l.logger.Warn("client rate limited",
			slog.String("client_id", clientID),
			slog.Int("count", entry.Count),
			slog.Int("retry_after", retryAfter))
		return Result{Allowed: false, RetryAfter: retryAfter}
	}

	return Result{Allowed: true}
}
