// Package antiforgery issues and validates the single-use tokens that prove
// a lead submission originated from a page this site served.
package antiforgery

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lifecarechoice/leadgate/internal/kvstore"
)

// tokenEntry is the stored token metadata. The issuance time is kept
// alongside the store TTL so expiry is enforced at validation time even if
// no sweep has run.
type tokenEntry struct {
	ClientID string    `json:"client_id"`
	IssuedAt time.Time `json:"issued_at"`
}

// TokenStore manages anti-forgery tokens. Tokens are bound to the client
// identifier they were issued to, expire after a fixed TTL, and are
// consumed on first successful validation.
type TokenStore struct {
	store  kvstore.Store
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

func NewTokenStore(store kvstore.Store, ttl time.Duration, logger *slog.Logger) *TokenStore {
	return &TokenStore{
		store:  store,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// TTL reports the configured token lifetime.
func (s *TokenStore) TTL() time.Duration {
	return s.ttl
}

// Issue generates a new token for clientID and registers it. The token is
// 32 random bytes, hex encoded.
func (s *TokenStore) Issue(ctx context.Context, clientID string) (string, error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(randomBytes)

	entry, err := json.Marshal(tokenEntry{
		ClientID: clientID,
		IssuedAt: s.now(),
	})
	if err != nil {
		return "", err
	}

	if err := s.store.Set(ctx, token, entry, s.ttl); err != nil {
		return "", err
	}

	return token, nil
}

// Validate reports whether token is known, unexpired, and owned by
// clientID. A successful validation consumes the token; any later attempt
// with the same token fails.
func (s *TokenStore) Validate(ctx context.Context, token, clientID string) bool {
	if token == "" {
		return false
	}

	raw, ok, err := s.store.Get(ctx, token)
	if err != nil {
		s.logger.Error("token lookup failed", slog.Any("error", err))
		return false
	}
	if !ok {
		return false
	}

	var entry tokenEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		s.logger.Error("corrupt token entry", slog.Any("error", err))
		_ = s.store.Delete(ctx, token)
		return false
	}

	if s.now().Sub(entry.IssuedAt) > s.ttl {
		_ = s.store.Delete(ctx, token)
		return false
	}

	if entry.ClientID != clientID {
		return false
	}

	// One-time use
	if err := s.store.Delete(ctx, token); err != nil {
		s.logger.Error("failed to consume token", slog.Any("error", err))
	}

	return true
}
