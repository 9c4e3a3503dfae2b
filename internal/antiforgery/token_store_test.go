package antiforgery

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifecarechoice/leadgate/internal/kvstore"
)

func newTestTokenStore(t *testing.T, ttl time.Duration) *TokenStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	return NewTokenStore(kvstore.NewMemoryStore(), ttl, logger)
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func TestTokenStore_IssueAndValidate(t *testing.T) {
	store := newTestTokenStore(t, time.Hour)
	ctx := context.Background()

	token, err := store.Issue(ctx, "203.0.113.10")
	require.NoError(t, err)
	assert.Len(t, token, 64, "token should be 32 hex-encoded bytes")

	assert.True(t, store.Validate(ctx, token, "203.0.113.10"))
}

func TestTokenStore_SingleUse(t *testing.T) {
	store := newTestTokenStore(t, time.Hour)
	ctx := context.Background()

	token, err := store.Issue(ctx, "203.0.113.10")
	require.NoError(t, err)

	assert.True(t, store.Validate(ctx, token, "203.0.113.10"))
	assert.False(t, store.Validate(ctx, token, "203.0.113.10"), "second use of the same token must fail")
}

func TestTokenStore_ClientMismatch(t *testing.T) {
	store := newTestTokenStore(t, time.Hour)
	ctx := context.Background()

	token, err := store.Issue(ctx, "203.0.113.10")
	require.NoError(t, err)

	assert.False(t, store.Validate(ctx, token, "198.51.100.7"))

	// A mismatch does not consume the token; the rightful client can
	// still use it.
	assert.True(t, store.Validate(ctx, token, "203.0.113.10"))
}

func TestTokenStore_ExpiredTokenRejectedWithoutSweep(t *testing.T) {
	store := newTestTokenStore(t, time.Hour)
	ctx := context.Background()

	issuedAt := time.Now()
	store.now = func() time.Time { return issuedAt }

	token, err := store.Issue(ctx, "203.0.113.10")
	require.NoError(t, err)

	// Advance past the TTL; no background sweep has run.
	store.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }

	assert.False(t, store.Validate(ctx, token, "203.0.113.10"))
}

func TestTokenStore_EmptyToken(t *testing.T) {
	store := newTestTokenStore(t, time.Hour)
	assert.False(t, store.Validate(context.Background(), "", "203.0.113.10"))
}

func TestTokenStore_UnknownToken(t *testing.T) {
	store := newTestTokenStore(t, time.Hour)
	assert.False(t, store.Validate(context.Background(), "deadbeef", "203.0.113.10"))
}

func TestTokenStore_TokensAreUnique(t *testing.T) {
	store := newTestTokenStore(t, time.Hour)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := store.Issue(ctx, "203.0.113.10")
		require.NoError(t, err)
		assert.False(t, seen[token])
		seen[token] = true
	}
}
