package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifecarechoice/leadgate/internal/antiforgery"
	"github.com/lifecarechoice/leadgate/internal/kvstore"
	pkghttp "github.com/lifecarechoice/leadgate/pkg/http"
)

func TestTokenHandler_Issue(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := antiforgery.NewTokenStore(kvstore.NewMemoryStore(), time.Hour, logger)
	handler := NewTokenHandler(tokens, &pkghttp.IPConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/csrf", nil)
	req.RemoteAddr = "203.0.113.10:54321"
	rec := httptest.NewRecorder()

	handler.Issue(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Token, 64)
	assert.Equal(t, 3600, resp.ExpiresIn)

	// The issued token validates for the same client.
	assert.True(t, tokens.Validate(req.Context(), resp.Token, "203.0.113.10"))
}

func TestTokenHandler_TokenBoundToClient(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := antiforgery.NewTokenStore(kvstore.NewMemoryStore(), time.Hour, logger)
	handler := NewTokenHandler(tokens, &pkghttp.IPConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/csrf", nil)
	req.RemoteAddr = "203.0.113.10:54321"
	rec := httptest.NewRecorder()
	handler.Issue(rec, req)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.False(t, tokens.Validate(req.Context(), resp.Token, "198.51.100.7"))
}
