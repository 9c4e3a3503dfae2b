package routes

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/lifecarechoice/leadgate/internal/middleware"
	pkghttp "github.com/lifecarechoice/leadgate/pkg/http"
)

func newTestRouter(ipConfig *pkghttp.IPConfig) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(logger, middleware.DefaultCORSConfig("development"), ipConfig, "development")
}

func captureClientID(router chi.Router, ipConfig *pkghttp.IPConfig, remoteAddr string, headers map[string]string) string {
	var clientID string
	router.Get("/probe-ip", func(w http.ResponseWriter, req *http.Request) {
		clientID = pkghttp.ExtractClientIP(req, ipConfig)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe-ip", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	router.ServeHTTP(httptest.NewRecorder(), req)
	return clientID
}

func TestRouter_ForwardedHeadersFromDirectClientDoNotChangeIdentifier(t *testing.T) {
	ipConfig := &pkghttp.IPConfig{}
	router := newTestRouter(ipConfig)

	// A direct client rotating X-Real-IP or X-Forwarded-For per request
	// must still be identified by its transport peer address, or it
	// could mint tokens and reset its submission budget at will.
	clientID := captureClientID(router, ipConfig, "203.0.113.50:44444", map[string]string{
		"X-Real-IP":       "6.6.6.6",
		"X-Forwarded-For": "6.6.6.6",
	})
	assert.Equal(t, "203.0.113.50", clientID)
}

func TestRouter_ForwardedHeadersHonoredBehindTrustedProxy(t *testing.T) {
	ipConfig := &pkghttp.IPConfig{TrustedProxies: []string{"10.0.0.0/8"}}
	router := newTestRouter(ipConfig)

	clientID := captureClientID(router, ipConfig, "10.1.2.3:44444", map[string]string{
		"X-Forwarded-For": "203.0.113.50",
	})
	assert.Equal(t, "203.0.113.50", clientID)
}
