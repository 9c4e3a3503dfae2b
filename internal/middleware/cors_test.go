package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func corsTestHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORS_AllowedOriginGetsHeaders(t *testing.T) {
	config := DefaultCORSConfig("development")
	config.AllowedOrigins = []string{"http://localhost:3000"}
	handler := CORS(config)(corsTestHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/lead", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_UnknownOriginGetsNoHeadersInDevelopment(t *testing.T) {
	config := DefaultCORSConfig("development")
	config.AllowedOrigins = []string{"http://localhost:3000"}
	handler := CORS(config)(corsTestHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/lead", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	// Not enforcing: the request goes through, just without CORS headers.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightAllowed(t *testing.T) {
	config := DefaultCORSConfig("production")
	config.AllowedOrigins = []string{"https://www.lifecarechoice.com"}
	handler := CORS(config)(corsTestHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/lead", nil)
	req.Header.Set("Origin", "https://www.lifecarechoice.com")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://www.lifecarechoice.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightDeniedInProduction(t *testing.T) {
	config := DefaultCORSConfig("production")
	config.AllowedOrigins = []string{"https://www.lifecarechoice.com"}
	handler := CORS(config)(corsTestHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/lead", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestDefaultCORSConfig_EnforcesOnlyInProduction(t *testing.T) {
	assert.True(t, DefaultCORSConfig("production").Enforce)
	assert.False(t, DefaultCORSConfig("development").Enforce)
}
