package routes

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lifecarechoice/leadgate/internal/metrics"
	"github.com/lifecarechoice/leadgate/internal/middleware"
	pkghttp "github.com/lifecarechoice/leadgate/pkg/http"

	"github.com/lifecarechoice/leadgate/internal/handlers"
)

// NewRouter builds the router with the shared middleware chain.
//
// RemoteAddr is never rewritten from forwarded headers: the rate limiter
// and token store key on the client identifier, so X-Forwarded-For and
// X-Real-IP are honored only inside ExtractClientIP, and only when the
// request arrives from a configured trusted proxy.
func NewRouter(logger *slog.Logger, corsConfig *middleware.CORSConfig, ipConfig *pkghttp.IPConfig, env string) chi.Router {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.SecurityHeaders(middleware.SecurityHeadersConfig{Env: env}))
	router.Use(middleware.CORS(corsConfig))
	router.Use(middleware.RequestLogger(logger, ipConfig))
	router.Use(metrics.Middleware)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(60 * time.Second))
	return router
}

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	tokenHandler *handlers.TokenHandler,
	leadHandler *handlers.LeadHandler,
	healthHandler *handlers.HealthHandler,
	adminHandler *handlers.AdminLeadHandler,
	adminAPIKey string,
) {
	// Rate limiting config for the token endpoint; the lead endpoint
	// carries its own persistent limiter inside the handler.
	rateLimitConfig := middleware.DefaultTokenRateLimit()

	// Public routes
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Get("/api/csrf", tokenHandler.Issue)
	router.Post("/api/lead", leadHandler.Submit)
	router.Get("/api/healthz", healthHandler.Check)

	// Operational surface
	router.Get("/metrics", promhttp.Handler().ServeHTTP)

	// Admin routes - key required
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdminKey(adminAPIKey))

		r.Get("/api/admin/leads", adminHandler.List)
		r.Get("/api/admin/leads/exports", adminHandler.ListExports)
		r.Get("/api/admin/leads/export", adminHandler.Export)
		r.Get("/api/admin/leads/{id}", adminHandler.Get)
		r.Delete("/api/admin/leads/{id}", adminHandler.Delete)
	})
}
