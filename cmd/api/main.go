package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lifecarechoice/leadgate/internal/antiforgery"
	"github.com/lifecarechoice/leadgate/internal/background"
	"github.com/lifecarechoice/leadgate/internal/config"
	"github.com/lifecarechoice/leadgate/internal/database"
	"github.com/lifecarechoice/leadgate/internal/export"
	"github.com/lifecarechoice/leadgate/internal/handlers"
	"github.com/lifecarechoice/leadgate/internal/kvstore"
	middlewareCustom "github.com/lifecarechoice/leadgate/internal/middleware"
	"github.com/lifecarechoice/leadgate/internal/ratelimit"
	"github.com/lifecarechoice/leadgate/internal/repositories"
	"github.com/lifecarechoice/leadgate/internal/routes"
	"github.com/lifecarechoice/leadgate/internal/services"
	pkghttp "github.com/lifecarechoice/leadgate/pkg/http"
	pkglogger "github.com/lifecarechoice/leadgate/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger, closeLog, err := pkglogger.New(cfg.Log.Dir)
	if err != nil {
		slog.Error("failed to initialize logger", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Token and rate-limit state. Redis when configured, otherwise
	// in-memory stores swept by the cleanup manager.
	tokenStore, limitStore, err := buildStateStores(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize state stores", slog.Any("error", err))
		os.Exit(1)
	}

	cleanupManager := background.NewCleanupManager(logger, cfg.Antiforgery.CleanupInterval)
	cleanupManager.Register("csrf_tokens", tokenStore)
	cleanupManager.Register("rate_limits", limitStore)

	tokens := antiforgery.NewTokenStore(tokenStore, cfg.Antiforgery.TokenTTL, logger)
	limiter := ratelimit.NewLimiter(limitStore, ratelimit.Config{
		MaxRequests: cfg.RateLimit.MaxRequests,
		Window:      cfg.RateLimit.Window,
	}, logger)

	// Initialize repositories and sinks
	leadRepo := repositories.NewLeadRepository(db)

	exporter, err := export.NewCSVExporter(cfg.Export.CSVDir)
	if err != nil {
		logger.Error("failed to initialize csv exporter", slog.Any("error", err))
		os.Exit(1)
	}

	// AWS SES email notifications
	notifier, err := services.NewAWSSESNotifier(
		cfg.Email.AWSRegion,
		cfg.Email.FromAddress,
		cfg.Email.NotifyAddress,
		logger,
	)
	if err != nil {
		logger.Error("failed to initialize email notifier", slog.Any("error", err))
		os.Exit(1)
	}

	forwarder := services.NewWebhookForwarder(cfg.Webhook.URL, cfg.Webhook.Secret, cfg.Webhook.Timeout, logger)

	// Background delivery workers
	dispatcher := background.NewDispatcher(background.DispatcherConfig{
		Workers:     2,
		QueueSize:   128,
		MaxAttempts: 3,
		RetryDelay:  2 * time.Second,
		TaskTimeout: 30 * time.Second,
	}, logger)

	// Initialize services
	leadService := services.NewLeadService(
		tokens,
		leadRepo,
		exporter,
		notifier,
		forwarder,
		dispatcher,
		services.LeadServiceConfig{MinSubmitTime: cfg.Bot.MinSubmitTime},
		logger,
	)

	// Setup CORS middleware
	corsConfig := middlewareCustom.DefaultCORSConfig(cfg.Server.Env)
	corsConfig.AllowedOrigins = cfg.Server.AllowedOrigins

	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}

	// Initialize handlers
	tokenHandler := handlers.NewTokenHandler(tokens, ipConfig)
	leadHandler := handlers.NewLeadHandler(leadService, limiter, corsConfig, ipConfig)
	healthHandler := handlers.NewHealthHandler(db, notifier, forwarder, cfg.Server.Env)
	adminHandler := handlers.NewAdminLeadHandler(leadRepo, exporter)

	// Setup router
	router := routes.NewRouter(logger, corsConfig, ipConfig, cfg.Server.Env)

	// Register routes
	routes.RegisterRoutes(router, tokenHandler, leadHandler, healthHandler, adminHandler, cfg.Admin.APIKey)

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background tasks
	backgroundCtx, backgroundCancel := context.WithCancel(context.Background())
	defer backgroundCancel()

	dispatcher.Start(backgroundCtx)
	go cleanupManager.Start(backgroundCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}

	// Drain queued deliveries before stopping their workers.
	dispatcher.Stop()
	cleanupManager.Stop()
	backgroundCancel()

	logger.Info("server stopped gracefully")
}

// buildStateStores returns the token store and rate-limit store backings.
// Separate key prefixes keep the two namespaces apart in a shared Redis.
func buildStateStores(cfg *config.Config, logger *slog.Logger) (kvstore.Store, kvstore.Store, error) {
	if cfg.Redis.Addr == "" {
		logger.Info("using in-memory state stores, single-instance only")
		return kvstore.NewMemoryStore(), kvstore.NewMemoryStore(), nil
	}

	tokenStore, err := kvstore.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, "csrf:")
	if err != nil {
		return nil, nil, err
	}
	limitStore, err := kvstore.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, "rl:")
	if err != nil {
		return nil, nil, err
	}

	logger.Info("using redis state stores", slog.String("addr", cfg.Redis.Addr))
	return tokenStore, limitStore, nil
}
