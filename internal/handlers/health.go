package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/lifecarechoice/leadgate/internal/services"
	pkghttp "github.com/lifecarechoice/leadgate/pkg/http"
)

// HealthChecker reports whether the durable store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler reports service status. The endpoint always answers 200;
// degraded dependencies are reported in the body so a dead database does
// not take the whole status page down with it.
type HealthHandler struct {
	db        HealthChecker
	notifier  services.Notifier
	forwarder services.Forwarder
	env       string
}

func NewHealthHandler(db HealthChecker, notifier services.Notifier, forwarder services.Forwarder, env string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		notifier:  notifier,
		forwarder: forwarder,
		env:       env,
	}
}

type HealthResponse struct {
	Status      string            `json:"status"`
	Timestamp   string            `json:"timestamp"`
	Services    map[string]string `json:"services"`
	Environment string            `json:"environment"`
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	database := "healthy"
	if err := h.db.HealthCheck(ctx); err != nil {
		database = "unhealthy"
	}

	email := "not configured"
	if h.notifier != nil && h.notifier.Configured() {
		email = "configured"
	}

	webhook := "not configured"
	if h.forwarder != nil && h.forwarder.Configured() {
		webhook = "configured"
	}

	w.Header().Set("Cache-Control", "no-cache")
	pkghttp.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services: map[string]string{
			"database": database,
			"email":    email,
			"webhook":  webhook,
		},
		Environment: h.env,
	})
}
