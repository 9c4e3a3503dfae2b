package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lifecarechoice/leadgate/internal/models"
)

// Forwarder delivers an accepted lead to an external system.
type Forwarder interface {
	Forward(ctx context.Context, lead *models.Lead) error
	Configured() bool
}

// WebhookForwarder POSTs the JSON-serialized lead to the configured URL,
// signed with HMAC-SHA256 over the exact bytes sent. The receiver verifies
// the signature; this side only guarantees it is deterministic and
// reproducible byte-for-byte from the payload.
type WebhookForwarder struct {
	url    string
	secret string
	client *http.Client
	logger *slog.Logger
}

func NewWebhookForwarder(url, secret string, timeout time.Duration, logger *slog.Logger) *WebhookForwarder {
	return &WebhookForwarder{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (f *WebhookForwarder) Configured() bool {
	return f.url != "" && f.secret != ""
}

// Sign computes the hex-encoded HMAC-SHA256 of payload under the configured
// secret.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Forward sends the signed lead payload. The signature header covers the
// request body bytes exactly as written.
func (f *WebhookForwarder) Forward(ctx context.Context, lead *models.Lead) error {
	if !f.Configured() {
		return fmt.Errorf("webhook forwarding not configured")
	}

	payload, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", "sha256="+Sign(payload, f.secret))
	req.Header.Set("User-Agent", "LifeCareChoice-Webhook/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	f.logger.Info("webhook delivered",
		slog.String("lead_id", lead.ID),
		slog.Int("status", resp.StatusCode))

	return nil
}
