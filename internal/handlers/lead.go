package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lifecarechoice/leadgate/internal/metrics"
	"github.com/lifecarechoice/leadgate/internal/middleware"
	"github.com/lifecarechoice/leadgate/internal/models"
	"github.com/lifecarechoice/leadgate/internal/ratelimit"
	"github.com/lifecarechoice/leadgate/internal/services"
	pkghttp "github.com/lifecarechoice/leadgate/pkg/http"
)

// LeadSubmitter runs the submission pipeline past the transport checks.
type LeadSubmitter interface {
	Submit(ctx context.Context, sub *models.Submission, meta services.RequestMeta) (*services.SubmitResult, error)
}

// RateLimiter bounds submissions per client.
type RateLimiter interface {
	Check(ctx context.Context, clientID string) ratelimit.Result
}

// LeadHandler handles lead submissions. Rejection order is fixed and
// first-match-wins: origin, rate limit, JSON parse, then the pipeline's
// own checks (honeypot, fill time, token, schema).
type LeadHandler struct {
	service  LeadSubmitter
	limiter  RateLimiter
	cors     *middleware.CORSConfig
	ipConfig *pkghttp.IPConfig
}

func NewLeadHandler(service LeadSubmitter, limiter RateLimiter, cors *middleware.CORSConfig, ipConfig *pkghttp.IPConfig) *LeadHandler {
	return &LeadHandler{
		service:  service,
		limiter:  limiter,
		cors:     cors,
		ipConfig: ipConfig,
	}
}

// SubmitResponse is the success payload.
type SubmitResponse struct {
	OK      bool     `json:"ok"`
	ID      string   `json:"id"`
	Stored  []string `json:"stored"`
	Message string   `json:"message"`
}

// Submit processes one lead submission
// @Summary Submit a lead
// @Accept json
// @Param request body models.Submission true "Lead submission"
// @Produce json
// @Success 200 {object} SubmitResponse
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 403 {object} pkghttp.ErrorResponse
// @Failure 422 {object} pkghttp.ErrorResponse
// @Failure 429 {object} pkghttp.ErrorResponse
// @Router /api/lead [post]
func (h *LeadHandler) Submit(w http.ResponseWriter, r *http.Request) {
	clientIP := pkghttp.ExtractClientIP(r, h.ipConfig)

	// 1. Origin check (production only)
	if h.cors.Enforce && !h.cors.OriginAllowed(r.Header.Get("Origin")) {
		h.reject(w, r, http.StatusForbidden, models.CodeCORSDenied, "Origin not allowed")
		return
	}

	// 2. Rate limit
	if result := h.limiter.Check(r.Context(), clientIP); !result.Allowed {
		middleware.SetErrorCode(r, models.CodeRateLimit)
		metrics.RecordSubmission(models.CodeRateLimit)
		pkghttp.WriteRateLimited(w, result.RetryAfter, "Too many requests")
		return
	}

	// 3. Parse body
	var sub models.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		h.reject(w, r, http.StatusBadRequest, models.CodeInvalidJSON, "Invalid JSON body")
		return
	}

	// 4-7. Pipeline: honeypot, fill time, token, schema
	result, err := h.service.Submit(r.Context(), &sub, services.RequestMeta{
		IPAddress: clientIP,
		UserAgent: pkghttp.ExtractUserAgent(r),
		Referrer:  pkghttp.ExtractReferrer(r),
	})
	if err != nil {
		var ve *services.ValidationError
		switch {
		case errors.Is(err, models.ErrBotDetected):
			h.reject(w, r, http.StatusBadRequest, models.CodeBotDetected, "Suspicious activity detected")
		case errors.Is(err, models.ErrTooFast):
			h.reject(w, r, http.StatusBadRequest, models.CodeTooFast, "Form submitted too quickly")
		case errors.Is(err, models.ErrInvalidToken):
			h.reject(w, r, pkghttp.StatusInvalidToken, models.CodeInvalidToken, "Invalid or expired CSRF token")
		case errors.As(err, &ve):
			middleware.SetErrorCode(r, models.CodeValidationFailed)
			metrics.RecordSubmission(models.CodeValidationFailed)
			pkghttp.WriteValidationFailed(w, ve.Fields)
		default:
			middleware.SetErrorCode(r, models.CodeInternalError)
			metrics.RecordSubmission(models.CodeInternalError)
			pkghttp.WriteInternalError(w)
		}
		return
	}

	metrics.RecordSubmission("ACCEPTED")
	pkghttp.WriteJSON(w, http.StatusOK, SubmitResponse{
		OK:      true,
		ID:      result.LeadID,
		Stored:  result.Stored,
		Message: "Lead submitted successfully",
	})
}

func (h *LeadHandler) reject(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	middleware.SetErrorCode(r, code)
	metrics.RecordSubmission(code)
	pkghttp.WriteError(w, status, code, message)
}
