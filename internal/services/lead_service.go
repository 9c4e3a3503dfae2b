package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/lifecarechoice/leadgate/internal/background"
	"github.com/lifecarechoice/leadgate/internal/metrics"
	"github.com/lifecarechoice/leadgate/internal/models"
	"github.com/lifecarechoice/leadgate/internal/validation"
)

// TokenValidator checks and consumes anti-forgery tokens.
type TokenValidator interface {
	Validate(ctx context.Context, token, clientID string) bool
}

// LeadInserter is the durable sink for accepted leads.
type LeadInserter interface {
	Insert(ctx context.Context, lead *models.Lead) (string, error)
}

// CSVAppender is the flat-file sink for accepted leads.
type CSVAppender interface {
	Append(lead *models.Lead) error
}

// TaskQueue accepts the asynchronous post-acceptance deliveries.
type TaskQueue interface {
	Enqueue(task background.Task) bool
}

// ValidationError carries per-field errors for a rejected submission.
type ValidationError struct {
	Fields []models.FieldError
}

func (e *ValidationError) Error() string {
	return "submission failed validation"
}

// RequestMeta is what the HTTP layer captured about the submitting request.
type RequestMeta struct {
	IPAddress string
	UserAgent string
	Referrer  string
}

// SubmitResult reports the generated lead id and which synchronous sinks
// accepted the write.
type SubmitResult struct {
	LeadID string
	Stored []string
}

type LeadServiceConfig struct {
	MinSubmitTime time.Duration
}

// LeadService runs the submission pipeline: sanitize, honeypot, minimum
// fill time, token validation, schema validation, then fan-out to the
// durable store and CSV (synchronous, independently fallible) and to email
// and webhook (asynchronous, fire-and-forget).
//
// The minimum-fill-time check trusts a client-supplied start timestamp with
// no server-side anchor; it is a heuristic, not a security control, and is
// skipped when the timestamp is absent or unparseable.
type LeadService struct {
	tokens    TokenValidator
	leads     LeadInserter
	exporter  CSVAppender
	notifier  Notifier
	forwarder Forwarder
	tasks     TaskQueue
	config    LeadServiceConfig
	logger    *slog.Logger
	now       func() time.Time
}

func NewLeadService(
	tokens TokenValidator,
	leads LeadInserter,
	exporter CSVAppender,
	notifier Notifier,
	forwarder Forwarder,
	tasks TaskQueue,
	config LeadServiceConfig,
	logger *slog.Logger,
) *LeadService {
	return &LeadService{
		tokens:    tokens,
		leads:     leads,
		exporter:  exporter,
		notifier:  notifier,
		forwarder: forwarder,
		tasks:     tasks,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// Submit processes one sanitized-on-entry submission. Rejections are
// returned as sentinel errors (ErrBotDetected, ErrTooFast,
// ErrInvalidToken) or a *ValidationError; the boundary maps them to
// status codes. A nil error means the lead was processed, even if every
// sink failed -- Stored tells the caller which sinks took the write.
func (s *LeadService) Submit(ctx context.Context, sub *models.Submission, meta RequestMeta) (*SubmitResult, error) {
	validation.SanitizeStruct(sub)

	// Honeypot rejects before anything else looks at the payload.
	if sub.Honeypot != "" {
		return nil, models.ErrBotDetected
	}

	if s.tooFast(sub.Timestamp) {
		return nil, models.ErrTooFast
	}

	if sub.CSRF == "" || !s.tokens.Validate(ctx, sub.CSRF, meta.IPAddress) {
		return nil, models.ErrInvalidToken
	}

	if fieldErrors := validation.ValidateSubmission(sub); len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	lead := s.buildLead(sub, meta)

	stored := []string{}

	// Each synchronous sink fails independently; a CSV failure must not
	// roll back the store write and vice versa.
	if _, err := s.leads.Insert(ctx, lead); err != nil {
		s.logger.Error("failed to insert lead into store",
			slog.String("lead_id", lead.ID),
			slog.Any("error", err))
		metrics.RecordSinkFailure("postgres")
	} else {
		stored = append(stored, "postgres")
	}

	if err := s.exporter.Append(lead); err != nil {
		s.logger.Error("failed to append lead to csv",
			slog.String("lead_id", lead.ID),
			slog.Any("error", err))
		metrics.RecordSinkFailure("csv")
	} else {
		stored = append(stored, "csv")
	}

	s.enqueueDeliveries(lead)

	return &SubmitResult{LeadID: lead.ID, Stored: stored}, nil
}

// tooFast reports whether the client-recorded form-start time is less than
// the configured minimum before now. Missing or malformed timestamps skip
// the check rather than tightening it.
func (s *LeadService) tooFast(timestamp string) bool {
	if timestamp == "" {
		return false
	}
	startedAt, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return false
	}
	return s.now().Sub(startedAt) < s.config.MinSubmitTime
}

func (s *LeadService) enqueueDeliveries(lead *models.Lead) {
	if s.tasks == nil {
		return
	}

	if s.notifier != nil && s.notifier.Configured() {
		s.tasks.Enqueue(background.Task{
			Name:   "email_notification",
			Sink:   "email",
			LeadID: lead.ID,
			Run: func(ctx context.Context) error {
				return s.notifier.Notify(ctx, lead)
			},
		})
	}

	if s.forwarder != nil && s.forwarder.Configured() {
		s.tasks.Enqueue(background.Task{
			Name:   "webhook_forward",
			Sink:   "webhook",
			LeadID: lead.ID,
			Run: func(ctx context.Context) error {
				return s.forwarder.Forward(ctx, lead)
			},
		})
	}
}

func (s *LeadService) buildLead(sub *models.Submission, meta RequestMeta) *models.Lead {
	referrer := sub.Referrer
	if referrer == "" {
		referrer = meta.Referrer
	}

	return &models.Lead{
		// ID and CreatedAt are stamped by the repository on insert, but
		// the CSV row and async deliveries need them even when the store
		// write fails, so they are assigned up front.
		ID:        newLeadID(),
		CreatedAt: s.now().UTC(),

		FirstName: sub.FirstName,
		LastName:  sub.LastName,
		Email:     sub.Email,
		Phone:     sub.Phone,

		Zip: sub.Zip,
		// State codes are stored in canonical upper case so "ca" and
		// "CA" never become distinct values in queries or exports.
		State: strings.ToUpper(sub.State),

		ProductInterest: sub.ProductInterest,
		BestTime:        sub.BestTime,
		Message:         sub.Message,

		Gender:    sub.Gender,
		BirthDate: sub.BirthDate,
		Tobacco:   sub.Tobacco,
		Coverage:  sub.Coverage,

		AgentLicense: sub.AgentLicense,
		Experience:   sub.Experience,

		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Referrer:  referrer,

		LandingURL:  sub.LandingURL,
		UTMSource:   sub.UTMSource,
		UTMMedium:   sub.UTMMedium,
		UTMCampaign: sub.UTMCampaign,
		UTMTerm:     sub.UTMTerm,
		UTMContent:  sub.UTMContent,
		GCLID:       sub.GCLID,
		FBCLID:      sub.FBCLID,
		ClickID:     sub.ClickID,
	}
}
