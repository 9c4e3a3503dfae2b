package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound   = errors.New("resource not found")
	ErrConflict   = errors.New("resource already exists")
	ErrBadRequest = errors.New("bad request")

	// Pipeline rejections surfaced by the submission service. Origin and
	// rate-limit rejections happen at the HTTP boundary and are written
	// directly as response codes.
	ErrBotDetected  = errors.New("bot signal detected")
	ErrTooFast      = errors.New("form submitted too quickly")
	ErrInvalidToken = errors.New("invalid or expired anti-forgery token")
)

// Stable machine-readable rejection codes returned to the client. The
// frontend keys retry behavior on these, so they never change.
const (
	CodeCORSDenied       = "CORS_DENIED"
	CodeRateLimit        = "RATE_LIMIT"
	CodeInvalidJSON      = "INVALID_JSON"
	CodeBotDetected      = "BOT_DETECTED"
	CodeTooFast          = "TOO_FAST"
	CodeInvalidToken     = "INVALID_TOKEN"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeInternalError    = "INTERNAL_ERROR"
)

// FieldError names a single offending field in a rejected submission.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
