package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/lifecarechoice/leadgate/internal/models"
)

// StatusInvalidToken is the non-standard status the deployed frontend keys
// its token-refresh retry on.
const StatusInvalidToken = 419

// ErrorResponse is the rejection envelope: a stable machine-readable code,
// a human-readable message, and optional detail.
type ErrorResponse struct {
	OK         bool                `json:"ok"`
	Code       string              `json:"code"`
	Message    string              `json:"message"`
	RetryAfter int                 `json:"retryAfter,omitempty"`
	Errors     []models.FieldError `json:"errors,omitempty"`
}

// WriteJSON writes any payload with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// Log encoding errors but don't expose them to the client
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError writes a rejection envelope with the given status and code.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Code: code, Message: message})
}

// WriteRateLimited writes a 429 with the Retry-After header and hint.
func WriteRateLimited(w http.ResponseWriter, retryAfter int, message string) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	WriteJSON(w, http.StatusTooManyRequests, ErrorResponse{
		Code:       models.CodeRateLimit,
		Message:    message,
		RetryAfter: retryAfter,
	})
}

// WriteValidationFailed writes a 422 with per-field errors.
func WriteValidationFailed(w http.ResponseWriter, fieldErrors []models.FieldError) {
	WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Code:    models.CodeValidationFailed,
		Message: "Validation failed",
		Errors:  fieldErrors,
	})
}

func WriteInternalError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, models.CodeInternalError, "Internal server error")
}
