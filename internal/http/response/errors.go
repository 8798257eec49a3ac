package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/openshelf/libris/internal/domain"
	"github.com/openshelf/libris/pkg/logger"
)

// ErrorResponse is the JSON error envelope. Message strings are stable and
// machine-checkable; codes identify the error class.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Common error codes
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodePendingApproval    = "PENDING_APPROVAL"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeRateLimit          = "RATE_LIMIT_EXCEEDED"
	CodeInternalError      = "INTERNAL_ERROR"
)

func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func WriteError(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Message: message, Code: code})
}

// WriteDomainError translates a service error into a status code and a stable
// message. Unrecognized errors become a generic 500 without leaking internals.
func WriteDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		WriteError(w, http.StatusBadRequest, err.Error(), CodeInvalidInput)
	case errors.Is(err, domain.ErrDuplicateEmail):
		WriteError(w, http.StatusBadRequest, "Email already registered", CodeEmailExists)
	case errors.Is(err, domain.ErrInvalidCredentials):
		WriteError(w, http.StatusBadRequest, "Invalid credentials", CodeInvalidCredentials)
	case errors.Is(err, domain.ErrPendingApproval):
		WriteError(w, http.StatusForbidden, "Your account is pending approval", CodePendingApproval)
	case errors.Is(err, domain.ErrUnauthenticated):
		WriteError(w, http.StatusUnauthorized, "Authentication required", CodeUnauthorized)
	case errors.Is(err, domain.ErrInvalidToken):
		WriteError(w, http.StatusUnauthorized, "Invalid token", CodeInvalidToken)
	case errors.Is(err, domain.ErrForbidden):
		WriteError(w, http.StatusForbidden, "Forbidden", CodeForbidden)
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, http.StatusNotFound, "Not found", CodeNotFound)
	default:
		logger.ErrorContext(r.Context(), "internal error", "error", err, "path", r.URL.Path)
		WriteError(w, http.StatusInternalServerError, "Internal server error", CodeInternalError)
	}
}

// Convenience writers
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message, CodeInvalidInput)
}

func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message, CodeUnauthorized)
}

func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message, CodeForbidden)
}

func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message, CodeNotFound)
}

func RateLimit(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, message, CodeRateLimit)
}
