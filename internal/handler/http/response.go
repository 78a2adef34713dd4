package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"walink/internal/domain"
	"walink/pkg/logger"
)

// Error codes returned in ErrorResponse.Code
const (
	CodeValidation   = "validation_error"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeUnauthorized = "unauthorized"
	CodeRateLimited  = "rate_limited"
	CodeInternal     = "internal_error"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SuccessResponse acknowledges operations that return no record
type SuccessResponse struct {
	Success bool `json:"success"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are already sent
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, statusCode int, code, message string) {
	respondJSON(w, statusCode, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// respondOK sends {"success": true}
func respondOK(w http.ResponseWriter) {
	respondJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// statusFor maps a domain error to its HTTP status and code
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// respondDomainError translates err into a JSON error.
// Internal failures are logged and hidden behind a generic message.
func respondDomainError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, code := statusFor(err)
	switch status {
	case http.StatusInternalServerError:
		logger.ForContext(r.Context(), log).Error("request failed", "path", r.URL.Path, "error", err)
		respondError(w, status, code, "Internal server error")
	case http.StatusUnauthorized:
		respondError(w, status, code, "Unauthorized")
	default:
		respondError(w, status, code, err.Error())
	}
}
