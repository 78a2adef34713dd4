package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every layer
// Callers wrap one of these sentinels and the HTTP layer classifies with errors.Is
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrUpstreamProvider = errors.New("upstream provider failed")
	ErrStorage          = errors.New("storage failure")
	ErrUnauthorized     = errors.New("unauthorized")
)

// NewValidationError marks cause as a client input problem
func NewValidationError(cause error) error {
	return fmt.Errorf("%w: %w", ErrValidation, cause)
}

// NotFoundf builds a not-found error for the given entity
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Conflictf builds a uniqueness conflict error
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// NewStorageError wraps a persistence failure; op names the failed operation
// Already classified errors pass through untouched
func NewStorageError(op string, cause error) error {
	if cause == nil {
		return nil
	}
	if errors.Is(cause, ErrNotFound) || errors.Is(cause, ErrConflict) || errors.Is(cause, ErrStorage) {
		return cause
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, cause)
}

// NewProviderError tags a failure coming from an external text-generation provider
func NewProviderError(provider string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrUpstreamProvider, provider, cause)
}
