package ai

import (
	"fmt"
	"strings"
)

// ErrorType categorizes provider failures.
type ErrorType string

const (
	// ErrTypeProvider indicates a generic provider-side failure.
	ErrTypeProvider ErrorType = "provider"

	// ErrTypeConfiguration indicates configuration errors.
	ErrTypeConfiguration ErrorType = "configuration"

	// ErrTypeAuthentication indicates authentication errors.
	ErrTypeAuthentication ErrorType = "authentication"

	// ErrTypeRateLimit indicates rate limiting errors.
	ErrTypeRateLimit ErrorType = "rate_limit"

	// ErrTypeNetwork indicates network-related errors.
	ErrTypeNetwork ErrorType = "network"

	// ErrTypeTimeout indicates timeout errors.
	ErrTypeTimeout ErrorType = "timeout"

	// ErrTypeValidation indicates input validation errors.
	ErrTypeValidation ErrorType = "validation"

	// ErrTypeNotFound indicates provider not found errors.
	ErrTypeNotFound ErrorType = "not_found"
)

// ProviderError is the typed error every provider returns across the
// package boundary.
type ProviderError struct {
	// Type categorizes the error.
	Type ErrorType `json:"type"`

	// Message provides a human-readable description.
	Message string `json:"message"`

	// Provider indicates which provider caused the error.
	Provider string `json:"provider,omitempty"`

	// StatusCode for HTTP-related errors.
	StatusCode int `json:"status_code,omitempty"`

	// Cause is the underlying error.
	Cause error `json:"-"`

	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	var parts []string
	if e.Provider != "" {
		parts = append(parts, fmt.Sprintf("provider=%s", e.Provider))
	}
	parts = append(parts, fmt.Sprintf("type=%s", e.Type))
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	parts = append(parts, e.Message)
	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%s", e.Cause.Error()))
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Is matches against another ProviderError by error type.
func (e *ProviderError) Is(target error) bool {
	if pe, ok := target.(*ProviderError); ok {
		return e.Type == pe.Type
	}
	return false
}

// IsRetryable returns whether the error is retryable.
func (e *ProviderError) IsRetryable() bool {
	return e.Retryable
}

// NewProviderError creates a provider error with retryability derived from
// the error type.
func NewProviderError(errType ErrorType, message, provider string) *ProviderError {
	return &ProviderError{
		Type:      errType,
		Message:   message,
		Provider:  provider,
		Retryable: isRetryableError(errType),
	}
}

// NewProviderErrorWithCause creates a provider error wrapping a cause.
func NewProviderErrorWithCause(errType ErrorType, message, provider string, cause error) *ProviderError {
	e := NewProviderError(errType, message, provider)
	e.Cause = cause
	return e
}

func isRetryableError(errType ErrorType) bool {
	switch errType {
	case ErrTypeRateLimit, ErrTypeTimeout, ErrTypeNetwork:
		return true
	default:
		return false
	}
}

// IsRetryableError checks if an error is a retryable provider error.
func IsRetryableError(err error) bool {
	if pe, ok := err.(*ProviderError); ok {
		return pe.IsRetryable()
	}
	return false
}
