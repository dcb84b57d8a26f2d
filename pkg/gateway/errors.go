package gateway

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrNoAPIKey is returned when an API key is required but missing.
	ErrNoAPIKey = errors.New("gateway: API key required")

	// ErrUnavailable is returned when the provider cannot be reached.
	ErrUnavailable = errors.New("gateway: provider unavailable")

	// ErrStreamClosed is returned when reading from a closed stream.
	ErrStreamClosed = errors.New("gateway: stream closed")

	// ErrStreamDone is returned when Recv is called after EventCompleted.
	ErrStreamDone = errors.New("gateway: stream already completed")

	// ErrNoToolPending is returned when a tool result is submitted but no
	// tool call is outstanding.
	ErrNoToolPending = errors.New("gateway: no tool call pending")
)

// APIError represents an error response from the gateway API.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the error message from the API.
	Message string

	// Code is the error code (if provided).
	Code string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway: API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("gateway: API error %d: %s", e.StatusCode, e.Message)
}

// IsRateLimited returns true if this is a rate limit error (HTTP 429).
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsServerError returns true if this is a server-side error (HTTP 5xx).
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// IsRetryable returns true if a later request may succeed.
func (e *APIError) IsRetryable() bool {
	return e.IsRateLimited() || e.IsServerError()
}

// IsUnavailable reports whether err means the gateway could not serve the
// request at all, as opposed to rejecting it.
func IsUnavailable(err error) bool {
	if errors.Is(err, ErrUnavailable) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsServerError()
	}
	return false
}
