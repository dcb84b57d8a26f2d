package transcribe

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrNoAPIKey is returned when Start is called without an API key.
	ErrNoAPIKey = errors.New("transcribe: API key required")

	// ErrAlreadyStarted is returned when Start is called on a streaming
	// session.
	ErrAlreadyStarted = errors.New("transcribe: session already started")

	// ErrStopped is returned when Start is called on a stopped session.
	// Stopped sessions never restart.
	ErrStopped = errors.New("transcribe: session stopped")
)

// ProviderError is an error reported by the transcription provider.
type ProviderError struct {
	// Code is the provider's error code, when present.
	Code int

	// Message is the provider's error text.
	Message string
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("transcribe: provider error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("transcribe: provider error: %s", e.Message)
}
