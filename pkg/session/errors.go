package session

import "errors"

// Sentinel errors for session lookup and lifecycle.
var (
	// ErrSessionNotFound is returned when a session ID is unknown.
	ErrSessionNotFound = errors.New("session: session not found")

	// ErrClosed is returned when dispatching into a closed session.
	ErrClosed = errors.New("session: session closed")
)
