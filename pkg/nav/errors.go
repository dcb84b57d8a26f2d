package nav

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions.
var (
	// ErrNoActiveNavigation is returned by Cancel when nothing is running.
	ErrNoActiveNavigation = errors.New("nav: no active navigation to cancel")

	// ErrBackendUnavailable is returned when the navigation bridge cannot
	// be reached.
	ErrBackendUnavailable = errors.New("nav: backend unavailable")
)

// UnknownLocationError is returned when a semantic location name does not
// exist. It carries the known names so callers can suggest alternatives.
type UnknownLocationError struct {
	Name      string
	Available []string
}

// Error implements the error interface.
func (e *UnknownLocationError) Error() string {
	return fmt.Sprintf("nav: unknown location %q (available: %s)",
		e.Name, strings.Join(e.Available, ", "))
}
