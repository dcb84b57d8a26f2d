package tools

import "errors"

// Sentinel errors for dispatch failures.
var (
	// ErrNotFound is returned when a tool name is not in the table.
	ErrNotFound = errors.New("tools: tool not found")

	// ErrParamsInvalid is returned when arguments fail validation against
	// the tool's parameter schema.
	ErrParamsInvalid = errors.New("tools: invalid parameters")
)
