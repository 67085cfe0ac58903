package hardware

import "errors"

// Domain-specific errors for hardware agent operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrAgentUnavailable is returned when the agent bus is not connected.
	ErrAgentUnavailable = errors.New("hardware: agent unavailable")

	// ErrRequestTimeout is returned when the agent does not answer a
	// command within the request timeout.
	ErrRequestTimeout = errors.New("hardware: request timed out")

	// ErrCommandFailed is returned when the agent answered with an error.
	ErrCommandFailed = errors.New("hardware: command failed")
)
