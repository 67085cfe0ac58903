package backend

import "errors"

// Sentinel errors for backend API operations.
// Check with errors.Is() to handle specific failure conditions.
var (
	// ErrUnavailable indicates the backend could not be reached at all
	// (connection refused, DNS failure, timeout).
	ErrUnavailable = errors.New("backend: unavailable")

	// ErrUnauthorized indicates the API key was rejected.
	ErrUnauthorized = errors.New("backend: unauthorized")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("backend: resource not found")

	// ErrBadStatus indicates the backend answered with an unexpected
	// HTTP status code.
	ErrBadStatus = errors.New("backend: unexpected status")
)
