package printer

import "errors"

// Domain errors for the printer package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, printer.ErrNotFound) {
//	    // handle not found case
//	}
var (
	// ErrNotFound is returned when a printer ID does not exist.
	ErrNotFound = errors.New("printer: not found")

	// ErrExists is returned when creating a printer that already exists.
	ErrExists = errors.New("printer: already exists")

	// ErrInvalid is returned when printer validation fails.
	ErrInvalid = errors.New("printer: invalid")

	// ErrInvalidKind is returned when a connection kind is not recognised.
	ErrInvalidKind = errors.New("printer: invalid connection kind")

	// ErrInvalidRole is returned when a printer role is not recognised.
	ErrInvalidRole = errors.New("printer: invalid role")

	// ErrIdentityMismatch is returned when a printer carries neither or both
	// of the USB and network identities for its connection kind.
	ErrIdentityMismatch = errors.New("printer: identity does not match connection kind")

	// ErrInUse is returned when removing a printer that is still referenced
	// by an active kitchen zone. Deactivate or repoint the zone first.
	ErrInUse = errors.New("printer: referenced by an active kitchen zone")

	// ErrUnreachable is returned when a connection test or print write
	// cannot reach the printer.
	ErrUnreachable = errors.New("printer: unreachable")
)
