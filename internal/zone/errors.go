package zone

import "errors"

// Domain errors for the zone package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, zone.ErrNotFound) {
//	    // handle not found case
//	}
var (
	// ErrNotFound is returned when a zone ID does not exist.
	ErrNotFound = errors.New("zone: not found")

	// ErrExists is returned when creating a zone with an ID that already exists.
	ErrExists = errors.New("zone: already exists")

	// ErrInvalid is returned when zone validation fails.
	ErrInvalid = errors.New("zone: invalid")

	// ErrNoPrinter is returned when a zone has no printer assigned.
	// Such a zone is misconfigured: it is logged and skipped during
	// dispatch but never blocks other zones.
	ErrNoPrinter = errors.New("zone: no printer assigned")
)
