package dispatch

import "errors"

// Sentinel errors for dispatch operations.
// Check with errors.Is() to handle specific failure conditions.
var (
	// ErrPrinterUnreachable indicates the job's I/O failed, or the target
	// printer does not exist in the snapshot.
	ErrPrinterUnreachable = errors.New("dispatch: printer unreachable")

	// ErrNoTransport indicates no transport can serve the printer's
	// connection kind in the current configuration.
	ErrNoTransport = errors.New("dispatch: no transport for printer")
)
