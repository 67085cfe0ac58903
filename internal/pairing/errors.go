package pairing

import "errors"

var (
	// ErrDiscoveryTimeout indicates discovery completed without a
	// response from the hardware layer within the allowed window.
	ErrDiscoveryTimeout = errors.New("pairing: discovery timeout")

	// ErrPairingRejected indicates the device refused the handshake.
	ErrPairingRejected = errors.New("pairing: rejected by device")

	// ErrBusy indicates a connection attempt is already in progress
	// for this device class.
	ErrBusy = errors.New("pairing: connection already in progress")

	// ErrNotPaired indicates no pairing row exists for the requested
	// device class.
	ErrNotPaired = errors.New("pairing: not paired")

	// ErrInvalidClass indicates an unknown device class.
	ErrInvalidClass = errors.New("pairing: invalid device class")
)
