// Package serialusb is the direct USB printer path, used when no hardware
// agent is configured. Discovery enumerates serial ports carrying USB
// VID/PID identity; printing is a plain write of pre-rendered ticket bytes
// to the port.
package serialusb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Domain-specific errors for direct serial access.
var (
	// ErrPortNotFound is returned when no port matches the USB identity.
	ErrPortNotFound = errors.New("serialusb: port not found")

	// ErrWriteFailed is returned when writing to the port fails.
	ErrWriteFailed = errors.New("serialusb: write failed")
)

// Device is one USB serial device found during discovery.
type Device struct {
	PortName  string
	Name      string
	VendorID  string
	ProductID string
}

// Discover enumerates serial ports and returns those with USB identity.
// Ports without VID/PID (onboard UARTs) are skipped.
func Discover() ([]Device, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerating serial ports: %w", err)
	}

	var devices []Device
	for _, p := range ports {
		if !p.IsUSB || p.VID == "" {
			continue
		}
		name := p.Product
		if name == "" {
			name = p.Name
		}
		devices = append(devices, Device{
			PortName:  p.Name,
			Name:      name,
			VendorID:  strings.ToLower(p.VID),
			ProductID: strings.ToLower(p.PID),
		})
	}
	return devices, nil
}

// PortForIdentity returns the port name of the device matching the given
// USB identity. Identity comparison is case-insensitive on the hex strings.
func PortForIdentity(vendorID, productID string) (string, error) {
	devices, err := Discover()
	if err != nil {
		return "", err
	}
	for _, d := range devices {
		if strings.EqualFold(d.VendorID, vendorID) && strings.EqualFold(d.ProductID, productID) {
			return d.PortName, nil
		}
	}
	return "", fmt.Errorf("%w: %s:%s", ErrPortNotFound, vendorID, productID)
}

// Transport writes ticket bytes to USB serial printers.
//
// The port is opened per write and closed after, so a printer that is
// unplugged between orders does not hold a stale handle. Writes to the
// same transport are serialized.
type Transport struct {
	baud    int
	timeout time.Duration
	mu      sync.Mutex
}

// NewTransport creates a serial transport. A non-positive baud falls back
// to 19200, the common rate for ESC/POS ticket printers.
func NewTransport(baud int, timeout time.Duration) *Transport {
	if baud <= 0 {
		baud = 19200
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Transport{baud: baud, timeout: timeout}
}

// Write resolves the port for the given USB identity and writes data to it.
//
// The context is checked before the port is opened; once the write has
// begun it runs to completion.
func (t *Transport) Write(ctx context.Context, vendorID, productID string, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	portName, err := PortForIdentity(vendorID, productID)
	if err != nil {
		return err
	}

	mode := &serial.Mode{
		BaudRate: t.baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %w", ErrWriteFailed, portName, err)
	}
	defer port.Close()

	if err := port.SetReadTimeout(t.timeout); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, portName, err)
	}

	if _, err := port.Write(data); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, portName, err)
	}
	// Let the printer drain its buffer before the port closes.
	if err := port.Drain(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, portName, err)
	}
	return nil
}
