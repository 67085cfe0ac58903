package dispatch

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/tillworks/tillprint-core/internal/hardware"
	"github.com/tillworks/tillprint-core/internal/hardware/serialusb"
	"github.com/tillworks/tillprint-core/internal/printer"
)

const (
	defaultNetworkPort    = 9100
	defaultNetworkTimeout = 5 * time.Second
)

// Transport delivers rendered ticket bytes to one printer.
//
// Implementations must treat the write as all-or-nothing from the
// caller's view: an error means the ticket may not have printed and the
// job is eligible for its one retry.
type Transport interface {
	Print(ctx context.Context, target printer.Printer, data []byte) error
}

// NetworkTransport prints over a raw TCP socket, the standard path for
// ESC/POS printers listening on port 9100.
type NetworkTransport struct {
	Timeout time.Duration
}

// Print dials the printer and writes the ticket. The context bounds the
// dial; once writing has begun the job runs to completion under the
// write deadline.
func (t *NetworkTransport) Print(ctx context.Context, target printer.Printer, data []byte) error {
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = defaultNetworkTimeout
	}

	port := target.Port
	if port == 0 {
		port = defaultNetworkPort
	}
	addr := net.JoinHostPort(target.IPAddress, strconv.Itoa(port))

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: dialing %s: %w", ErrPrinterUnreachable, addr, err)
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPrinterUnreachable, addr, err)
	}
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("%w: writing to %s: %w", ErrPrinterUnreachable, addr, err)
	}
	return nil
}

// SerialTransport prints directly to USB printers via their serial port.
type SerialTransport struct {
	Port *serialusb.Transport
}

func (t *SerialTransport) Print(ctx context.Context, target printer.Printer, data []byte) error {
	if err := t.Port.Write(ctx, target.VendorID, target.ProductID, data); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPrinterUnreachable, target.USBKey(), err)
	}
	return nil
}

// AgentTransport prints through the hardware agent bus. Used for USB
// printers when an agent is configured; the agent owns the device handle.
type AgentTransport struct {
	Bus *hardware.Bus
}

func (t *AgentTransport) Print(ctx context.Context, target printer.Printer, data []byte) error {
	err := t.Bus.Print(ctx, hardware.PrintRequest{
		PrinterName: target.Name,
		Data:        data,
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPrinterUnreachable, target.Name, err)
	}
	return nil
}

// Router selects the transport for a printer by connection kind.
//
// Network printers always use the network transport. USB printers prefer
// the agent when one is configured, falling back to direct serial access.
type Router struct {
	Network Transport
	Serial  Transport
	Agent   Transport
}

// For returns the transport serving the given printer, or ErrNoTransport
// when none is configured for its kind.
func (r *Router) For(target printer.Printer) (Transport, error) {
	switch target.Kind {
	case printer.KindNetwork:
		if r.Network == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoTransport, target.Kind)
		}
		return r.Network, nil
	case printer.KindUSB:
		if r.Agent != nil {
			return r.Agent, nil
		}
		if r.Serial != nil {
			return r.Serial, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrNoTransport, target.Kind)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrNoTransport, target.Kind)
	}
}
