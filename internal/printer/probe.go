package printer

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"
)

// defaultControlPort is the raw-socket print port used by ESC/POS
// network printers when none is configured.
const defaultControlPort = 9100

// NetworkProber tests network printer reachability by opening the
// printer's control port with a short timeout. It never writes any bytes,
// so a probe cannot produce a stray ticket.
type NetworkProber struct {
	// Timeout bounds the TCP dial. Zero means 3 seconds.
	Timeout time.Duration
}

// Probe implements Prober for network printers.
// USB printers are rejected; they are probed via the hardware layer instead.
func (np *NetworkProber) Probe(ctx context.Context, p *Printer) error {
	if p.Kind != KindNetwork {
		return fmt.Errorf("%w: network prober cannot test a %s printer", ErrUnreachable, p.Kind)
	}

	timeout := np.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	port := p.Port
	if port == 0 {
		port = defaultControlPort
	}

	addr := net.JoinHostPort(p.IPAddress, strconv.Itoa(port))

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: %s not reachable: %v", ErrUnreachable, addr, err)
	}
	_ = conn.Close() //nolint:errcheck // Probe connection, nothing written

	return nil
}
