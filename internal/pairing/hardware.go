package pairing

import (
	"context"
	"fmt"
	"strings"

	"github.com/tillworks/tillprint-core/internal/hardware"
)

// BusDiscoverer finds USB printer candidates through the hardware agent.
type BusDiscoverer struct {
	Bus *hardware.Bus
}

// Discover asks the agent for attached USB printers.
func (d *BusDiscoverer) Discover(ctx context.Context) ([]Candidate, error) {
	printers, err := d.Bus.DiscoverPrinters(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(printers))
	for _, p := range printers {
		candidates = append(candidates, Candidate{
			ID:        usbCandidateID(p.VendorID, p.ProductID),
			Name:      p.Name,
			VendorID:  p.VendorID,
			ProductID: p.ProductID,
		})
	}
	return candidates, nil
}

// BusConnector verifies a printer candidate through the hardware agent.
// The handshake re-scans and confirms the candidate is still attached;
// a candidate that has gone away refuses the pairing.
type BusConnector struct {
	Bus *hardware.Bus
}

// Connect confirms the candidate is attached and reachable.
func (c *BusConnector) Connect(ctx context.Context, cand Candidate) error {
	printers, err := c.Bus.DiscoverPrinters(ctx)
	if err != nil {
		return err
	}
	for _, p := range printers {
		if usbCandidateID(p.VendorID, p.ProductID) == cand.ID {
			return nil
		}
	}
	return fmt.Errorf("%w: %s not attached", ErrPairingRejected, cand.ID)
}

// ReaderDiscoverer finds card reader candidates through the hardware agent.
type ReaderDiscoverer struct {
	Bus *hardware.Bus
}

// Discover asks the agent for attached card readers.
func (d *ReaderDiscoverer) Discover(ctx context.Context) ([]Candidate, error) {
	readers, err := d.Bus.DiscoverReaders(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(readers))
	for _, rd := range readers {
		candidates = append(candidates, Candidate{ID: rd.ID, Name: rd.Name})
	}
	return candidates, nil
}

// ReaderConnector verifies a reader candidate through the hardware agent.
type ReaderConnector struct {
	Bus *hardware.Bus
}

// Connect confirms the reader is still attached.
func (c *ReaderConnector) Connect(ctx context.Context, cand Candidate) error {
	readers, err := c.Bus.DiscoverReaders(ctx)
	if err != nil {
		return err
	}
	for _, rd := range readers {
		if rd.ID == cand.ID {
			return nil
		}
	}
	return fmt.Errorf("%w: %s not attached", ErrPairingRejected, cand.ID)
}

func usbCandidateID(vendorID, productID string) string {
	return strings.ToLower(vendorID) + ":" + strings.ToLower(productID)
}
