package pairing

import "time"

// Class identifies the kind of peripheral being paired.
type Class string

const (
	// ClassPrinter pairs a ticket printer.
	ClassPrinter Class = "printer"

	// ClassReader pairs a card reader.
	ClassReader Class = "reader"
)

// ValidClass reports whether s names a known device class.
func ValidClass(s string) bool {
	return Class(s) == ClassPrinter || Class(s) == ClassReader
}

// State of one class's pairing machine.
type State string

const (
	StateIdle        State = "idle"
	StateDiscovering State = "discovering"
	StateConnecting  State = "connecting"
	StateConnected   State = "connected"
)

// Candidate is one device found during discovery, offered to the user
// for selection.
type Candidate struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	VendorID  string `json:"vendor_id,omitempty"`
	ProductID string `json:"product_id,omitempty"`
}

// Pairing is the persisted link between this terminal and a peripheral.
type Pairing struct {
	DeviceID string    `json:"device_id"`
	Class    Class     `json:"class"`
	PairedID string    `json:"paired_id"`
	Name     string    `json:"paired_name"`
	PairedAt time.Time `json:"paired_at"`
}

// Status is the externally visible view of one class's machine.
type Status struct {
	Class     Class    `json:"class"`
	State     State    `json:"state"`
	Pairing   *Pairing `json:"pairing,omitempty"`
	LastError string   `json:"last_error,omitempty"`
}
