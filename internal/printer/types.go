package printer

import "time"

// Kind identifies how a printer is physically attached to the terminal.
type Kind string

const (
	// KindUSB is a locally attached USB (serial) ticket printer.
	KindUSB Kind = "usb"

	// KindNetwork is a ticket printer reachable over TCP/IP.
	KindNetwork Kind = "network"
)

// ValidKind checks whether the given string is a valid connection kind.
func ValidKind(s string) bool {
	return Kind(s) == KindUSB || Kind(s) == KindNetwork
}

// Role identifies what a printer is used for.
type Role string

const (
	// RoleReceipt printers receive a full copy of every completed order,
	// independent of kitchen zone routing.
	RoleReceipt Role = "receipt"

	// RoleKitchen printers receive only the items routed to them by
	// kitchen zone matching.
	RoleKitchen Role = "kitchen"
)

// ValidRole checks whether the given string is a valid printer role.
func ValidRole(s string) bool {
	return Role(s) == RoleReceipt || Role(s) == RoleKitchen
}

// Printer is a physical ticket printer known to this terminal.
//
// Exactly one of the USB identity (VendorID, ProductID) or the network
// identity (IPAddress, Port) is populated, determined by Kind. Printers are
// soft-disabled via IsActive rather than deleted while zones reference them.
type Printer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind Kind   `json:"connection_kind"`
	Role Role   `json:"role"`

	// USB identity (Kind == KindUSB). Hex strings as reported by the
	// hardware, e.g. "04b8"/"0202" for an Epson TM series.
	VendorID  string `json:"vendor_id,omitempty"`
	ProductID string `json:"product_id,omitempty"`

	// Network identity (Kind == KindNetwork).
	IPAddress string `json:"ip_address,omitempty"`
	Port      int    `json:"port,omitempty"`

	IsActive bool `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns an independent copy of the Printer.
// Printer has no reference fields today, but callers must not rely on that;
// the registry always hands out clones to keep its cache isolated.
func (p *Printer) Clone() *Printer {
	if p == nil {
		return nil
	}
	cpy := *p
	return &cpy
}

// USBKey returns the deduplication key for USB printers.
// Discovery merges on this key so re-discovering a known printer never
// creates a duplicate entry.
func (p *Printer) USBKey() string {
	return p.VendorID + ":" + p.ProductID
}

// Discovered is a USB printer as reported by hardware discovery,
// before it is merged into the registry.
type Discovered struct {
	Name      string `json:"name"`
	VendorID  string `json:"vendor_id"`
	ProductID string `json:"product_id"`
}
