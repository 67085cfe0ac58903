package settings

import (
	"time"

	"github.com/tillworks/tillprint-core/internal/printer"
	"github.com/tillworks/tillprint-core/internal/zone"
)

// GlobalSettings are the tenant-wide defaults, owned by the backend.
// Every field has a concrete value; inheritance bottoms out here.
type GlobalSettings struct {
	ID                      string `json:"id"`
	AutoPrintKitchenTickets bool   `json:"auto_print_kitchen_tickets"`
	AutoPrintReceipts       bool   `json:"auto_print_receipts"`
	EnableNotifications     bool   `json:"enable_notifications"`
	KitchenTicketCopies     int    `json:"kitchen_ticket_copies"`
	ReceiptFooter           string `json:"receipt_footer"`
}

// Overrides is a sparse settings layer. Every field is a pointer so that
// "inherit from the layer below" (nil) stays distinct from "explicitly set"
// (non-nil), including explicit false/zero values.
//
// The same shape serves both location overrides and device-local overrides.
type Overrides struct {
	AutoPrintKitchenTickets *bool   `json:"auto_print_kitchen_tickets,omitempty"`
	AutoPrintReceipts       *bool   `json:"auto_print_receipts,omitempty"`
	EnableNotifications     *bool   `json:"enable_notifications,omitempty"`
	KitchenTicketCopies     *int    `json:"kitchen_ticket_copies,omitempty"`
	ReceiptFooter           *string `json:"receipt_footer,omitempty"`
}

// Effective is the fully resolved configuration this terminal runs with.
//
// FromCache is true when the values came from the persisted snapshot
// rather than a live backend read; callers surface it as a staleness hint
// but keep functioning.
type Effective struct {
	AutoPrintKitchenTickets bool   `json:"auto_print_kitchen_tickets"`
	AutoPrintReceipts       bool   `json:"auto_print_receipts"`
	EnableNotifications     bool   `json:"enable_notifications"`
	KitchenTicketCopies     int    `json:"kitchen_ticket_copies"`
	ReceiptFooter           string `json:"receipt_footer"`

	FromCache bool      `json:"from_cache"`
	Version   int64     `json:"version"`
	FetchedAt time.Time `json:"fetched_at"`
}

// TerminalRegistration is this terminal's backend pairing record.
// StoreLocationID is read-only after initial pairing.
type TerminalRegistration struct {
	DeviceID        string `json:"device_id"`
	Nickname        string `json:"nickname"`
	StoreLocationID string `json:"store_location_id"`
	ReaderID        string `json:"reader_id,omitempty"`
}

// Snapshot is the versioned, immutable bundle of everything the terminal
// needs to operate offline. It is built in one piece from a fully
// successful backend fetch, swapped in atomically, and persisted wholesale;
// it is never patched field by field.
type Snapshot struct {
	Version   int64     `json:"version"`
	FetchedAt time.Time `json:"fetched_at"`

	Global            GlobalSettings       `json:"global_settings"`
	LocationOverrides Overrides            `json:"location_overrides"`
	Registration      TerminalRegistration `json:"registration"`

	Printers   []printer.Printer  `json:"printers"`
	Zones      []zone.KitchenZone `json:"kitchen_zones"`
	Categories zone.CategoryTree  `json:"categories"`
}
