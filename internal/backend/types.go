package backend

import (
	"time"

	"github.com/tillworks/tillprint-core/internal/printer"
	"github.com/tillworks/tillprint-core/internal/settings"
	"github.com/tillworks/tillprint-core/internal/zone"
)

// Wire representations of backend resources. The backend's zone payload
// carries the printer reference as "printer" and the category filter as a
// plain ID list with an "ALL" sentinel; the conversion to and from the
// tagged CategoryFilter happens here and nowhere else.

type printerWire struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Kind      string    `json:"connection_kind"`
	Role      string    `json:"role"`
	VendorID  string    `json:"vendor_id,omitempty"`
	ProductID string    `json:"product_id,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	Port      int       `json:"port,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

func printerFromWire(w printerWire) printer.Printer {
	return printer.Printer{
		ID:        w.ID,
		Name:      w.Name,
		Kind:      printer.Kind(w.Kind),
		Role:      printer.Role(w.Role),
		VendorID:  w.VendorID,
		ProductID: w.ProductID,
		IPAddress: w.IPAddress,
		Port:      w.Port,
		IsActive:  w.IsActive,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func printerToWire(p printer.Printer) printerWire {
	return printerWire{
		ID:        p.ID,
		Name:      p.Name,
		Kind:      string(p.Kind),
		Role:      string(p.Role),
		VendorID:  p.VendorID,
		ProductID: p.ProductID,
		IPAddress: p.IPAddress,
		Port:      p.Port,
		IsActive:  p.IsActive,
	}
}

type zoneWire struct {
	ID            string    `json:"id,omitempty"`
	Name          string    `json:"name"`
	Printer       string    `json:"printer"`
	CategoryIDs   []string  `json:"category_ids"`
	ProductTypes  []string  `json:"product_type_filter,omitempty"`
	PrintAllItems bool      `json:"print_all_items"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

func zoneFromWire(w zoneWire) zone.KitchenZone {
	return zone.KitchenZone{
		ID:            w.ID,
		Name:          w.Name,
		PrinterID:     w.Printer,
		Filter:        zone.FromWireIDs(w.CategoryIDs),
		ProductTypes:  w.ProductTypes,
		PrintAllItems: w.PrintAllItems,
		IsActive:      w.IsActive,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}
}

func zoneToWire(z zone.KitchenZone) zoneWire {
	return zoneWire{
		ID:            z.ID,
		Name:          z.Name,
		Printer:       z.PrinterID,
		CategoryIDs:   z.Filter.WireIDs(),
		ProductTypes:  z.ProductTypes,
		PrintAllItems: z.PrintAllItems,
		IsActive:      z.IsActive,
	}
}

type categoryWire struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

func categoryTreeFromWire(cats []categoryWire) zone.CategoryTree {
	tree := make(zone.CategoryTree, len(cats))
	for _, c := range cats {
		tree[c.ID] = c.ParentID
	}
	return tree
}

// webOrderSettingsWire nests the sparse override layer the way the backend
// stores it on a location record.
type webOrderSettingsWire struct {
	Overrides settings.Overrides `json:"overrides"`
}

type storeLocationWire struct {
	ID               string               `json:"id"`
	Name             string               `json:"name"`
	WebOrderSettings webOrderSettingsWire `json:"web_order_settings"`
}

// storeLocationPatch is the partial update body for a store location.
// Only the nested override object is ever patched from the terminal.
type storeLocationPatch struct {
	WebOrderSettings webOrderSettingsWire `json:"web_order_settings"`
}
