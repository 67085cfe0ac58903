package settings

import "testing"

func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func TestResolve_TenantDefaultWhenNoOverrides(t *testing.T) {
	global := GlobalSettings{
		AutoPrintKitchenTickets: true,
		KitchenTicketCopies:     1,
		ReceiptFooter:           "Thanks!",
	}

	eff := Resolve(global, Overrides{}, Overrides{})

	if !eff.AutoPrintKitchenTickets {
		t.Error("AutoPrintKitchenTickets = false, want tenant default true")
	}
	if eff.KitchenTicketCopies != 1 {
		t.Errorf("KitchenTicketCopies = %d, want 1", eff.KitchenTicketCopies)
	}
	if eff.ReceiptFooter != "Thanks!" {
		t.Errorf("ReceiptFooter = %q, want tenant default", eff.ReceiptFooter)
	}
}

func TestResolve_LocationOverridesTenant(t *testing.T) {
	global := GlobalSettings{AutoPrintKitchenTickets: false, EnableNotifications: true}
	location := Overrides{AutoPrintKitchenTickets: boolPtr(true)}

	eff := Resolve(global, location, Overrides{})

	if !eff.AutoPrintKitchenTickets {
		t.Error("location override not applied")
	}
	// Field-level precedence: untouched fields still inherit.
	if !eff.EnableNotifications {
		t.Error("untouched field lost its tenant default")
	}
}

func TestResolve_DeviceWinsRegardlessOfLocation(t *testing.T) {
	global := GlobalSettings{KitchenTicketCopies: 1}
	location := Overrides{KitchenTicketCopies: intPtr(2)}
	device := Overrides{KitchenTicketCopies: intPtr(3)}

	eff := Resolve(global, location, device)
	if eff.KitchenTicketCopies != 3 {
		t.Errorf("KitchenTicketCopies = %d, want device-local 3", eff.KitchenTicketCopies)
	}

	// device-local nil: location wins.
	eff = Resolve(global, location, Overrides{})
	if eff.KitchenTicketCopies != 2 {
		t.Errorf("KitchenTicketCopies = %d, want location 2", eff.KitchenTicketCopies)
	}
}

func TestResolve_ExplicitFalseIsNotInherit(t *testing.T) {
	// Explicitly setting false at the device layer must override a true
	// below it; nil and false are different things.
	global := GlobalSettings{AutoPrintReceipts: true}
	device := Overrides{AutoPrintReceipts: boolPtr(false)}

	eff := Resolve(global, Overrides{}, device)
	if eff.AutoPrintReceipts {
		t.Error("explicit false override was treated as inherit")
	}
}

func TestResolve_EmptyStringOverride(t *testing.T) {
	global := GlobalSettings{ReceiptFooter: "Thanks!"}
	location := Overrides{ReceiptFooter: strPtr("")}

	eff := Resolve(global, location, Overrides{})
	if eff.ReceiptFooter != "" {
		t.Errorf("ReceiptFooter = %q, want explicit empty string", eff.ReceiptFooter)
	}
}
