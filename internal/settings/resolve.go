package settings

// Resolve merges tenant defaults, location overrides, and device-local
// overrides into one effective configuration.
//
// Precedence is applied field by field, not as a blanket object merge:
// device-local value (if set) > location override (if set) > tenant
// default. A location can therefore override one field while every other
// field keeps inheriting from the tenant.
//
// This is a pure computation; the caller stamps FromCache/Version/FetchedAt.
func Resolve(global GlobalSettings, location, device Overrides) Effective {
	return Effective{
		AutoPrintKitchenTickets: resolveBool(global.AutoPrintKitchenTickets, location.AutoPrintKitchenTickets, device.AutoPrintKitchenTickets),
		AutoPrintReceipts:       resolveBool(global.AutoPrintReceipts, location.AutoPrintReceipts, device.AutoPrintReceipts),
		EnableNotifications:     resolveBool(global.EnableNotifications, location.EnableNotifications, device.EnableNotifications),
		KitchenTicketCopies:     resolveInt(global.KitchenTicketCopies, location.KitchenTicketCopies, device.KitchenTicketCopies),
		ReceiptFooter:           resolveString(global.ReceiptFooter, location.ReceiptFooter, device.ReceiptFooter),
	}
}

func resolveBool(def bool, location, device *bool) bool {
	if device != nil {
		return *device
	}
	if location != nil {
		return *location
	}
	return def
}

func resolveInt(def int, location, device *int) int {
	if device != nil {
		return *device
	}
	if location != nil {
		return *location
	}
	return def
}

func resolveString(def string, location, device *string) string {
	if device != nil {
		return *device
	}
	if location != nil {
		return *location
	}
	return def
}
