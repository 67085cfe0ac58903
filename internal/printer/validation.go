package printer

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// maxNameLength bounds printer display names.
const maxNameLength = 100

// Validate checks a printer for structural errors.
//
// The central invariant: exactly one of the USB identity and the network
// identity is populated, determined by Kind.
//
// Returns:
//   - error: wrapping ErrInvalid, ErrInvalidKind, ErrInvalidRole or
//     ErrIdentityMismatch, or nil if valid
func Validate(p *Printer) error {
	if p == nil {
		return fmt.Errorf("%w: nil printer", ErrInvalid)
	}

	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if len(p.Name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalid, maxNameLength)
	}

	if !ValidKind(string(p.Kind)) {
		return fmt.Errorf("%w: %q", ErrInvalidKind, p.Kind)
	}
	if !ValidRole(string(p.Role)) {
		return fmt.Errorf("%w: %q", ErrInvalidRole, p.Role)
	}

	hasUSB := p.VendorID != "" && p.ProductID != ""
	hasNetwork := p.IPAddress != ""

	switch p.Kind {
	case KindUSB:
		if !hasUSB {
			return fmt.Errorf("%w: usb printer requires vendor_id and product_id", ErrIdentityMismatch)
		}
		if hasNetwork || p.Port != 0 {
			return fmt.Errorf("%w: usb printer must not carry a network identity", ErrIdentityMismatch)
		}
	case KindNetwork:
		if !hasNetwork {
			return fmt.Errorf("%w: network printer requires ip_address", ErrIdentityMismatch)
		}
		if p.Port < 0 || p.Port > 65535 {
			return fmt.Errorf("%w: port out of range", ErrInvalid)
		}
		if hasUSB {
			return fmt.Errorf("%w: network printer must not carry a usb identity", ErrIdentityMismatch)
		}
	}

	return nil
}

// GenerateID creates a new UUID for a printer.
func GenerateID() string {
	return uuid.New().String()
}
