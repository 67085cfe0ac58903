package zone

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// maxNameLength bounds zone display names.
const maxNameLength = 100

// Validate checks a kitchen zone for structural errors.
//
// Note that a zone whose filter matches nothing is NOT invalid: an empty
// non-ALL filter with PrintAllItems off is the supported "parked" state.
// Only a missing printer assignment is treated as misconfiguration.
func Validate(z *KitchenZone) error {
	if z == nil {
		return fmt.Errorf("%w: nil zone", ErrInvalid)
	}

	if strings.TrimSpace(z.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if len(z.Name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalid, maxNameLength)
	}

	if z.PrinterID == "" {
		return ErrNoPrinter
	}

	if err := z.Filter.Validate(); err != nil {
		return err
	}

	return nil
}

// GenerateID creates a new UUID for a zone.
func GenerateID() string {
	return uuid.New().String()
}
