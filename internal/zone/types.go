package zone

import (
	"encoding/json"
	"fmt"
	"time"
)

// FilterMode is the discriminant of a CategoryFilter.
type FilterMode string

const (
	// FilterAll matches every category.
	FilterAll FilterMode = "all"

	// FilterNone matches no category. A zone carrying it is valid but
	// parked: it prints nothing until someone assigns categories.
	FilterNone FilterMode = "none"

	// FilterIDs matches an explicit category set (including descendants).
	FilterIDs FilterMode = "ids"
)

// CategoryFilter is a tagged variant: All, None, or an explicit ID set.
//
// The backend wire format overloads a generic list with an "ALL" sentinel
// ("category_ids": ["ALL"]). That sentinel is translated at the backend
// boundary; matching logic only ever sees the variant.
type CategoryFilter struct {
	Mode FilterMode `json:"mode"`
	IDs  []string   `json:"ids,omitempty"`
}

// AllCategories returns the filter that matches everything.
func AllCategories() CategoryFilter {
	return CategoryFilter{Mode: FilterAll}
}

// NoCategories returns the filter that matches nothing.
func NoCategories() CategoryFilter {
	return CategoryFilter{Mode: FilterNone}
}

// Categories returns a filter matching the given category IDs.
// An empty list collapses to NoCategories.
func Categories(ids []string) CategoryFilter {
	if len(ids) == 0 {
		return NoCategories()
	}
	return CategoryFilter{Mode: FilterIDs, IDs: ids}
}

// Validate checks the filter for structural errors.
func (f CategoryFilter) Validate() error {
	switch f.Mode {
	case FilterAll, FilterNone:
		if len(f.IDs) > 0 {
			return fmt.Errorf("%w: %s filter must not carry ids", ErrInvalid, f.Mode)
		}
		return nil
	case FilterIDs:
		if len(f.IDs) == 0 {
			return fmt.Errorf("%w: ids filter requires at least one category", ErrInvalid)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown filter mode %q", ErrInvalid, f.Mode)
	}
}

// UnmarshalJSON accepts both the variant form ({"mode":"ids","ids":[...]})
// and a bare JSON array for compatibility with older persisted zones, where
// the "ALL" sentinel inside the array selects FilterAll.
func (f *CategoryFilter) UnmarshalJSON(data []byte) error {
	// Variant form
	type plain CategoryFilter
	var p plain
	if err := json.Unmarshal(data, &p); err == nil && p.Mode != "" {
		*f = CategoryFilter(p)
		return nil
	}

	// Legacy bare array form
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("category filter: %w", err)
	}
	*f = FromWireIDs(ids)
	return nil
}

// FromWireIDs converts the backend's category_ids list into a filter,
// honouring the "ALL" sentinel.
func FromWireIDs(ids []string) CategoryFilter {
	for _, id := range ids {
		if id == "ALL" {
			return AllCategories()
		}
	}
	return Categories(ids)
}

// WireIDs converts the filter back into the backend's category_ids list.
func (f CategoryFilter) WireIDs() []string {
	switch f.Mode {
	case FilterAll:
		return []string{"ALL"}
	case FilterIDs:
		return f.IDs
	default:
		return []string{}
	}
}

// KitchenZone is a named routing rule binding a category/product-type filter
// to a target printer.
//
// A zone with Filter == NoCategories and PrintAllItems == false is valid but
// matches nothing; that is a deliberate "configuration parked" state, not an
// error.
type KitchenZone struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PrinterID string `json:"printer_id"`

	// Filter selects categories. PrintAllItems bypasses it entirely:
	// when set, the zone receives every item regardless of Filter.
	Filter        CategoryFilter `json:"category_filter"`
	PrintAllItems bool           `json:"print_all_items"`

	// ProductTypes further constrains matches: when non-empty, an item
	// must pass both the category filter and this set (logical AND).
	ProductTypes []string `json:"product_type_filter,omitempty"`

	IsActive bool `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns an independent copy of the zone.
func (z *KitchenZone) Clone() *KitchenZone {
	if z == nil {
		return nil
	}
	cpy := *z
	if z.Filter.IDs != nil {
		cpy.Filter.IDs = append([]string(nil), z.Filter.IDs...)
	}
	if z.ProductTypes != nil {
		cpy.ProductTypes = append([]string(nil), z.ProductTypes...)
	}
	return &cpy
}

// CategoryTree maps a category ID to its parent category ID. Roots are
// absent or map to "". The tree is supplied by the backend's product
// catalogue; zones only walk it.
type CategoryTree map[string]string

// AncestorsAndSelf returns the chain from id up to its root, inclusive.
// Cycles (malformed trees) are cut off rather than looped forever.
func (t CategoryTree) AncestorsAndSelf(id string) []string {
	var chain []string
	seen := make(map[string]struct{})
	for id != "" {
		if _, ok := seen[id]; ok {
			break
		}
		seen[id] = struct{}{}
		chain = append(chain, id)
		id = t[id]
	}
	return chain
}
