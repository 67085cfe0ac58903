package zone

import "github.com/tillworks/tillprint-core/internal/order"

// ZonesForItem computes the set of active zones that must receive a ticket
// for the given item.
//
// The matching rules, in order:
//  1. Inactive zones never match.
//  2. PrintAllItems matches unconditionally, bypassing all filters.
//  3. The category filter: All matches everything, None matches nothing,
//     an explicit set matches iff the item's category or any of its
//     ancestors is a member.
//  4. A product-type filter composes as a further constraint (logical AND):
//     when present, the item's product type must also be in the set.
//
// The result is a set keyed by zone ID: the same zone can never appear
// twice, and callers dedup by printer ID afterwards since several zones may
// route to one printer.
//
// This is a pure function: no hidden state, no IO. It must be applied per
// item, not per order, because different items in one order can route to
// different zone subsets.
func ZonesForItem(item order.Item, zones []KitchenZone, tree CategoryTree) map[string]KitchenZone {
	matched := make(map[string]KitchenZone)

	for _, z := range zones {
		if !z.IsActive {
			continue
		}
		if Matches(z, item, tree) {
			matched[z.ID] = z
		}
	}

	return matched
}

// Matches reports whether one zone matches one item. The zone's IsActive
// flag is not consulted here; callers filter inactive zones first.
func Matches(z KitchenZone, item order.Item, tree CategoryTree) bool {
	// PrintAllItems wins over every filter, including an empty one.
	if z.PrintAllItems {
		return true
	}

	if !categoryMatches(z.Filter, item.CategoryID, tree) {
		return false
	}

	if len(z.ProductTypes) > 0 {
		return containsString(z.ProductTypes, item.ProductTypeID)
	}

	return true
}

// categoryMatches evaluates the category filter against the item's
// category, walking the category tree so an item in a child category
// matches a zone filtering on any ancestor.
func categoryMatches(f CategoryFilter, categoryID string, tree CategoryTree) bool {
	switch f.Mode {
	case FilterAll:
		return true
	case FilterIDs:
		for _, id := range tree.AncestorsAndSelf(categoryID) {
			if containsString(f.IDs, id) {
				return true
			}
		}
		return false
	default:
		// FilterNone and anything malformed match nothing.
		return false
	}
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
