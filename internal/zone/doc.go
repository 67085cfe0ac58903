// Package zone provides the Kitchen Zone catalogue and the zone matcher
// for tillprint-core.
//
// A kitchen zone is a routing rule: a category/product-type filter bound to
// one target printer. The matcher decides, per order item, which zones (and
// therefore which printers) must receive a ticket.
//
// The category filter is a tagged variant (All | None | explicit ID set)
// rather than an "ALL" sentinel hidden inside a generic list; the sentinel
// only exists at the backend wire boundary (FromWireIDs / WireIDs).
//
// Matching is a pure computation over an immutable snapshot of zones and a
// category tree supplied by the product catalogue; all IO lives in the
// Repository.
package zone
