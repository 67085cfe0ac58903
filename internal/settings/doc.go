// Package settings provides the offline-aware configuration resolver for
// tillprint-core.
//
// Configuration is layered: tenant-wide defaults, location overrides, and
// device-local overrides, merged field by field with the most specific
// non-nil value winning. The merged result feeds zone matching, dispatch,
// and device pairing.
//
// The resolver holds the current configuration as an immutable Snapshot
// behind an atomic pointer. A refresh builds a complete new snapshot from
// the backend and swaps it in wholesale; a partial fetch failure leaves the
// previous snapshot untouched. Every successful fetch is persisted to the
// SQLite snapshot cache, which serves as the data source when the backend
// is unreachable — flagged via Effective.FromCache so the UI can hint at
// staleness without the terminal refusing to function.
package settings
