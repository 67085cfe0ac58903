// Package backend is the REST client for the tenant backend.
//
// It consumes the printers, kitchen-zones, global-settings,
// store-locations, terminal-registrations and categories resources, and
// assembles them into the versioned configuration snapshot the terminal
// runs on (FetchSnapshot). The legacy "ALL" category sentinel used on the
// wire is translated to the tagged CategoryFilter at this boundary and
// never leaks further in.
//
// The client is stateless apart from its connection pool; offline
// behaviour (cache fallback, staleness) is owned by the settings
// resolver, not here. A failed request simply surfaces as an error
// wrapping one of the package sentinels.
package backend
