// Package api implements the local HTTP control surface for tillprint-core.
//
// This package provides:
//   - REST endpoints for printer and kitchen zone management
//   - Resolved settings views and manual refresh
//   - Order dispatch and per-printer dispatch reports
//   - Peripheral pairing (discover, connect, forget) per device class
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Architecture
//
// The server is consumed by the till application on the same machine.
// Reads are open; mutations require a backend-issued HS256 bearer token
// verified against the shared secret. All writes land in the local SQLite
// store and the in-memory registries, so the terminal keeps operating
// when the backend is unreachable.
//
// # Graceful Degradation
//
// USB discovery and pairing are optional dependencies: without a hardware
// agent those endpoints answer 503 while everything else keeps working.
package api
