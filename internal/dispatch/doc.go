// Package dispatch routes a completed order's tickets to printers.
//
// Dispatch has two independent channels. Receipt printers always receive
// a full-order receipt; kitchen printers receive a ticket containing only
// the items their zones matched, with zones deduped by printer. Jobs to
// distinct printers run concurrently, jobs to the same printer are
// serialized, and every job retries once before its entry is marked
// failed.
//
// The report holds exactly one entry per distinct target printer. A
// printer failure is information for the caller, never an abort: order
// completion must succeed even when all printing fails.
//
// Outcomes are persisted to the dispatch_history table and, when
// enabled, emitted as InfluxDB telemetry.
package dispatch
