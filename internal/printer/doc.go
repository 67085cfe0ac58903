// Package printer provides the Printer Registry for tillprint-core.
//
// The Printer Registry is the canonical catalogue of ticket printers known
// to this terminal: locally attached USB printers merged in by discovery,
// and network printers added by explicit configuration. It owns the
// identity and deduplication rules, reachability testing, and the guard
// that keeps kitchen zones from losing their target printer.
//
// # Key Types
//
//   - Printer: A physical ticket printer (USB or network identity, role, active flag)
//   - Discovered: A USB device as reported by hardware discovery, pre-merge
//   - Registry: Cached, thread-safe CRUD plus discovery merge and connection tests
//   - Repository: Persistence abstraction (SQLite implementation provided)
//
// # Usage
//
//	repo := printer.NewSQLiteRepository(db)
//	registry := printer.NewRegistry(repo)
//	registry.SetLogger(log)
//	registry.SetZoneGuard(zoneRepo)
//	registry.SetProber(&printer.NetworkProber{Timeout: cfg.ProbeTimeout()})
//
//	if err := registry.RefreshCache(ctx); err != nil {
//	    return err
//	}
//
//	// Merge a hardware discovery pass; re-running is idempotent.
//	created, _ := registry.MergeDiscovered(ctx, found)
//
//	// Probe without mutating anything.
//	err := registry.TestConnection(ctx, id)
//
// # Thread Safety
//
// The Registry is safe for concurrent use. Reads go through an RWMutex-guarded
// cache of clones; all mutations (manual edits and discovery merges) are
// serialized through a single writer mutex so racing writers cannot lose
// updates.
package printer
