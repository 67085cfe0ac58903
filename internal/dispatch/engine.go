package dispatch

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tillworks/tillprint-core/internal/order"
	"github.com/tillworks/tillprint-core/internal/printer"
	"github.com/tillworks/tillprint-core/internal/settings"
	"github.com/tillworks/tillprint-core/internal/zone"
)

// Logger interface for dispatch logging. Compatible with logging.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Telemetry records per-job metrics. Satisfied by *influxdb.Client.
type Telemetry interface {
	WriteDispatchMetric(printerID, status string, itemCount int, duration time.Duration)
}

// PrinterSource lists the printers configured on this terminal.
// Satisfied by *printer.Registry.
type PrinterSource interface {
	List(ctx context.Context) ([]printer.Printer, error)
}

// ZoneSource lists the kitchen zones configured on this terminal.
// Satisfied by zone.Repository implementations.
type ZoneSource interface {
	List(ctx context.Context) ([]zone.KitchenZone, error)
}

// Engine routes a completed order's tickets to printers.
//
// Dispatch builds one job per distinct target printer and runs the jobs
// concurrently: a slow or unreachable printer never delays tickets to
// the others. Jobs to the same printer are serialized, so two orders'
// tickets cannot interleave on one printer.
//
// Printing is not transactional with order completion: every failure is
// reported in the per-printer entries, never raised as a dispatch error.
type Engine struct {
	router    *Router
	recorder  Recorder
	telemetry Telemetry
	logger    Logger

	// Local catalog, overlaid onto the snapshot when routing.
	localPrinters PrinterSource
	localZones    ZoneSource

	// printerLocks serializes jobs per printer across dispatches.
	printerLocks map[string]*sync.Mutex
	locksMu      sync.Mutex
}

// NewEngine creates a dispatch engine. The recorder and telemetry are
// optional; a nil recorder disables history, a nil telemetry disables
// metrics.
func NewEngine(router *Router, recorder Recorder) *Engine {
	return &Engine{
		router:       router,
		recorder:     recorder,
		logger:       noopLogger{},
		printerLocks: make(map[string]*sync.Mutex),
	}
}

// SetLogger sets a logger. Call before the engine is used.
func (e *Engine) SetLogger(logger Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// SetTelemetry sets the metrics sink. Call before the engine is used.
func (e *Engine) SetTelemetry(t Telemetry) {
	e.telemetry = t
}

// SetCatalog wires the terminal's own printer registry and zone
// repository into routing. Printers and zones configured locally (by
// the till application or USB discovery) are overlaid onto the backend
// snapshot, with the local record winning on an ID collision.
//
// Call before the engine is used.
func (e *Engine) SetCatalog(printers PrinterSource, zones ZoneSource) {
	e.localPrinters = printers
	e.localZones = zones
}

// job is one printer's unit of work within a dispatch.
type job struct {
	target    printer.Printer
	printerID string // kept separately so dangling references keep their ID
	zoneNames []string
	items     []order.Item
	data      []byte
	dangling  bool
}

// Dispatch routes one order's tickets and returns a report with exactly
// one entry per distinct target printer.
//
// The snapshot is read-only here; callers pass the immutable snapshot
// and the effective settings the resolver currently serves, so the
// device-local override layer reaches ticket rendering. Cancelling ctx
// skips jobs that have not started I/O; jobs mid-write run to
// completion and are still recorded.
func (e *Engine) Dispatch(ctx context.Context, o order.Order, snap *settings.Snapshot, eff settings.Effective) Report {
	report := Report{
		OrderID:   o.ID,
		StartedAt: time.Now().UTC(),
	}

	printers, zones := e.routingView(ctx, snap)
	jobs := e.buildJobs(o, printers, zones, snap.Categories, eff)
	if len(jobs) == 0 {
		e.logger.Debug("no target printers for order", "order_id", o.ID)
		return report
	}

	entries := make(chan Entry, len(jobs))
	var wg sync.WaitGroup
	for _, j := range jobs {
		wg.Add(1)
		go func(j *job) {
			defer wg.Done()
			entries <- e.run(ctx, j)
		}(j)
	}
	wg.Wait()
	close(entries)

	for entry := range entries {
		report.Entries = append(report.Entries, entry)
		e.record(o.ID, entry)
	}
	// Deterministic report order for callers and tests.
	sort.Slice(report.Entries, func(i, k int) bool {
		return report.Entries[i].PrinterID < report.Entries[k].PrinterID
	})

	e.logger.Info("order dispatched",
		"order_id", o.ID,
		"printers", len(report.Entries),
		"failed", report.Failed(),
	)
	return report
}

// routingView is the merged catalog Dispatch routes from: the backend
// snapshot overlaid with the terminal's own registry and zone repo, the
// local record winning on an ID collision. A printer created or
// discovered on this terminal is dispatchable before the backend has
// ever heard of it.
//
// A local read failure degrades to snapshot-only routing rather than
// failing the dispatch.
func (e *Engine) routingView(ctx context.Context, snap *settings.Snapshot) ([]printer.Printer, []zone.KitchenZone) {
	printers := snap.Printers
	zones := snap.Zones

	if e.localPrinters != nil {
		local, err := e.localPrinters.List(ctx)
		if err != nil {
			e.logger.Error("listing local printers failed, routing from snapshot only", "error", err)
		} else {
			printers = overlayPrinters(snap.Printers, local)
		}
	}
	if e.localZones != nil {
		local, err := e.localZones.List(ctx)
		if err != nil {
			e.logger.Error("listing local zones failed, routing from snapshot only", "error", err)
		} else {
			zones = overlayZones(snap.Zones, local)
		}
	}
	return printers, zones
}

func overlayPrinters(snapshot, local []printer.Printer) []printer.Printer {
	localIDs := make(map[string]bool, len(local))
	for _, p := range local {
		localIDs[p.ID] = true
	}
	merged := make([]printer.Printer, 0, len(snapshot)+len(local))
	for _, p := range snapshot {
		if !localIDs[p.ID] {
			merged = append(merged, p)
		}
	}
	return append(merged, local...)
}

func overlayZones(snapshot, local []zone.KitchenZone) []zone.KitchenZone {
	localIDs := make(map[string]bool, len(local))
	for _, z := range local {
		localIDs[z.ID] = true
	}
	merged := make([]zone.KitchenZone, 0, len(snapshot)+len(local))
	for _, z := range snapshot {
		if !localIDs[z.ID] {
			merged = append(merged, z)
		}
	}
	return append(merged, local...)
}

// buildJobs partitions the order into per-printer jobs: the receipt
// channel (full order to every active receipt printer) and the kitchen
// channel (zone-matched items, zones deduped by printer).
func (e *Engine) buildJobs(o order.Order, printers []printer.Printer, zones []zone.KitchenZone, categories zone.CategoryTree, eff settings.Effective) map[string]*job {
	byID := make(map[string]printer.Printer, len(printers))
	for _, p := range printers {
		byID[p.ID] = p
	}

	jobs := make(map[string]*job)

	// Receipt channel: independent of zone filtering.
	for _, p := range printers {
		if !p.IsActive || p.Role != printer.RoleReceipt {
			continue
		}
		jobs[p.ID] = &job{
			target:    p,
			printerID: p.ID,
			items:     o.Items,
			data: RenderReceipt(ReceiptTicket{
				Order:  o,
				Footer: eff.ReceiptFooter,
			}),
		}
	}

	// Kitchen channel: per-item zone matching.
	type kitchenTarget struct {
		zoneNames []string
		seenZones map[string]bool
		items     []order.Item
		seenItems map[string]bool
	}
	kitchen := make(map[string]*kitchenTarget)

	for _, item := range o.Items {
		for _, z := range zone.ZonesForItem(item, zones, categories) {
			kt := kitchen[z.PrinterID]
			if kt == nil {
				kt = &kitchenTarget{
					seenZones: make(map[string]bool),
					seenItems: make(map[string]bool),
				}
				kitchen[z.PrinterID] = kt
			}
			if !kt.seenZones[z.ID] {
				kt.seenZones[z.ID] = true
				kt.zoneNames = append(kt.zoneNames, z.Name)
			}
			if !kt.seenItems[item.ID] {
				kt.seenItems[item.ID] = true
				kt.items = append(kt.items, item)
			}
		}
	}

	copies := eff.KitchenTicketCopies
	if copies < 1 {
		copies = 1
	}

	for printerID, kt := range kitchen {
		sort.Strings(kt.zoneNames)

		target, ok := byID[printerID]
		if !ok || !target.IsActive {
			// A zone pointing at a removed or parked printer yields a
			// failed entry without affecting the other jobs.
			jobs["kitchen:"+printerID] = &job{
				printerID: printerID,
				zoneNames: kt.zoneNames,
				items:     kt.items,
				dangling:  true,
			}
			continue
		}

		ticket := RenderKitchenTicket(KitchenTicket{
			Order:     o,
			ZoneNames: kt.zoneNames,
			Items:     kt.items,
		})
		data := bytes.Repeat(ticket, copies)

		if existing, ok := jobs[printerID]; ok {
			// Printer serves both channels: one job, both tickets.
			existing.zoneNames = kt.zoneNames
			existing.data = append(existing.data, data...)
			continue
		}
		jobs[printerID] = &job{
			target:    target,
			printerID: printerID,
			zoneNames: kt.zoneNames,
			items:     kt.items,
			data:      data,
		}
	}

	return jobs
}

// run executes one job: serialize on the printer, honor cancellation
// before I/O, write with a single retry on failure.
func (e *Engine) run(ctx context.Context, j *job) Entry {
	entry := Entry{
		PrinterID:   j.printerID,
		PrinterName: j.target.Name,
		ItemCount:   len(j.items),
	}

	if j.dangling {
		entry.Status = StatusFailed
		entry.Error = ErrPrinterUnreachable.Error()
		e.logger.Warn("zone references unknown printer", "printer_id", j.printerID)
		return entry
	}

	lock := e.lockFor(j.printerID)
	lock.Lock()
	defer lock.Unlock()

	// Cancellation window closes once the transport write begins.
	if err := ctx.Err(); err != nil {
		entry.Status = StatusSkipped
		entry.Error = err.Error()
		return entry
	}

	transport, err := e.router.For(j.target)
	if err != nil {
		entry.Status = StatusFailed
		entry.Error = err.Error()
		return entry
	}

	start := time.Now()
	err = transport.Print(ctx, j.target, j.data)
	if err != nil {
		e.logger.Warn("print failed, retrying",
			"printer_id", j.printerID,
			"error", err,
		)
		err = transport.Print(ctx, j.target, j.data)
	}
	entry.Duration = time.Since(start)

	if err != nil {
		entry.Status = StatusFailed
		entry.Error = err.Error()
		e.logger.Error("print failed after retry",
			"printer_id", j.printerID,
			"error", err,
		)
	} else {
		entry.Status = StatusSent
	}
	return entry
}

// record persists the entry and emits telemetry. Failures here are
// logged only; history must never fail a dispatch.
func (e *Engine) record(orderID string, entry Entry) {
	if e.recorder != nil && entry.Status != StatusSkipped {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := e.recorder.Record(ctx, orderID, entry); err != nil {
			e.logger.Error("recording dispatch history failed",
				"order_id", orderID,
				"printer_id", entry.PrinterID,
				"error", err,
			)
		}
	}
	if e.telemetry != nil {
		e.telemetry.WriteDispatchMetric(entry.PrinterID, string(entry.Status), entry.ItemCount, entry.Duration)
	}
}

func (e *Engine) lockFor(printerID string) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()
	lock, ok := e.printerLocks[printerID]
	if !ok {
		lock = &sync.Mutex{}
		e.printerLocks[printerID] = lock
	}
	return lock
}
