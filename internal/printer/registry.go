package printer

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// ZoneGuard reports whether an active kitchen zone still references a
// printer. The registry consults it before deleting: removal is blocked
// while a reference exists, rather than cascading or leaving a dangling
// zone.
type ZoneGuard interface {
	ActiveZoneReferences(ctx context.Context, printerID string) (bool, error)
}

// Prober performs a reachability test against a printer without mutating
// any state. Implementations exist for network printers (TCP probe), direct
// serial USB, and the hardware agent bus.
type Prober interface {
	Probe(ctx context.Context, p *Printer) error
}

// Registry provides printer management with caching and thread safety.
// It wraps a Repository and adds an in-memory cache for fast lookups.
//
// Mutations (upsert, remove, discovery merges) are serialized through a
// single writer mutex so a discovery merge racing a manual edit cannot
// lose an update.
//
// All public methods are thread-safe.
type Registry struct {
	repo  Repository
	guard ZoneGuard
	probe Prober

	cache   map[string]*Printer // cached printers by ID
	cacheMu sync.RWMutex        // protects cache

	writeMu sync.Mutex // serializes all mutations

	logger Logger
}

// NewRegistry creates a new printer registry.
// The repository is used for persistence; the registry adds caching.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:   repo,
		cache:  make(map[string]*Printer),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// SetZoneGuard sets the guard consulted before printer removal.
// Without a guard, removal is unconditional.
func (r *Registry) SetZoneGuard(guard ZoneGuard) {
	r.guard = guard
}

// SetProber sets the connection tester used by TestConnection.
func (r *Registry) SetProber(probe Prober) {
	r.probe = probe
}

// RefreshCache reloads all printers from the repository into the cache.
// This should be called on application startup.
func (r *Registry) RefreshCache(ctx context.Context) error {
	printers, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading printers: %w", err)
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	r.cache = make(map[string]*Printer, len(printers))
	for i := range printers {
		p := printers[i]
		r.cache[p.ID] = p.Clone()
	}

	r.logger.Info("printer cache refreshed", "count", len(printers))
	return nil
}

// Get retrieves a printer by ID.
// Returns ErrNotFound if the printer does not exist.
// The returned printer is a copy; callers can safely modify it.
func (r *Registry) Get(ctx context.Context, id string) (*Printer, error) {
	r.cacheMu.RLock()
	cached, ok := r.cache[id]
	r.cacheMu.RUnlock()

	if ok {
		return cached.Clone(), nil
	}

	p, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cacheMu.Lock()
	r.cache[id] = p.Clone()
	r.cacheMu.Unlock()

	return p, nil
}

// List retrieves all printers.
// The returned printers are copies; callers can safely modify them.
func (r *Registry) List(ctx context.Context) ([]Printer, error) {
	r.cacheMu.RLock()
	if len(r.cache) > 0 {
		printers := make([]Printer, 0, len(r.cache))
		for _, p := range r.cache {
			printers = append(printers, *p.Clone())
		}
		r.cacheMu.RUnlock()
		return printers, nil
	}
	r.cacheMu.RUnlock()

	return r.repo.List(ctx)
}

// ListActive retrieves all printers with IsActive set.
func (r *Registry) ListActive(ctx context.Context) ([]Printer, error) {
	printers, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	active := printers[:0]
	for _, p := range printers {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active, nil
}

// Upsert creates or updates a printer.
// A printer with no ID is created; an existing ID is updated in place.
// The persisted printer (with generated ID and timestamps) is returned.
func (r *Registry) Upsert(ctx context.Context, p *Printer) (*Printer, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if p.ID == "" {
		p.ID = GenerateID()
		if err := r.repo.Create(ctx, p); err != nil {
			return nil, err
		}
		r.storeInCache(p)
		r.logger.Info("printer created", "id", p.ID, "name", p.Name, "kind", p.Kind)
		return p.Clone(), nil
	}

	if err := r.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	r.storeInCache(p)
	r.logger.Info("printer updated", "id", p.ID, "name", p.Name)
	return p.Clone(), nil
}

// Remove deletes a printer by ID.
//
// Removal is blocked with ErrInUse while an active kitchen zone references
// the printer. This is deliberate: cascading deactivation would silently
// stop tickets for that zone, and a dangling reference would surface later
// as a dispatch failure.
func (r *Registry) Remove(ctx context.Context, id string) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if r.guard != nil {
		referenced, err := r.guard.ActiveZoneReferences(ctx, id)
		if err != nil {
			return fmt.Errorf("checking zone references: %w", err)
		}
		if referenced {
			return ErrInUse
		}
	}

	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}

	r.cacheMu.Lock()
	delete(r.cache, id)
	r.cacheMu.Unlock()

	r.logger.Info("printer removed", "id", id)
	return nil
}

// MergeDiscovered merges USB discovery results into the registry.
//
// Each discovered device is keyed by (vendorID, productID): a new identity
// creates an inactive kitchen printer awaiting configuration, a known
// identity is a no-op. Re-running discovery is therefore idempotent and
// never produces duplicate entries.
//
// Returns the number of newly created printers.
func (r *Registry) MergeDiscovered(ctx context.Context, found []Discovered) (int, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	created := 0
	for _, d := range found {
		if d.VendorID == "" || d.ProductID == "" {
			r.logger.Warn("discovery result missing usb identity, skipped", "name", d.Name)
			continue
		}

		_, err := r.repo.GetByUSBIdentity(ctx, d.VendorID, d.ProductID)
		if err == nil {
			// Already known: merge is a no-op.
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return created, fmt.Errorf("checking usb identity %s:%s: %w", d.VendorID, d.ProductID, err)
		}

		name := d.Name
		if name == "" {
			name = fmt.Sprintf("USB printer %s:%s", d.VendorID, d.ProductID)
		}

		p := &Printer{
			ID:        GenerateID(),
			Name:      name,
			Kind:      KindUSB,
			Role:      RoleKitchen,
			VendorID:  d.VendorID,
			ProductID: d.ProductID,
			IsActive:  false, // activated explicitly once assigned to a zone
		}
		if err := r.repo.Create(ctx, p); err != nil {
			return created, fmt.Errorf("creating discovered printer: %w", err)
		}
		r.storeInCache(p)
		created++
		r.logger.Info("usb printer discovered", "id", p.ID, "vendor_id", d.VendorID, "product_id", d.ProductID)
	}

	return created, nil
}

// TestConnection performs a reachability probe against the printer.
// It never mutates registry state. The returned error wraps ErrUnreachable
// with a human-readable reason when the probe fails.
func (r *Registry) TestConnection(ctx context.Context, id string) error {
	p, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	if r.probe == nil {
		return fmt.Errorf("%w: no prober configured", ErrUnreachable)
	}

	if err := r.probe.Probe(ctx, p); err != nil {
		r.logger.Warn("printer connection test failed", "id", id, "error", err)
		return err
	}

	r.logger.Debug("printer connection test ok", "id", id)
	return nil
}

// Count returns the number of printers in the cache.
func (r *Registry) Count() int {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	return len(r.cache)
}

// storeInCache stores a clone of the printer in the cache.
func (r *Registry) storeInCache(p *Printer) {
	r.cacheMu.Lock()
	r.cache[p.ID] = p.Clone()
	r.cacheMu.Unlock()
}
