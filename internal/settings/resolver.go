package settings

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Logger defines the logging interface used by the Resolver.
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

// Fetcher retrieves a complete snapshot from the backend.
//
// Implementations must be all-or-nothing: either every resource (global
// settings, location overrides, registration, printers, zones, categories)
// was fetched and the snapshot is complete, or an error is returned and no
// snapshot at all. Version and FetchedAt are stamped by the Resolver.
type Fetcher interface {
	FetchSnapshot(ctx context.Context) (*Snapshot, error)
}

// staleAfter is the age past which a cached snapshot is flagged stale.
// Staleness is a UI hint, never a refusal to operate.
const staleAfter = 24 * time.Hour

// Resolver reconciles live backend configuration with the persisted
// snapshot cache and exposes the current snapshot and effective settings.
//
// The current snapshot is held behind an atomic pointer and replaced
// wholesale (read-copy-update): concurrent readers always observe a fully
// consistent snapshot, never a half-updated one.
//
// All public methods are thread-safe.
type Resolver struct {
	deviceID string
	fetcher  Fetcher
	cache    Cache

	current atomic.Pointer[Snapshot]

	// fromCache tracks whether current came from the cache (offline)
	// rather than a live fetch.
	fromCache atomic.Bool

	// refreshMu serializes refreshes; concurrent callers coalesce on the
	// single writer rather than racing fetches.
	refreshMu sync.Mutex

	// version is a monotonic counter for snapshot versions, seeded from
	// the cached snapshot at startup.
	version atomic.Int64

	// device-local overrides, kept locally and applied on top of every
	// snapshot. Guarded by overridesMu.
	overrides   Overrides
	overridesMu sync.RWMutex

	logger Logger
}

// NewResolver creates a resolver for the given terminal device.
func NewResolver(deviceID string, fetcher Fetcher, cache Cache) *Resolver {
	return &Resolver{
		deviceID: deviceID,
		fetcher:  fetcher,
		cache:    cache,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the resolver.
func (r *Resolver) SetLogger(logger Logger) {
	r.logger = logger
}

// SetDeviceOverrides replaces the device-local override layer.
// Overrides apply immediately to Effective() without a backend round-trip.
func (r *Resolver) SetDeviceOverrides(o Overrides) {
	r.overridesMu.Lock()
	r.overrides = o
	r.overridesMu.Unlock()
}

// DeviceOverrides returns the current device-local override layer.
func (r *Resolver) DeviceOverrides() Overrides {
	r.overridesMu.RLock()
	defer r.overridesMu.RUnlock()
	return r.overrides
}

// Start performs the initial load: a live refresh when the backend is
// reachable, otherwise the cached snapshot. Only a first run with neither
// returns an error (ErrNoSnapshot).
func (r *Resolver) Start(ctx context.Context) error {
	refreshErr := r.Refresh(ctx)
	if refreshErr == nil {
		return nil
	}
	r.logger.Warn("initial config fetch failed, trying cache", "error", refreshErr)

	snap, err := r.cache.Load(ctx, r.deviceID)
	if err != nil {
		return fmt.Errorf("loading cached snapshot: %w", err)
	}

	r.version.Store(snap.Version)
	r.current.Store(snap)
	r.fromCache.Store(true)
	r.logger.Info("serving cached configuration",
		"version", snap.Version,
		"fetched_at", snap.FetchedAt,
	)
	return nil
}

// Refresh fetches fresh configuration and atomically replaces the current
// snapshot. The replacement is all-or-nothing: any fetch failure keeps the
// previous snapshot intact and returns an error wrapping ErrConfigFetch.
//
// The cache is written only after the full fetch succeeded, never
// speculatively.
func (r *Resolver) Refresh(ctx context.Context) error {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	snap, err := r.fetcher.FetchSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfigFetch, err)
	}

	snap.Version = r.version.Add(1)
	snap.FetchedAt = time.Now().UTC()

	// Swap first so readers see fresh config even if persisting fails.
	r.current.Store(snap)
	r.fromCache.Store(false)

	if err := r.cache.Save(ctx, r.deviceID, snap); err != nil {
		// The in-memory snapshot is already live; a cache write failure
		// only degrades the next offline start.
		r.logger.Error("persisting snapshot failed", "error", err)
	}

	r.logger.Info("configuration refreshed",
		"version", snap.Version,
		"printers", len(snap.Printers),
		"zones", len(snap.Zones),
	)
	return nil
}

// Current returns the current snapshot and whether it came from the cache.
// Returns ErrNoSnapshot before the first successful Start/Refresh.
//
// The returned snapshot is shared and must be treated as immutable.
func (r *Resolver) Current() (*Snapshot, bool, error) {
	snap := r.current.Load()
	if snap == nil {
		return nil, false, ErrNoSnapshot
	}
	return snap, r.fromCache.Load(), nil
}

// Effective resolves the effective settings from the current snapshot,
// applying field-level precedence: device-local > location > tenant.
func (r *Resolver) Effective() (Effective, error) {
	snap, fromCache, err := r.Current()
	if err != nil {
		return Effective{}, err
	}

	eff := Resolve(snap.Global, snap.LocationOverrides, r.DeviceOverrides())
	eff.FromCache = fromCache
	eff.Version = snap.Version
	eff.FetchedAt = snap.FetchedAt
	return eff, nil
}

// Staleness returns ErrSnapshotStale when the current snapshot is from the
// cache and older than the staleness window, nil otherwise.
func (r *Resolver) Staleness(now time.Time) error {
	snap, fromCache, err := r.Current()
	if err != nil {
		return err
	}
	if fromCache && now.Sub(snap.FetchedAt) > staleAfter {
		return fmt.Errorf("%w: fetched %s", ErrSnapshotStale, snap.FetchedAt.Format(time.RFC3339))
	}
	return nil
}

// Run refreshes the configuration on the given interval until the context
// is cancelled. Refresh failures are logged and the previous snapshot
// stays in effect.
func (r *Resolver) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil {
				r.logger.Warn("periodic config refresh failed", "error", err)
				r.fromCache.Store(true)
			}
		}
	}
}
