// Package api provides the local HTTP control surface for tillprint-core.
//
// It exposes printer and kitchen zone management, resolved settings,
// order dispatch, and peripheral pairing to the till application running
// on the same machine.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tillworks/tillprint-core/internal/dispatch"
	"github.com/tillworks/tillprint-core/internal/infrastructure/config"
	"github.com/tillworks/tillprint-core/internal/infrastructure/logging"
	"github.com/tillworks/tillprint-core/internal/pairing"
	"github.com/tillworks/tillprint-core/internal/printer"
	"github.com/tillworks/tillprint-core/internal/settings"
	"github.com/tillworks/tillprint-core/internal/zone"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// SettingsSource exposes the resolved configuration to the API without
// binding it to a concrete resolver. Satisfied by *settings.Resolver.
type SettingsSource interface {
	Current() (*settings.Snapshot, bool, error)
	Effective() (settings.Effective, error)
	Refresh(ctx context.Context) error
	Staleness(now time.Time) error
}

// USBDiscoverer scans for attached USB printers. Implementations exist
// for the hardware agent bus and for direct serial enumeration.
type USBDiscoverer interface {
	DiscoverPrinters(ctx context.Context) ([]printer.Discovered, error)
}

// BackendWriter pushes terminal-side configuration changes up to the POS
// backend. Satisfied by *backend.Client.
//
// Every push is best effort: the local change is already committed when
// the push runs, and a failure is logged, not surfaced. The periodic
// snapshot refresh reconciles whatever the backend missed.
type BackendWriter interface {
	CreatePrinter(ctx context.Context, p printer.Printer) (printer.Printer, error)
	UpdatePrinter(ctx context.Context, p printer.Printer) (printer.Printer, error)
	DeletePrinter(ctx context.Context, id string) error
	CreateZone(ctx context.Context, z zone.KitchenZone) (zone.KitchenZone, error)
	UpdateZone(ctx context.Context, z zone.KitchenZone) (zone.KitchenZone, error)
	DeleteZone(ctx context.Context, id string) error
	UpdateLocationOverrides(ctx context.Context, o settings.Overrides) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.API
	Security config.Security
	Logger   *logging.Logger
	Printers *printer.Registry
	Zones    zone.Repository
	Settings SettingsSource
	Engine   *dispatch.Engine
	History  dispatch.Recorder
	Pairing  *pairing.Manager
	Discover USBDiscoverer // optional: /printers/discover returns 503 without it
	Backend  BackendWriter // optional: mutations stay local-only without it
	Version  string
}

// Server is the local HTTP control API for tillprint-core.
//
// It manages the HTTP listener, routes, and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg      config.API
	secCfg   config.Security
	logger   *logging.Logger
	printers *printer.Registry
	zones    zone.Repository
	settings SettingsSource
	engine   *dispatch.Engine
	history  dispatch.Recorder
	pairing  *pairing.Manager
	discover USBDiscoverer
	backend  BackendWriter
	version  string
	server   *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, registries, engine)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Printers == nil {
		return nil, fmt.Errorf("printer registry is required")
	}
	if deps.Zones == nil {
		return nil, fmt.Errorf("zone repository is required")
	}
	if deps.Settings == nil {
		return nil, fmt.Errorf("settings source is required")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("dispatch engine is required")
	}

	return &Server{
		cfg:      deps.Config,
		secCfg:   deps.Security,
		logger:   deps.Logger,
		printers: deps.Printers,
		zones:    deps.Zones,
		settings: deps.Settings,
		engine:   deps.Engine,
		history:  deps.History,
		pairing:  deps.Pairing,
		discover: deps.Discover,
		backend:  deps.Backend,
		version:  deps.Version,
	}, nil
}

// syncBackend runs one backend push when a writer is configured. The
// local change has already committed; a push failure only delays the
// backend copy until the next refresh cycle reconciles it.
func (s *Server) syncBackend(ctx context.Context, op string, push func(ctx context.Context) error) {
	if s.backend == nil {
		return
	}
	if err := push(ctx); err != nil {
		s.logger.Warn("backend sync failed, change applied locally only",
			"op", op,
			"error", err,
		)
	}
}

// Start begins listening for HTTP connections.
//
// It builds the router and launches the HTTP listener in a background
// goroutine. The server can be stopped with Close().
//
// Parameters:
//   - ctx: Context for cancellation (not used for listener lifetime)
//
// Returns:
//   - error: If the server fails to start (port in use, etc.)
func (s *Server) Start(_ context.Context) error {
	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server started", "address", s.server.Addr)
	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
