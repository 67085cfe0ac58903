// tillprintd - POS ticket printing terminal daemon
//
// This is the main entry point for tillprint-core. The daemon keeps a
// point-of-sale terminal printing through backend outages: configuration
// is fetched from the POS backend and cached locally, kitchen zone
// routing and printer dispatch run entirely on this machine, and the
// till application drives everything over a local HTTP API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tillworks/tillprint-core/migrations"

	"github.com/tillworks/tillprint-core/internal/api"
	"github.com/tillworks/tillprint-core/internal/backend"
	"github.com/tillworks/tillprint-core/internal/dispatch"
	"github.com/tillworks/tillprint-core/internal/hardware"
	"github.com/tillworks/tillprint-core/internal/hardware/serialusb"
	"github.com/tillworks/tillprint-core/internal/infrastructure/config"
	"github.com/tillworks/tillprint-core/internal/infrastructure/database"
	"github.com/tillworks/tillprint-core/internal/infrastructure/influxdb"
	"github.com/tillworks/tillprint-core/internal/infrastructure/logging"
	"github.com/tillworks/tillprint-core/internal/infrastructure/mqtt"
	"github.com/tillworks/tillprint-core/internal/pairing"
	"github.com/tillworks/tillprint-core/internal/printer"
	"github.com/tillworks/tillprint-core/internal/settings"
	"github.com/tillworks/tillprint-core/internal/zone"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting tillprint-core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Initialise printer registry and zone repository
	printerRepo := printer.NewSQLiteRepository(db.DB)
	printerRegistry := printer.NewRegistry(printerRepo)
	printerRegistry.SetLogger(log)
	if refreshErr := printerRegistry.RefreshCache(ctx); refreshErr != nil {
		return fmt.Errorf("loading printer registry: %w", refreshErr)
	}
	zoneRepo := zone.NewSQLiteRepository(db.DB)
	printerRegistry.SetZoneGuard(zoneRepo)
	log.Info("printer registry initialised", "printers", printerRegistry.Count())

	// Backend client + settings resolver. Start() falls back to the cached
	// snapshot when the backend is unreachable; only a first run with no
	// cache at all is fatal.
	backendClient := backend.NewClient(backend.Config{
		BaseURL:    cfg.Backend.BaseURL,
		APIKey:     cfg.Backend.APIKey,
		LocationID: cfg.Terminal.StoreLocationID,
		DeviceID:   cfg.Terminal.DeviceID,
		Timeout:    cfg.BackendTimeout(),
	})
	resolver := settings.NewResolver(cfg.Terminal.DeviceID, backendClient, settings.NewSQLiteCache(db.DB))
	resolver.SetLogger(log)
	resolver.SetDeviceOverrides(deviceOverrides(cfg.Terminal.Overrides))
	if startErr := resolver.Start(ctx); startErr != nil {
		return fmt.Errorf("resolving configuration: %w", startErr)
	}
	go resolver.Run(ctx, cfg.RefreshInterval())
	log.Info("settings resolver started", "refresh_interval", cfg.RefreshInterval())

	// Announce this terminal to the backend. Registration is advisory;
	// an unreachable backend must not block startup.
	if regErr := backendClient.RegisterTerminal(ctx, settings.TerminalRegistration{
		DeviceID:        cfg.Terminal.DeviceID,
		Nickname:        cfg.Terminal.Nickname,
		StoreLocationID: cfg.Terminal.StoreLocationID,
	}); regErr != nil {
		log.Warn("terminal registration failed", "error", regErr)
	}

	// Connect to the hardware agent bus (optional)
	var hardwareBus *hardware.Bus
	if cfg.Hardware.Agent.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.Hardware.Agent)
		if mqttErr != nil {
			return fmt.Errorf("connecting to hardware agent broker: %w", mqttErr)
		}
		defer func() {
			log.Info("disconnecting from hardware agent broker")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("hardware agent broker reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("hardware agent broker disconnected", "error", err)
		})
		log.Info("hardware agent broker connected",
			"broker", fmt.Sprintf("%s:%d", cfg.Hardware.Agent.Host, cfg.Hardware.Agent.Port),
			"client_id", cfg.Hardware.Agent.ClientID,
		)

		hardwareBus = hardware.NewBus(mqttClient, byte(cfg.Hardware.Agent.QoS), cfg.AgentRequestTimeout())
		hardwareBus.SetLogger(log)
	} else {
		log.Info("hardware agent disabled, driving USB printers over serial")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Dispatch engine
	serialPort := serialusb.NewTransport(cfg.Hardware.SerialBaud, cfg.PrintTimeout())
	router := &dispatch.Router{
		Network: &dispatch.NetworkTransport{Timeout: cfg.PrintTimeout()},
		Serial:  &dispatch.SerialTransport{Port: serialPort},
	}
	if hardwareBus != nil {
		router.Agent = &dispatch.AgentTransport{Bus: hardwareBus}
	}
	recorder := dispatch.NewSQLiteRecorder(db.DB)
	engine := dispatch.NewEngine(router, recorder)
	engine.SetLogger(log)
	engine.SetCatalog(printerRegistry, zoneRepo)
	if influxClient != nil {
		engine.SetTelemetry(influxClient)
	}

	// Periodic history pruning
	go pruneHistoryLoop(ctx, recorder, cfg.Dispatch.HistoryRetentionDays, log)

	// Connection tester for the API's printer test endpoint
	printerRegistry.SetProber(&combinedProber{
		network: &printer.NetworkProber{Timeout: cfg.ProbeTimeout()},
		bus:     hardwareBus,
	})

	// Pairing machines
	pairingStore := pairing.NewSQLiteStore(db.DB)
	machines := []*pairing.Machine{
		newPrinterPairing(cfg, pairingStore, hardwareBus, log),
	}
	if hardwareBus != nil {
		reader := pairing.NewMachine(pairing.ClassReader, cfg.Terminal.DeviceID, pairingStore,
			&pairing.ReaderDiscoverer{Bus: hardwareBus},
			&pairing.ReaderConnector{Bus: hardwareBus},
		)
		reader.SetLogger(log)
		machines = append(machines, reader)
	}
	pairingManager := pairing.NewManager(machines...)
	if restoreErr := pairingManager.RestoreAll(ctx); restoreErr != nil {
		return fmt.Errorf("restoring pairings: %w", restoreErr)
	}

	// API server
	apiServer, err := api.New(api.Deps{
		Config:   cfg.API,
		Security: cfg.Security,
		Logger:   log,
		Printers: printerRegistry,
		Zones:    zoneRepo,
		Settings: resolver,
		Engine:   engine,
		History:  recorder,
		Pairing:  pairingManager,
		Discover: usbDiscoverer(hardwareBus),
		Backend:  backendClient,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify infrastructure is healthy
	if err := healthCheck(ctx, db, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("tillprint-core stopped")
	return nil
}

// deviceOverrides maps the config file's terminal override section onto
// the settings override layer.
func deviceOverrides(o config.TerminalOverrides) settings.Overrides {
	return settings.Overrides{
		AutoPrintKitchenTickets: o.AutoPrintKitchenTickets,
		AutoPrintReceipts:       o.AutoPrintReceipts,
		EnableNotifications:     o.EnableNotifications,
		KitchenTicketCopies:     o.KitchenTicketCopies,
		ReceiptFooter:           o.ReceiptFooter,
	}
}

// getConfigPath returns the configuration file path.
// Uses TILLPRINT_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("TILLPRINT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	// The hardware agent broker is checked on Connect(); later drops are
	// handled by the client's automatic reconnect, not treated as fatal.

	return nil
}

// pruneHistoryLoop removes dispatch history older than the retention window
// once a day.
func pruneHistoryLoop(ctx context.Context, recorder dispatch.Recorder, retentionDays int, log *logging.Logger) {
	if retentionDays <= 0 {
		return
	}

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().AddDate(0, 0, -retentionDays)
			pruned, err := recorder.Prune(ctx, cutoff)
			if err != nil {
				log.Error("pruning dispatch history failed", "error", err)
				continue
			}
			if pruned > 0 {
				log.Info("dispatch history pruned", "rows", pruned, "cutoff", cutoff)
			}
		}
	}
}

// newPrinterPairing builds the printer-class pairing machine, using the
// hardware agent when available and direct serial enumeration otherwise.
func newPrinterPairing(cfg *config.Config, store pairing.Store, bus *hardware.Bus, log *logging.Logger) *pairing.Machine {
	var (
		disc pairing.Discoverer
		conn pairing.Connector
	)
	if bus != nil {
		disc = &pairing.BusDiscoverer{Bus: bus}
		conn = &pairing.BusConnector{Bus: bus}
	} else {
		serial := &serialPairing{}
		disc = serial
		conn = serial
	}

	m := pairing.NewMachine(pairing.ClassPrinter, cfg.Terminal.DeviceID, store, disc, conn)
	m.SetLogger(log)
	return m
}

// serialPairing discovers and verifies USB printers by enumerating serial
// ports directly, for terminals running without a hardware agent.
type serialPairing struct{}

func (s *serialPairing) Discover(_ context.Context) ([]pairing.Candidate, error) {
	devices, err := serialusb.Discover()
	if err != nil {
		return nil, err
	}

	candidates := make([]pairing.Candidate, 0, len(devices))
	for _, d := range devices {
		candidates = append(candidates, pairing.Candidate{
			ID:        d.VendorID + ":" + d.ProductID,
			Name:      d.Name,
			VendorID:  d.VendorID,
			ProductID: d.ProductID,
		})
	}
	return candidates, nil
}

func (s *serialPairing) Connect(_ context.Context, c pairing.Candidate) error {
	if _, err := serialusb.PortForIdentity(c.VendorID, c.ProductID); err != nil {
		return fmt.Errorf("%w: %v", pairing.ErrPairingRejected, err)
	}
	return nil
}

// usbDiscoverer returns the discovery source for the API's
// /printers/discover endpoint: the agent when one is configured, direct
// serial enumeration otherwise.
func usbDiscoverer(bus *hardware.Bus) api.USBDiscoverer {
	if bus != nil {
		return &busDiscoveryAdapter{bus: bus}
	}
	return &serialDiscoveryAdapter{}
}

// busDiscoveryAdapter adapts the hardware agent bus to the API's
// USBDiscoverer interface.
type busDiscoveryAdapter struct {
	bus *hardware.Bus
}

func (a *busDiscoveryAdapter) DiscoverPrinters(ctx context.Context) ([]printer.Discovered, error) {
	found, err := a.bus.DiscoverPrinters(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]printer.Discovered, 0, len(found))
	for _, p := range found {
		result = append(result, printer.Discovered{
			Name:      p.Name,
			VendorID:  p.VendorID,
			ProductID: p.ProductID,
		})
	}
	return result, nil
}

// serialDiscoveryAdapter enumerates USB printers over serial for terminals
// without a hardware agent.
type serialDiscoveryAdapter struct{}

func (a *serialDiscoveryAdapter) DiscoverPrinters(_ context.Context) ([]printer.Discovered, error) {
	devices, err := serialusb.Discover()
	if err != nil {
		return nil, err
	}

	result := make([]printer.Discovered, 0, len(devices))
	for _, d := range devices {
		result = append(result, printer.Discovered{
			Name:      d.Name,
			VendorID:  d.VendorID,
			ProductID: d.ProductID,
		})
	}
	return result, nil
}

// combinedProber routes connection tests by printer kind: network printers
// get a TCP probe, USB printers are checked for presence via the agent or
// the serial enumerator. Nothing is ever written to the device.
type combinedProber struct {
	network *printer.NetworkProber
	bus     *hardware.Bus
}

func (cp *combinedProber) Probe(ctx context.Context, p *printer.Printer) error {
	if p.Kind == printer.KindNetwork {
		return cp.network.Probe(ctx, p)
	}

	if cp.bus != nil {
		found, err := cp.bus.DiscoverPrinters(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", printer.ErrUnreachable, err)
		}
		for _, d := range found {
			if d.VendorID == p.VendorID && d.ProductID == p.ProductID {
				return nil
			}
		}
		return fmt.Errorf("%w: %s not reported by hardware agent", printer.ErrUnreachable, p.USBKey())
	}

	if _, err := serialusb.PortForIdentity(p.VendorID, p.ProductID); err != nil {
		return fmt.Errorf("%w: %v", printer.ErrUnreachable, err)
	}
	return nil
}
