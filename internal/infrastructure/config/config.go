package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for tillprint-core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Terminal Terminal       `yaml:"terminal"`
	Database Database       `yaml:"database"`
	Backend  Backend        `yaml:"backend"`
	Hardware Hardware       `yaml:"hardware"`
	API      API            `yaml:"api"`
	InfluxDB InfluxDB       `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Security Security       `yaml:"security"`
}

// Terminal identifies this point-of-sale terminal.
type Terminal struct {
	// DeviceID is the stable identity of this terminal. It keys the local
	// snapshot cache and the backend terminal registration.
	DeviceID string `yaml:"device_id"`

	// Nickname is the human-assigned terminal name shown in the back office.
	Nickname string `yaml:"nickname"`

	// StoreLocationID scopes backend reads (printers, zones, overrides).
	StoreLocationID string `yaml:"store_location_id"`

	// Overrides is the device-local settings layer, applied on top of
	// the backend's location and tenant layers. Fields left unset
	// inherit from below.
	Overrides TerminalOverrides `yaml:"overrides"`
}

// TerminalOverrides mirrors the sparse settings override shape: pointer
// fields keep "not set" distinct from an explicit false/zero.
type TerminalOverrides struct {
	AutoPrintKitchenTickets *bool   `yaml:"auto_print_kitchen_tickets"`
	AutoPrintReceipts       *bool   `yaml:"auto_print_receipts"`
	EnableNotifications     *bool   `yaml:"enable_notifications"`
	KitchenTicketCopies     *int    `yaml:"kitchen_ticket_copies"`
	ReceiptFooter           *string `yaml:"receipt_footer"`
}

// Database contains SQLite settings for the local state store.
type Database struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// Backend contains settings for the remote POS backend API.
type Backend struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`

	// TimeoutSeconds bounds each backend request. A slow backend must never
	// stall dispatch; the resolver falls back to the cached snapshot instead.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// RefreshIntervalSeconds is how often the resolver re-fetches configuration.
	RefreshIntervalSeconds int `yaml:"refresh_interval_seconds"`
}

// Hardware contains settings for reaching printer hardware.
type Hardware struct {
	// Agent configures the MQTT hardware agent bus. When disabled, USB
	// printers are driven directly over serial.
	Agent AgentConfig `yaml:"agent"`

	// SerialBaud is the baud rate for direct USB (serial) printer writes.
	SerialBaud int `yaml:"serial_baud"`

	// ProbeTimeoutSeconds bounds network printer reachability probes.
	ProbeTimeoutSeconds int `yaml:"probe_timeout_seconds"`
}

// AgentConfig contains MQTT broker settings for the hardware agent bus.
type AgentConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      int    `yaml:"qos"`

	// RequestTimeoutSeconds bounds each command round-trip on the bus.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
}

// API contains local control API server settings.
type API struct {
	Host     string      `yaml:"host"`
	Port     int         `yaml:"port"`
	Timeouts APITimeouts `yaml:"timeouts"`
	CORS     CORSConfig  `yaml:"cors"`
}

// APITimeouts contains HTTP timeout settings in seconds.
type APITimeouts struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// InfluxDB contains dispatch telemetry settings.
type InfluxDB struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// DispatchConfig contains print dispatch settings.
type DispatchConfig struct {
	// PrintTimeoutSeconds bounds a single ticket write to one printer.
	PrintTimeoutSeconds int `yaml:"print_timeout_seconds"`

	// HistoryRetentionDays is how long dispatch history rows are kept.
	HistoryRetentionDays int `yaml:"history_retention_days"`
}

// Security contains local API authentication settings.
type Security struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains bearer token verification settings for the local API.
// Tokens are issued by the backend and verified here with a shared secret.
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: TILLPRINT_SECTION_KEY
// For example: TILLPRINT_DATABASE_PATH, TILLPRINT_BACKEND_API_KEY
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Database: Database{
			Path:        "./data/tillprint.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Backend: Backend{
			TimeoutSeconds:         10,
			RefreshIntervalSeconds: 300,
		},
		Hardware: Hardware{
			Agent: AgentConfig{
				Host:                  "localhost",
				Port:                  1883,
				ClientID:              "tillprint-core",
				QoS:                   1,
				RequestTimeoutSeconds: 10,
			},
			SerialBaud:          19200,
			ProbeTimeoutSeconds: 3,
		},
		API: API{
			Host: "127.0.0.1",
			Port: 8480,
			Timeouts: APITimeouts{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Dispatch: DispatchConfig{
			PrintTimeoutSeconds:  15,
			HistoryRetentionDays: 30,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: TILLPRINT_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Terminal
	if v := os.Getenv("TILLPRINT_TERMINAL_DEVICE_ID"); v != "" {
		cfg.Terminal.DeviceID = v
	}

	// Database
	if v := os.Getenv("TILLPRINT_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// Backend
	if v := os.Getenv("TILLPRINT_BACKEND_BASE_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("TILLPRINT_BACKEND_API_KEY"); v != "" {
		cfg.Backend.APIKey = v
	}

	// Hardware agent
	if v := os.Getenv("TILLPRINT_AGENT_HOST"); v != "" {
		cfg.Hardware.Agent.Host = v
	}
	if v := os.Getenv("TILLPRINT_AGENT_USERNAME"); v != "" {
		cfg.Hardware.Agent.Username = v
	}
	if v := os.Getenv("TILLPRINT_AGENT_PASSWORD"); v != "" {
		cfg.Hardware.Agent.Password = v
	}

	// InfluxDB
	if v := os.Getenv("TILLPRINT_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Security - JWT secret (always override in production)
	if v := os.Getenv("TILLPRINT_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Terminal.DeviceID == "" {
		errs = append(errs, "terminal.device_id is required")
	}
	if c.Terminal.StoreLocationID == "" {
		errs = append(errs, "terminal.store_location_id is required")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.Backend.BaseURL == "" {
		errs = append(errs, "backend.base_url is required")
	}

	if c.Hardware.Agent.QoS < 0 || c.Hardware.Agent.QoS > 2 {
		errs = append(errs, "hardware.agent.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// JWT secret guards the only surface that can mutate printer and zone
	// configuration on this terminal, so it is mandatory.
	const minJWTSecretLength = 32
	if c.Security.JWT.Secret == "" {
		errs = append(errs, "security.jwt.secret is required (set TILLPRINT_JWT_SECRET environment variable)")
	} else if len(c.Security.JWT.Secret) < minJWTSecretLength {
		errs = append(errs, "security.jwt.secret must be at least 32 characters")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// BackendTimeout returns the backend request timeout as a Duration.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// RefreshInterval returns the configuration refresh interval as a Duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Backend.RefreshIntervalSeconds) * time.Second
}

// ProbeTimeout returns the network printer probe timeout as a Duration.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Hardware.ProbeTimeoutSeconds) * time.Second
}

// AgentRequestTimeout returns the hardware agent round-trip timeout as a Duration.
func (c *Config) AgentRequestTimeout() time.Duration {
	return time.Duration(c.Hardware.Agent.RequestTimeoutSeconds) * time.Second
}

// PrintTimeout returns the per-ticket print timeout as a Duration.
func (c *Config) PrintTimeout() time.Duration {
	return time.Duration(c.Dispatch.PrintTimeoutSeconds) * time.Second
}

// ReadTimeout returns the API read timeout as a Duration.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// WriteTimeout returns the API write timeout as a Duration.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// IdleTimeout returns the API idle timeout as a Duration.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
