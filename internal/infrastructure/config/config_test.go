package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// validJWTSecret meets the 32-character minimum requirement.
const validJWTSecret = "test-secret-key-at-least-32-chars!"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
terminal:
  device_id: "term-001"
  nickname: "Front Counter"
  store_location_id: "loc-001"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
backend:
  base_url: "https://pos.example.com/api"
  timeout_seconds: 10
hardware:
  agent:
    enabled: true
    host: "localhost"
    port: 1883
    client_id: "test-client"
    qos: 1
api:
  host: "127.0.0.1"
  port: 8480
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Terminal.DeviceID != "term-001" {
		t.Errorf("Terminal.DeviceID = %q, want %q", cfg.Terminal.DeviceID, "term-001")
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if cfg.Backend.BaseURL != "https://pos.example.com/api" {
		t.Errorf("Backend.BaseURL = %q, want %q", cfg.Backend.BaseURL, "https://pos.example.com/api")
	}
	if cfg.Hardware.Agent.Host != "localhost" {
		t.Errorf("Hardware.Agent.Host = %q, want %q", cfg.Hardware.Agent.Host, "localhost")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	// device_id missing
	content := `
terminal:
  store_location_id: "loc-001"
database:
  path: "/tmp/test.db"
backend:
  base_url: "https://pos.example.com/api"
api:
  port: 8480
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Error("Load() expected validation error for empty terminal.device_id, got nil")
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	content := `
terminal:
  device_id: "term-001"
  store_location_id: "loc-001"
backend:
  base_url: "https://pos.example.com/api"
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Port != 8480 {
		t.Errorf("API.Port default = %d, want 8480", cfg.API.Port)
	}
	if !cfg.Database.WALMode {
		t.Error("Database.WALMode default = false, want true")
	}
	if cfg.PrintTimeout() != 15*time.Second {
		t.Errorf("PrintTimeout() = %v, want 15s", cfg.PrintTimeout())
	}
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Terminal: Terminal{DeviceID: "term-001", StoreLocationID: "loc-001"},
			Database: Database{Path: "/data/tillprint.db"},
			Backend:  Backend{BaseURL: "https://pos.example.com/api"},
			Hardware: Hardware{Agent: AgentConfig{QoS: 1}},
			API:      API{Port: 8480},
			Security: Security{JWT: JWTConfig{Secret: validJWTSecret}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing device id",
			mutate:  func(c *Config) { c.Terminal.DeviceID = "" },
			wantErr: true,
		},
		{
			name:    "missing store location",
			mutate:  func(c *Config) { c.Terminal.StoreLocationID = "" },
			wantErr: true,
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "missing backend url",
			mutate:  func(c *Config) { c.Backend.BaseURL = "" },
			wantErr: true,
		},
		{
			name:    "invalid qos",
			mutate:  func(c *Config) { c.Hardware.Agent.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "invalid api port",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: true,
		},
		{
			name:    "missing jwt secret",
			mutate:  func(c *Config) { c.Security.JWT.Secret = "" },
			wantErr: true,
		},
		{
			name:    "short jwt secret",
			mutate:  func(c *Config) { c.Security.JWT.Secret = "too-short" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("TILLPRINT_DATABASE_PATH", "/override/till.db")
	t.Setenv("TILLPRINT_BACKEND_API_KEY", "env-key")

	cfg := defaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Database.Path != "/override/till.db" {
		t.Errorf("Database.Path = %q, want env override", cfg.Database.Path)
	}
	if cfg.Backend.APIKey != "env-key" {
		t.Errorf("Backend.APIKey = %q, want env override", cfg.Backend.APIKey)
	}
}

func TestLoad_TerminalOverrides(t *testing.T) {
	content := `
terminal:
  device_id: "term-002"
  store_location_id: "loc-001"
  overrides:
    auto_print_receipts: false
    kitchen_ticket_copies: 2
    receipt_footer: "Station 4"
database:
  path: "/tmp/test.db"
backend:
  base_url: "https://pos.example.com/api"
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	ov := cfg.Terminal.Overrides
	if ov.AutoPrintReceipts == nil || *ov.AutoPrintReceipts {
		t.Errorf("AutoPrintReceipts = %v, want pointer to false", ov.AutoPrintReceipts)
	}
	if ov.KitchenTicketCopies == nil || *ov.KitchenTicketCopies != 2 {
		t.Errorf("KitchenTicketCopies = %v, want pointer to 2", ov.KitchenTicketCopies)
	}
	if ov.ReceiptFooter == nil || *ov.ReceiptFooter != "Station 4" {
		t.Errorf("ReceiptFooter = %v, want pointer to %q", ov.ReceiptFooter, "Station 4")
	}
	// Keys absent from the file must stay nil so they do not shadow
	// the location layer.
	if ov.AutoPrintKitchenTickets != nil {
		t.Errorf("AutoPrintKitchenTickets = %v, want nil", ov.AutoPrintKitchenTickets)
	}
}
