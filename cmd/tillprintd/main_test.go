package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	originalEnv := os.Getenv("TILLPRINT_CONFIG")
	defer os.Setenv("TILLPRINT_CONFIG", originalEnv)

	os.Setenv("TILLPRINT_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingDeviceID verifies run fails config validation when the
// terminal identity is missing.
func TestRun_MissingDeviceID(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
terminal:
  device_id: ""
  store_location_id: loc-test

database:
  path: "` + filepath.Join(tmpDir, "test.db") + `"
  wal_mode: true
  busy_timeout: 5

backend:
  base_url: "http://127.0.0.1:19999"
  api_key: "test-key"

logging:
  level: info
  format: text
  output: stdout

api:
  host: "127.0.0.1"
  port: 9155
  timeouts:
    read: 30
    write: 60
    idle: 120

security:
  jwt:
    secret: "test-secret-at-least-32-characters-long"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalEnv := os.Getenv("TILLPRINT_CONFIG")
	defer os.Setenv("TILLPRINT_CONFIG", originalEnv)
	os.Setenv("TILLPRINT_CONFIG", configPath)
	// The device ID override would mask the empty value under test.
	originalDevice := os.Getenv("TILLPRINT_TERMINAL_DEVICE_ID")
	defer os.Setenv("TILLPRINT_TERMINAL_DEVICE_ID", originalDevice)
	os.Unsetenv("TILLPRINT_TERMINAL_DEVICE_ID")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with empty device_id")
	}
	if !strings.Contains(err.Error(), "device_id") {
		t.Errorf("error should mention device_id, got: %v", err)
	}
}

// TestRun_UnreachableBackendNoCache verifies that a first run (empty cache)
// against an unreachable backend fails to start rather than dispatching with
// no configuration.
func TestRun_UnreachableBackendNoCache(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")
	dbPath := filepath.Join(tmpDir, "test.db")

	configContent := `
terminal:
  device_id: till-test-01
  store_location_id: loc-test

database:
  path: "` + dbPath + `"
  wal_mode: true
  busy_timeout: 5

backend:
  base_url: "http://127.0.0.1:19999"
  api_key: "test-key"
  timeout_seconds: 1

logging:
  level: info
  format: text
  output: stdout

api:
  host: "127.0.0.1"
  port: 9156
  timeouts:
    read: 30
    write: 60
    idle: 120

security:
  jwt:
    secret: "test-secret-at-least-32-characters-long"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalEnv := os.Getenv("TILLPRINT_CONFIG")
	defer os.Setenv("TILLPRINT_CONFIG", originalEnv)
	os.Setenv("TILLPRINT_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail when the backend is down and no snapshot is cached")
	}
	if !strings.Contains(err.Error(), "resolving configuration") {
		t.Errorf("error should come from the settings resolver, got: %v", err)
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	originalEnv := os.Getenv("TILLPRINT_CONFIG")
	defer os.Setenv("TILLPRINT_CONFIG", originalEnv)

	os.Unsetenv("TILLPRINT_CONFIG")

	path := getConfigPath()
	if path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	originalEnv := os.Getenv("TILLPRINT_CONFIG")
	defer os.Setenv("TILLPRINT_CONFIG", originalEnv)

	expected := "/custom/path/config.yaml"
	os.Setenv("TILLPRINT_CONFIG", expected)

	path := getConfigPath()
	if path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}
