// Package logging provides structured logging for tillprint-core.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured via the LoggingConfig in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting local API", "port", 8480)
//	logger.Error("printer unreachable", "printer_id", p.ID, "error", err)
//
// # Security
//
// Never log the JWT secret, bearer tokens, or backend API keys.
// Redact where a prefix is enough to correlate:
//
//	logger.Info("backend key rotated", "key_prefix", key[:8]+"...")
package logging
