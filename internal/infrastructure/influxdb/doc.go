// Package influxdb provides InfluxDB connectivity for dispatch telemetry.
//
// It wraps the official influxdb-client-go v2 library with patterns for
// connection management, metric writing, and health monitoring.
//
// # Purpose
//
// This package handles time-series data storage for:
//   - Per-printer dispatch outcomes (latency, item counts, failures)
//   - Configuration refresh outcomes
//
// Telemetry is strictly optional: when disabled in config, the daemon runs
// without it and callers hold a nil client.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteDispatchMetric("printer-grill", "sent", 3, 420*time.Millisecond)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
package influxdb
