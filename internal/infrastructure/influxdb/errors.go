package influxdb

import "errors"

// Sentinel errors for the dispatch telemetry store.
//
// Checked with errors.Is(); write failures never surface here because the
// batched write API reports them on its async error channel.
var (
	// ErrNotConnected indicates the client is not connected to InfluxDB.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled indicates telemetry is disabled in config. Most
	// terminals run without it.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
