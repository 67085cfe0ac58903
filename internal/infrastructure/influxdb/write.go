package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteDispatchMetric records the outcome of one per-printer print job.
//
// This is the primary method for recording dispatch telemetry.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - printerID: The target printer
//   - status: Job outcome ("sent", "failed", "skipped")
//   - itemCount: Number of items on the ticket
//   - duration: Wall time from job start to transport completion
//
// Example:
//
//	client.WriteDispatchMetric("printer-grill", "sent", 3, 420*time.Millisecond)
func (c *Client) WriteDispatchMetric(printerID, status string, itemCount int, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"dispatch",
		map[string]string{
			"printer_id": printerID,
			"status":     status,
		},
		map[string]interface{}{
			"duration_ms": float64(duration.Milliseconds()),
			"item_count":  itemCount,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteConfigRefreshMetric records the outcome of a configuration refresh.
//
// Parameters:
//   - outcome: "live", "cached" or "failed"
//   - duration: Time the refresh took
func (c *Client) WriteConfigRefreshMetric(outcome string, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"config_refresh",
		map[string]string{
			"outcome": outcome,
		},
		map[string]interface{}{
			"duration_ms": float64(duration.Milliseconds()),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
