package dispatch

import "time"

// Status of one per-printer print job.
type Status string

const (
	// StatusSent means the ticket reached the printer.
	StatusSent Status = "sent"

	// StatusFailed means the job failed after its retry.
	StatusFailed Status = "failed"

	// StatusSkipped means the dispatch was cancelled before the job
	// started any I/O. Skipped jobs are not persisted to history.
	StatusSkipped Status = "skipped"
)

// Entry is the outcome of one printer's job within a dispatch.
// A failure in one entry never affects any other entry.
type Entry struct {
	PrinterID   string        `json:"printer_id"`
	PrinterName string        `json:"printer_name"`
	Status      Status        `json:"status"`
	Error       string        `json:"error,omitempty"`
	ItemCount   int           `json:"item_count"`
	Duration    time.Duration `json:"duration_ms"`
}

// Report aggregates one dispatch: exactly one entry per distinct target
// printer. A zone that matched nothing is simply absent.
type Report struct {
	OrderID   string    `json:"order_id"`
	Entries   []Entry   `json:"entries"`
	StartedAt time.Time `json:"started_at"`
}

// Failed reports whether any entry failed.
func (r Report) Failed() bool {
	for _, e := range r.Entries {
		if e.Status == StatusFailed {
			return true
		}
	}
	return false
}
