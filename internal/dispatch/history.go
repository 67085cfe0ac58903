package dispatch

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Recorder persists dispatch outcomes. Skipped entries are not recorded;
// history answers "what was actually attempted on a printer".
type Recorder interface {
	// Record persists one sent or failed entry for an order.
	Record(ctx context.Context, orderID string, e Entry) error

	// ListByOrder retrieves all recorded entries for one order, newest first.
	ListByOrder(ctx context.Context, orderID string) ([]HistoryEntry, error)

	// Prune removes entries older than the cutoff and returns the count.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// HistoryEntry is one persisted dispatch outcome.
type HistoryEntry struct {
	ID        string        `json:"id"`
	OrderID   string        `json:"order_id"`
	PrinterID string        `json:"printer_id"`
	Status    Status        `json:"status"`
	Error     string        `json:"error,omitempty"`
	ItemCount int           `json:"item_count"`
	Duration  time.Duration `json:"duration_ms"`
	CreatedAt time.Time     `json:"created_at"`
}

// SQLiteRecorder implements Recorder using SQLite.
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder creates a new SQLite-backed recorder.
func NewSQLiteRecorder(db *sql.DB) *SQLiteRecorder {
	return &SQLiteRecorder{db: db}
}

const historyColumns = `id, order_id, printer_id, status, error, item_count, duration_ms, created_at`

// Record persists one dispatch entry.
func (r *SQLiteRecorder) Record(ctx context.Context, orderID string, e Entry) error {
	if e.Status == StatusSkipped {
		return nil
	}

	query := `INSERT INTO dispatch_history (` + historyColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		uuid.NewString(),
		orderID,
		e.PrinterID,
		string(e.Status),
		nullString(e.Error),
		e.ItemCount,
		e.Duration.Milliseconds(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting dispatch entry: %w", err)
	}
	return nil
}

// ListByOrder retrieves all recorded entries for one order.
func (r *SQLiteRecorder) ListByOrder(ctx context.Context, orderID string) ([]HistoryEntry, error) {
	query := `SELECT ` + historyColumns + ` FROM dispatch_history
		WHERE order_id = ? ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying dispatch history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var (
			h          HistoryEntry
			status     string
			errText    sql.NullString
			durationMs int64
			createdAt  string
		)
		err := rows.Scan(
			&h.ID, &h.OrderID, &h.PrinterID, &status,
			&errText, &h.ItemCount, &durationMs, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning dispatch entry: %w", err)
		}
		h.Status = Status(status)
		h.Error = errText.String
		h.Duration = time.Duration(durationMs) * time.Millisecond
		h.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // Format is controlled
		entries = append(entries, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dispatch history: %w", err)
	}
	return entries, nil
}

// Prune removes entries older than the cutoff.
func (r *SQLiteRecorder) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM dispatch_history WHERE created_at < ?`,
		cutoff.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("pruning dispatch history: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking prune result: %w", err)
	}
	return affected, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
