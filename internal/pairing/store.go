package pairing

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Store persists pairing rows keyed by device identity and class.
type Store interface {
	// Save writes or replaces the pairing row for (deviceID, class).
	Save(ctx context.Context, p Pairing) error

	// Load retrieves the pairing row for (deviceID, class).
	// Returns ErrNotPaired when no row exists.
	Load(ctx context.Context, deviceID string, class Class) (Pairing, error)

	// Clear removes the pairing row for (deviceID, class). Clearing a
	// row that does not exist is not an error.
	Clear(ctx context.Context, deviceID string, class Class) error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed pairing store.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save writes or replaces the pairing row for (deviceID, class).
func (s *SQLiteStore) Save(ctx context.Context, p Pairing) error {
	query := `INSERT INTO pairing_store (device_id, device_class, paired_id, paired_name, paired_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(device_id, device_class) DO UPDATE SET
			paired_id = excluded.paired_id,
			paired_name = excluded.paired_name,
			paired_at = excluded.paired_at`

	_, err := s.db.ExecContext(ctx, query,
		p.DeviceID,
		string(p.Class),
		p.PairedID,
		p.Name,
		p.PairedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving pairing: %w", err)
	}
	return nil
}

// Load retrieves the pairing row for (deviceID, class).
func (s *SQLiteStore) Load(ctx context.Context, deviceID string, class Class) (Pairing, error) {
	query := `SELECT device_id, device_class, paired_id, paired_name, paired_at
		FROM pairing_store WHERE device_id = ? AND device_class = ?`

	var (
		p        Pairing
		cls      string
		pairedAt string
	)
	err := s.db.QueryRowContext(ctx, query, deviceID, string(class)).Scan(
		&p.DeviceID, &cls, &p.PairedID, &p.Name, &pairedAt,
	)
	if err == sql.ErrNoRows {
		return Pairing{}, ErrNotPaired
	}
	if err != nil {
		return Pairing{}, fmt.Errorf("loading pairing: %w", err)
	}
	p.Class = Class(cls)
	p.PairedAt, _ = time.Parse(time.RFC3339, pairedAt) //nolint:errcheck // Format is controlled
	return p, nil
}

// Clear removes the pairing row for (deviceID, class).
func (s *SQLiteStore) Clear(ctx context.Context, deviceID string, class Class) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM pairing_store WHERE device_id = ? AND device_class = ?`,
		deviceID, string(class),
	)
	if err != nil {
		return fmt.Errorf("clearing pairing: %w", err)
	}
	return nil
}
