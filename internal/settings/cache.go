package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Cache persists configuration snapshots for offline use.
type Cache interface {
	// Load returns the persisted snapshot for the device.
	// Returns ErrNoSnapshot when the device has never synced.
	Load(ctx context.Context, deviceID string) (*Snapshot, error)

	// Save replaces the persisted snapshot wholesale. It must only be
	// called after a fully successful fetch, never speculatively.
	Save(ctx context.Context, deviceID string, snap *Snapshot) error
}

// SQLiteCache implements Cache using a single-row-per-device table.
// The snapshot is serialized as one JSON document, so a partially written
// snapshot cannot survive an application restart.
type SQLiteCache struct {
	db *sql.DB
}

// NewSQLiteCache creates a new SQLite-backed snapshot cache.
func NewSQLiteCache(db *sql.DB) *SQLiteCache {
	return &SQLiteCache{db: db}
}

// Load returns the persisted snapshot for the device.
func (c *SQLiteCache) Load(ctx context.Context, deviceID string) (*Snapshot, error) {
	var doc string
	err := c.db.QueryRowContext(ctx,
		`SELECT snapshot FROM snapshot_cache WHERE device_id = ?`,
		deviceID,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(doc), &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &snap, nil
}

// Save replaces the persisted snapshot wholesale.
func (c *SQLiteCache) Save(ctx context.Context, deviceID string, snap *Snapshot) error {
	doc, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO snapshot_cache (device_id, version, fetched_at, snapshot)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (device_id) DO UPDATE SET
			version = excluded.version,
			fetched_at = excluded.fetched_at,
			snapshot = excluded.snapshot`,
		deviceID,
		snap.Version,
		snap.FetchedAt.Format(time.RFC3339),
		string(doc),
	)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}
