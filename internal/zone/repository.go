package zone

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for kitchen zone persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByID retrieves a zone by its unique identifier.
	// Returns ErrNotFound if the zone does not exist.
	GetByID(ctx context.Context, id string) (*KitchenZone, error)

	// List retrieves all zones.
	List(ctx context.Context) ([]KitchenZone, error)

	// ListActive retrieves all zones with IsActive set.
	ListActive(ctx context.Context) ([]KitchenZone, error)

	// Create inserts a new zone.
	// Returns ErrExists if a zone with the same ID already exists.
	Create(ctx context.Context, z *KitchenZone) error

	// Update modifies an existing zone.
	// Returns ErrNotFound if the zone does not exist.
	Update(ctx context.Context, z *KitchenZone) error

	// Delete removes a zone by ID.
	// Returns ErrNotFound if the zone does not exist.
	Delete(ctx context.Context, id string) error

	// ActiveZoneReferences reports whether any active zone targets the
	// given printer. The printer registry consults this before removal.
	ActiveZoneReferences(ctx context.Context, printerID string) (bool, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed zone repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const zoneColumns = `id, name, printer_id, category_filter, product_type_filter, print_all_items, is_active, created_at, updated_at`

// GetByID retrieves a zone by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*KitchenZone, error) {
	query := `SELECT ` + zoneColumns + ` FROM kitchen_zones WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	z, err := scanZone(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying zone by id: %w", err)
	}
	return z, nil
}

// List retrieves all zones ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]KitchenZone, error) {
	return r.queryZones(ctx, `SELECT `+zoneColumns+` FROM kitchen_zones ORDER BY name`)
}

// ListActive retrieves all active zones ordered by name.
func (r *SQLiteRepository) ListActive(ctx context.Context) ([]KitchenZone, error) {
	return r.queryZones(ctx, `SELECT `+zoneColumns+` FROM kitchen_zones WHERE is_active = 1 ORDER BY name`)
}

// Create inserts a new zone.
func (r *SQLiteRepository) Create(ctx context.Context, z *KitchenZone) error {
	if z == nil {
		return fmt.Errorf("%w: nil zone", ErrInvalid)
	}
	if z.ID == "" {
		z.ID = GenerateID()
	}
	if err := Validate(z); err != nil {
		return err
	}

	now := time.Now().UTC()
	if z.CreatedAt.IsZero() {
		z.CreatedAt = now
	}
	z.UpdatedAt = now

	filterJSON, typesJSON, err := marshalFilters(z)
	if err != nil {
		return err
	}

	query := `INSERT INTO kitchen_zones (` + zoneColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		z.ID,
		z.Name,
		z.PrinterID,
		filterJSON,
		typesJSON,
		boolToInt(z.PrintAllItems),
		boolToInt(z.IsActive),
		z.CreatedAt.Format(time.RFC3339),
		z.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrExists
		}
		return fmt.Errorf("inserting zone: %w", err)
	}
	return nil
}

// Update modifies an existing zone.
func (r *SQLiteRepository) Update(ctx context.Context, z *KitchenZone) error {
	if err := Validate(z); err != nil {
		return err
	}

	z.UpdatedAt = time.Now().UTC()

	filterJSON, typesJSON, err := marshalFilters(z)
	if err != nil {
		return err
	}

	query := `UPDATE kitchen_zones SET
			name = ?, printer_id = ?, category_filter = ?, product_type_filter = ?,
			print_all_items = ?, is_active = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		z.Name,
		z.PrinterID,
		filterJSON,
		typesJSON,
		boolToInt(z.PrintAllItems),
		boolToInt(z.IsActive),
		z.UpdatedAt.Format(time.RFC3339),
		z.ID,
	)
	if err != nil {
		return fmt.Errorf("updating zone: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a zone by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM kitchen_zones WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting zone: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ActiveZoneReferences reports whether any active zone targets the printer.
func (r *SQLiteRepository) ActiveZoneReferences(ctx context.Context, printerID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM kitchen_zones WHERE printer_id = ? AND is_active = 1`,
		printerID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("counting zone references: %w", err)
	}
	return count > 0, nil
}

// queryZones runs a multi-row zone query.
func (r *SQLiteRepository) queryZones(ctx context.Context, query string, args ...any) ([]KitchenZone, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying zones: %w", err)
	}
	defer rows.Close()

	var zones []KitchenZone
	for rows.Next() {
		z, scanErr := scanZone(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scanning zone row: %w", scanErr)
		}
		zones = append(zones, *z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating zones: %w", err)
	}
	return zones, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanZone scans a single zone row.
func scanZone(row rowScanner) (*KitchenZone, error) {
	var (
		z                    KitchenZone
		filterJSON           string
		typesJSON            sql.NullString
		printAll, isActive   int
		createdAt, updatedAt string
	)

	err := row.Scan(
		&z.ID, &z.Name, &z.PrinterID,
		&filterJSON, &typesJSON,
		&printAll, &isActive,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(filterJSON), &z.Filter); err != nil {
		return nil, fmt.Errorf("decoding category filter: %w", err)
	}
	if typesJSON.Valid && typesJSON.String != "" {
		if err := json.Unmarshal([]byte(typesJSON.String), &z.ProductTypes); err != nil {
			return nil, fmt.Errorf("decoding product type filter: %w", err)
		}
	}

	z.PrintAllItems = printAll != 0
	z.IsActive = isActive != 0
	z.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // Format is controlled
	z.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // Format is controlled

	return &z, nil
}

// marshalFilters serializes the category and product-type filters.
func marshalFilters(z *KitchenZone) (filterJSON string, typesJSON any, err error) {
	fb, err := json.Marshal(z.Filter)
	if err != nil {
		return "", nil, fmt.Errorf("encoding category filter: %w", err)
	}

	if len(z.ProductTypes) == 0 {
		return string(fb), nil, nil
	}
	tb, err := json.Marshal(z.ProductTypes)
	if err != nil {
		return "", nil, fmt.Errorf("encoding product type filter: %w", err)
	}
	return string(fb), string(tb), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueConstraintError reports whether err is a SQLite unique
// constraint violation.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
