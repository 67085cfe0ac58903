package printer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for printer persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByID retrieves a printer by its unique identifier.
	// Returns ErrNotFound if the printer does not exist.
	GetByID(ctx context.Context, id string) (*Printer, error)

	// GetByUSBIdentity retrieves a USB printer by its (vendorID, productID)
	// deduplication key. Returns ErrNotFound if no such printer exists.
	GetByUSBIdentity(ctx context.Context, vendorID, productID string) (*Printer, error)

	// List retrieves all printers.
	List(ctx context.Context) ([]Printer, error)

	// Create inserts a new printer.
	// Returns ErrExists if a printer with the same ID or USB identity exists.
	Create(ctx context.Context, p *Printer) error

	// Update modifies an existing printer.
	// Returns ErrNotFound if the printer does not exist.
	Update(ctx context.Context, p *Printer) error

	// Delete removes a printer by ID.
	// Returns ErrNotFound if the printer does not exist.
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const printerColumns = `id, name, kind, role, vendor_id, product_id, ip_address, port, is_active, created_at, updated_at`

// GetByID retrieves a printer by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Printer, error) {
	query := `SELECT ` + printerColumns + ` FROM printers WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	p, err := scanPrinter(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying printer by id: %w", err)
	}
	return p, nil
}

// GetByUSBIdentity retrieves a USB printer by its deduplication key.
func (r *SQLiteRepository) GetByUSBIdentity(ctx context.Context, vendorID, productID string) (*Printer, error) {
	query := `SELECT ` + printerColumns + ` FROM printers
		WHERE kind = ? AND vendor_id = ? AND product_id = ?`

	row := r.db.QueryRowContext(ctx, query, string(KindUSB), vendorID, productID)
	p, err := scanPrinter(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying printer by usb identity: %w", err)
	}
	return p, nil
}

// List retrieves all printers ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Printer, error) {
	query := `SELECT ` + printerColumns + ` FROM printers ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying printers: %w", err)
	}
	defer rows.Close()

	var printers []Printer
	for rows.Next() {
		p, scanErr := scanPrinter(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scanning printer row: %w", scanErr)
		}
		printers = append(printers, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating printers: %w", err)
	}
	return printers, nil
}

// Create inserts a new printer.
func (r *SQLiteRepository) Create(ctx context.Context, p *Printer) error {
	if err := Validate(p); err != nil {
		return err
	}

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	query := `INSERT INTO printers (` + printerColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		string(p.Kind),
		string(p.Role),
		nullString(p.VendorID),
		nullString(p.ProductID),
		nullString(p.IPAddress),
		nullInt(p.Port),
		boolToInt(p.IsActive),
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrExists
		}
		return fmt.Errorf("inserting printer: %w", err)
	}
	return nil
}

// Update modifies an existing printer.
func (r *SQLiteRepository) Update(ctx context.Context, p *Printer) error {
	if err := Validate(p); err != nil {
		return err
	}

	p.UpdatedAt = time.Now().UTC()

	query := `UPDATE printers SET
			name = ?, kind = ?, role = ?, vendor_id = ?, product_id = ?,
			ip_address = ?, port = ?, is_active = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		p.Name,
		string(p.Kind),
		string(p.Role),
		nullString(p.VendorID),
		nullString(p.ProductID),
		nullString(p.IPAddress),
		nullInt(p.Port),
		boolToInt(p.IsActive),
		p.UpdatedAt.Format(time.RFC3339),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating printer: %w", err)
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

// Delete removes a printer by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM printers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting printer: %w", err)
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

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanPrinter scans a single printer row.
func scanPrinter(row rowScanner) (*Printer, error) {
	var (
		p                    Printer
		kind, role           string
		vendorID, productID  sql.NullString
		ipAddress            sql.NullString
		port                 sql.NullInt64
		isActive             int
		createdAt, updatedAt string
	)

	err := row.Scan(
		&p.ID, &p.Name, &kind, &role,
		&vendorID, &productID, &ipAddress, &port,
		&isActive, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Kind = Kind(kind)
	p.Role = Role(role)
	p.VendorID = vendorID.String
	p.ProductID = productID.String
	p.IPAddress = ipAddress.String
	p.Port = int(port.Int64)
	p.IsActive = isActive != 0
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // Format is controlled
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // Format is controlled

	return &p, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(i int) any {
	if i == 0 {
		return nil
	}
	return i
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
