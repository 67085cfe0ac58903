package zone

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the kitchen_zones table.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE kitchen_zones (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			printer_id TEXT NOT NULL,
			category_filter TEXT NOT NULL,
			product_type_filter TEXT,
			print_all_items INTEGER NOT NULL DEFAULT 0,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func testZone(id string) *KitchenZone {
	return &KitchenZone{
		ID:        id,
		Name:      "Grill",
		PrinterID: "printer-1",
		Filter:    Categories([]string{"cat-1", "cat-2"}),
		IsActive:  true,
	}
}

func TestSQLiteRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t))

	z := testZone("z-1")
	z.ProductTypes = []string{"hot"}
	if err := repo.Create(ctx, z); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "z-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "Grill" || got.PrinterID != "printer-1" {
		t.Errorf("GetByID() = %+v, want created zone", got)
	}
	if got.Filter.Mode != FilterIDs || len(got.Filter.IDs) != 2 {
		t.Errorf("Filter = %+v, want ids filter with 2 categories", got.Filter)
	}
	if len(got.ProductTypes) != 1 || got.ProductTypes[0] != "hot" {
		t.Errorf("ProductTypes = %v, want [hot]", got.ProductTypes)
	}
}

func TestSQLiteRepository_FilterVariantsSurviveStorage(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t))

	variants := map[string]CategoryFilter{
		"z-all":  AllCategories(),
		"z-none": NoCategories(),
		"z-ids":  Categories([]string{"cat-9"}),
	}

	for id, f := range variants {
		z := testZone(id)
		z.Filter = f
		if err := repo.Create(ctx, z); err != nil {
			t.Fatalf("Create(%s) error = %v", id, err)
		}
	}

	for id, want := range variants {
		got, err := repo.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID(%s) error = %v", id, err)
		}
		if got.Filter.Mode != want.Mode {
			t.Errorf("zone %s filter mode = %s, want %s", id, got.Filter.Mode, want.Mode)
		}
	}
}

func TestSQLiteRepository_ListActive(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t))

	active := testZone("z-active")
	if err := repo.Create(ctx, active); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	inactive := testZone("z-inactive")
	inactive.IsActive = false
	if err := repo.Create(ctx, inactive); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "z-active" {
		t.Errorf("ListActive() = %v, want only z-active", got)
	}
}

func TestSQLiteRepository_ActiveZoneReferences(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t))

	z := testZone("z-1")
	if err := repo.Create(ctx, z); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	referenced, err := repo.ActiveZoneReferences(ctx, "printer-1")
	if err != nil {
		t.Fatalf("ActiveZoneReferences() error = %v", err)
	}
	if !referenced {
		t.Error("expected printer-1 to be referenced by an active zone")
	}

	// Deactivate the zone: the reference no longer blocks printer removal.
	z.IsActive = false
	if err := repo.Update(ctx, z); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	referenced, err = repo.ActiveZoneReferences(ctx, "printer-1")
	if err != nil {
		t.Fatalf("ActiveZoneReferences() error = %v", err)
	}
	if referenced {
		t.Error("inactive zone must not block printer removal")
	}
}

func TestSQLiteRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t))

	z := testZone("z-1")
	if err := repo.Create(ctx, z); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	z.Name = "Fryer"
	z.PrintAllItems = true
	if err := repo.Update(ctx, z); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, _ := repo.GetByID(ctx, "z-1")
	if got.Name != "Fryer" || !got.PrintAllItems {
		t.Errorf("Update() not persisted: %+v", got)
	}

	if err := repo.Delete(ctx, "z-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(ctx, "z-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_CreateRejectsMissingPrinter(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t))

	z := testZone("z-1")
	z.PrinterID = ""
	if err := repo.Create(ctx, z); !errors.Is(err, ErrNoPrinter) {
		t.Errorf("Create() error = %v, want ErrNoPrinter", err)
	}
}
