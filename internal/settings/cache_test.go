package settings

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func setupCacheDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE snapshot_cache (
			device_id  TEXT PRIMARY KEY,
			version    INTEGER NOT NULL,
			fetched_at TEXT NOT NULL,
			snapshot   TEXT NOT NULL
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

func TestSQLiteCache_LoadEmpty(t *testing.T) {
	cache := NewSQLiteCache(setupCacheDB(t))

	_, err := cache.Load(context.Background(), "term-1")
	if !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Load() on empty cache error = %v, want ErrNoSnapshot", err)
	}
}

func TestSQLiteCache_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	cache := NewSQLiteCache(setupCacheDB(t))

	snap := &Snapshot{
		Version:   3,
		FetchedAt: time.Now().UTC().Truncate(time.Second),
		Global: GlobalSettings{
			AutoPrintKitchenTickets: true,
			KitchenTicketCopies:     2,
			ReceiptFooter:           "Thanks for visiting",
		},
		Registration: TerminalRegistration{
			DeviceID:        "term-1",
			Nickname:        "Front Counter",
			StoreLocationID: "loc-1",
		},
	}

	if err := cache.Save(ctx, "term-1", snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := cache.Load(ctx, "term-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got.Version != 3 {
		t.Errorf("Version = %d, want 3", got.Version)
	}
	if !got.FetchedAt.Equal(snap.FetchedAt) {
		t.Errorf("FetchedAt = %v, want %v", got.FetchedAt, snap.FetchedAt)
	}
	if got.Global.KitchenTicketCopies != 2 {
		t.Errorf("KitchenTicketCopies = %d, want 2", got.Global.KitchenTicketCopies)
	}
	if got.Registration.Nickname != "Front Counter" {
		t.Errorf("Nickname = %q, want %q", got.Registration.Nickname, "Front Counter")
	}
}

func TestSQLiteCache_SaveReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	cache := NewSQLiteCache(setupCacheDB(t))

	first := &Snapshot{
		Version:   1,
		FetchedAt: time.Now().UTC(),
		Global:    GlobalSettings{ReceiptFooter: "old footer"},
	}
	if err := cache.Save(ctx, "term-1", first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	second := &Snapshot{
		Version:   2,
		FetchedAt: time.Now().UTC(),
		Global:    GlobalSettings{KitchenTicketCopies: 4},
	}
	if err := cache.Save(ctx, "term-1", second); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	got, err := cache.Load(ctx, "term-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Version != 2 {
		t.Errorf("Version = %d, want 2", got.Version)
	}
	if got.Global.ReceiptFooter != "" {
		t.Errorf("ReceiptFooter = %q, want wholesale replacement", got.Global.ReceiptFooter)
	}
	if got.Global.KitchenTicketCopies != 4 {
		t.Errorf("KitchenTicketCopies = %d, want 4", got.Global.KitchenTicketCopies)
	}
}

func TestSQLiteCache_PerDeviceIsolation(t *testing.T) {
	ctx := context.Background()
	cache := NewSQLiteCache(setupCacheDB(t))

	if err := cache.Save(ctx, "term-1", &Snapshot{Version: 1, FetchedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := cache.Load(ctx, "term-2"); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Load() for other device error = %v, want ErrNoSnapshot", err)
	}
}
