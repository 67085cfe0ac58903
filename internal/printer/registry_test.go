package printer

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// MockRepository is a test implementation of Repository.
type MockRepository struct {
	mu       sync.Mutex
	printers map[string]*Printer
	// For testing error paths
	createErr error
	deleteErr error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		printers: make(map[string]*Printer),
	}
}

func (m *MockRepository) GetByID(_ context.Context, id string) (*Printer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.printers[id]; ok {
		return p.Clone(), nil
	}
	return nil, ErrNotFound
}

func (m *MockRepository) GetByUSBIdentity(_ context.Context, vendorID, productID string) (*Printer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.printers {
		if p.Kind == KindUSB && p.VendorID == vendorID && p.ProductID == productID {
			return p.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockRepository) List(_ context.Context) ([]Printer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	printers := make([]Printer, 0, len(m.printers))
	for _, p := range m.printers {
		printers = append(printers, *p.Clone())
	}
	return printers, nil
}

func (m *MockRepository) Create(_ context.Context, p *Printer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.printers[p.ID]; exists {
		return ErrExists
	}
	m.printers[p.ID] = p.Clone()
	return nil
}

func (m *MockRepository) Update(_ context.Context, p *Printer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.printers[p.ID]; !exists {
		return ErrNotFound
	}
	m.printers[p.ID] = p.Clone()
	return nil
}

func (m *MockRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, exists := m.printers[id]; !exists {
		return ErrNotFound
	}
	delete(m.printers, id)
	return nil
}

// staticGuard is a ZoneGuard with a fixed answer.
type staticGuard struct {
	referenced bool
	err        error
}

func (g staticGuard) ActiveZoneReferences(context.Context, string) (bool, error) {
	return g.referenced, g.err
}

func testNetworkPrinter() *Printer {
	return &Printer{
		Name:      "Bar Printer",
		Kind:      KindNetwork,
		Role:      RoleKitchen,
		IPAddress: "10.0.0.50",
		Port:      9100,
		IsActive:  true,
	}
}

func TestRegistry_UpsertCreatesAndUpdates(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(NewMockRepository())

	created, err := registry.Upsert(ctx, testNetworkPrinter())
	if err != nil {
		t.Fatalf("Upsert() create error = %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated ID on create")
	}

	created.Name = "Bar Printer 2"
	updated, err := registry.Upsert(ctx, created)
	if err != nil {
		t.Fatalf("Upsert() update error = %v", err)
	}
	if updated.Name != "Bar Printer 2" {
		t.Errorf("Name = %q, want updated name", updated.Name)
	}

	got, err := registry.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Bar Printer 2" {
		t.Errorf("cached Name = %q, want %q", got.Name, "Bar Printer 2")
	}
}

func TestRegistry_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(NewMockRepository())

	created, err := registry.Upsert(ctx, testNetworkPrinter())
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	first, _ := registry.Get(ctx, created.ID)
	first.Name = "mutated"

	second, _ := registry.Get(ctx, created.ID)
	if second.Name == "mutated" {
		t.Error("mutating a returned printer leaked into the cache")
	}
}

func TestRegistry_MergeDiscoveredIsIdempotent(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(NewMockRepository())

	found := []Discovered{
		{Name: "Epson TM-T20", VendorID: "04b8", ProductID: "0202"},
	}

	created, err := registry.MergeDiscovered(ctx, found)
	if err != nil {
		t.Fatalf("MergeDiscovered() error = %v", err)
	}
	if created != 1 {
		t.Fatalf("first merge created = %d, want 1", created)
	}

	// Second discovery pass for the same device must be a no-op.
	created, err = registry.MergeDiscovered(ctx, found)
	if err != nil {
		t.Fatalf("MergeDiscovered() second pass error = %v", err)
	}
	if created != 0 {
		t.Errorf("second merge created = %d, want 0", created)
	}

	printers, _ := registry.List(ctx)
	if len(printers) != 1 {
		t.Errorf("registry has %d printers, want exactly 1", len(printers))
	}
}

func TestRegistry_MergeDiscoveredSkipsIncompleteIdentity(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(NewMockRepository())

	created, err := registry.MergeDiscovered(ctx, []Discovered{
		{Name: "mystery device", VendorID: "", ProductID: "0202"},
	})
	if err != nil {
		t.Fatalf("MergeDiscovered() error = %v", err)
	}
	if created != 0 {
		t.Errorf("created = %d, want 0 for incomplete identity", created)
	}
}

func TestRegistry_RemoveBlockedWhileZoneReferences(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(NewMockRepository())
	registry.SetZoneGuard(staticGuard{referenced: true})

	created, err := registry.Upsert(ctx, testNetworkPrinter())
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	err = registry.Remove(ctx, created.ID)
	if !errors.Is(err, ErrInUse) {
		t.Fatalf("Remove() error = %v, want ErrInUse", err)
	}

	// Printer must still exist.
	if _, err := registry.Get(ctx, created.ID); err != nil {
		t.Errorf("printer disappeared after blocked removal: %v", err)
	}
}

func TestRegistry_RemoveSucceedsWithoutReferences(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(NewMockRepository())
	registry.SetZoneGuard(staticGuard{referenced: false})

	created, err := registry.Upsert(ctx, testNetworkPrinter())
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if err := registry.Remove(ctx, created.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	if _, err := registry.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after remove error = %v, want ErrNotFound", err)
	}
}

func TestRegistry_TestConnectionNeverMutates(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(NewMockRepository())
	registry.SetProber(failingProber{})

	created, err := registry.Upsert(ctx, testNetworkPrinter())
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if err := registry.TestConnection(ctx, created.ID); !errors.Is(err, ErrUnreachable) {
		t.Fatalf("TestConnection() error = %v, want ErrUnreachable", err)
	}

	got, _ := registry.Get(ctx, created.ID)
	if !got.IsActive {
		t.Error("failed connection test mutated printer state")
	}
}

type failingProber struct{}

func (failingProber) Probe(context.Context, *Printer) error {
	return ErrUnreachable
}

func TestRegistry_ListActive(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(NewMockRepository())

	active := testNetworkPrinter()
	if _, err := registry.Upsert(ctx, active); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	inactive := testNetworkPrinter()
	inactive.Name = "Spare Printer"
	inactive.IPAddress = "10.0.0.51"
	inactive.IsActive = false
	if _, err := registry.Upsert(ctx, inactive); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := registry.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ListActive() returned %d printers, want 1", len(got))
	}
	if got[0].Name != "Bar Printer" {
		t.Errorf("active printer = %q, want %q", got[0].Name, "Bar Printer")
	}
}
