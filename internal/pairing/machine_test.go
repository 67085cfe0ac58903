package pairing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type mockDiscoverer struct {
	mu         sync.Mutex
	calls      int32
	candidates []Candidate
	err        error
	block      chan struct{} // when set, Discover waits until closed
}

func (d *mockDiscoverer) Discover(ctx context.Context) ([]Candidate, error) {
	atomic.AddInt32(&d.calls, 1)
	if d.block != nil {
		select {
		case <-d.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.candidates, d.err
}

type mockConnector struct {
	err   error
	calls int32
	block chan struct{}
}

func (c *mockConnector) Connect(ctx context.Context, cand Candidate) error {
	atomic.AddInt32(&c.calls, 1)
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return c.err
}

type memStore struct {
	mu   sync.Mutex
	rows map[string]Pairing
	err  error
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]Pairing)}
}

func (s *memStore) key(deviceID string, class Class) string {
	return deviceID + "/" + string(class)
}

func (s *memStore) Save(ctx context.Context, p Pairing) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[s.key(p.DeviceID, p.Class)] = p
	return nil
}

func (s *memStore) Load(ctx context.Context, deviceID string, class Class) (Pairing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[s.key(deviceID, class)]
	if !ok {
		return Pairing{}, ErrNotPaired
	}
	return p, nil
}

func (s *memStore) Clear(ctx context.Context, deviceID string, class Class) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, s.key(deviceID, class))
	return nil
}

func testCandidate() Candidate {
	return Candidate{ID: "04b8:0e15", Name: "TM-T20III", VendorID: "04b8", ProductID: "0e15"}
}

func TestMachineInitialState(t *testing.T) {
	m := NewMachine(ClassPrinter, "term-1", newMemStore(), &mockDiscoverer{}, &mockConnector{})

	s := m.Status()
	if s.State != StateIdle {
		t.Errorf("initial state: got %v, want idle", s.State)
	}
	if s.Pairing != nil {
		t.Error("initial pairing should be nil")
	}
}

func TestMachineDiscover(t *testing.T) {
	disc := &mockDiscoverer{candidates: []Candidate{testCandidate()}}
	m := NewMachine(ClassPrinter, "term-1", newMemStore(), disc, &mockConnector{})

	candidates, err := m.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ID != "04b8:0e15" {
		t.Errorf("candidates: got %+v", candidates)
	}
	if s := m.Status().State; s != StateIdle {
		t.Errorf("state after discovery: got %v, want idle", s)
	}
}

func TestMachineDiscoverCoalesces(t *testing.T) {
	disc := &mockDiscoverer{
		candidates: []Candidate{testCandidate()},
		block:      make(chan struct{}),
	}
	m := NewMachine(ClassPrinter, "term-1", newMemStore(), disc, &mockConnector{})

	const callers = 4
	results := make(chan int, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			candidates, err := m.Discover(context.Background())
			if err != nil {
				t.Errorf("Discover: %v", err)
				return
			}
			results <- len(candidates)
		}()
	}

	// Let the callers pile onto the in-flight scan before releasing it.
	time.Sleep(50 * time.Millisecond)
	if s := m.Status().State; s != StateDiscovering {
		t.Errorf("state mid-scan: got %v, want discovering", s)
	}
	close(disc.block)
	wg.Wait()
	close(results)

	for n := range results {
		if n != 1 {
			t.Errorf("coalesced caller got %d candidates, want 1", n)
		}
	}
	if calls := atomic.LoadInt32(&disc.calls); calls != 1 {
		t.Errorf("underlying scans: got %d, want 1", calls)
	}
}

func TestMachineDiscoverTimeout(t *testing.T) {
	disc := &mockDiscoverer{block: make(chan struct{})} // never released
	m := NewMachine(ClassPrinter, "term-1", newMemStore(), disc, &mockConnector{})
	m.SetTimeout(50 * time.Millisecond)

	_, err := m.Discover(context.Background())
	if !errors.Is(err, ErrDiscoveryTimeout) {
		t.Errorf("Discover: got %v, want ErrDiscoveryTimeout", err)
	}
	if s := m.Status().State; s != StateIdle {
		t.Errorf("state after timeout: got %v, want idle", s)
	}
}

func TestMachineConnect(t *testing.T) {
	store := newMemStore()
	m := NewMachine(ClassPrinter, "term-1", store, &mockDiscoverer{}, &mockConnector{})

	if err := m.Connect(context.Background(), testCandidate()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	s := m.Status()
	if s.State != StateConnected {
		t.Errorf("state: got %v, want connected", s.State)
	}
	if s.Pairing == nil || s.Pairing.PairedID != "04b8:0e15" {
		t.Errorf("pairing: got %+v", s.Pairing)
	}

	// The pairing must already be on disk when Connect returns.
	persisted, err := store.Load(context.Background(), "term-1", ClassPrinter)
	if err != nil {
		t.Fatalf("Load after Connect: %v", err)
	}
	if persisted.Name != "TM-T20III" {
		t.Errorf("persisted name: got %q", persisted.Name)
	}
}

func TestMachineConnectRejected(t *testing.T) {
	conn := &mockConnector{err: ErrPairingRejected}
	store := newMemStore()
	m := NewMachine(ClassPrinter, "term-1", store, &mockDiscoverer{}, conn)

	err := m.Connect(context.Background(), testCandidate())
	if !errors.Is(err, ErrPairingRejected) {
		t.Fatalf("Connect: got %v, want ErrPairingRejected", err)
	}

	s := m.Status()
	if s.State != StateIdle {
		t.Errorf("state after rejection: got %v, want idle", s.State)
	}
	if s.LastError == "" {
		t.Error("LastError should surface the rejection")
	}
	if _, err := store.Load(context.Background(), "term-1", ClassPrinter); !errors.Is(err, ErrNotPaired) {
		t.Error("rejected pairing must not be persisted")
	}
}

func TestMachineConnectBusy(t *testing.T) {
	conn := &mockConnector{block: make(chan struct{})}
	m := NewMachine(ClassPrinter, "term-1", newMemStore(), &mockDiscoverer{}, conn)

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		done <- m.Connect(context.Background(), testCandidate())
	}()
	<-started
	time.Sleep(20 * time.Millisecond)

	if err := m.Connect(context.Background(), testCandidate()); !errors.Is(err, ErrBusy) {
		t.Errorf("second Connect: got %v, want ErrBusy", err)
	}

	close(conn.block)
	if err := <-done; err != nil {
		t.Errorf("first Connect: %v", err)
	}
}

func TestMachineConnectStoreFailure(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("disk full")
	m := NewMachine(ClassPrinter, "term-1", store, &mockDiscoverer{}, &mockConnector{})

	err := m.Connect(context.Background(), testCandidate())
	if err == nil {
		t.Fatal("Connect should fail when the pairing cannot be persisted")
	}
	if s := m.Status().State; s != StateIdle {
		t.Errorf("state after store failure: got %v, want idle", s)
	}
}

func TestMachineForget(t *testing.T) {
	store := newMemStore()
	m := NewMachine(ClassPrinter, "term-1", store, &mockDiscoverer{}, &mockConnector{})

	if err := m.Connect(context.Background(), testCandidate()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := m.Forget(context.Background()); err != nil {
		t.Fatalf("Forget: %v", err)
	}

	s := m.Status()
	if s.State != StateIdle || s.Pairing != nil {
		t.Errorf("status after Forget: %+v", s)
	}
	if _, err := store.Load(context.Background(), "term-1", ClassPrinter); !errors.Is(err, ErrNotPaired) {
		t.Error("Forget must clear the persisted row")
	}
}

func TestMachineRestore(t *testing.T) {
	store := newMemStore()
	store.Save(context.Background(), Pairing{
		DeviceID: "term-1",
		Class:    ClassPrinter,
		PairedID: "04b8:0e15",
		Name:     "TM-T20III",
		PairedAt: time.Now().UTC(),
	})

	m := NewMachine(ClassPrinter, "term-1", store, &mockDiscoverer{}, &mockConnector{})
	if err := m.Restore(context.Background()); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	s := m.Status()
	if s.State != StateConnected {
		t.Errorf("state after restore: got %v, want connected", s.State)
	}
	if s.Pairing == nil || s.Pairing.PairedID != "04b8:0e15" {
		t.Errorf("pairing after restore: %+v", s.Pairing)
	}
}

func TestMachineDiscoverWhileConnected(t *testing.T) {
	disc := &mockDiscoverer{candidates: []Candidate{testCandidate()}}
	m := NewMachine(ClassPrinter, "term-1", newMemStore(), disc, &mockConnector{})

	if err := m.Connect(context.Background(), testCandidate()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if _, err := m.Discover(context.Background()); err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if s := m.Status().State; s != StateConnected {
		t.Errorf("state after discovery while paired: got %v, want connected", s)
	}
}

func TestManager(t *testing.T) {
	printer := NewMachine(ClassPrinter, "term-1", newMemStore(), &mockDiscoverer{}, &mockConnector{})
	reader := NewMachine(ClassReader, "term-1", newMemStore(), &mockDiscoverer{}, &mockConnector{})
	mgr := NewManager(printer, reader)

	if m, err := mgr.Machine(ClassPrinter); err != nil || m != printer {
		t.Errorf("Machine(printer): %v, %v", m, err)
	}
	if _, err := mgr.Machine(Class("toaster")); !errors.Is(err, ErrInvalidClass) {
		t.Errorf("Machine(toaster): got %v, want ErrInvalidClass", err)
	}
}
