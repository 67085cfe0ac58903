package pairing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Logger is the minimal logging interface used by this package.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(msg string, args ...any)  {}
func (noopLogger) Error(msg string, args ...any) {}

// Discoverer finds candidate devices for one class.
type Discoverer interface {
	Discover(ctx context.Context) ([]Candidate, error)
}

// Connector performs the pairing handshake with one candidate.
// A refused handshake returns ErrPairingRejected.
type Connector interface {
	Connect(ctx context.Context, c Candidate) error
}

const defaultHandshakeTimeout = 15 * time.Second

// discoveryCall is one in-flight discovery shared by coalesced callers.
type discoveryCall struct {
	done       chan struct{}
	candidates []Candidate
	err        error
}

// Machine drives pairing for one device class. Discovery requests
// coalesce onto a single in-flight scan, and only one connection
// attempt runs at a time. A failed attempt surfaces its error and the
// machine returns to idle; there is no automatic retry.
type Machine struct {
	class      Class
	deviceID   string
	store      Store
	discoverer Discoverer
	connector  Connector
	timeout    time.Duration
	logger     Logger

	mu         sync.Mutex
	state      State
	pairing    *Pairing
	lastErr    string
	inflight   *discoveryCall
	connecting bool
}

// NewMachine creates a pairing machine for one device class.
func NewMachine(class Class, deviceID string, store Store, d Discoverer, c Connector) *Machine {
	return &Machine{
		class:      class,
		deviceID:   deviceID,
		store:      store,
		discoverer: d,
		connector:  c,
		timeout:    defaultHandshakeTimeout,
		logger:     noopLogger{},
		state:      StateIdle,
	}
}

// SetLogger replaces the machine's logger.
func (m *Machine) SetLogger(l Logger) {
	if l != nil {
		m.logger = l
	}
}

// SetTimeout overrides the discovery and handshake timeout.
func (m *Machine) SetTimeout(d time.Duration) {
	if d > 0 {
		m.timeout = d
	}
}

// Restore loads a previously persisted pairing, if any. Called once at
// startup before the machine serves requests.
func (m *Machine) Restore(ctx context.Context) error {
	p, err := m.store.Load(ctx, m.deviceID, m.class)
	if errors.Is(err, ErrNotPaired) {
		return nil
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.pairing = &p
	m.state = StateConnected
	m.mu.Unlock()
	return nil
}

// Status returns the externally visible view of the machine.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Status{
		Class:     m.class,
		State:     m.state,
		LastError: m.lastErr,
	}
	if m.pairing != nil {
		p := *m.pairing
		s.Pairing = &p
	}
	return s
}

// Discover scans for candidate devices. Concurrent calls for the same
// class join the in-flight scan and share its result.
func (m *Machine) Discover(ctx context.Context) ([]Candidate, error) {
	m.mu.Lock()
	if call := m.inflight; call != nil {
		m.mu.Unlock()
		return m.await(ctx, call)
	}

	call := &discoveryCall{done: make(chan struct{})}
	m.inflight = call
	if m.state == StateIdle {
		m.state = StateDiscovering
	}
	m.mu.Unlock()

	go m.runDiscovery(call)

	return m.await(ctx, call)
}

func (m *Machine) await(ctx context.Context, call *discoveryCall) ([]Candidate, error) {
	select {
	case <-call.done:
		return call.candidates, call.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *Machine) runDiscovery(call *discoveryCall) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	candidates, err := m.discoverer.Discover(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		err = ErrDiscoveryTimeout
	}

	call.candidates = candidates
	call.err = err

	m.mu.Lock()
	m.inflight = nil
	if err != nil {
		m.lastErr = err.Error()
		m.logger.Error("discovery failed", "class", m.class, "error", err)
	}
	if m.state == StateDiscovering {
		m.state = m.restingState()
	}
	m.mu.Unlock()

	close(call.done)
}

// Connect performs the handshake with the chosen candidate and, on
// success, persists the pairing before returning. Only one attempt may
// run at a time; a second call while one is in progress returns ErrBusy.
func (m *Machine) Connect(ctx context.Context, c Candidate) error {
	m.mu.Lock()
	if m.connecting {
		m.mu.Unlock()
		return ErrBusy
	}
	m.connecting = true
	m.state = StateConnecting
	m.lastErr = ""
	m.mu.Unlock()

	err := m.attempt(ctx, c)

	m.mu.Lock()
	m.connecting = false
	if err != nil {
		m.lastErr = err.Error()
		m.state = m.restingState()
	} else {
		m.state = StateConnected
	}
	m.mu.Unlock()

	if err != nil {
		m.logger.Error("pairing failed", "class", m.class, "candidate", c.ID, "error", err)
		return err
	}
	m.logger.Info("paired", "class", m.class, "device", c.ID, "name", c.Name)
	return nil
}

func (m *Machine) attempt(ctx context.Context, c Candidate) error {
	hctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.connector.Connect(hctx, c); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrDiscoveryTimeout
		}
		return err
	}

	p := Pairing{
		DeviceID: m.deviceID,
		Class:    m.class,
		PairedID: c.ID,
		Name:     c.Name,
		PairedAt: time.Now().UTC(),
	}

	// The row is written before anything else observes the pairing, so
	// a crash after this point still restores it on next start.
	if err := m.store.Save(ctx, p); err != nil {
		return fmt.Errorf("persisting pairing: %w", err)
	}

	m.mu.Lock()
	m.pairing = &p
	m.mu.Unlock()
	return nil
}

// Forget clears the pairing and returns the machine to idle. The row
// is removed synchronously before the call returns.
func (m *Machine) Forget(ctx context.Context) error {
	if err := m.store.Clear(ctx, m.deviceID, m.class); err != nil {
		return err
	}

	m.mu.Lock()
	m.pairing = nil
	m.state = StateIdle
	m.lastErr = ""
	m.mu.Unlock()

	m.logger.Info("pairing cleared", "class", m.class)
	return nil
}

// restingState is where the machine settles after an operation ends:
// connected while a pairing exists, idle otherwise.
func (m *Machine) restingState() State {
	if m.pairing != nil {
		return StateConnected
	}
	return StateIdle
}

// Manager holds one machine per device class.
type Manager struct {
	machines map[Class]*Machine
}

// NewManager creates a manager over the given machines.
func NewManager(machines ...*Machine) *Manager {
	mgr := &Manager{machines: make(map[Class]*Machine, len(machines))}
	for _, m := range machines {
		mgr.machines[m.class] = m
	}
	return mgr
}

// Machine returns the machine for a class, or ErrInvalidClass.
func (mgr *Manager) Machine(class Class) (*Machine, error) {
	m, ok := mgr.machines[class]
	if !ok {
		return nil, ErrInvalidClass
	}
	return m, nil
}

// RestoreAll restores persisted pairings for every managed class.
func (mgr *Manager) RestoreAll(ctx context.Context) error {
	for _, m := range mgr.machines {
		if err := m.Restore(ctx); err != nil {
			return err
		}
	}
	return nil
}
