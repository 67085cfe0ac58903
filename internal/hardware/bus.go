package hardware

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tillworks/tillprint-core/internal/infrastructure/mqtt"
)

const defaultRequestTimeout = 10 * time.Second

// Transport is the subset of the MQTT client the bus needs.
// Satisfied by *mqtt.Client; tests provide a fake.
type Transport interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	IsConnected() bool
}

// Logger interface for optional logging support.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Bus pairs commands with responses over the agent's MQTT topics.
//
// Each Request publishes one command envelope with a fresh request ID,
// subscribes to the matching response topic, and waits for the agent's
// answer. Timeout policy lives here and nowhere else: callers pass a
// context for cancellation but the per-request deadline is the bus's.
//
// Thread Safety: safe for concurrent use; concurrent requests are
// independent (each has its own correlation ID and response topic).
type Bus struct {
	transport Transport
	qos       byte
	timeout   time.Duration
	logger    Logger
}

// NewBus creates a hardware agent bus over the given transport.
// A non-positive timeout falls back to a 10s default.
func NewBus(transport Transport, qos byte, timeout time.Duration) *Bus {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Bus{
		transport: transport,
		qos:       qos,
		timeout:   timeout,
		logger:    noopLogger{},
	}
}

// SetLogger sets a logger. Safe to call before the bus is used.
func (b *Bus) SetLogger(logger Logger) {
	if logger != nil {
		b.logger = logger
	}
}

// Request sends one command and waits for the agent's response.
//
// Returns ErrAgentUnavailable when the transport is disconnected,
// ErrRequestTimeout when the agent does not answer in time, and
// ErrCommandFailed when the agent answered with ok=false.
func (b *Bus) Request(ctx context.Context, cmd Command) (Response, error) {
	if !b.transport.IsConnected() {
		return Response{}, ErrAgentUnavailable
	}

	var payload json.RawMessage
	if cmd.Payload != nil {
		raw, err := json.Marshal(cmd.Payload)
		if err != nil {
			return Response{}, fmt.Errorf("encoding %s payload: %w", cmd.Type, err)
		}
		payload = raw
	}

	requestID := "req-" + uuid.NewString()
	env := envelope{
		RequestID: requestID,
		Type:      cmd.Type,
		Payload:   payload,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return Response{}, fmt.Errorf("encoding %s envelope: %w", cmd.Type, err)
	}

	topics := mqtt.Topics{}
	respTopic := topics.HardwareResponse(requestID)
	respCh := make(chan Response, 1)

	err = b.transport.Subscribe(respTopic, b.qos, func(_ string, raw []byte) error {
		var resp Response
		if err := json.Unmarshal(raw, &resp); err != nil {
			return fmt.Errorf("decoding agent response: %w", err)
		}
		select {
		case respCh <- resp:
		default:
			// Duplicate delivery (QoS 1); first response wins.
		}
		return nil
	})
	if err != nil {
		return Response{}, fmt.Errorf("subscribing for %s response: %w", cmd.Type, err)
	}
	defer func() {
		if err := b.transport.Unsubscribe(respTopic); err != nil {
			b.logger.Warn("unsubscribe failed", "topic", respTopic, "error", err)
		}
	}()

	if err := b.transport.Publish(topics.HardwareCommand(cmd.Type), body, b.qos, false); err != nil {
		return Response{}, fmt.Errorf("publishing %s: %w", cmd.Type, err)
	}
	b.logger.Debug("command published", "type", cmd.Type, "request_id", requestID)

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()

	select {
	case resp := <-respCh:
		if !resp.OK {
			return resp, fmt.Errorf("%w: %s: %s", ErrCommandFailed, cmd.Type, resp.Error)
		}
		return resp, nil
	case <-timer.C:
		return Response{}, fmt.Errorf("%w: %s after %v", ErrRequestTimeout, cmd.Type, b.timeout)
	case <-ctx.Done():
		return Response{}, fmt.Errorf("%s: %w", cmd.Type, ctx.Err())
	}
}

// DiscoverPrinters asks the agent to enumerate attached USB printers.
func (b *Bus) DiscoverPrinters(ctx context.Context) ([]DiscoveredPrinter, error) {
	resp, err := b.Request(ctx, Command{Type: CmdDiscoverPrinters})
	if err != nil {
		return nil, err
	}

	var result struct {
		Printers []DiscoveredPrinter `json:"printers"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("decoding discovery result: %w", err)
	}
	return result.Printers, nil
}

// DiscoverReaders asks the agent to enumerate attached card readers.
func (b *Bus) DiscoverReaders(ctx context.Context) ([]DiscoveredReader, error) {
	resp, err := b.Request(ctx, Command{Type: CmdDiscoverReaders})
	if err != nil {
		return nil, err
	}

	var result struct {
		Readers []DiscoveredReader `json:"readers"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("decoding discovery result: %w", err)
	}
	return result.Readers, nil
}

// TestNetworkPrinter asks the agent to probe a network printer.
func (b *Bus) TestNetworkPrinter(ctx context.Context, req TestNetworkPrinterRequest) (TestResult, error) {
	resp, err := b.Request(ctx, Command{Type: CmdTestNetworkPrinter, Payload: req})
	if err != nil {
		return TestResult{}, err
	}

	var result TestResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return TestResult{}, fmt.Errorf("decoding test result: %w", err)
	}
	return result, nil
}

// Print sends one rendered ticket to the agent for printing.
func (b *Bus) Print(ctx context.Context, req PrintRequest) error {
	_, err := b.Request(ctx, Command{Type: CmdPrintReceipt, Payload: req})
	return err
}
