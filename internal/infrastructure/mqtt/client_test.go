package mqtt

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/tillworks/tillprint-core/internal/infrastructure/config"
)

// testConfig returns a valid agent bus configuration for testing.
// Broker-dependent tests require a running Mosquitto at 127.0.0.1:1883
// and skip themselves otherwise.
func testConfig() config.AgentConfig {
	return config.AgentConfig{
		Enabled:               true,
		Host:                  "127.0.0.1",
		Port:                  1883,
		ClientID:              "tillprint-test",
		QoS:                   1,
		RequestTimeoutSeconds: 5,
	}
}

// requireBroker skips the test when no local broker is listening.
func requireBroker(t *testing.T, cfg config.AgentConfig) {
	t.Helper()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
	if err != nil {
		t.Skipf("no MQTT broker at %s: %v", addr, err)
	}
	conn.Close()
}

// =============================================================================
// Topic Tests
// =============================================================================

func TestTopics(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"hardware command", topics.HardwareCommand("discover-printers"), "tillprint/hw/cmd/discover-printers"},
		{"hardware response", topics.HardwareResponse("req-abc123"), "tillprint/hw/resp/req-abc123"},
		{"hardware status", topics.HardwareStatus(), "tillprint/hw/status"},
		{"system status", topics.SystemStatus(), "tillprint/system/status"},
		{"all responses", topics.AllHardwareResponses(), "tillprint/hw/resp/+"},
		{"all topics", topics.AllTopics(), "tillprint/#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

// =============================================================================
// Validation Tests (no broker required)
// =============================================================================

func TestPublishValidation(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}

	if err := client.Publish("", []byte("x"), 1, false); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic error = %v, want ErrInvalidTopic", err)
	}
	if err := client.Publish("tillprint/hw/cmd/x", []byte("x"), 3, false); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("qos 3 error = %v, want ErrInvalidQoS", err)
	}
	if err := client.Publish("tillprint/hw/cmd/x", []byte("x"), 1, false); !errors.Is(err, ErrNotConnected) {
		t.Errorf("disconnected publish error = %v, want ErrNotConnected", err)
	}
}

func TestSubscribeValidation(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}
	handler := func(string, []byte) error { return nil }

	if err := client.Subscribe("", 1, handler); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic error = %v, want ErrInvalidTopic", err)
	}
	if err := client.Subscribe("tillprint/hw/resp/+", 3, handler); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("qos 3 error = %v, want ErrInvalidQoS", err)
	}
	if err := client.Subscribe("tillprint/hw/resp/+", 1, nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("nil handler error = %v, want ErrSubscribeFailed", err)
	}
}

func TestCloseNil(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on zero client error = %v, want nil", err)
	}
}

// =============================================================================
// Broker Tests
// =============================================================================

func TestConnect(t *testing.T) {
	cfg := testConfig()
	requireBroker(t, cfg)

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if !client.IsConnected() {
		t.Error("IsConnected() = false, want true")
	}
}

func TestHealthCheckDisconnected(t *testing.T) {
	cfg := testConfig()
	requireBroker(t, cfg)

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	client.Close()

	if err := client.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	cfg := testConfig()
	requireBroker(t, cfg)

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	topic := Topics{}.HardwareResponse("req-test-roundtrip")
	received := make(chan []byte, 1)

	err = client.Subscribe(topic, 1, func(_ string, payload []byte) error {
		select {
		case received <- payload:
		default:
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	want := []byte(`{"ok":true}`)
	if err := client.Publish(topic, want, 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case got := <-received:
		if string(got) != string(want) {
			t.Errorf("payload = %s, want %s", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("message not received within 5s")
	}
}

func TestSubscriptionTracking(t *testing.T) {
	cfg := testConfig()
	requireBroker(t, cfg)

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	topic := Topics{}.AllHardwareResponses()
	handler := func(string, []byte) error { return nil }

	if err := client.Subscribe(topic, 1, handler); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if !client.HasSubscription(topic) {
		t.Error("HasSubscription() = false after Subscribe")
	}
	if client.SubscriptionCount() != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", client.SubscriptionCount())
	}

	if err := client.Unsubscribe(topic); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}
	if client.HasSubscription(topic) {
		t.Error("HasSubscription() = true after Unsubscribe")
	}
}

func TestHandlerPanicRecovered(t *testing.T) {
	cfg := testConfig()
	requireBroker(t, cfg)

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	var mu sync.Mutex
	var logged bool
	client.SetLogger(panicLogger{onError: func() {
		mu.Lock()
		logged = true
		mu.Unlock()
	}})

	topic := Topics{}.HardwareResponse("req-panic")
	err = client.Subscribe(topic, 1, func(string, []byte) error {
		panic("handler blew up")
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if err := client.Publish(topic, []byte("x"), 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		mu.Lock()
		done := logged
		mu.Unlock()
		if done {
			return
		}
		select {
		case <-deadline:
			t.Fatal("panic was not logged within 5s")
		case <-time.After(50 * time.Millisecond):
		}
	}
}

type panicLogger struct {
	onError func()
}

func (p panicLogger) Error(string, ...any) { p.onError() }
func (panicLogger) Warn(string, ...any)    {}
