package mqtt

import (
	"errors"
	"strings"
	"testing"

	"github.com/oakfield-av/lumen-core/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "lumencore-test",
			TLS:      false,
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// =============================================================================
// Topic Builder Tests
// =============================================================================

func TestTopics(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"CommandFade", topics.CommandFade(), "lumen/command/fade"},
		{"StateFade", topics.StateFade(), "lumen/state/fade"},
		{"StateUniverse", topics.StateUniverse(), "lumen/state/universe"},
		{"SystemStatus", topics.SystemStatus(), "lumen/system/status"},
		{"AllCommands", topics.AllCommands(), "lumen/command/+"},
		{"AllState", topics.AllState(), "lumen/state/+"},
		{"AllTopics", topics.AllTopics(), "lumen/#"},
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
// Options Tests
// =============================================================================

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 {
		t.Fatalf("got %d brokers, want 1", len(opts.Servers))
	}
	if opts.Servers[0].Scheme != "tcp" {
		t.Errorf("broker scheme = %q, want tcp", opts.Servers[0].Scheme)
	}
	if opts.ClientID != "lumencore-test" {
		t.Errorf("client ID = %q, want lumencore-test", opts.ClientID)
	}
	if !opts.AutoReconnect {
		t.Error("AutoReconnect not enabled")
	}
}

func TestBuildClientOptions_TLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true

	opts := buildClientOptions(cfg)
	if opts.Servers[0].Scheme != "ssl" {
		t.Errorf("broker scheme = %q, want ssl with TLS enabled", opts.Servers[0].Scheme)
	}
	if opts.TLSConfig == nil {
		t.Error("TLSConfig not set with TLS enabled")
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig())
	configureLWT(opts, "lumencore-test")

	if !opts.WillEnabled {
		t.Fatal("will not enabled")
	}
	if opts.WillTopic != "lumen/system/status" {
		t.Errorf("will topic = %q, want lumen/system/status", opts.WillTopic)
	}
	if !opts.WillRetained {
		t.Error("will not retained")
	}
	if !strings.Contains(string(opts.WillPayload), `"status":"offline"`) {
		t.Errorf("will payload %q missing offline status", opts.WillPayload)
	}
}

func TestStatusPayloads(t *testing.T) {
	online := buildOnlinePayload("lumencore-test")
	if !strings.Contains(online, `"status":"online"`) {
		t.Errorf("online payload %q missing status", online)
	}
	if !strings.Contains(online, `"client_id":"lumencore-test"`) {
		t.Errorf("online payload %q missing client ID", online)
	}

	offline := buildOfflinePayload("lumencore-test")
	if !strings.Contains(offline, `"reason":"graceful_shutdown"`) {
		t.Errorf("offline payload %q missing shutdown reason", offline)
	}
}

// =============================================================================
// Validation Tests (no broker required)
// =============================================================================

func TestPublishValidation(t *testing.T) {
	client := &Client{cfg: testConfig()}

	if err := client.Publish("", []byte("x"), 1, false); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic error = %v, want ErrInvalidTopic", err)
	}
	if err := client.Publish("lumen/state/fade", []byte("x"), 3, false); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("QoS 3 error = %v, want ErrInvalidQoS", err)
	}

	oversized := make([]byte, maxPayloadSize+1)
	if err := client.Publish("lumen/state/fade", oversized, 1, false); !errors.Is(err, ErrPublishFailed) {
		t.Errorf("oversized payload error = %v, want ErrPublishFailed", err)
	}

	// Disconnected client rejects valid publishes.
	if err := client.Publish("lumen/state/fade", []byte("x"), 1, false); !errors.Is(err, ErrNotConnected) {
		t.Errorf("disconnected publish error = %v, want ErrNotConnected", err)
	}
}

func TestSubscribeValidation(t *testing.T) {
	client := &Client{
		cfg:           testConfig(),
		subscriptions: make(map[string]subscription),
	}
	handler := func(string, []byte) error { return nil }

	if err := client.Subscribe("", 1, handler); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic error = %v, want ErrInvalidTopic", err)
	}
	if err := client.Subscribe("lumen/command/fade", 3, handler); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("QoS 3 error = %v, want ErrInvalidQoS", err)
	}
	if err := client.Subscribe("lumen/command/fade", 1, nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("nil handler error = %v, want ErrSubscribeFailed", err)
	}
	if err := client.Subscribe("lumen/command/fade", 1, handler); !errors.Is(err, ErrNotConnected) {
		t.Errorf("disconnected subscribe error = %v, want ErrNotConnected", err)
	}

	if client.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d after failed subscribes, want 0", client.SubscriptionCount())
	}
}

func TestCloseNil(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on unconnected client error = %v, want nil", err)
	}
}
