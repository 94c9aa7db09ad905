package mqttbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/oakfield-av/lumen-core/internal/controller"
	"github.com/oakfield-av/lumen-core/internal/dmx"
	"github.com/oakfield-av/lumen-core/internal/infrastructure/logging"
	"github.com/oakfield-av/lumen-core/internal/infrastructure/mqtt"
)

// MQTTClient is the broker surface the bridge needs.
// This allows mocking in tests and flexibility in implementation.
type MQTTClient interface {
	// Publish sends a message to a topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error

	// Unsubscribe removes a topic subscription.
	Unsubscribe(topic string) error
}

// CommandSubmitter is the dispatch loop surface the bridge drives.
type CommandSubmitter interface {
	Submit(ctx context.Context, cmd controller.Command) (controller.Reply, error)
}

// universePayload is the JSON shape of a universe state event.
type universePayload struct {
	Channels []int `json:"channels"`
}

// Bridge translates between MQTT traffic and dispatch loop commands.
//
// Thread Safety: All methods are safe for concurrent use; the MQTT client
// invokes handlers from its own goroutines and the dispatch loop
// serializes the resulting commands.
type Bridge struct {
	client MQTTClient
	ctrl   CommandSubmitter
	qos    byte
	topics mqtt.Topics
	logger *logging.Logger
}

// New creates a bridge. Start must be called to begin receiving commands.
func New(client MQTTClient, ctrl CommandSubmitter, qos byte, logger *logging.Logger) *Bridge {
	return &Bridge{
		client: client,
		ctrl:   ctrl,
		qos:    qos,
		logger: logger.With("component", "mqttbridge"),
	}
}

// Start subscribes to the inbound command topics.
func (b *Bridge) Start(ctx context.Context) error {
	topic := b.topics.CommandFade()
	if err := b.client.Subscribe(topic, b.qos, func(_ string, payload []byte) error {
		return b.handleFadeCommand(ctx, payload)
	}); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}

	b.logger.Info("mqtt bridge listening", "topic", topic)
	return nil
}

// Close removes the command subscription. Publish-side events simply stop
// when the caller stops notifying.
func (b *Bridge) Close() error {
	if err := b.client.Unsubscribe(b.topics.CommandFade()); err != nil {
		return fmt.Errorf("unsubscribing fade commands: %w", err)
	}
	return nil
}

// handleFadeCommand parses one inbound fade message and submits it.
//
// There is no reply topic: a bad message is logged and dropped, and a
// driver rejection surfaces the same way. Peers that need confirmation
// use the HTTP API.
func (b *Bridge) handleFadeCommand(ctx context.Context, payload []byte) error {
	var msg dmx.FadeMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("parsing fade command: %w", err)
	}

	fade, err := msg.Fade()
	if err != nil {
		return fmt.Errorf("invalid fade command: %w", err)
	}

	reply, err := b.ctrl.Submit(ctx, controller.PlayFade{Fade: fade})
	if err != nil {
		return fmt.Errorf("submitting fade command: %w", err)
	}
	if !reply.OK {
		b.logger.Warn("mqtt fade command rejected",
			"channel", fade.Channel,
			"reason", reply.Message,
		)
	}
	return nil
}

// FadeApplied publishes an accepted fade to the state topic.
func (b *Bridge) FadeApplied(fade dmx.Fade) {
	payload, err := json.Marshal(fade.Message())
	if err != nil {
		return
	}
	if err := b.client.Publish(b.topics.StateFade(), payload, b.qos, false); err != nil {
		b.logger.Warn("publishing fade event failed", "error", err)
	}
}

// UniverseReplaced publishes the new full state, retained so late
// subscribers see the current universe.
func (b *Bridge) UniverseReplaced(universe *dmx.Universe) {
	raw := universe.Bytes()
	channels := make([]int, len(raw))
	for i, v := range raw {
		channels[i] = int(v)
	}

	payload, err := json.Marshal(universePayload{Channels: channels})
	if err != nil {
		return
	}
	if err := b.client.Publish(b.topics.StateUniverse(), payload, b.qos, true); err != nil {
		b.logger.Warn("publishing universe event failed", "error", err)
	}
}
