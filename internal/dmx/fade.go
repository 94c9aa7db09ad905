package dmx

import (
	"fmt"
	"time"
)

// Fade describes a single requested change: drive one channel to a target
// value, either instantly or interpolated linearly over Duration.
// A zero Duration means the change is applied immediately.
type Fade struct {
	Channel  int
	Value    byte
	Duration time.Duration
}

// InRange reports whether the fade targets a valid DMX channel.
func (f Fade) InRange() bool {
	return f.Channel >= MinChannel && f.Channel <= MaxChannel
}

// FadeMessage is the JSON wire form of a Fade, shared by the HTTP and MQTT
// adapters. Duration is carried in milliseconds; zero or absent means
// instantaneous.
type FadeMessage struct {
	Channel    int   `json:"channel"`
	Value      int   `json:"value"`
	DurationMs int64 `json:"duration_ms,omitempty"`
}

// Fade converts the wire message to a Fade, validating the value range.
// Channel range is deliberately not checked here — an unreachable channel is
// the output driver's rejection to make, so it surfaces as a failed command
// rather than a malformed request.
func (m FadeMessage) Fade() (Fade, error) {
	if m.Value < 0 || m.Value > 255 {
		return Fade{}, fmt.Errorf("fade value %d out of range 0..255", m.Value)
	}
	if m.DurationMs < 0 {
		return Fade{}, fmt.Errorf("fade duration %dms is negative", m.DurationMs)
	}
	return Fade{
		Channel:  m.Channel,
		Value:    byte(m.Value),
		Duration: time.Duration(m.DurationMs) * time.Millisecond,
	}, nil
}

// Message converts a Fade to its wire form.
func (f Fade) Message() FadeMessage {
	return FadeMessage{
		Channel:    f.Channel,
		Value:      int(f.Value),
		DurationMs: f.Duration.Milliseconds(),
	}
}
