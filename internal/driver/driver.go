package driver

import (
	"errors"

	"github.com/oakfield-av/lumen-core/internal/dmx"
)

// Driver is the interface the dispatch loop drives hardware through.
// Implementations own the transport; callers never see frames or timing.
//
// ApplyFade is fire-and-forget once accepted: a nil return means the fade
// was handed to the output stage, not that the animation has finished.
// ReplaceState is assumed non-failing — a full-frame replacement is always
// transmittable once the driver is open.
type Driver interface {
	ApplyFade(fade dmx.Fade) error
	ReplaceState(universe *dmx.Universe)
	Universe() *dmx.Universe
	Close() error
}

// Domain-specific errors for driver operations.
var (
	// ErrChannelOutOfRange is returned when a fade targets a channel
	// outside 1..512.
	ErrChannelOutOfRange = errors.New("driver: channel out of range 1..512")

	// ErrClosed is returned when a fade is applied after Close.
	ErrClosed = errors.New("driver: output closed")
)
