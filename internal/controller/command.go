package controller

import "github.com/oakfield-av/lumen-core/internal/dmx"

// Command is one unit of work for the dispatch loop.
type Command interface {
	isCommand()
}

// PlayFade starts one fade on the output.
type PlayFade struct {
	Fade dmx.Fade
}

// ReplaceUniverse swaps the entire output state in a single step,
// cancelling any fades in flight.
type ReplaceUniverse struct {
	Universe *dmx.Universe
}

// GetUniverse requests a copy of the current output state.
type GetUniverse struct{}

// Shutdown stops the loop once every earlier command has been answered.
type Shutdown struct{}

func (PlayFade) isCommand()        {}
func (ReplaceUniverse) isCommand() {}
func (GetUniverse) isCommand()     {}
func (Shutdown) isCommand()        {}

// Reply is the single response every submitted command receives.
type Reply struct {
	OK      bool
	Message string

	// Universe carries the state copy for GetUniverse replies, nil for
	// every other command.
	Universe *dmx.Universe
}
