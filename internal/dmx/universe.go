package dmx

// ChannelCount is the number of channels in a DMX-512 universe.
const ChannelCount = 512

// Channel addressing bounds. DMX channels are one-indexed on the wire and in
// every external surface; only the backing array is zero-indexed.
const (
	MinChannel = 1
	MaxChannel = ChannelCount
)

// Universe holds the intensity values for all 512 channels of one rig.
//
// Out-of-range reads return zero and out-of-range writes are ignored; the
// accessors never fail and never panic. This keeps bounds policy in one
// place — callers that need a hard error (the output driver rejecting an
// unreachable channel) check the range themselves before touching the model.
type Universe struct {
	values [ChannelCount]byte
}

// NewUniverse returns a universe with every channel at zero (blackout).
func NewUniverse() *Universe {
	return &Universe{}
}

// FromBytes builds a universe from a wire-order byte sequence.
// Shorter input leaves the remaining channels at zero; longer input is
// truncated at 512 bytes.
func FromBytes(b []byte) *Universe {
	u := &Universe{}
	copy(u.values[:], b)
	return u
}

// Get returns the value of a channel, or 0 for any channel outside 1..512.
func (u *Universe) Get(channel int) byte {
	if channel < MinChannel || channel > MaxChannel {
		return 0
	}
	return u.values[channel-1]
}

// Set overwrites the value of a channel. Channels outside 1..512 are
// silently ignored.
func (u *Universe) Set(channel int, value byte) {
	if channel < MinChannel || channel > MaxChannel {
		return
	}
	u.values[channel-1] = value
}

// Bytes returns a copy of all 512 channel values in wire order
// (channel n at offset n-1).
func (u *Universe) Bytes() []byte {
	out := make([]byte, ChannelCount)
	copy(out, u.values[:])
	return out
}

// Clone returns an independent copy of the universe.
func (u *Universe) Clone() *Universe {
	c := *u
	return &c
}
