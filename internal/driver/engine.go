package driver

import (
	"sync"
	"time"

	"github.com/oakfield-av/lumen-core/internal/dmx"
)

// animation tracks one channel's in-flight fade.
type animation struct {
	from     byte
	to       byte
	start    time.Time
	duration time.Duration
}

// engine holds the output-side universe and advances fade animations on a
// fixed tick, retransmitting the frame whenever any channel changed.
//
// The engine is the only writer of its universe. ApplyFade and ReplaceState
// are safe to call from the dispatch loop while the ticker goroutine runs.
type engine struct {
	transmit func([]byte)
	interval time.Duration

	mu       sync.Mutex
	universe *dmx.Universe
	active   map[int]*animation
	closed   bool

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func newEngine(frameRate int, transmit func([]byte)) *engine {
	return &engine{
		transmit: transmit,
		interval: time.Second / time.Duration(frameRate),
		universe: dmx.NewUniverse(),
		active:   make(map[int]*animation),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// start launches the ticker goroutine.
func (e *engine) start() {
	go e.run()
}

// run advances animations until close. Frames are transmitted only while at
// least one animation is live; steady state produces no traffic beyond the
// frame sent when the state last changed.
func (e *engine) run() {
	defer close(e.done)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stop:
			return
		case now := <-ticker.C:
			if frame, changed := e.step(now); changed {
				e.transmit(frame)
			}
		}
	}
}

// step advances every live animation to now. It returns the current frame
// and whether any channel changed this tick.
func (e *engine) step(now time.Time) ([]byte, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	changed := false
	for channel, anim := range e.active {
		value := anim.valueAt(now)
		if value != e.universe.Get(channel) {
			e.universe.Set(channel, value)
			changed = true
		}
		if now.Sub(anim.start) >= anim.duration {
			delete(e.active, channel)
		}
	}

	if !changed {
		return nil, false
	}
	return e.universe.Bytes(), true
}

// valueAt computes the linearly interpolated value for an animation at the
// given instant, clamped to the final value once the duration has elapsed.
func (a *animation) valueAt(now time.Time) byte {
	elapsed := now.Sub(a.start)
	if elapsed >= a.duration {
		return a.to
	}
	if elapsed <= 0 {
		return a.from
	}
	delta := int64(a.to) - int64(a.from)
	return byte(int64(a.from) + delta*int64(elapsed)/int64(a.duration))
}

// applyFade accepts a fade for output. Instantaneous fades take effect and
// transmit before returning; timed fades start from the channel's current
// output value and are advanced by the ticker.
func (e *engine) applyFade(f dmx.Fade) error {
	if !f.InRange() {
		return ErrChannelOutOfRange
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}

	if f.Duration <= 0 {
		delete(e.active, f.Channel)
		e.universe.Set(f.Channel, f.Value)
		frame := e.universe.Bytes()
		e.mu.Unlock()
		e.transmit(frame)
		return nil
	}

	e.active[f.Channel] = &animation{
		from:     e.universe.Get(f.Channel),
		to:       f.Value,
		start:    time.Now(),
		duration: f.Duration,
	}
	e.mu.Unlock()
	return nil
}

// replaceState swaps the entire output universe, cancelling every live
// animation, and transmits the new frame.
func (e *engine) replaceState(u *dmx.Universe) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.universe = u.Clone()
	e.active = make(map[int]*animation)
	frame := e.universe.Bytes()
	e.mu.Unlock()
	e.transmit(frame)
}

// snapshot returns a copy of the current output universe.
func (e *engine) snapshot() *dmx.Universe {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.universe.Clone()
}

// close stops the ticker goroutine and rejects further fades.
func (e *engine) close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	e.stopOnce.Do(func() { close(e.stop) })
	<-e.done
}
