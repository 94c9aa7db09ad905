package controller

import (
	"context"
	"sync"

	"github.com/oakfield-av/lumen-core/internal/backup"
	"github.com/oakfield-av/lumen-core/internal/dmx"
	"github.com/oakfield-av/lumen-core/internal/driver"
	"github.com/oakfield-av/lumen-core/internal/infrastructure/logging"
)

// queueDepth bounds the number of commands waiting for the loop. Producers
// block once the queue is full, which back-pressures the outer interfaces
// instead of growing without bound.
const queueDepth = 256

// Notifier receives state-change events after the driver has accepted
// them. Calls are made from the dispatch goroutine, so implementations
// must hand off quickly and never block.
type Notifier interface {
	FadeApplied(fade dmx.Fade)
	UniverseReplaced(universe *dmx.Universe)
}

// request pairs a command with its dedicated reply channel. The channel
// is buffered so the loop never blocks on a caller that has gone away.
type request struct {
	cmd   Command
	reply chan Reply
}

// Deps holds the dependencies the controller needs.
type Deps struct {
	Driver   driver.Driver
	Sync     *backup.Synchronizer
	Notifier Notifier
	Logger   *logging.Logger
}

// Controller owns the serialized view of lighting state. All mutations
// flow through its dispatch goroutine via Submit.
type Controller struct {
	driver   driver.Driver
	sync     *backup.Synchronizer
	notifier Notifier
	logger   *logging.Logger

	commands chan request
	done     chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a controller. Start must be called before Submit.
func New(deps Deps) *Controller {
	c := &Controller{
		driver:   deps.Driver,
		sync:     deps.Sync,
		notifier: deps.Notifier,
		logger:   deps.Logger.With("component", "controller"),
		commands: make(chan request, queueDepth),
		done:     make(chan struct{}),
	}
	if c.notifier == nil {
		c.notifier = nopNotifier{}
	}
	return c
}

// Start recovers any orphaned state and launches the dispatch goroutine.
// Recovery completes before the first command is accepted, so no mutation
// can interleave with the restore.
func (c *Controller) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		if restored := c.sync.Reload(ctx); restored != nil {
			c.driver.ReplaceState(restored)
			c.logger.Info("restored lighting state from previous run")
		}
		go c.run(ctx)
	})
}

// Submit queues a command and waits for its reply. It returns ErrStopped
// once the dispatch loop has shut down, or the context error if ctx ends
// first.
func (c *Controller) Submit(ctx context.Context, cmd Command) (Reply, error) {
	req := request{cmd: cmd, reply: make(chan Reply, 1)}

	select {
	case c.commands <- req:
	case <-c.done:
		return Reply{}, ErrStopped
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}

	select {
	case reply := <-req.reply:
		return reply, nil
	case <-c.done:
		// The loop may have answered and stopped in the same instant;
		// the buffered reply survives that race.
		select {
		case reply := <-req.reply:
			return reply, nil
		default:
			return Reply{}, ErrStopped
		}
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}

// Done is closed once the dispatch loop has stopped.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) run(ctx context.Context) {
	c.logger.Info("dispatch loop running")
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("dispatch loop stopping", "reason", "context cancelled")
			c.stop()
			return
		case req := <-c.commands:
			if shutdown := c.handle(ctx, req); shutdown {
				c.logger.Info("dispatch loop stopping", "reason", "shutdown command")
				c.stop()
				return
			}
		}
	}
}

func (c *Controller) stop() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
}

// handle processes one command and always sends exactly one reply. The
// returned flag is true when the command asked the loop to stop.
func (c *Controller) handle(ctx context.Context, req request) bool {
	switch cmd := req.cmd.(type) {
	case PlayFade:
		req.reply <- c.playFade(ctx, cmd.Fade)
	case ReplaceUniverse:
		req.reply <- c.replaceUniverse(ctx, cmd.Universe)
	case GetUniverse:
		req.reply <- Reply{OK: true, Universe: c.driver.Universe()}
	case Shutdown:
		req.reply <- Reply{OK: true, Message: "closing"}
		return true
	default:
		req.reply <- Reply{Message: "unrecognized command"}
	}
	return false
}

func (c *Controller) playFade(ctx context.Context, fade dmx.Fade) Reply {
	if err := c.driver.ApplyFade(fade); err != nil {
		c.logger.Warn("fade rejected",
			"channel", fade.Channel,
			"value", fade.Value,
			"error", err,
		)
		return Reply{Message: err.Error()}
	}

	c.sync.RecordFade(ctx, fade)
	c.notifier.FadeApplied(fade)
	return Reply{OK: true, Message: "fade accepted"}
}

func (c *Controller) replaceUniverse(ctx context.Context, universe *dmx.Universe) Reply {
	if universe == nil {
		universe = dmx.NewUniverse()
	}

	c.driver.ReplaceState(universe)
	c.sync.RecordUniverse(ctx, universe)
	c.notifier.UniverseReplaced(universe)
	return Reply{OK: true, Message: "state replaced"}
}

type nopNotifier struct{}

func (nopNotifier) FadeApplied(dmx.Fade) {}

func (nopNotifier) UniverseReplaced(*dmx.Universe) {}
