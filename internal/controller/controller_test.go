package controller

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oakfield-av/lumen-core/internal/backup"
	"github.com/oakfield-av/lumen-core/internal/dmx"
	"github.com/oakfield-av/lumen-core/internal/driver"
	"github.com/oakfield-av/lumen-core/internal/infrastructure/config"
	"github.com/oakfield-av/lumen-core/internal/infrastructure/logging"
)

// MockDriver records every call for assertion. When gate is set, ApplyFade
// announces entry on entered and then blocks until the gate is closed,
// which lets tests hold the dispatch loop mid-command.
type MockDriver struct {
	mu           sync.Mutex
	universe     *dmx.Universe
	fades        []dmx.Fade
	replacements int
	closed       bool

	applyErr error
	gate     chan struct{}
	entered  chan struct{}
}

func NewMockDriver() *MockDriver {
	return &MockDriver{universe: dmx.NewUniverse()}
}

func (d *MockDriver) ApplyFade(fade dmx.Fade) error {
	if d.entered != nil {
		d.entered <- struct{}{}
	}
	if d.gate != nil {
		<-d.gate
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.applyErr != nil {
		return d.applyErr
	}
	if !fade.InRange() {
		return driver.ErrChannelOutOfRange
	}
	d.fades = append(d.fades, fade)
	d.universe.Set(fade.Channel, fade.Value)
	return nil
}

func (d *MockDriver) ReplaceState(universe *dmx.Universe) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.universe = universe.Clone()
	d.replacements++
}

func (d *MockDriver) Universe() *dmx.Universe {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.universe.Clone()
}

func (d *MockDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *MockDriver) appliedFades() []dmx.Fade {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]dmx.Fade, len(d.fades))
	copy(out, d.fades)
	return out
}

// MockNotifier records published events.
type MockNotifier struct {
	mu        sync.Mutex
	fades     []dmx.Fade
	universes int
}

func (n *MockNotifier) FadeApplied(fade dmx.Fade) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.fades = append(n.fades, fade)
}

func (n *MockNotifier) UniverseReplaced(*dmx.Universe) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.universes++
}

func noopSync(t *testing.T) *backup.Synchronizer {
	t.Helper()
	return backup.New(config.BackupConfig{Namespace: "lumen"}, "127.0.0.1:0", logging.Default())
}

func newRunningController(t *testing.T, drv driver.Driver, notifier Notifier) *Controller {
	t.Helper()
	c := New(Deps{
		Driver:   drv,
		Sync:     noopSync(t),
		Notifier: notifier,
		Logger:   logging.Default(),
	})
	c.Start(context.Background())
	return c
}

func TestPlayFade(t *testing.T) {
	drv := NewMockDriver()
	notifier := &MockNotifier{}
	c := newRunningController(t, drv, notifier)

	fade := dmx.Fade{Channel: 3, Value: 128, Duration: time.Second}
	reply, err := c.Submit(context.Background(), PlayFade{Fade: fade})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !reply.OK {
		t.Fatalf("Submit() reply not OK: %q", reply.Message)
	}

	applied := drv.appliedFades()
	if len(applied) != 1 || applied[0] != fade {
		t.Errorf("driver saw fades %v, want exactly %v", applied, fade)
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.fades) != 1 {
		t.Errorf("notifier saw %d fade events, want 1", len(notifier.fades))
	}
}

func TestPlayFade_DriverRejection(t *testing.T) {
	drv := NewMockDriver()
	notifier := &MockNotifier{}
	c := newRunningController(t, drv, notifier)

	reply, err := c.Submit(context.Background(), PlayFade{
		Fade: dmx.Fade{Channel: 513, Value: 10},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if reply.OK {
		t.Error("reply.OK = true for out-of-range channel")
	}
	if !strings.Contains(reply.Message, "out of range") {
		t.Errorf("reply.Message = %q, want channel range failure", reply.Message)
	}

	// A rejected fade must not be published.
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.fades) != 0 {
		t.Errorf("notifier saw %d fade events after rejection, want 0", len(notifier.fades))
	}
}

func TestReplaceUniverse(t *testing.T) {
	drv := NewMockDriver()
	notifier := &MockNotifier{}
	c := newRunningController(t, drv, notifier)

	u := dmx.NewUniverse()
	u.Set(1, 255)
	u.Set(400, 42)

	reply, err := c.Submit(context.Background(), ReplaceUniverse{Universe: u})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !reply.OK {
		t.Fatalf("reply not OK: %q", reply.Message)
	}

	got := drv.Universe()
	if got.Get(1) != 255 || got.Get(400) != 42 {
		t.Errorf("driver universe ch1=%d ch400=%d, want 255/42", got.Get(1), got.Get(400))
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if notifier.universes != 1 {
		t.Errorf("notifier saw %d universe events, want 1", notifier.universes)
	}
}

func TestGetUniverse_ReturnsIsolatedCopy(t *testing.T) {
	drv := NewMockDriver()
	c := newRunningController(t, drv, nil)

	if _, err := c.Submit(context.Background(), PlayFade{
		Fade: dmx.Fade{Channel: 1, Value: 100},
	}); err != nil {
		t.Fatalf("Submit(PlayFade) error = %v", err)
	}

	reply, err := c.Submit(context.Background(), GetUniverse{})
	if err != nil {
		t.Fatalf("Submit(GetUniverse) error = %v", err)
	}
	if reply.Universe == nil {
		t.Fatal("GetUniverse reply has nil universe")
	}
	if reply.Universe.Get(1) != 100 {
		t.Fatalf("universe ch1 = %d, want 100", reply.Universe.Get(1))
	}

	// Mutating the returned copy must not leak into the driver state.
	reply.Universe.Set(1, 0)
	if drv.Universe().Get(1) != 100 {
		t.Error("GetUniverse reply aliases driver state")
	}
}

func TestCommandsProcessedInArrivalOrder(t *testing.T) {
	drv := NewMockDriver()
	drv.gate = make(chan struct{})
	drv.entered = make(chan struct{}, 4)
	c := newRunningController(t, drv, nil)

	first := dmx.Fade{Channel: 1, Value: 10}
	second := dmx.Fade{Channel: 1, Value: 20}

	firstDone := make(chan Reply, 1)
	go func() {
		reply, _ := c.Submit(context.Background(), PlayFade{Fade: first})
		firstDone <- reply
	}()

	// Wait for the loop to be inside the first fade, then queue the
	// second behind it.
	select {
	case <-drv.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch loop never reached the first fade")
	}

	secondDone := make(chan Reply, 1)
	go func() {
		reply, _ := c.Submit(context.Background(), PlayFade{Fade: second})
		secondDone <- reply
	}()

	// Releasing the gate lets both commands complete in queue order.
	close(drv.gate)

	for i, done := range []chan Reply{firstDone, secondDone} {
		select {
		case reply := <-done:
			if !reply.OK {
				t.Fatalf("command %d not OK: %q", i, reply.Message)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("command %d never replied", i)
		}
	}

	applied := drv.appliedFades()
	if len(applied) != 2 {
		t.Fatalf("driver saw %d fades, want 2", len(applied))
	}
	if applied[0] != first || applied[1] != second {
		t.Errorf("fades applied as %v, want [%v %v]", applied, first, second)
	}
	if got := drv.Universe().Get(1); got != 20 {
		t.Errorf("final ch1 = %d, want 20 (later command wins)", got)
	}
}

func TestShutdown(t *testing.T) {
	drv := NewMockDriver()
	c := newRunningController(t, drv, nil)

	reply, err := c.Submit(context.Background(), Shutdown{})
	if err != nil {
		t.Fatalf("Submit(Shutdown) error = %v", err)
	}
	if !reply.OK {
		t.Errorf("shutdown reply not OK: %q", reply.Message)
	}

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done() not closed after shutdown")
	}

	_, err = c.Submit(context.Background(), GetUniverse{})
	if !errors.Is(err, ErrStopped) {
		t.Errorf("Submit() after shutdown error = %v, want ErrStopped", err)
	}
}

func TestContextCancellationStopsLoop(t *testing.T) {
	drv := NewMockDriver()
	c := New(Deps{
		Driver: drv,
		Sync:   noopSync(t),
		Logger: logging.Default(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)
	cancel()

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done() not closed after context cancellation")
	}

	_, err := c.Submit(context.Background(), GetUniverse{})
	if !errors.Is(err, ErrStopped) {
		t.Errorf("Submit() error = %v, want ErrStopped", err)
	}
}

func TestConcurrentFades_ShadowKeepsLastValue(t *testing.T) {
	url := "sqlite://" + filepath.Join(t.TempDir(), "recovery.db")
	addr := "127.0.0.1:8852"
	cfg := config.BackupConfig{URL: url, Namespace: "lumen"}
	logger := logging.Default()
	ctx := context.Background()

	syncer := backup.New(cfg, addr, logger)
	if !syncer.Enabled() {
		t.Skip("sqlite store unavailable")
	}

	drv := NewMockDriver()
	drv.gate = make(chan struct{})
	drv.entered = make(chan struct{}, 4)
	c := New(Deps{Driver: drv, Sync: syncer, Logger: logger})
	c.Start(ctx)

	done := make(chan Reply, 2)
	go func() {
		reply, _ := c.Submit(ctx, PlayFade{Fade: dmx.Fade{Channel: 1, Value: 10}})
		done <- reply
	}()

	select {
	case <-drv.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch loop never reached the first fade")
	}

	go func() {
		reply, _ := c.Submit(ctx, PlayFade{Fade: dmx.Fade{Channel: 1, Value: 20}})
		done <- reply
	}()
	close(drv.gate)

	for i := 0; i < 2; i++ {
		select {
		case reply := <-done:
			if !reply.OK {
				t.Fatalf("fade reply not OK: %q", reply.Message)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("fade never replied")
		}
	}

	// Simulate a crash: no Close, so the snapshot stays behind. A fresh
	// synchronizer at the same address must see the later value.
	restored := backup.New(cfg, addr, logger).Reload(ctx)
	if restored == nil {
		t.Fatal("Reload() = nil, want orphaned snapshot")
	}
	if got := restored.Get(1); got != 20 {
		t.Errorf("shadow ch1 = %d, want 20 (later command wins)", got)
	}
}

func TestStart_RestoresOrphanedState(t *testing.T) {
	url := "sqlite://" + filepath.Join(t.TempDir(), "recovery.db")
	addr := "127.0.0.1:8852"
	cfg := config.BackupConfig{URL: url, Namespace: "lumen"}
	logger := logging.Default()
	ctx := context.Background()

	// First life records state and crashes without Close.
	crashed := backup.New(cfg, addr, logger)
	if !crashed.Enabled() {
		t.Skip("sqlite store unavailable")
	}
	crashed.RecordFade(ctx, dmx.Fade{Channel: 7, Value: 200})

	drv := NewMockDriver()
	c := New(Deps{
		Driver: drv,
		Sync:   backup.New(cfg, addr, logger),
		Logger: logger,
	})
	c.Start(ctx)

	// Restore happens synchronously inside Start, before any command.
	if got := drv.Universe().Get(7); got != 200 {
		t.Errorf("ch7 after restart = %d, want 200", got)
	}

	if _, err := c.Submit(ctx, Shutdown{}); err != nil {
		t.Fatalf("Submit(Shutdown) error = %v", err)
	}
}
