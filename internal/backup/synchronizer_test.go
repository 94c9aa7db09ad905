package backup

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/oakfield-av/lumen-core/internal/dmx"
	"github.com/oakfield-av/lumen-core/internal/infrastructure/config"
	"github.com/oakfield-av/lumen-core/internal/infrastructure/logging"
)

// MockStore is an in-memory Store for testing.
type MockStore struct {
	mu      sync.Mutex
	entries map[string]string
	closed  bool

	// For testing error paths
	getErr    error
	setErr    error
	deleteErr error
}

func NewMockStore() *MockStore {
	return &MockStore{entries: make(map[string]string)}
}

func (m *MockStore) Get(_ context.Context, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.entries[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

func (m *MockStore) Set(_ context.Context, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *MockStore) Delete(_ context.Context, key string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockStore) entryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// newTestSynchronizer wires a synchronizer to a mock store directly.
func newTestSynchronizer(store Store) *Synchronizer {
	return &Synchronizer{
		store:  store,
		key:    "lumen:127.0.0.1:8852:universe",
		shadow: dmx.NewUniverse(),
		logger: logging.Default(),
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	u := dmx.NewUniverse()
	u.Set(1, 255)
	u.Set(256, 77)
	u.Set(512, 1)

	value, err := encodeSnapshot(u)
	if err != nil {
		t.Fatalf("encodeSnapshot() error = %v", err)
	}

	got, err := decodeSnapshot(value)
	if err != nil {
		t.Fatalf("decodeSnapshot() error = %v", err)
	}

	for ch := dmx.MinChannel; ch <= dmx.MaxChannel; ch++ {
		if got.Get(ch) != u.Get(ch) {
			t.Fatalf("round trip mismatch on channel %d: got %d, want %d", ch, got.Get(ch), u.Get(ch))
		}
	}
}

func TestRecoveryScenario(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	// First life: full state, then a series of fades, then a crash
	// (no Close call).
	s := newTestSynchronizer(store)

	u0 := dmx.NewUniverse()
	u0.Set(1, 255)
	u0.Set(2, 255)
	s.RecordUniverse(ctx, u0)

	s.RecordFade(ctx, dmx.Fade{Channel: 2, Value: 150})
	s.RecordFade(ctx, dmx.Fade{Channel: 5, Value: 255})
	s.RecordFade(ctx, dmx.Fade{Channel: 6, Value: 150})

	// Second life at the same address.
	restarted := newTestSynchronizer(store)
	recovered := restarted.Reload(ctx)
	if recovered == nil {
		t.Fatal("Reload() returned nil, want orphaned snapshot")
	}

	want := map[int]byte{1: 255, 2: 150, 5: 255, 6: 150}
	for ch, v := range want {
		if got := recovered.Get(ch); got != v {
			t.Errorf("recovered channel %d = %d, want %d", ch, got, v)
		}
	}
	if got := recovered.Get(3); got != 0 {
		t.Errorf("untouched channel 3 = %d, want 0", got)
	}
}

func TestCleanShutdownLeavesNothing(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	s := newTestSynchronizer(store)
	s.RecordFade(ctx, dmx.Fade{Channel: 1, Value: 10})
	if store.entryCount() != 1 {
		t.Fatalf("store has %d entries after record, want 1", store.entryCount())
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if store.entryCount() != 0 {
		t.Error("Close() did not delete the recovery entry")
	}
	if !store.closed {
		t.Error("Close() did not close the store")
	}

	// A fresh instance at the same address starts clean.
	if got := newTestSynchronizer(store).Reload(ctx); got != nil {
		t.Error("Reload() after clean shutdown returned a snapshot")
	}
}

func TestClose_Idempotent(t *testing.T) {
	store := NewMockStore()
	s := newTestSynchronizer(store)

	if err := s.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

func TestClose_DeleteFailureIgnored(t *testing.T) {
	store := NewMockStore()
	store.deleteErr = errors.New("store gone")

	s := newTestSynchronizer(store)
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil despite delete failure", err)
	}
}

func TestNoStoreMode(t *testing.T) {
	// No URL configured: every method is a silent no-op.
	s := New(config.BackupConfig{Namespace: "lumen"}, "127.0.0.1:8852", logging.Default())

	if s.Enabled() {
		t.Error("Enabled() = true without a store URL")
	}

	ctx := context.Background()
	s.RecordFade(ctx, dmx.Fade{Channel: 1, Value: 10})
	s.RecordUniverse(ctx, dmx.NewUniverse())
	if got := s.Reload(ctx); got != nil {
		t.Errorf("Reload() = %v, want nil in no-op mode", got)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestNew_UnreachableStoreDegrades(t *testing.T) {
	cfg := config.BackupConfig{
		URL:       "redis://127.0.0.1:1/0", // nothing listens on port 1
		Namespace: "lumen",
	}

	s := New(cfg, "127.0.0.1:8852", logging.Default())
	if s.Enabled() {
		t.Error("Enabled() = true for unreachable store, want no-op mode")
	}

	// All operations still succeed trivially.
	s.RecordFade(context.Background(), dmx.Fade{Channel: 1, Value: 1})
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestRecordFade_WriteFailureSwallowed(t *testing.T) {
	store := NewMockStore()
	store.setErr = errors.New("connection reset")

	s := newTestSynchronizer(store)

	// Must not panic or propagate; the shadow still advances so a later
	// successful write carries the full state.
	s.RecordFade(context.Background(), dmx.Fade{Channel: 9, Value: 90})

	store.setErr = nil
	s.RecordFade(context.Background(), dmx.Fade{Channel: 10, Value: 100})

	recovered := newTestSynchronizer(store).Reload(context.Background())
	if recovered == nil {
		t.Fatal("Reload() returned nil")
	}
	if recovered.Get(9) != 90 || recovered.Get(10) != 100 {
		t.Errorf("recovered channels 9/10 = %d/%d, want 90/100",
			recovered.Get(9), recovered.Get(10))
	}
}

func TestReload_MalformedSnapshot(t *testing.T) {
	store := NewMockStore()
	s := newTestSynchronizer(store)

	if err := store.Set(context.Background(), s.key, "{not yaml: ["); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	recovered := s.Reload(context.Background())
	if recovered == nil {
		t.Fatal("Reload() = nil, want substituted blackout universe")
	}
	for _, ch := range []int{1, 100, 512} {
		if recovered.Get(ch) != 0 {
			t.Errorf("substituted universe channel %d = %d, want 0", ch, recovered.Get(ch))
		}
	}
}

func TestReload_TolerantOfShortSnapshot(t *testing.T) {
	store := NewMockStore()
	s := newTestSynchronizer(store)

	// A valid snapshot with fewer than 512 channels zero-fills the rest.
	short := dmx.FromBytes([]byte{5, 6, 7})
	value, err := encodeSnapshot(short)
	if err != nil {
		t.Fatalf("encodeSnapshot() error = %v", err)
	}
	if err := store.Set(context.Background(), s.key, value); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	recovered := s.Reload(context.Background())
	if recovered == nil {
		t.Fatal("Reload() returned nil")
	}
	if recovered.Get(2) != 6 || recovered.Get(4) != 0 {
		t.Errorf("short snapshot decoded incorrectly: ch2=%d ch4=%d",
			recovered.Get(2), recovered.Get(4))
	}
}

func TestOpenStore_UnsupportedScheme(t *testing.T) {
	_, err := openStore("memcached://127.0.0.1:11211", logging.Default())
	if !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("openStore() error = %v, want ErrUnsupportedScheme", err)
	}

	_, err = openStore("not-a-url", logging.Default())
	if !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("openStore() error = %v, want ErrUnsupportedScheme", err)
	}
}
