package backup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oakfield-av/lumen-core/internal/dmx"
	"github.com/oakfield-av/lumen-core/internal/infrastructure/config"
	"github.com/oakfield-av/lumen-core/internal/infrastructure/logging"
)

// storeOpTimeout bounds every individual store operation so a stalled store
// can never wedge the dispatch loop.
const storeOpTimeout = 3 * time.Second

// Synchronizer mirrors accepted state mutations to the recovery store.
//
// It is owned exclusively by the dispatch loop: the shadow universe has a
// single writer and needs no locking. In no-op mode (no store configured,
// or the connection attempt failed) every method succeeds trivially;
// callers never branch on which mode is active.
type Synchronizer struct {
	store  Store // nil in no-op mode
	key    string
	shadow *dmx.Universe
	logger *logging.Logger

	closeOnce sync.Once
}

// New creates a synchronizer for the controller instance listening at addr.
//
// An empty backup URL selects no-op mode outright. A configured store that
// cannot be reached also degrades to no-op mode — the rig must stay
// controllable without a recovery path — with the failure logged once here.
func New(cfg config.BackupConfig, addr string, logger *logging.Logger) *Synchronizer {
	s := &Synchronizer{
		key:    fmt.Sprintf("%s:%s:universe", cfg.Namespace, addr),
		shadow: dmx.NewUniverse(),
		logger: logger.With("component", "backup"),
	}

	if cfg.URL == "" {
		s.logger.Info("state backup disabled, running without crash recovery")
		return s
	}

	store, err := openStore(cfg.URL, s.logger)
	if err != nil {
		s.logger.Error("unable to connect to recovery store, continuing without crash recovery",
			"url", cfg.URL,
			"error", err,
		)
		return s
	}

	s.store = store
	s.logger.Info("recovery store connected", "key", s.key)
	return s
}

// Enabled reports whether a store connection is live. Informational only —
// every method is safe to call in either mode.
func (s *Synchronizer) Enabled() bool {
	return s.store != nil
}

// RecordFade applies one accepted fade to the shadow universe and rewrites
// the store entry. Failures are logged and swallowed: a recovery-store
// outage must never fail a lighting command.
func (s *Synchronizer) RecordFade(ctx context.Context, fade dmx.Fade) {
	if s.store == nil {
		return
	}
	s.shadow.Set(fade.Channel, fade.Value)
	s.write(ctx)
}

// RecordUniverse replaces the shadow universe wholesale and rewrites the
// store entry. Same failure policy as RecordFade.
func (s *Synchronizer) RecordUniverse(ctx context.Context, universe *dmx.Universe) {
	if s.store == nil {
		return
	}
	s.shadow = universe.Clone()
	s.write(ctx)
}

// write serializes the shadow and overwrites this instance's entry.
func (s *Synchronizer) write(ctx context.Context) {
	value, err := encodeSnapshot(s.shadow)
	if err != nil {
		s.logger.Error("unable to serialize universe snapshot", "error", err)
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	if err := s.store.Set(opCtx, s.key, value); err != nil {
		s.logger.Error("unable to write snapshot to recovery store", "error", err)
	}
}

// Reload fetches this instance's store entry.
//
// A present entry is orphaned state from an unclean prior shutdown: it is
// parsed, adopted as the new shadow, and returned for reapplication to the
// output driver. A snapshot that fails to parse is replaced by an all-zero
// universe rather than propagating the error. Absence returns nil — the
// normal case on a clean start.
func (s *Synchronizer) Reload(ctx context.Context) *dmx.Universe {
	if s.store == nil {
		return nil
	}

	opCtx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	value, err := s.store.Get(opCtx, s.key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			s.logger.Error("unable to read recovery store", "error", err)
		}
		return nil
	}

	s.logger.Warn("found lingering state snapshot, previous run did not shut down cleanly; reloading")

	universe, err := decodeSnapshot(value)
	if err != nil {
		s.logger.Warn("snapshot is malformed, substituting blackout state", "error", err)
		universe = dmx.NewUniverse()
	}

	s.shadow = universe.Clone()
	return universe
}

// Close deletes this instance's store entry and releases the connection.
//
// This is the clean-shutdown marker: after Close, a restart at the same
// address finds nothing and starts blank. It runs at most once, ignores
// delete failures (the process is exiting; there is nobody to retry for),
// and is safe to call repeatedly.
func (s *Synchronizer) Close() error {
	s.closeOnce.Do(func() {
		if s.store == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), storeOpTimeout)
		defer cancel()

		if err := s.store.Delete(ctx, s.key); err != nil {
			s.logger.Warn("unable to delete recovery entry on shutdown", "error", err)
		}
		if err := s.store.Close(); err != nil {
			s.logger.Warn("error closing recovery store", "error", err)
		}
		s.store = nil
	})
	return nil
}
