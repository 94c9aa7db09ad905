package backup

import (
	"context"
	"fmt"
	"strings"

	"github.com/oakfield-av/lumen-core/internal/infrastructure/logging"
)

// Store is the minimal string key/value surface the synchronizer needs.
// Any store supporting get/set/delete can hold recovery snapshots.
type Store interface {
	// Get returns the value for key, or ErrKeyNotFound if no entry exists.
	Get(ctx context.Context, key string) (string, error)

	// Set overwrites the value for key.
	Set(ctx context.Context, key, value string) error

	// Delete removes the entry for key. Deleting an absent key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// Close releases the store connection.
	Close() error
}

// openStore selects and connects a store backend from the backup URL.
//
// Supported forms:
//
//	redis://host:port/db, rediss://...  Redis
//	sqlite://path/to/file.db            local SQLite file
func openStore(url string, logger *logging.Logger) (Store, error) {
	scheme, rest, found := strings.Cut(url, "://")
	if !found {
		return nil, fmt.Errorf("%w: %q is not a URL", ErrUnsupportedScheme, url)
	}

	switch scheme {
	case "redis", "rediss":
		return openRedisStore(url, logger)
	case "sqlite":
		return openSQLiteStore(rest)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
}
