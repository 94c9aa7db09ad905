package backup

import "errors"

// Domain-specific errors for recovery-store operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrKeyNotFound is returned by Store.Get when no entry exists.
	// For the synchronizer this is the normal, expected case on a clean
	// start.
	ErrKeyNotFound = errors.New("backup: key not found")

	// ErrUnsupportedScheme is returned when the backup URL names a store
	// type this build does not support.
	ErrUnsupportedScheme = errors.New("backup: unsupported store scheme")
)
