package controller

import "errors"

// Domain-specific errors for dispatch loop operations.
var (
	// ErrStopped is returned by Submit once the dispatch loop no longer
	// accepts commands.
	ErrStopped = errors.New("controller: dispatch loop stopped")
)
