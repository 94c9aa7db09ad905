// Package backup mirrors accepted lighting state to an external key/value
// store so an unclean restart can restore the rig.
//
// The synchronizer keeps a private shadow copy of the universe and rewrites
// one store entry after every accepted mutation. The entry's presence is
// itself the signal: finding it at startup means the previous run crashed,
// so Reload returns it for reapplication; a clean shutdown deletes it on the
// way out, so the next start begins blank.
//
// Everything here is best-effort by design. A missing or unreachable store
// degrades the synchronizer to a permanent no-op — lighting control must
// keep working without a recovery path — and record/reload failures are
// logged and swallowed rather than surfaced to command callers.
//
// The store key is a deterministic function of this instance's listening
// address (namespace:address:universe), so controllers sharing one store
// never collide and only a restart at the same address finds a snapshot.
package backup
