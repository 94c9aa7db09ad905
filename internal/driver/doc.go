// Package driver owns the physical output side of Lumen Core.
//
// The Driver interface is deliberately narrow — apply one fade, or replace
// the whole channel set — because it is the only surface the dispatch loop
// is allowed to touch. The shipped implementation transmits the universe as
// Art-Net ArtDmx frames over UDP and runs fades on a fixed-rate
// interpolation engine, so "applied" from the caller's point of view means
// handed to the engine, never "animation finished".
//
// Fade interpolation is linear: each tick the engine recomputes every
// animating channel from its start value, target value, and elapsed time,
// then retransmits the frame. Instantaneous fades (zero duration) bypass
// the engine's ticker and transmit immediately.
package driver
