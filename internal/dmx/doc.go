// Package dmx provides the in-memory lighting state model for Lumen Core.
//
// A DMX-512 universe is a fixed set of 512 single-byte channel intensities.
// Channels are addressed 1..512 externally (the DMX convention); storage is
// zero-indexed. The types here are pure data with bounds-checked accessors —
// no concurrency, no I/O. Exclusive ownership of the authoritative Universe
// belongs to the controller's dispatch loop; everything else works on copies.
//
// # Key Types
//
//   - Universe: the complete channel set for one rig
//   - Fade: a single requested change of one channel, optionally timed
//   - FadeMessage: the JSON wire form of a Fade shared by the HTTP and MQTT
//     adapters
package dmx
