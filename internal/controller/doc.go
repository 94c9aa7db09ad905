// Package controller runs the dispatch loop that serializes all lighting
// state changes. Every mutation, whether it arrives over HTTP, WebSocket
// or MQTT, is submitted as a command and processed one at a time in
// arrival order, so the output driver and the recovery synchronizer only
// ever see a single writer.
//
// Each submitted command receives exactly one reply. Once the loop has
// stopped, whether by a Shutdown command or context cancellation, Submit
// fails with ErrStopped.
package controller
