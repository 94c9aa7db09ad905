// Package api implements the HTTP REST API and WebSocket server for
// Lumen Core.
//
// This package provides:
//   - REST endpoints for fades, universe state, and shutdown
//   - WebSocket hub for real-time lighting event broadcasts
//   - Middleware stack (request ID, logging, recovery, CORS)
//
// # Architecture
//
// The API server is one of the outer surfaces feeding the dispatch loop.
// Every mutation it receives becomes a controller command; the server
// never touches the output driver or the recovery store directly, so HTTP
// requests and MQTT commands can never race each other.
//
// # Graceful Degradation
//
// The server runs without the WebSocket hub or the MQTT bridge; only the
// event broadcasts go missing. The dispatch loop and REST endpoints are
// unaffected.
package api
