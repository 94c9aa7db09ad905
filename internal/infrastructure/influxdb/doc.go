// Package influxdb provides InfluxDB connectivity for Lumen Core.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, non-blocking fade-history writes, and health monitoring.
//
// # Purpose
//
// This package records a time-series history of lighting activity:
//   - Every accepted fade (channel, target value, duration)
//   - Full universe replacements (active channel count)
//
// The history supports show review and troubleshooting: when a cue looks
// wrong on stage, the recorded fades show exactly what the controller was
// asked to do and when.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteFade(fade)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are delivered via a
// callback. Connection and health check errors are returned directly.
package influxdb
