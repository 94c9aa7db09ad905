// Package mqttbridge connects the dispatch loop to the MQTT bus.
//
// Inbound, it subscribes to lumen/command/fade and submits each message
// as a fade command, so show-control systems can drive the rig without an
// HTTP session. Outbound, it implements the controller's Notifier hook
// and publishes accepted fades to lumen/state/fade and universe
// replacements to lumen/state/universe (retained).
//
// The bridge is optional: the controller runs unchanged without a broker,
// losing only the MQTT surface.
package mqttbridge
