// Package mqtt provides MQTT client connectivity for Lumen Core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// MQTT is an optional outer surface for the controller: show-control
// systems and wall panels publish fade commands to lumen/command/fade and
// observe state on the lumen/state/* topics without holding an HTTP or
// WebSocket session. The broker decouples those peers from the
// controller's lifecycle.
//
//	show controller ↔ MQTT broker ↔ Lumen Core
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to incoming fade commands
//	err = client.Subscribe(mqtt.Topics{}.CommandFade(), 1,
//	    func(topic string, payload []byte) error {
//	        return handleFade(payload)
//	    })
//
//	// Publish a state event
//	client.Publish(mqtt.Topics{}.StateFade(), payload, 1, false)
package mqtt
