// Package mqtt provides MQTT client connectivity for the hardware agent bus.
//
// This package manages:
//   - Connection to the local broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The terminal uses MQTT as the message bus to the local hardware agent,
// the process that owns direct access to attached peripherals. The broker
// decouples the terminal from printer-driver specifics.
//
//	tillprintd ↔ MQTT Broker ↔ Hardware Agent
//
// Commands are published to tillprint/hw/cmd/{type} with a request ID in
// the payload; the agent answers on tillprint/hw/resp/{request_id}. The
// request/response pairing and timeout policy live in internal/hardware;
// this package only moves bytes.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.Hardware.Agent)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.HardwareResponse(reqID), 1,
//	    func(topic string, payload []byte) error {
//	        // handle response
//	        return nil
//	    })
//
//	topic := mqtt.Topics{}.HardwareCommand("discover-printers")
//	client.Publish(topic, payload, 1, false)
package mqtt
