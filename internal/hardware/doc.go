// Package hardware talks to the local hardware agent, the process that
// owns direct access to attached peripherals.
//
// Communication is a command/response scheme over MQTT: the bus publishes
// a command envelope with a correlation ID and waits for the agent's
// answer on a per-request response topic. Timeout policy is owned here so
// every caller gets the same behaviour.
//
// When no agent is configured, the serialusb sub-package provides a
// direct fallback for USB printers: port enumeration with VID/PID
// identity, and a write-only serial transport.
package hardware
