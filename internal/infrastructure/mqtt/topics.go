package mqtt

import "fmt"

// Topic prefixes for the hardware agent bus.
//
// The terminal talks to a local hardware agent over a small
// command/response scheme: commands are published to
// tillprint/hw/cmd/{type} carrying a request ID, and the agent answers on
// tillprint/hw/resp/{request_id}.
const (
	// TopicPrefixHardware is the base for hardware agent topics.
	TopicPrefixHardware = "tillprint/hw"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "tillprint/system"
)

// Topics provides builders for tillprint MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
type Topics struct{}

// HardwareCommand returns the topic a command of the given type is
// published to.
//
// Example: tillprint/hw/cmd/discover-printers
func (Topics) HardwareCommand(cmdType string) string {
	return fmt.Sprintf("%s/cmd/%s", TopicPrefixHardware, cmdType)
}

// HardwareResponse returns the per-request response topic.
//
// Example: tillprint/hw/resp/req-abc123
func (Topics) HardwareResponse(requestID string) string {
	return fmt.Sprintf("%s/resp/%s", TopicPrefixHardware, requestID)
}

// HardwareStatus returns the agent's own status topic.
//
// Example: tillprint/hw/status
func (Topics) HardwareStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixHardware)
}

// SystemStatus returns the terminal status topic. The terminal's LWT and
// graceful shutdown messages are published here.
//
// Example: tillprint/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllHardwareResponses returns a pattern matching every response topic.
//
// Pattern: tillprint/hw/resp/+
func (Topics) AllHardwareResponses() string {
	return fmt.Sprintf("%s/resp/+", TopicPrefixHardware)
}

// AllTopics returns a pattern matching all tillprint topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: tillprint/#
func (Topics) AllTopics() string {
	return "tillprint/#"
}
