package mqtt

import "fmt"

// Topic prefixes for the Lumen MQTT surface.
//
// All topics live under a single root: lumen/{category}/{subject}.
// Command topics carry requests into the controller; state topics carry
// events out of it.
const (
	// TopicPrefix is the root of all Lumen topics.
	TopicPrefix = "lumen"

	// TopicPrefixCommand is the base for inbound command topics.
	TopicPrefixCommand = "lumen/command"

	// TopicPrefixState is the base for outbound state topics.
	TopicPrefixState = "lumen/state"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "lumen/system"
)

// Topics provides builders for Lumen MQTT topics. Using these helpers
// keeps topic naming consistent across the codebase.
//
//	topics := mqtt.Topics{}
//	topics.CommandFade() // "lumen/command/fade"
type Topics struct{}

// CommandFade returns the topic external systems publish fade requests to.
//
// Example: lumen/command/fade
func (Topics) CommandFade() string {
	return fmt.Sprintf("%s/fade", TopicPrefixCommand)
}

// StateFade returns the topic fade acceptance events are published on.
//
// Example: lumen/state/fade
func (Topics) StateFade() string {
	return fmt.Sprintf("%s/fade", TopicPrefixState)
}

// StateUniverse returns the topic full-universe replacements are published
// on. Messages here are retained so late subscribers see the last full
// state.
//
// Example: lumen/state/universe
func (Topics) StateUniverse() string {
	return fmt.Sprintf("%s/universe", TopicPrefixState)
}

// SystemStatus returns the controller online/offline status topic. The
// broker publishes the LWT here on unexpected disconnect.
//
// Example: lumen/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllCommands returns a pattern matching every inbound command topic.
//
// Pattern: lumen/command/+
func (Topics) AllCommands() string {
	return fmt.Sprintf("%s/+", TopicPrefixCommand)
}

// AllState returns a pattern matching every outbound state topic.
//
// Pattern: lumen/state/+
func (Topics) AllState() string {
	return fmt.Sprintf("%s/+", TopicPrefixState)
}

// AllTopics returns a pattern matching all Lumen topics.
// Use with caution, this receives ALL traffic.
//
// Pattern: lumen/#
func (Topics) AllTopics() string {
	return "lumen/#"
}
