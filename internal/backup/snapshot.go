package backup

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/oakfield-av/lumen-core/internal/dmx"
)

// snapshotVersion identifies the persisted format. Bump when the layout
// changes so a future build can tell old entries apart.
const snapshotVersion = 1

// snapshot is the persisted YAML form of one universe.
// yaml.v3 stores the channel bytes as a !!binary scalar.
type snapshot struct {
	Version  int    `yaml:"version"`
	Channels []byte `yaml:"channels"`
}

// encodeSnapshot serializes a universe for storage.
func encodeSnapshot(u *dmx.Universe) (string, error) {
	data, err := yaml.Marshal(snapshot{
		Version:  snapshotVersion,
		Channels: u.Bytes(),
	})
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}
	return string(data), nil
}

// decodeSnapshot parses a stored snapshot back into a universe.
// Short or oversized channel data is tolerated (missing channels read as
// zero); malformed YAML is an error for the caller to recover from.
func decodeSnapshot(value string) (*dmx.Universe, error) {
	var snap snapshot
	if err := yaml.Unmarshal([]byte(value), &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return dmx.FromBytes(snap.Channels), nil
}
