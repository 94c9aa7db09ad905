package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/oakfield-av/lumen-core/internal/dmx"
)

// WriteFade records one accepted fade in the history.
//
// The write is non-blocking; data is batched and sent asynchronously.
// Channel is tagged so per-channel activity can be queried directly.
func (c *Client) WriteFade(fade dmx.Fade) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"fades",
		map[string]string{
			"channel": strconv.Itoa(fade.Channel),
		},
		map[string]interface{}{
			"value":       int64(fade.Value),
			"duration_ms": fade.Duration.Milliseconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteUniverseReplace records a full-universe replacement. The point
// carries the number of channels with a non-zero level in the new state;
// zero active channels is a blackout.
func (c *Client) WriteUniverseReplace(universe *dmx.Universe) {
	if !c.IsConnected() {
		return
	}

	active := 0
	for ch := dmx.MinChannel; ch <= dmx.MaxChannel; ch++ {
		if universe.Get(ch) != 0 {
			active++
		}
	}

	point := write.NewPoint(
		"universe_replacements",
		map[string]string{},
		map[string]interface{}{
			"active_channels": int64(active),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
