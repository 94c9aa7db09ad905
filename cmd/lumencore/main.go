// Lumen Core - DMX lighting controller
//
// This is the main entry point for the Lumen Core service. It owns a
// single DMX-512 universe, serializes every state change through one
// dispatch loop, transmits the result over Art-Net, and keeps a recovery
// snapshot in an external store so an unclean shutdown does not black out
// the rig.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/oakfield-av/lumen-core/internal/api"
	"github.com/oakfield-av/lumen-core/internal/backup"
	"github.com/oakfield-av/lumen-core/internal/bridges/mqttbridge"
	"github.com/oakfield-av/lumen-core/internal/controller"
	"github.com/oakfield-av/lumen-core/internal/dmx"
	"github.com/oakfield-av/lumen-core/internal/driver"
	"github.com/oakfield-av/lumen-core/internal/infrastructure/config"
	"github.com/oakfield-av/lumen-core/internal/infrastructure/influxdb"
	"github.com/oakfield-av/lumen-core/internal/infrastructure/logging"
	"github.com/oakfield-av/lumen-core/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Lumen Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open the Art-Net output. A rig we cannot reach is fatal: the
	// controller must not come up pretending to drive fixtures.
	output, err := driver.OpenArtNet(cfg.DMX, log)
	if err != nil {
		return fmt.Errorf("opening DMX output: %w", err)
	}
	defer func() {
		log.Info("closing DMX output")
		if closeErr := output.Close(); closeErr != nil {
			log.Error("error closing DMX output", "error", closeErr)
		}
	}()

	// The recovery synchronizer degrades to a no-op internally when the
	// store is missing or unreachable, so no error path here.
	sync := backup.New(cfg.Backup, cfg.API.ListenAddr(), log)
	defer func() {
		log.Info("closing recovery synchronizer")
		if closeErr := sync.Close(); closeErr != nil {
			log.Error("error closing recovery synchronizer", "error", closeErr)
		}
	}()
	log.Info("recovery synchronizer ready", "enabled", sync.Enabled())

	// Event fan-out: WebSocket hub, MQTT bridge, and fade history all
	// observe the dispatch loop through one Notifier.
	events := &eventFanout{}

	ctrl := controller.New(controller.Deps{
		Driver:   output,
		Sync:     sync,
		Notifier: events,
		Logger:   log,
	})

	// WebSocket hub, shared between the API server and the fan-out.
	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(ctx)
	events.add(&wsEvents{hub: hub})

	// Connect to MQTT broker (optional)
	var bridge *mqttbridge.Bridge
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		bridge = mqttbridge.New(mqttClient, ctrl, byte(cfg.MQTT.QoS), log)
		events.add(bridge)
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		events.add(&fadeHistory{client: influxClient})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Start the dispatch loop. Any orphaned state from a previous run is
	// restored to the rig before the first command is accepted.
	ctrl.Start(ctx)

	// Inbound MQTT commands, once the loop is accepting.
	if bridge != nil {
		if startErr := bridge.Start(ctx); startErr != nil {
			return fmt.Errorf("starting MQTT bridge: %w", startErr)
		}
		defer func() {
			log.Info("stopping MQTT bridge")
			if closeErr := bridge.Close(); closeErr != nil {
				log.Error("error closing MQTT bridge", "error", closeErr)
			}
		}()
	}

	// HTTP API server. A dead listener is fatal, same as the output.
	server, err := api.New(api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Logger:      log,
		Controller:  ctrl,
		ExternalHub: hub,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, server, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown")

	// Wait for a signal or a shutdown command through the dispatch loop.
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, cleaning up")
	case <-ctrl.Done():
		log.Info("shutdown command processed, cleaning up")
	}

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. MQTT bridge, then MQTT client (if enabled)
	// 3. InfluxDB (if enabled)
	// 4. Recovery synchronizer (deletes the snapshot)
	// 5. DMX output

	log.Info("Lumen Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses LUMEN_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("LUMEN_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all running components are healthy. Optional
// clients may be nil when disabled.
func healthCheck(ctx context.Context, server *api.Server, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

// eventFanout relays dispatch loop events to every registered sink.
// Sinks are registered during startup only; the dispatch goroutine is the
// sole caller afterwards.
type eventFanout struct {
	sinks []controller.Notifier
}

func (f *eventFanout) add(n controller.Notifier) {
	f.sinks = append(f.sinks, n)
}

// FadeApplied implements controller.Notifier.
func (f *eventFanout) FadeApplied(fade dmx.Fade) {
	for _, sink := range f.sinks {
		sink.FadeApplied(fade)
	}
}

// UniverseReplaced implements controller.Notifier.
func (f *eventFanout) UniverseReplaced(universe *dmx.Universe) {
	for _, sink := range f.sinks {
		sink.UniverseReplaced(universe)
	}
}

// wsEvents broadcasts dispatch loop events to WebSocket subscribers.
type wsEvents struct {
	hub *api.Hub
}

// FadeApplied implements controller.Notifier.
func (w *wsEvents) FadeApplied(fade dmx.Fade) {
	w.hub.Broadcast(api.WSChannelFade, fade.Message())
}

// UniverseReplaced implements controller.Notifier.
func (w *wsEvents) UniverseReplaced(universe *dmx.Universe) {
	raw := universe.Bytes()
	channels := make([]int, len(raw))
	for i, v := range raw {
		channels[i] = int(v)
	}
	w.hub.Broadcast(api.WSChannelUniverse, map[string]any{"channels": channels})
}

// fadeHistory records dispatch loop events to InfluxDB.
type fadeHistory struct {
	client *influxdb.Client
}

// FadeApplied implements controller.Notifier.
func (h *fadeHistory) FadeApplied(fade dmx.Fade) {
	h.client.WriteFade(fade)
}

// UniverseReplaced implements controller.Notifier.
func (h *fadeHistory) UniverseReplaced(universe *dmx.Universe) {
	h.client.WriteUniverseReplace(universe)
}
