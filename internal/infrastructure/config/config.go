package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Lumen Core.
// All configuration is loaded from YAML and can be overridden by environment
// variables.
type Config struct {
	DMX       DMXConfig       `yaml:"dmx"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Backup    BackupConfig    `yaml:"backup"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DMXConfig contains the Art-Net output settings for the lighting rig.
type DMXConfig struct {
	// Target is the host:port of the Art-Net node driving the fixtures.
	Target string `yaml:"target"`

	// Universe is the Art-Net universe number (0..32767).
	Universe int `yaml:"universe"`

	// FrameRate is the output refresh rate in frames per second while fades
	// are animating (1..60).
	FrameRate int `yaml:"frame_rate"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// ListenAddr returns the host:port the API server binds to. The recovery
// store key is derived from this address, so it must be deterministic for a
// given configuration.
func (c APIConfig) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// BackupConfig contains recovery-store settings.
//
// An empty URL disables state backup entirely; the controller then runs on
// in-memory and hardware state only. Supported URL forms:
//
//	redis://host:port/db     Redis key/value store
//	sqlite://path/to/file.db local SQLite file
type BackupConfig struct {
	URL       string `yaml:"url"`
	Namespace string `yaml:"namespace"`
}

// MQTTConfig contains MQTT broker connection settings for the optional
// command/state bridge.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains fade-history recording settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable
// overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: LUMEN_SECTION_KEY
// For example: LUMEN_DMX_TARGET, LUMEN_BACKUP_URL
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		DMX: DMXConfig{
			Target:    "255.255.255.255:6454",
			Universe:  0,
			FrameRate: 40,
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8852,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Backup: BackupConfig{
			Namespace: "lumen",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "lumencore",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables follow the pattern: LUMEN_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LUMEN_DMX_TARGET"); v != "" {
		cfg.DMX.Target = v
	}

	if v := os.Getenv("LUMEN_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("LUMEN_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	if v := os.Getenv("LUMEN_BACKUP_URL"); v != "" {
		cfg.Backup.URL = v
	}

	if v := os.Getenv("LUMEN_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("LUMEN_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("LUMEN_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("LUMEN_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	if v := os.Getenv("LUMEN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Maximum Art-Net universe number (15-bit port address).
const maxArtNetUniverse = 32767

// Validate checks the configuration for invalid or inconsistent values.
func (c *Config) Validate() error {
	if c.DMX.Target == "" {
		return fmt.Errorf("dmx.target is required")
	}
	if _, _, err := net.SplitHostPort(c.DMX.Target); err != nil {
		return fmt.Errorf("dmx.target must be host:port: %w", err)
	}
	if c.DMX.Universe < 0 || c.DMX.Universe > maxArtNetUniverse {
		return fmt.Errorf("dmx.universe %d out of range 0..%d", c.DMX.Universe, maxArtNetUniverse)
	}
	if c.DMX.FrameRate < 1 || c.DMX.FrameRate > 60 {
		return fmt.Errorf("dmx.frame_rate %d out of range 1..60", c.DMX.FrameRate)
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range 1..65535", c.API.Port)
	}

	if c.Backup.URL != "" {
		scheme, _, found := strings.Cut(c.Backup.URL, "://")
		if found && scheme != "redis" && scheme != "rediss" && scheme != "sqlite" {
			return fmt.Errorf("backup.url scheme %q not supported (redis, rediss, sqlite)", scheme)
		}
	}
	if c.Backup.Namespace == "" {
		return fmt.Errorf("backup.namespace is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos %d out of range 0..2", c.MQTT.QoS)
	}
	if c.MQTT.Enabled && c.MQTT.Broker.Host == "" {
		return fmt.Errorf("mqtt.broker.host is required when mqtt is enabled")
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			return fmt.Errorf("influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Org == "" || c.InfluxDB.Bucket == "" {
			return fmt.Errorf("influxdb.org and influxdb.bucket are required when influxdb is enabled")
		}
	}

	return nil
}
