// Package config centralizes all application configuration into typed structs.
//
// Defaults live in NewDefaultConfig. Load overlays environment variables on
// top of them through viper, using the DISPATCHMAP_ prefix and underscores
// for nesting: DISPATCHMAP_BACKEND_BASE_URL sets Backend.BaseURL.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "DISPATCHMAP"

// Config is the top-level configuration container.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Backend  BackendConfig
	Geocode  GeocodeConfig
	Routing  RoutingConfig
	Position PositionConfig
	Refresh  RefreshConfig
	Kafka    KafkaConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        string
	ReadTimeout time.Duration
}

// LogConfig selects the zap preset: "production" gives JSON output, anything
// else gives the development console encoder.
type LogConfig struct {
	Env string
}

// BackendConfig points at the storefront REST API (orders and routing).
// BaseURL includes the API version prefix, e.g. http://localhost:8000/api/v1.
type BackendConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// GeocodeConfig controls address lookups. An empty BaseURL disables the HTTP
// provider; every unresolved address is then dropped from the map.
type GeocodeConfig struct {
	BaseURL     string
	UserAgent   string
	Timeout     time.Duration
	Concurrency int
}

// RoutingConfig controls the route-optimization call.
type RoutingConfig struct {
	WithETA bool          // Use /route/optimize-with-eta instead of /route/optimize
	Timeout time.Duration // Per-call deadline; expiry counts as a route failure
}

// PositionConfig bounds how old an agent position may be before a pass
// treats it as unavailable. Zero disables the check.
type PositionConfig struct {
	MaxAge time.Duration
}

// RefreshConfig drives the periodic poll trigger. Zero disables polling.
type RefreshConfig struct {
	PollInterval time.Duration
}

// KafkaConfig enables publishing of map notices. No brokers means notices
// are only logged.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// NewDefaultConfig returns a Config populated with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        ":8080",
			ReadTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Env: "development",
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:8000/api/v1",
			Timeout: 10 * time.Second,
		},
		Geocode: GeocodeConfig{
			BaseURL:     "https://nominatim.openstreetmap.org",
			UserAgent:   "dispatchmap/1.0",
			Timeout:     5 * time.Second,
			Concurrency: 4,
		},
		Routing: RoutingConfig{
			WithETA: true,
			Timeout: 8 * time.Second,
		},
		Position: PositionConfig{
			MaxAge: 5 * time.Minute,
		},
		Refresh: RefreshConfig{
			PollInterval: 30 * time.Second,
		},
		Kafka: KafkaConfig{
			Topic: "dispatchmap.notices",
		},
	}
}

// Load returns the defaults overlaid with any DISPATCHMAP_* environment
// variables.
func Load() (*Config, error) {
	cfg := NewDefaultConfig()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so every
	// overridable key gets its default registered first.
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)
	v.SetDefault("log.env", cfg.Log.Env)
	v.SetDefault("backend.base_url", cfg.Backend.BaseURL)
	v.SetDefault("backend.token", cfg.Backend.Token)
	v.SetDefault("backend.timeout", cfg.Backend.Timeout)
	v.SetDefault("geocode.base_url", cfg.Geocode.BaseURL)
	v.SetDefault("geocode.user_agent", cfg.Geocode.UserAgent)
	v.SetDefault("geocode.timeout", cfg.Geocode.Timeout)
	v.SetDefault("geocode.concurrency", cfg.Geocode.Concurrency)
	v.SetDefault("routing.with_eta", cfg.Routing.WithETA)
	v.SetDefault("routing.timeout", cfg.Routing.Timeout)
	v.SetDefault("position.max_age", cfg.Position.MaxAge)
	v.SetDefault("refresh.poll_interval", cfg.Refresh.PollInterval)
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", cfg.Kafka.Topic)

	cfg.Server.Port = v.GetString("server.port")
	cfg.Server.ReadTimeout = v.GetDuration("server.read_timeout")
	cfg.Log.Env = v.GetString("log.env")
	cfg.Backend.BaseURL = strings.TrimRight(v.GetString("backend.base_url"), "/")
	cfg.Backend.Token = v.GetString("backend.token")
	cfg.Backend.Timeout = v.GetDuration("backend.timeout")
	cfg.Geocode.BaseURL = strings.TrimRight(v.GetString("geocode.base_url"), "/")
	cfg.Geocode.UserAgent = v.GetString("geocode.user_agent")
	cfg.Geocode.Timeout = v.GetDuration("geocode.timeout")
	cfg.Geocode.Concurrency = v.GetInt("geocode.concurrency")
	cfg.Routing.WithETA = v.GetBool("routing.with_eta")
	cfg.Routing.Timeout = v.GetDuration("routing.timeout")
	cfg.Position.MaxAge = v.GetDuration("position.max_age")
	cfg.Refresh.PollInterval = v.GetDuration("refresh.poll_interval")
	cfg.Kafka.Brokers = splitList(v.GetString("kafka.brokers"))
	cfg.Kafka.Topic = v.GetString("kafka.topic")

	if cfg.Geocode.Concurrency < 1 {
		cfg.Geocode.Concurrency = 1
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
