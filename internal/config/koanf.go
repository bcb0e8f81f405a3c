// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/chaimap/config.yaml",
	"/etc/chaimap/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              3857,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Session: SessionConfig{},
		Store: StoreConfig{
			Path:                  "/data/chaimap",
			SpotsCollection:       "chaiSpots",
			LegacySpotsCollection: "chaiFinder",
			RatingsCollection:     "ratings",
			UsersCollection:       "users",
			MembershipChunkSize:   10,
			BreakerMaxFailures:    5,
			BreakerInterval:       time.Minute,
			BreakerTimeout:        30 * time.Second,
		},
		Recommend: RecommendConfig{
			Threshold:    3.5,
			CacheEnabled: true,
			CacheSize:    10000,
		},
		Viewport: ViewportConfig{
			DefaultLatitude:       37.7749,
			DefaultLongitude:      -122.4194,
			DefaultLatitudeDelta:  0.1,
			DefaultLongitudeDelta: 0.1,
			LocationSpan:          0.05,
			CloseSpan:             0.01,
			MinSpan:               0.005,
			Padding:               1.5,
			Cooldown:              time.Second,
			Persist:               true,
		},
		Geocode: GeocodeConfig{
			Enabled:           false,
			URL:               "https://nominatim.openstreetmap.org",
			UserAgent:         "chaimap/1.0",
			RequestsPerSecond: 1,
			Timeout:           5 * time.Second,
			Debounce:          300 * time.Millisecond,
		},
		NATS: NATSConfig{
			Enabled:          false,
			URL:              "nats://127.0.0.1:4222",
			EmbeddedServer:   true,
			StoreDir:         "/data/nats/jetstream",
			MaxMemory:        64 << 20,
			MaxStore:         1 << 30,
			DurableName:      "chaimap-processor",
			QueueGroup:       "chaimap-processors",
			SubscribersCount: 1,
		},
		WebSocket: WebSocketConfig{
			SendBuffer:     256,
			WriteWait:      10 * time.Second,
			PongWait:       60 * time.Second,
			PingPeriod:     54 * time.Second,
			MaxMessageSize: 512,
		},
	}
}

// Load loads configuration using Koanf with layered sources:
//  1. Built-in defaults (lowest priority)
//  2. Config file (config.yaml, if present)
//  3. Environment variables (highest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Environment variables, e.g. STORE_PATH -> store.path
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceFields are keys that may arrive from the environment as comma-separated strings.
var sliceFields = []string{
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, key := range sliceFields {
		raw, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		parts := strings.Split(raw, ",")
		values := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				values = append(values, p)
			}
		}
		if err := k.Set(key, values); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":          "server.cors_origins",
	"rate_limit_requests":   "server.rate_limit_requests",
	"rate_limit_window":     "server.rate_limit_window",
	"disable_rate_limit":    "server.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Session
	"session_user_id": "session.user_id",

	// Store
	"store_path":                    "store.path",
	"store_in_memory":               "store.in_memory",
	"store_spots_collection":        "store.spots_collection",
	"store_legacy_spots_collection": "store.legacy_spots_collection",
	"store_ratings_collection":      "store.ratings_collection",
	"store_users_collection":        "store.users_collection",
	"store_membership_chunk_size":   "store.membership_chunk_size",
	"store_reload_interval":         "store.reload_interval",
	"store_breaker_max_failures":    "store.breaker_max_failures",
	"store_breaker_interval":        "store.breaker_interval",
	"store_breaker_timeout":         "store.breaker_timeout",

	// Recommend
	"recommend_threshold":     "recommend.threshold",
	"recommend_cache_enabled": "recommend.cache_enabled",
	"recommend_cache_size":    "recommend.cache_size",

	// Viewport
	"viewport_default_latitude":        "viewport.default_latitude",
	"viewport_default_longitude":       "viewport.default_longitude",
	"viewport_default_latitude_delta":  "viewport.default_latitude_delta",
	"viewport_default_longitude_delta": "viewport.default_longitude_delta",
	"viewport_location_span":           "viewport.location_span",
	"viewport_close_span":              "viewport.close_span",
	"viewport_min_span":                "viewport.min_span",
	"viewport_padding":                 "viewport.padding",
	"viewport_cooldown":                "viewport.cooldown",
	"viewport_persist":                 "viewport.persist",

	// Geocode
	"geocode_enabled":             "geocode.enabled",
	"geocode_url":                 "geocode.url",
	"geocode_user_agent":          "geocode.user_agent",
	"geocode_requests_per_second": "geocode.requests_per_second",
	"geocode_timeout":             "geocode.timeout",
	"geocode_debounce":            "geocode.debounce",

	// NATS
	"nats_enabled":      "nats.enabled",
	"nats_url":          "nats.url",
	"nats_embedded":     "nats.embedded_server",
	"nats_store_dir":    "nats.store_dir",
	"nats_max_memory":   "nats.max_memory",
	"nats_max_store":    "nats.max_store",
	"nats_durable_name": "nats.durable_name",
	"nats_queue_group":  "nats.queue_group",
	"nats_subscribers":  "nats.subscribers_count",

	// WebSocket
	"ws_send_buffer":      "websocket.send_buffer",
	"ws_write_wait":       "websocket.write_wait",
	"ws_pong_wait":        "websocket.pong_wait",
	"ws_ping_period":      "websocket.ping_period",
	"ws_max_message_size": "websocket.max_message_size",
}

// envTransformFunc maps environment variable names to koanf paths.
// Unmapped keys return "" so unrelated variables are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
