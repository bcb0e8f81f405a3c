// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting via environment variables
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	db, err := badger.Open(badger.DefaultOptions(cfg.Store.Path))
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Session   SessionConfig   `koanf:"session"`
	Store     StoreConfig     `koanf:"store"`
	Recommend RecommendConfig `koanf:"recommend"`
	Viewport  ViewportConfig  `koanf:"viewport"`
	Geocode   GeocodeConfig   `koanf:"geocode"`
	NATS      NATSConfig      `koanf:"nats"`
	WebSocket WebSocketConfig `koanf:"websocket"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins lists allowed origins. "*" allows any origin.
	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SessionConfig identifies the acting user whose profile and ratings
// drive personalization.
type SessionConfig struct {
	UserID string `koanf:"user_id"`
}

// StoreConfig configures the document store and its source collections.
type StoreConfig struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`

	// SpotsCollection is the primary venue collection; LegacySpotsCollection
	// holds records from before the migration. Both are read on every reload.
	SpotsCollection       string `koanf:"spots_collection"`
	LegacySpotsCollection string `koanf:"legacy_spots_collection"`
	RatingsCollection     string `koanf:"ratings_collection"`
	UsersCollection       string `koanf:"users_collection"`

	// MembershipChunkSize bounds the number of values in one membership query.
	MembershipChunkSize int `koanf:"membership_chunk_size"`

	// ReloadInterval schedules periodic full reloads. Zero reloads only at
	// startup and on change events.
	ReloadInterval time.Duration `koanf:"reload_interval"`

	// Circuit breaker settings applied per collection.
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerInterval    time.Duration `koanf:"breaker_interval"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// RecommendConfig configures scoring and classification.
type RecommendConfig struct {
	Threshold float64 `koanf:"threshold"`

	// CacheEnabled memoizes scores per (data version, spot id).
	CacheEnabled bool `koanf:"cache_enabled"`
	CacheSize    int  `koanf:"cache_size"`
}

// ViewportConfig configures the viewport reconciler.
type ViewportConfig struct {
	DefaultLatitude       float64 `koanf:"default_latitude"`
	DefaultLongitude      float64 `koanf:"default_longitude"`
	DefaultLatitudeDelta  float64 `koanf:"default_latitude_delta"`
	DefaultLongitudeDelta float64 `koanf:"default_longitude_delta"`

	// LocationSpan is used when centering on the user's location.
	LocationSpan float64 `koanf:"location_span"`
	// CloseSpan is used when fitting a single spot.
	CloseSpan float64 `koanf:"close_span"`
	// MinSpan is the smallest span a bounding-box fit produces.
	MinSpan float64 `koanf:"min_span"`
	Padding float64 `koanf:"padding"`

	// Cooldown is how long a user pan or zoom suppresses programmatic moves.
	Cooldown time.Duration `koanf:"cooldown"`

	Persist bool `koanf:"persist"`
}

// GeocodeConfig configures the Nominatim-compatible geocoder.
type GeocodeConfig struct {
	Enabled           bool          `koanf:"enabled"`
	URL               string        `koanf:"url"`
	UserAgent         string        `koanf:"user_agent"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Timeout           time.Duration `koanf:"timeout"`
	Debounce          time.Duration `koanf:"debounce"`
}

// NATSConfig configures change-event messaging.
type NATSConfig struct {
	// Enabled controls whether change events are published and consumed.
	Enabled bool `koanf:"enabled"`

	URL string `koanf:"url"`

	// EmbeddedServer starts an in-process NATS server with JetStream.
	EmbeddedServer bool   `koanf:"embedded_server"`
	StoreDir       string `koanf:"store_dir"`
	MaxMemory      int64  `koanf:"max_memory"`
	MaxStore       int64  `koanf:"max_store"`

	DurableName      string `koanf:"durable_name"`
	QueueGroup       string `koanf:"queue_group"`
	SubscribersCount int    `koanf:"subscribers_count"`
}

// WebSocketConfig configures the snapshot broadcast hub.
type WebSocketConfig struct {
	SendBuffer     int           `koanf:"send_buffer"`
	WriteWait      time.Duration `koanf:"write_wait"`
	PongWait       time.Duration `koanf:"pong_wait"`
	PingPeriod     time.Duration `koanf:"ping_period"`
	MaxMessageSize int64         `koanf:"max_message_size"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
