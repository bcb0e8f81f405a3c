// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package eventprocessor

import (
	"time"

	"github.com/tomtom215/chaimap/internal/config"
)

// ServerConfig holds embedded NATS server settings.
type ServerConfig struct {
	Host              string
	Port              int
	StoreDir          string
	JetStreamMaxMem   int64
	JetStreamMaxStore int64
}

// DefaultServerConfig returns defaults for the embedded server.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:              "127.0.0.1",
		Port:              4222,
		StoreDir:          "/data/nats/jetstream",
		JetStreamMaxMem:   1 << 30,
		JetStreamMaxStore: 10 << 30,
	}
}

// ClientConfig holds NATS client settings shared by publisher and
// subscriber.
type ClientConfig struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration

	// Subscriber only.
	DurableName      string
	QueueGroup       string
	SubscribersCount int
	AckWaitTimeout   time.Duration
	CloseTimeout     time.Duration
}

// DefaultClientConfig returns client defaults for url.
func DefaultClientConfig(url string) ClientConfig {
	return ClientConfig{
		URL:              url,
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
		DurableName:      "chaimap",
		QueueGroup:       "chaimap",
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     30 * time.Second,
	}
}

// RouterConfig holds Watermill router settings.
type RouterConfig struct {
	CloseTimeout time.Duration

	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64

	// SessionUserID limits profile events to the acting user.
	SessionUserID string
}

// DefaultRouterConfig returns router defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     5 * time.Second,
		RetryMultiplier:      2.0,
	}
}

// FromConfig derives the server, client and router settings from the
// application configuration.
func FromConfig(cfg *config.Config) (ServerConfig, ClientConfig, RouterConfig) {
	server := DefaultServerConfig()
	server.StoreDir = cfg.NATS.StoreDir
	server.JetStreamMaxMem = cfg.NATS.MaxMemory
	server.JetStreamMaxStore = cfg.NATS.MaxStore

	client := DefaultClientConfig(cfg.NATS.URL)
	client.DurableName = cfg.NATS.DurableName
	client.QueueGroup = cfg.NATS.QueueGroup
	if cfg.NATS.SubscribersCount > 0 {
		client.SubscribersCount = cfg.NATS.SubscribersCount
	}

	router := DefaultRouterConfig()
	router.SessionUserID = cfg.Session.UserID
	return server, client, router
}
