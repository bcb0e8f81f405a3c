// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package config

import (
	"fmt"
	"strings"
)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateSession(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateViewport(); err != nil {
		return err
	}
	if err := c.validateGeocode(); err != nil {
		return err
	}
	if err := c.validateNATS(); err != nil {
		return err
	}
	return c.validateWebSocket()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if !c.Server.RateLimitDisabled {
		if c.Server.RateLimitRequests < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Server.RateLimitRequests)
		}
		if c.Server.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Server.RateLimitWindow)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateSession() error {
	if strings.TrimSpace(c.Session.UserID) == "" {
		return fmt.Errorf("SESSION_USER_ID is required")
	}
	return nil
}

func (c *Config) validateStore() error {
	s := c.Store
	if !s.InMemory && s.Path == "" {
		return fmt.Errorf("STORE_PATH is required unless STORE_IN_MEMORY=true")
	}
	if s.SpotsCollection == "" || s.LegacySpotsCollection == "" {
		return fmt.Errorf("both spot collections must be named")
	}
	if s.SpotsCollection == s.LegacySpotsCollection {
		return fmt.Errorf("spot collections must differ, both are %q", s.SpotsCollection)
	}
	if s.RatingsCollection == "" || s.UsersCollection == "" {
		return fmt.Errorf("ratings and users collections must be named")
	}
	if s.MembershipChunkSize < 1 {
		return fmt.Errorf("STORE_MEMBERSHIP_CHUNK_SIZE must be at least 1, got %d", s.MembershipChunkSize)
	}
	if s.ReloadInterval < 0 {
		return fmt.Errorf("STORE_RELOAD_INTERVAL must not be negative, got %v", s.ReloadInterval)
	}
	if s.BreakerMaxFailures < 1 {
		return fmt.Errorf("STORE_BREAKER_MAX_FAILURES must be at least 1")
	}
	if s.BreakerTimeout <= 0 {
		return fmt.Errorf("STORE_BREAKER_TIMEOUT must be positive, got %v", s.BreakerTimeout)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if c.Recommend.Threshold < 1 || c.Recommend.Threshold > 5 {
		return fmt.Errorf("RECOMMEND_THRESHOLD must be within [1, 5], got %v", c.Recommend.Threshold)
	}
	if c.Recommend.CacheEnabled && c.Recommend.CacheSize < 1 {
		return fmt.Errorf("RECOMMEND_CACHE_SIZE must be at least 1 when caching is enabled")
	}
	return nil
}

func (c *Config) validateViewport() error {
	v := c.Viewport
	if v.DefaultLatitude < -90 || v.DefaultLatitude > 90 {
		return fmt.Errorf("VIEWPORT_DEFAULT_LATITUDE out of range: %v", v.DefaultLatitude)
	}
	if v.DefaultLongitude < -180 || v.DefaultLongitude > 180 {
		return fmt.Errorf("VIEWPORT_DEFAULT_LONGITUDE out of range: %v", v.DefaultLongitude)
	}
	for name, span := range map[string]float64{
		"VIEWPORT_DEFAULT_LATITUDE_DELTA":  v.DefaultLatitudeDelta,
		"VIEWPORT_DEFAULT_LONGITUDE_DELTA": v.DefaultLongitudeDelta,
		"VIEWPORT_LOCATION_SPAN":           v.LocationSpan,
		"VIEWPORT_CLOSE_SPAN":              v.CloseSpan,
		"VIEWPORT_MIN_SPAN":                v.MinSpan,
	} {
		if span <= 0 {
			return fmt.Errorf("%s must be positive, got %v", name, span)
		}
	}
	if v.Padding < 1 {
		return fmt.Errorf("VIEWPORT_PADDING must be at least 1, got %v", v.Padding)
	}
	if v.Cooldown < 0 {
		return fmt.Errorf("VIEWPORT_COOLDOWN must not be negative, got %v", v.Cooldown)
	}
	return nil
}

func (c *Config) validateGeocode() error {
	if !c.Geocode.Enabled {
		return nil
	}
	if c.Geocode.URL == "" {
		return fmt.Errorf("GEOCODE_URL is required when GEOCODE_ENABLED=true")
	}
	if !strings.HasPrefix(c.Geocode.URL, "http://") && !strings.HasPrefix(c.Geocode.URL, "https://") {
		return fmt.Errorf("GEOCODE_URL must start with http:// or https://, got %q", c.Geocode.URL)
	}
	if c.Geocode.RequestsPerSecond <= 0 {
		return fmt.Errorf("GEOCODE_REQUESTS_PER_SECOND must be positive")
	}
	if c.Geocode.Timeout <= 0 {
		return fmt.Errorf("GEOCODE_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if !c.NATS.EmbeddedServer && c.NATS.URL == "" {
		return fmt.Errorf("NATS_URL is required when NATS_ENABLED=true and NATS_EMBEDDED=false")
	}
	if c.NATS.EmbeddedServer && c.NATS.StoreDir == "" {
		return fmt.Errorf("NATS_STORE_DIR is required for the embedded server")
	}
	if c.NATS.SubscribersCount < 1 {
		return fmt.Errorf("NATS_SUBSCRIBERS must be at least 1")
	}
	return nil
}

func (c *Config) validateWebSocket() error {
	w := c.WebSocket
	if w.SendBuffer < 1 {
		return fmt.Errorf("WS_SEND_BUFFER must be at least 1")
	}
	if w.PingPeriod >= w.PongWait {
		return fmt.Errorf("WS_PING_PERIOD (%v) must be shorter than WS_PONG_WAIT (%v)", w.PingPeriod, w.PongWait)
	}
	return nil
}
