// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/chaimap/internal/config"
	"github.com/tomtom215/chaimap/internal/eventprocessor"
	"github.com/tomtom215/chaimap/internal/geocode"
	"github.com/tomtom215/chaimap/internal/logging"
	"github.com/tomtom215/chaimap/internal/mapview"
	"github.com/tomtom215/chaimap/internal/models"
	"github.com/tomtom215/chaimap/internal/recommend"
	"github.com/tomtom215/chaimap/internal/repository"
	"github.com/tomtom215/chaimap/internal/store"
	"github.com/tomtom215/chaimap/internal/viewport"
)

// eventComponents holds the change-event transport. subscriber may be the
// same value as publisher when events stay in process.
type eventComponents struct {
	server     *eventprocessor.EmbeddedServer
	publisher  message.Publisher
	subscriber message.Subscriber
	routerCfg  eventprocessor.RouterConfig
}

// initEvents builds the transport for change events. With NATS disabled an
// in-process channel carries them so writes still refresh the map.
func initEvents(cfg *config.Config, wmLogger watermill.LoggerAdapter) (*eventComponents, error) {
	serverCfg, clientCfg, routerCfg := eventprocessor.FromConfig(cfg)

	if !cfg.NATS.Enabled {
		ch := eventprocessor.NewInProcess(wmLogger)
		logging.Info().Msg("NATS disabled, using in-process change events")
		return &eventComponents{publisher: ch, subscriber: ch, routerCfg: routerCfg}, nil
	}

	ec := &eventComponents{routerCfg: routerCfg}
	if cfg.NATS.EmbeddedServer {
		srv, err := eventprocessor.NewEmbeddedServer(serverCfg)
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS server: %w", err)
		}
		ec.server = srv
		clientCfg.URL = srv.ClientURL()
		logging.Info().Str("url", clientCfg.URL).Msg("Embedded NATS server started")
	}

	pub, err := eventprocessor.NewNATSPublisher(clientCfg, wmLogger)
	if err != nil {
		ec.abort()
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}
	ec.publisher = pub

	sub, err := eventprocessor.NewNATSSubscriber(clientCfg, wmLogger)
	if err != nil {
		ec.abort()
		return nil, fmt.Errorf("create NATS subscriber: %w", err)
	}
	ec.subscriber = sub

	logging.Info().Str("url", clientCfg.URL).Msg("NATS change events enabled")
	return ec, nil
}

// close releases the publisher and subscriber. The embedded server is owned
// by the supervisor once the tree starts.
func (ec *eventComponents) close() error {
	var errs []error
	if ec.publisher != nil {
		errs = append(errs, ec.publisher.Close())
	}
	if ec.subscriber != nil && any(ec.subscriber) != any(ec.publisher) {
		errs = append(errs, ec.subscriber.Close())
	}
	return errors.Join(errs...)
}

// abort undoes a partial setup, including the embedded server.
func (ec *eventComponents) abort() {
	_ = ec.close()
	if ec.server != nil {
		_ = ec.server.Shutdown(context.Background())
	}
}

func breakerSettings(c config.StoreConfig) store.BreakerSettings {
	return store.BreakerSettings{
		MaxFailures: c.BreakerMaxFailures,
		Interval:    c.BreakerInterval,
		Timeout:     c.BreakerTimeout,
	}
}

func repositoryConfig(c config.StoreConfig) repository.Config {
	rc := repository.DefaultConfig()
	if c.SpotsCollection != "" {
		rc.SpotsCollection = c.SpotsCollection
	}
	if c.LegacySpotsCollection != "" {
		rc.LegacySpotsCollection = c.LegacySpotsCollection
	}
	if c.RatingsCollection != "" {
		rc.RatingsCollection = c.RatingsCollection
	}
	if c.UsersCollection != "" {
		rc.UsersCollection = c.UsersCollection
	}
	if c.MembershipChunkSize > 0 {
		rc.ChunkSize = c.MembershipChunkSize
	}
	return rc
}

func viewportConfig(c config.ViewportConfig) viewport.Config {
	vc := viewport.DefaultConfig()
	def := models.NewViewport(c.DefaultLatitude, c.DefaultLongitude, c.DefaultLatitudeDelta, c.DefaultLongitudeDelta)
	if def.Valid() {
		vc.Default = def
	}
	if c.LocationSpan > 0 {
		vc.LocationSpan = c.LocationSpan
	}
	if c.CloseSpan > 0 {
		vc.CloseSpan = c.CloseSpan
	}
	if c.MinSpan > 0 {
		vc.MinSpan = c.MinSpan
	}
	if c.Padding > 0 {
		vc.Padding = c.Padding
	}
	if c.Cooldown > 0 {
		vc.Cooldown = c.Cooldown
	}
	return vc
}

// mapConfig derives the map settings. Change events drive reloads after
// writes, so the map does not reload on its own.
func mapConfig(cfg *config.Config) mapview.Config {
	mc := mapview.DefaultConfig(cfg.Session.UserID)
	mc.Classifier = recommend.Classifier{Threshold: cfg.Recommend.Threshold}
	if !cfg.Recommend.CacheEnabled {
		mc.MemoSize = 0
	} else if cfg.Recommend.CacheSize > 0 {
		mc.MemoSize = cfg.Recommend.CacheSize
	}
	mc.SearchDebounce = cfg.Geocode.Debounce
	mc.ReloadOnWrite = false
	return mc
}

func geocodeConfig(c config.GeocodeConfig) geocode.Config {
	return geocode.Config{
		BaseURL:           c.URL,
		UserAgent:         c.UserAgent,
		RequestsPerSecond: c.RequestsPerSecond,
		Timeout:           c.Timeout,
	}
}
