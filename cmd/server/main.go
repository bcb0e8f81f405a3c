// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/chaimap/internal/api"
	"github.com/tomtom215/chaimap/internal/config"
	"github.com/tomtom215/chaimap/internal/eventprocessor"
	"github.com/tomtom215/chaimap/internal/geocode"
	"github.com/tomtom215/chaimap/internal/logging"
	"github.com/tomtom215/chaimap/internal/mapview"
	"github.com/tomtom215/chaimap/internal/repository"
	"github.com/tomtom215/chaimap/internal/store"
	"github.com/tomtom215/chaimap/internal/supervisor"
	"github.com/tomtom215/chaimap/internal/supervisor/services"
	"github.com/tomtom215/chaimap/internal/viewport"
	ws "github.com/tomtom215/chaimap/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logCfg.Caller = cfg.Logging.Caller
	logging.Init(logCfg)

	logging.Info().Msg("Starting Chaimap...")
	if cfg.Session.UserID == "" {
		logging.Warn().Msg("No session user configured, personalization and writes are disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === DATA LAYER ===

	db, err := store.OpenBadger(cfg.Store.Path, cfg.Store.InMemory)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Store.Path).Msg("Failed to open store")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()
	docs := store.NewBreakerStore(store.NewBadgerStore(db), breakerSettings(cfg.Store))
	logging.Info().Bool("in_memory", cfg.Store.InMemory).Str("path", cfg.Store.Path).Msg("Document store opened")

	// === CHANGE EVENTS ===

	wmLogger := logging.NewWatermillAdapter(logging.WithComponent("watermill"))
	events, err := initEvents(cfg, wmLogger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize change events")
	}
	defer func() {
		if err := events.close(); err != nil {
			logging.Error().Err(err).Msg("Error closing change event transport")
		}
	}()
	publisher := eventprocessor.NewPublisher(events.publisher)

	repo := repository.New(docs, repositoryConfig(cfg.Store), repository.WithPublisher(publisher))

	// === MAP STATE ===

	var vpOpts []viewport.Option
	if cfg.Viewport.Persist {
		vpOpts = append(vpOpts, viewport.WithPersister(viewport.NewBadgerStore(db)))
	}
	reconciler := viewport.NewReconciler(viewportConfig(cfg.Viewport), vpOpts...)

	var mapOpts []mapview.Option
	if cfg.Geocode.Enabled {
		mapOpts = append(mapOpts, mapview.WithGeocoder(geocode.New(geocodeConfig(cfg.Geocode))))
		logging.Info().Str("url", cfg.Geocode.URL).Msg("Geocoded search enabled")
	}
	chaiMap := mapview.New(mapConfig(cfg), repo, reconciler, mapOpts...)

	eventRouter := eventprocessor.NewRouter(events.routerCfg, events.subscriber, chaiMap, wmLogger)

	// === API LAYER ===

	hub := ws.NewHub(ws.ConfigFrom(cfg.WebSocket))
	bridge := ws.NewBridge(hub, chaiMap)

	handler := api.NewHandler(chaiMap, hub)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(cfg.Server)))
	routes := router.SetupChi()

	newServer := func() services.HTTPServer {
		return &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      routes,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.ReadTimeout * 4,
		}
	}

	// === SUPERVISOR TREE ===

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	svcs := supervisor.Services{
		Map: chaiMap,
		Reloader: services.NewReloadService(chaiMap, services.ReloadServiceConfig{
			ReloadOnStartup: true,
			Interval:        cfg.Store.ReloadInterval,
		}),
		EventRouter: eventRouter,
		Hub:         hub,
		Bridge:      bridge,
		HTTP:        services.NewHTTPServerService(newServer, cfg.Server.ShutdownTimeout),
	}
	if events.server != nil {
		svcs.NATSServer = services.NewNATSServerService(events.server, cfg.Server.ShutdownTimeout)
	}
	n := tree.Install(svcs)
	logging.Info().Int("services", n).Str("addr", cfg.Server.Addr()).Msg("Services added to supervisor tree")

	// === START ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
