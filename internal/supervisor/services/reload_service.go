// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/chaimap/internal/logging"
)

// Reloader reloads the map data. *mapview.Map satisfies it.
type Reloader interface {
	Reload(ctx context.Context) error
}

// ReloadServiceConfig controls when reloads run.
type ReloadServiceConfig struct {
	// ReloadOnStartup runs one reload as soon as the service starts.
	ReloadOnStartup bool

	// Interval schedules periodic reloads. Zero disables the schedule.
	Interval time.Duration
}

// ReloadService triggers the initial reload and optional periodic reloads.
// Reload failures are logged and never stop the service: the map keeps
// serving its last snapshot.
type ReloadService struct {
	reloader Reloader
	config   ReloadServiceConfig
	logger   zerolog.Logger
	name     string
}

// NewReloadService creates the service.
func NewReloadService(reloader Reloader, cfg ReloadServiceConfig) *ReloadService {
	return &ReloadService{
		reloader: reloader,
		config:   cfg,
		logger:   logging.WithComponent("reload-service"),
		name:     "reload-service",
	}
}

// Serve implements suture.Service.
func (s *ReloadService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("reload_on_startup", s.config.ReloadOnStartup).
		Dur("interval", s.config.Interval).
		Msg("Reload service starting")

	if s.config.ReloadOnStartup {
		s.reload(ctx, "startup")
	}

	if s.config.Interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.reload(ctx, "scheduled")
		}
	}
}

func (s *ReloadService) reload(ctx context.Context, trigger string) {
	start := time.Now()
	if err := s.reloader.Reload(ctx); err != nil {
		if ctx.Err() == nil {
			s.logger.Warn().Err(err).Str("trigger", trigger).Msg("Reload failed")
		}
		return
	}
	s.logger.Debug().Str("trigger", trigger).Dur("duration", time.Since(start)).Msg("Reload complete")
}

// String implements fmt.Stringer for supervisor logs.
func (s *ReloadService) String() string {
	return s.name
}
