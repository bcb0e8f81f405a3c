// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/chaimap/internal/logging"
)

// ErrNATSServerStopped is returned when the embedded server stops while
// supervised.
var ErrNATSServerStopped = errors.New("embedded NATS server is not running")

// NATSServer is the lifecycle subset of *eventprocessor.EmbeddedServer.
type NATSServer interface {
	IsRunning() bool
	Shutdown(ctx context.Context) error
}

// NATSServerService supervises an embedded NATS server that was started
// before the tree so clients could connect during wiring. It watches the
// server and shuts it down when the tree stops.
type NATSServerService struct {
	server          NATSServer
	checkInterval   time.Duration
	shutdownTimeout time.Duration
	name            string
	logger          zerolog.Logger
}

// NewNATSServerService creates the service with a 5s health check and the
// given shutdown timeout (10s if non-positive).
func NewNATSServerService(server NATSServer, shutdownTimeout time.Duration) *NATSServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &NATSServerService{
		server:          server,
		checkInterval:   5 * time.Second,
		shutdownTimeout: shutdownTimeout,
		name:            "nats-server",
		logger:          logging.WithComponent("nats-server"),
	}
}

// Serve implements suture.Service.
func (s *NATSServerService) Serve(ctx context.Context) error {
	if !s.server.IsRunning() {
		return ErrNATSServerStopped
	}

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
			defer cancel()
			if err := s.server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("nats server shutdown: %w", err)
			}
			s.logger.Info().Msg("Embedded NATS server stopped")
			return ctx.Err()

		case <-ticker.C:
			if !s.server.IsRunning() {
				s.logger.Error().Msg("Embedded NATS server stopped unexpectedly")
				return ErrNATSServerStopped
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (s *NATSServerService) String() string {
	return s.name
}
