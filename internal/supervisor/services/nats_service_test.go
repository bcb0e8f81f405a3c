// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

type mockNATSServer struct {
	running     atomic.Bool
	shutdowns   atomic.Int32
	shutdownErr error
}

func newMockNATSServer() *mockNATSServer {
	s := &mockNATSServer{}
	s.running.Store(true)
	return s
}

func (m *mockNATSServer) IsRunning() bool { return m.running.Load() }

func (m *mockNATSServer) Shutdown(context.Context) error {
	m.shutdowns.Add(1)
	m.running.Store(false)
	return m.shutdownErr
}

func TestNATSServerService_Interface(t *testing.T) {
	var _ suture.Service = (*NATSServerService)(nil)
}

func TestNATSServerService_ShutsDownOnCancel(t *testing.T) {
	server := newMockNATSServer()
	svc := NewNATSServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
	if server.shutdowns.Load() != 1 {
		t.Errorf("shutdowns = %d, want 1", server.shutdowns.Load())
	}
}

func TestNATSServerService_DetectsStoppedServer(t *testing.T) {
	tests := []struct {
		name        string
		stopBefore  bool
		stopWhileUp bool
	}{
		{"already stopped", true, false},
		{"stops while supervised", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newMockNATSServer()
			if tt.stopBefore {
				server.running.Store(false)
			}
			svc := NewNATSServerService(server, time.Second)
			svc.checkInterval = 10 * time.Millisecond

			errCh := make(chan error, 1)
			go func() { errCh <- svc.Serve(context.Background()) }()
			if tt.stopWhileUp {
				time.Sleep(30 * time.Millisecond)
				server.running.Store(false)
			}

			select {
			case err := <-errCh:
				if !errors.Is(err, ErrNATSServerStopped) {
					t.Errorf("Serve() = %v, want ErrNATSServerStopped", err)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("Serve did not notice the stopped server")
			}
		})
	}
}

func TestNATSServerService_ShutdownError(t *testing.T) {
	server := newMockNATSServer()
	server.shutdownErr = errors.New("jetstream flush failed")
	svc := NewNATSServerService(server, 0)
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("default shutdown timeout = %v, want 10s", svc.shutdownTimeout)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := svc.Serve(ctx); !errors.Is(err, server.shutdownErr) {
		t.Errorf("Serve() = %v, want the shutdown error", err)
	}
}
