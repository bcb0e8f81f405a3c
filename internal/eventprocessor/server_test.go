// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package eventprocessor

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestEmbeddedServer_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a NATS server")
	}

	cfg := DefaultServerConfig()
	cfg.Port = -1
	cfg.StoreDir = t.TempDir()
	cfg.JetStreamMaxMem = 64 << 20
	cfg.JetStreamMaxStore = 64 << 20

	srv, err := NewEmbeddedServer(cfg)
	if err != nil {
		t.Fatalf("NewEmbeddedServer() error = %v", err)
	}

	if !srv.IsRunning() {
		t.Error("server should be running")
	}
	if !srv.JetStreamEnabled() {
		t.Error("JetStream should be enabled")
	}
	if !strings.HasPrefix(srv.ClientURL(), "nats://") {
		t.Errorf("ClientURL() = %q", srv.ClientURL())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if srv.IsRunning() {
		t.Error("server should be stopped")
	}
}
