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
)

type countingReloader struct {
	calls atomic.Int32
	err   error
}

func (r *countingReloader) Reload(context.Context) error {
	r.calls.Add(1)
	return r.err
}

func runFor(t *testing.T, svc *ReloadService, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Serve() = %v, want context.DeadlineExceeded", err)
	}
}

func TestReloadService(t *testing.T) {
	tests := []struct {
		name     string
		cfg      ReloadServiceConfig
		err      error
		run      time.Duration
		minCalls int32
		maxCalls int32
	}{
		{"startup only", ReloadServiceConfig{ReloadOnStartup: true}, nil, 50 * time.Millisecond, 1, 1},
		{"disabled", ReloadServiceConfig{}, nil, 50 * time.Millisecond, 0, 0},
		{"scheduled", ReloadServiceConfig{Interval: 10 * time.Millisecond}, nil, 100 * time.Millisecond, 2, 10},
		{"failures keep running", ReloadServiceConfig{ReloadOnStartup: true, Interval: 10 * time.Millisecond}, errors.New("store down"), 100 * time.Millisecond, 3, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &countingReloader{err: tt.err}
			svc := NewReloadService(r, tt.cfg)
			runFor(t, svc, tt.run)

			calls := r.calls.Load()
			if calls < tt.minCalls || calls > tt.maxCalls {
				t.Errorf("reloads = %d, want within [%d, %d]", calls, tt.minCalls, tt.maxCalls)
			}
		})
	}
}

func TestReloadService_String(t *testing.T) {
	if got := NewReloadService(&countingReloader{}, ReloadServiceConfig{}).String(); got != "reload-service" {
		t.Errorf("String() = %q", got)
	}
}
