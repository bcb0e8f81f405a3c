// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// flakyStore fails every call while failing is set.
type flakyStore struct {
	failing atomic.Bool
	calls   atomic.Int32
}

var errBackend = errors.New("backend down")

func (f *flakyStore) Query(ctx context.Context, collection string, preds ...Predicate) ([]Document, error) {
	f.calls.Add(1)
	if f.failing.Load() {
		return nil, errBackend
	}
	return []Document{{ID: "d1", Fields: map[string]any{}}}, nil
}

func (f *flakyStore) Get(ctx context.Context, collection, id string) (Document, error) {
	f.calls.Add(1)
	if f.failing.Load() {
		return Document{}, errBackend
	}
	return Document{}, ErrNotFound
}

func (f *flakyStore) Create(ctx context.Context, collection, id string, fields map[string]any) error {
	f.calls.Add(1)
	if f.failing.Load() {
		return errBackend
	}
	return nil
}

func TestBreakerStore_OpensPerCollection(t *testing.T) {
	backend := &flakyStore{}
	backend.failing.Store(true)
	s := NewBreakerStore(backend, BreakerSettings{MaxFailures: 2, Timeout: time.Hour})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := s.Query(ctx, "chaiFinder"); !errors.Is(err, errBackend) {
			t.Fatalf("call %d: error = %v, want backend error", i, err)
		}
	}
	if s.State("chaiFinder") != gobreaker.StateOpen {
		t.Fatalf("State = %v, want open", s.State("chaiFinder"))
	}

	before := backend.calls.Load()
	_, err := s.Query(ctx, "chaiFinder")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
	if backend.calls.Load() != before {
		t.Error("open circuit must not reach the backend")
	}

	// Other collections keep their own breaker.
	backend.failing.Store(false)
	docs, err := s.Query(ctx, "chaiSpots")
	if err != nil {
		t.Fatalf("chaiSpots Query() error = %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("got %d docs, want 1", len(docs))
	}
}

func TestBreakerStore_NotFoundIsNotFailure(t *testing.T) {
	backend := &flakyStore{}
	s := NewBreakerStore(backend, BreakerSettings{MaxFailures: 1, Timeout: time.Hour})

	for i := 0; i < 3; i++ {
		if _, err := s.Get(context.Background(), "users", "u1"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Get() error = %v, want ErrNotFound", err)
		}
	}
	if s.State("users") != gobreaker.StateClosed {
		t.Errorf("State = %v, want closed", s.State("users"))
	}
}

func TestBreakerStore_Create(t *testing.T) {
	backend := &flakyStore{}
	s := NewBreakerStore(backend, BreakerSettings{})

	if err := s.Create(context.Background(), "ratings", "r1", map[string]any{}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	backend.failing.Store(true)
	if err := s.Create(context.Background(), "ratings", "r2", map[string]any{}); !errors.Is(err, errBackend) {
		t.Fatalf("Create() error = %v, want backend error", err)
	}
}
