// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/chaimap/internal/logging"
	"github.com/tomtom215/chaimap/internal/metrics"
)

// BreakerSettings configures the per-collection circuit breakers.
type BreakerSettings struct {
	// MaxFailures is the number of consecutive failures that opens a circuit.
	MaxFailures uint32
	// Interval resets failure counts while closed. Zero never resets.
	Interval time.Duration
	// Timeout is how long a circuit stays open before a trial request.
	Timeout time.Duration
}

// BreakerStore wraps a Store with one circuit breaker per collection so a
// failing source is cut off quickly while the others keep serving.
// Rejected calls return ErrUnavailable. ErrNotFound does not count as a failure.
type BreakerStore struct {
	next     Store
	settings BreakerSettings

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

// NewBreakerStore wraps next.
func NewBreakerStore(next Store, settings BreakerSettings) *BreakerStore {
	if settings.MaxFailures == 0 {
		settings.MaxFailures = 5
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 30 * time.Second
	}
	return &BreakerStore{
		next:     next,
		settings: settings,
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
}

func (s *BreakerStore) breaker(collection string) *gobreaker.CircuitBreaker[any] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cb, ok := s.breakers[collection]; ok {
		return cb
	}

	name := "store-" + collection
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	maxFailures := s.settings.MaxFailures
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    s.settings.Interval,
		Timeout:     s.settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
	s.breakers[collection] = cb
	return cb
}

// State returns the breaker state for a collection.
func (s *BreakerStore) State(collection string) gobreaker.State {
	return s.breaker(collection).State()
}

func (s *BreakerStore) execute(collection string, fn func() (any, error)) (any, error) {
	result, err := s.breaker(collection).Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s: %w: %w", collection, ErrUnavailable, err)
	}
	return result, err
}

// Query runs the query under the collection's breaker.
func (s *BreakerStore) Query(ctx context.Context, collection string, preds ...Predicate) ([]Document, error) {
	result, err := s.execute(collection, func() (any, error) {
		return s.next.Query(ctx, collection, preds...)
	})
	if err != nil {
		return nil, err
	}
	docs, _ := result.([]Document)
	return docs, nil
}

// Get runs the lookup under the collection's breaker.
func (s *BreakerStore) Get(ctx context.Context, collection, id string) (Document, error) {
	result, err := s.execute(collection, func() (any, error) {
		return s.next.Get(ctx, collection, id)
	})
	if err != nil {
		return Document{}, err
	}
	doc, _ := result.(Document)
	return doc, nil
}

// Create runs the write under the collection's breaker.
func (s *BreakerStore) Create(ctx context.Context, collection, id string, fields map[string]any) error {
	_, err := s.execute(collection, func() (any, error) {
		return nil, s.next.Create(ctx, collection, id, fields)
	})
	return err
}

// stateToFloat converts circuit breaker state to a numeric metric value.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
