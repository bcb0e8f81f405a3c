// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/chaimap/internal/logging"
	"github.com/tomtom215/chaimap/internal/metrics"
	"github.com/tomtom215/chaimap/internal/models"
)

// ErrPublisherClosed is returned after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// Publisher publishes change events. It implements
// repository.ChangePublisher.
type Publisher struct {
	publisher message.Publisher
	breaker   *gobreaker.CircuitBreaker[any]
	now       func() time.Time

	mu     sync.RWMutex
	closed bool
}

// NewPublisher wraps a Watermill publisher. Publishing goes through a
// circuit breaker that opens after five consecutive failures.
func NewPublisher(pub message.Publisher) *Publisher {
	settings := gobreaker.Settings{
		Name:    "events",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	}
	return &Publisher{
		publisher: pub,
		breaker:   gobreaker.NewCircuitBreaker[any](settings),
		now:       time.Now,
	}
}

// PublishSpotChanged publishes a spot change.
func (p *Publisher) PublishSpotChanged(ctx context.Context, spot models.Spot) error {
	return p.Publish(ctx, NewSpotChanged(spot, p.now()))
}

// PublishRatingChanged publishes a new rating.
func (p *Publisher) PublishRatingChanged(ctx context.Context, r models.Rating) error {
	return p.Publish(ctx, NewRatingChanged(r, p.now()))
}

// PublishProfileChanged publishes a profile change.
func (p *Publisher) PublishProfileChanged(ctx context.Context, uid string) error {
	return p.Publish(ctx, NewProfileChanged(uid, p.now()))
}

// Publish encodes and publishes one event on its topic.
func (p *Publisher) Publish(ctx context.Context, e *ChangeEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	data, err := e.Marshal()
	if err != nil {
		return err
	}

	msg := message.NewMessage(e.EventID, data)
	msg.SetContext(ctx)
	msg.Metadata.Set(natsgo.MsgIdHdr, e.EventID)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set("correlation_id", id)
	}

	_, err = p.breaker.Execute(func() (any, error) {
		return nil, p.publisher.Publish(e.Topic, msg)
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Topic, err)
	}
	metrics.EventsPublished.WithLabelValues(e.Topic).Inc()
	return nil
}

// Close closes the underlying publisher.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
