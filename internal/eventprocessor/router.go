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

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/chaimap/internal/logging"
	"github.com/tomtom215/chaimap/internal/metrics"
)

// Commands is what the router drives. *mapview.Map satisfies it.
type Commands interface {
	Reload(ctx context.Context) error
	RefreshPersonalization(ctx context.Context) error
}

// Router consumes change events and issues state holder commands. It
// implements suture.Service; each Serve builds a fresh Watermill router so
// the service can be restarted.
type Router struct {
	cfg        RouterConfig
	subscriber message.Subscriber
	target     Commands
	wmLogger   watermill.LoggerAdapter
	logger     zerolog.Logger

	readyOnce sync.Once
	ready     chan struct{}
}

// NewRouter creates a router reading from subscriber.
func NewRouter(cfg RouterConfig, subscriber message.Subscriber, target Commands, logger watermill.LoggerAdapter) *Router {
	if logger == nil {
		logger = logging.NewWatermillAdapter(logging.WithComponent("events"))
	}
	return &Router{
		cfg:        cfg,
		subscriber: subscriber,
		target:     target,
		wmLogger:   logger,
		logger:     logging.WithComponent("events"),
		ready:      make(chan struct{}),
	}
}

// Serve runs the router until ctx is canceled.
func (r *Router) Serve(ctx context.Context) error {
	wr, err := r.build()
	if err != nil {
		return err
	}

	go func() {
		select {
		case <-wr.Running():
			r.readyOnce.Do(func() { close(r.ready) })
		case <-ctx.Done():
		}
	}()

	err = wr.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil {
		err = errors.New("event router stopped")
	}
	return err
}

// String implements fmt.Stringer for supervisor logs.
func (r *Router) String() string {
	return "event-router"
}

// Ready is closed once the router first subscribed to every topic.
func (r *Router) Ready() <-chan struct{} {
	return r.ready
}

func (r *Router) build() (*message.Router, error) {
	wr, err := message.NewRouter(message.RouterConfig{CloseTimeout: r.cfg.CloseTimeout}, r.wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create event router: %w", err)
	}

	retry := middleware.Retry{
		MaxRetries:      r.cfg.RetryMaxRetries,
		InitialInterval: r.cfg.RetryInitialInterval,
		MaxInterval:     r.cfg.RetryMaxInterval,
		Multiplier:      r.cfg.RetryMultiplier,
		Logger:          r.wmLogger,
	}
	wr.AddMiddleware(middleware.Recoverer, retry.Middleware)

	for _, topic := range Topics {
		wr.AddConsumerHandler("chaimap-"+topic, topic, r.subscriber, r.Handle)
	}
	return wr, nil
}

// Handle processes one message. Malformed events are dropped; a failing
// command is returned for retry.
func (r *Router) Handle(msg *message.Message) error {
	event, err := UnmarshalEvent(msg.Payload)
	if err != nil {
		metrics.EventsConsumed.WithLabelValues("unknown", "invalid").Inc()
		r.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping invalid change event")
		return nil
	}

	ctx := msg.Context()
	if id := msg.Metadata.Get("correlation_id"); id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	}

	switch event.Topic {
	case TopicSpotChanged, TopicRatingChanged:
		err = r.target.Reload(ctx)
	case TopicProfileChanged:
		if r.cfg.SessionUserID != "" && event.UserID != r.cfg.SessionUserID {
			metrics.EventsConsumed.WithLabelValues(event.Topic, "ignored").Inc()
			return nil
		}
		err = r.target.RefreshPersonalization(ctx)
	}

	metrics.RecordEventConsumed(event.Topic, err)
	if err != nil {
		logging.CtxFrom(ctx, r.logger).Warn().Err(err).Str("topic", event.Topic).Msg("Change event handling failed")
		return err
	}
	logging.CtxFrom(ctx, r.logger).Debug().Str("topic", event.Topic).Str("event_id", event.EventID).Msg("Handled change event")
	return nil
}
