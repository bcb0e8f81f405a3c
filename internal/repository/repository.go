// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/chaimap/internal/logging"
	"github.com/tomtom215/chaimap/internal/models"
	"github.com/tomtom215/chaimap/internal/store"
)

// Config names the collections the repository reads and writes.
type Config struct {
	SpotsCollection       string
	LegacySpotsCollection string
	RatingsCollection     string
	UsersCollection       string

	// ChunkSize bounds the number of ids in one membership query.
	ChunkSize int
}

// DefaultConfig returns the standard collection layout.
func DefaultConfig() Config {
	return Config{
		SpotsCollection:       "chaiSpots",
		LegacySpotsCollection: "chaiFinder",
		RatingsCollection:     "ratings",
		UsersCollection:       "users",
		ChunkSize:             10,
	}
}

// ChangePublisher is notified after successful writes.
type ChangePublisher interface {
	PublishSpotChanged(ctx context.Context, spot models.Spot) error
	PublishRatingChanged(ctx context.Context, rating models.Rating) error
}

// Repository reads and writes spots, ratings and profiles.
type Repository struct {
	store     store.Store
	cfg       Config
	publisher ChangePublisher
	logger    zerolog.Logger

	newID func() string
	now   func() time.Time
}

// Option configures a Repository.
type Option func(*Repository)

// WithPublisher sets the change publisher used by the write path.
func WithPublisher(p ChangePublisher) Option {
	return func(r *Repository) { r.publisher = p }
}

// New creates a repository over s.
func New(s store.Store, cfg Config, opts ...Option) *Repository {
	if cfg.ChunkSize < 1 {
		cfg.ChunkSize = DefaultConfig().ChunkSize
	}
	r := &Repository{
		store:  s,
		cfg:    cfg,
		logger: logging.WithComponent("repository"),
		newID:  uuid.NewString,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the repository's collection layout.
func (r *Repository) Config() Config {
	return r.cfg
}
