// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package viewport

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/chaimap/internal/logging"
	"github.com/tomtom215/chaimap/internal/metrics"
	"github.com/tomtom215/chaimap/internal/models"
)

// Source names what moved the viewport.
type Source string

const (
	SourceDefault  Source = "default"
	SourceRestore  Source = "restore"
	SourceUser     Source = "user"
	SourceLocation Source = "location"
	SourceReload   Source = "reload"
	SourceFit      Source = "fit"
	SourceSearch   Source = "search"
)

// Config holds the reconciler's regions and timings.
type Config struct {
	Default      models.Viewport
	LocationSpan float64
	CloseSpan    float64
	MinSpan      float64
	Padding      float64
	Cooldown     time.Duration
}

// DefaultConfig returns the standard settings centered on San Francisco.
func DefaultConfig() Config {
	return Config{
		Default:      models.NewViewport(37.7749, -122.4194, 0.1, 0.1),
		LocationSpan: 0.05,
		CloseSpan:    0.01,
		MinSpan:      0.005,
		Padding:      1.5,
		Cooldown:     time.Second,
	}
}

// Persister stores the last viewport across restarts.
type Persister interface {
	Load(ctx context.Context) (models.Viewport, bool, error)
	Save(ctx context.Context, vp models.Viewport) error
}

// Reconciler tracks the authoritative viewport.
type Reconciler struct {
	cfg       Config
	persister Persister
	now       func() time.Time
	logger    zerolog.Logger

	current          models.Viewport
	lastKnown        models.Viewport
	interactingUntil time.Time

	// resumed is set when Start restored a persisted viewport and cleared by
	// the next applied or skipped programmatic move.
	resumed bool
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// WithPersister sets the durable store. Without one, changes are kept in
// memory only.
func WithPersister(p Persister) Option {
	return func(r *Reconciler) { r.persister = p }
}

// NewReconciler creates a reconciler showing cfg.Default until Start.
func NewReconciler(cfg Config, opts ...Option) *Reconciler {
	r := &Reconciler{
		cfg:     cfg,
		now:     time.Now,
		logger:  logging.WithComponent("viewport"),
		current: cfg.Default,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start picks the initial viewport: persisted, then last-known, then default.
func (r *Reconciler) Start(ctx context.Context) models.Viewport {
	if r.persister != nil {
		vp, ok, err := r.persister.Load(ctx)
		switch {
		case err != nil:
			r.logger.Warn().Err(err).Msg("Failed to load persisted viewport")
		case ok && vp.Valid():
			r.current, r.lastKnown, r.resumed = vp, vp, true
			metrics.RecordViewportMove(string(SourceRestore), true)
			return vp
		case ok:
			r.logger.Warn().Msg("Ignoring invalid persisted viewport")
		}
	}

	if !r.lastKnown.IsZero() {
		r.current = r.lastKnown
		return r.current
	}

	r.current = r.cfg.Default
	return r.current
}

// recordsLastKnown reports whether moves from source update the last-known
// snapshot. Location recenters and search results do not.
func recordsLastKnown(source Source) bool {
	switch source {
	case SourceUser, SourceFit, SourceReload, SourceRestore:
		return true
	}
	return false
}

// Current returns the viewport the map should show.
func (r *Reconciler) Current() models.Viewport {
	return r.current
}

// LastKnown returns the most recent viewport written by a fit, a user
// gesture or a restore.
func (r *Reconciler) LastKnown() models.Viewport {
	return r.lastKnown
}

// Interacting reports whether a user gesture is within the cool-down window.
func (r *Reconciler) Interacting() bool {
	return r.now().Before(r.interactingUntil)
}

// UserInteracted records a user pan or zoom ending at vp and starts the
// cool-down window. An invalid vp only starts the window.
func (r *Reconciler) UserInteracted(ctx context.Context, vp models.Viewport) models.Viewport {
	r.interactingUntil = r.now().Add(r.cfg.Cooldown)
	if vp.Valid() {
		r.apply(ctx, vp, SourceUser)
	}
	return r.current
}

// LocationUpdated recenters on the user unless a gesture is in progress.
// It reports whether the viewport moved.
func (r *Reconciler) LocationUpdated(ctx context.Context, c models.Coordinate) (models.Viewport, bool) {
	if r.Interacting() {
		metrics.RecordViewportMove(string(SourceLocation), false)
		return r.current, false
	}
	r.apply(ctx, Centered(c, r.cfg.LocationSpan), SourceLocation)
	return r.current, true
}

// DataReloaded recomputes the best-fit region after a reload, unless a
// gesture is in progress or this is the first reload after a restore.
func (r *Reconciler) DataReloaded(ctx context.Context, spots []models.Spot, location *models.Coordinate) (models.Viewport, bool) {
	if r.Interacting() {
		metrics.RecordViewportMove(string(SourceReload), false)
		return r.current, false
	}
	if r.resumed {
		r.resumed = false
		metrics.RecordViewportMove(string(SourceReload), false)
		return r.current, false
	}

	if location != nil {
		r.apply(ctx, Centered(*location, r.cfg.LocationSpan), SourceReload)
		return r.current, true
	}

	vp, ok := FitSpots(spots, r.cfg.Padding, r.cfg.CloseSpan, r.cfg.MinSpan)
	if !ok {
		return r.current, false
	}
	r.apply(ctx, vp, SourceReload)
	return r.current, true
}

// FitAll fits every spot. An empty set leaves the viewport unchanged.
func (r *Reconciler) FitAll(ctx context.Context, spots []models.Spot) (models.Viewport, bool) {
	return r.fit(ctx, spots)
}

// FitSubset fits a chosen subset of spots, centering closely on a single
// spot.
func (r *Reconciler) FitSubset(ctx context.Context, spots []models.Spot) (models.Viewport, bool) {
	return r.fit(ctx, spots)
}

func (r *Reconciler) fit(ctx context.Context, spots []models.Spot) (models.Viewport, bool) {
	vp, ok := FitSpots(spots, r.cfg.Padding, r.cfg.CloseSpan, r.cfg.MinSpan)
	if !ok {
		return r.current, false
	}
	r.apply(ctx, vp, SourceFit)
	return r.current, true
}

// CenterOn centers on a search result.
func (r *Reconciler) CenterOn(ctx context.Context, c models.Coordinate) models.Viewport {
	r.apply(ctx, Centered(c, r.cfg.LocationSpan), SourceSearch)
	return r.current
}

func (r *Reconciler) apply(ctx context.Context, vp models.Viewport, source Source) {
	r.current = vp
	if recordsLastKnown(source) {
		r.lastKnown = vp
	}
	r.resumed = false
	metrics.RecordViewportMove(string(source), true)

	if r.persister == nil {
		return
	}
	if err := r.persister.Save(ctx, vp); err != nil {
		r.logger.Warn().Err(err).Str("source", string(source)).Msg("Failed to persist viewport")
	}
}
