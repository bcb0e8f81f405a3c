// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package mapview

import (
	"context"

	"github.com/tomtom215/chaimap/internal/discovery"
	"github.com/tomtom215/chaimap/internal/models"
	"github.com/tomtom215/chaimap/internal/recommend"
	"github.com/tomtom215/chaimap/internal/repository"
)

// SetFilter replaces the filter toggles.
func (m *Map) SetFilter(ctx context.Context, f discovery.Filter) error {
	return m.exec(ctx, func(context.Context) {
		m.st.filter = f
		m.publish()
	})
}

// SetSortOrder replaces the sort order.
func (m *Map) SetSortOrder(ctx context.Context, order models.SortOrder) error {
	return m.exec(ctx, func(context.Context) {
		m.st.order = order
		m.publish()
	})
}

// FitToAll fits the viewport to every canonical spot. It reports whether the
// viewport moved; an empty set leaves it unchanged.
func (m *Map) FitToAll(ctx context.Context) (bool, error) {
	var moved bool
	err := m.exec(ctx, func(actx context.Context) {
		_, moved = m.reconciler.FitAll(actx, m.st.spots)
		m.publish()
	})
	return moved, err
}

// FitToSubset fits the viewport to the canonical spots with the given ids.
// Unknown ids are ignored.
func (m *Map) FitToSubset(ctx context.Context, ids []string) (bool, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	var moved bool
	err := m.exec(ctx, func(actx context.Context) {
		subset := make([]models.Spot, 0, len(want))
		for _, s := range m.st.spots {
			if _, ok := want[s.ID]; ok {
				subset = append(subset, s)
			}
		}
		_, moved = m.reconciler.FitSubset(actx, subset)
		m.publish()
	})
	return moved, err
}

// FitToPersonalized fits the viewport to the personalized spots.
func (m *Map) FitToPersonalized(ctx context.Context) (bool, error) {
	var moved bool
	err := m.exec(ctx, func(actx context.Context) {
		_, moved = m.reconciler.FitSubset(actx, m.Snapshot().PersonalizedSpots())
		m.publish()
	})
	return moved, err
}

// UpdateLocation records the user's location. The viewport recenters unless
// a gesture is in progress; distance sorting uses the new location either
// way.
func (m *Map) UpdateLocation(ctx context.Context, c models.Coordinate) (bool, error) {
	var moved bool
	err := m.exec(ctx, func(actx context.Context) {
		loc := c
		m.st.location = &loc
		_, moved = m.reconciler.LocationUpdated(actx, c)
		m.publish()
	})
	return moved, err
}

// UserPanned records a user gesture ending at vp.
func (m *Map) UserPanned(ctx context.Context, vp models.Viewport) error {
	return m.exec(ctx, func(actx context.Context) {
		m.reconciler.UserInteracted(actx, vp)
		m.publish()
	})
}

// CreateSpot stores a spot with the acting user's first rating.
func (m *Map) CreateSpot(ctx context.Context, in repository.NewSpot) (string, error) {
	if m.cfg.UserID == "" {
		return "", ErrNoSession
	}
	in.CreatorID = m.cfg.UserID
	id, err := m.source.CreateSpot(ctx, in)
	if err != nil {
		return "", err
	}
	m.afterWrite()
	return id, nil
}

// CreateRating stores a rating by the acting user.
func (m *Map) CreateRating(ctx context.Context, in repository.NewRating) (string, error) {
	if m.cfg.UserID == "" {
		return "", ErrNoSession
	}
	in.UserID = m.cfg.UserID
	id, err := m.source.CreateRating(ctx, in)
	if err != nil {
		return "", err
	}
	m.afterWrite()
	return id, nil
}

func (m *Map) afterWrite() {
	if !m.cfg.ReloadOnWrite {
		return
	}
	ctx := m.runContext()
	go func() {
		if err := m.Reload(ctx); err != nil {
			m.logger.Warn().Err(err).Msg("Reload after write failed")
		}
	}()
}

// Snapshot returns the latest published snapshot.
func (m *Map) Snapshot() *Snapshot {
	return m.snapshot.Load()
}

// Spots returns the displayed list.
func (m *Map) Spots() []models.Spot {
	return m.Snapshot().Displayed
}

// PersonalizedIDs returns the personalized id set.
func (m *Map) PersonalizedIDs() map[string]struct{} {
	return m.Snapshot().Personalized
}

// Viewport returns the current viewport.
func (m *Map) Viewport() models.Viewport {
	return m.Snapshot().Viewport
}

// Evaluate scores and explains one canonical spot against the latest
// snapshot.
func (m *Map) Evaluate(spotID string) (recommend.Result, bool) {
	snap := m.Snapshot()
	spot, ok := snap.Spot(spotID)
	if !ok {
		return recommend.Result{}, false
	}
	return m.cfg.Classifier.Evaluate(spot, snap.Inputs()), true
}
