// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package mapview

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/chaimap/internal/metrics"
	"github.com/tomtom215/chaimap/internal/models"
	"github.com/tomtom215/chaimap/internal/repository"
)

const (
	kindFull            = "full"
	kindPersonalization = "personalization"
)

// inputs is the result of fetching personalization data. A nil error field
// means the matching value replaces the current one.
type inputs struct {
	profile    *models.UserProfile
	profileErr error
	own        []models.Rating
	ownErr     error
	friends    []models.Rating
	friendsErr error
}

// Reload reloads spots and personalization inputs and applies them
// atomically, then lets the viewport refit. Concurrent calls share one
// reload. Load failures degrade; Reload only fails if ctx ends or the actor
// is not running.
func (m *Map) Reload(ctx context.Context) error {
	return m.coalesce(ctx, kindFull, m.reload)
}

// RefreshPersonalization reloads the profile and ratings without touching
// the spots or the viewport.
func (m *Map) RefreshPersonalization(ctx context.Context) error {
	return m.coalesce(ctx, kindPersonalization, m.refresh)
}

// coalesce runs fn once for all concurrent callers of the same kind. The
// shared run is detached from the first caller's cancellation; each caller
// stops waiting when its own ctx ends.
func (m *Map) coalesce(ctx context.Context, kind string, fn func(context.Context) error) error {
	ch := m.flight.DoChan(kind, func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.ReloadTimeout)
		defer cancel()
		start := time.Now()
		err := fn(runCtx)
		metrics.RecordReload(kind, time.Since(start))
		return nil, err
	})

	select {
	case res := <-ch:
		if res.Shared {
			metrics.ReloadsCoalesced.WithLabelValues(kind).Inc()
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Map) reload(ctx context.Context) error {
	var (
		spots  []models.Spot
		report repository.LoadReport
		in     inputs
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		spots, report = m.source.LoadSpots(gctx)
		return nil
	})
	g.Go(func() error {
		in = m.fetchInputs(gctx)
		return nil
	})
	_ = g.Wait()

	m.logReport(report)

	return m.exec(ctx, func(actx context.Context) {
		st := &m.st
		if report.Unavailable() {
			metrics.DegradedLoads.WithLabelValues("spots").Inc()
			m.logger.Warn().Int("kept", len(st.spots)).Msg("All spot sources unavailable, keeping previous spots")
		} else {
			st.spots = spots
			st.loadedAt = m.now()
		}
		st.spotsDegraded = report.Degraded()
		m.applyInputs(in)
		st.dataVersion++

		m.reconciler.DataReloaded(actx, st.spots, st.location)
		m.publish()
	})
}

func (m *Map) refresh(ctx context.Context) error {
	in := m.fetchInputs(ctx)
	return m.exec(ctx, func(context.Context) {
		m.applyInputs(in)
		m.st.dataVersion++
		m.publish()
	})
}

// fetchInputs loads the profile, then the user's and friends' ratings. The
// friend list comes from the fresh profile, or the current one if the
// profile failed to load.
func (m *Map) fetchInputs(ctx context.Context) inputs {
	var in inputs
	if m.cfg.UserID == "" {
		in.profileErr, in.ownErr, in.friendsErr = ErrNoSession, ErrNoSession, ErrNoSession
		return in
	}

	in.profile, in.profileErr = m.source.LoadProfile(ctx, m.cfg.UserID)

	profile := in.profile
	if in.profileErr != nil {
		profile = m.Snapshot().Profile
	}
	var friendUIDs []string
	if profile != nil {
		friendUIDs = profile.Friends
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		in.own, in.ownErr = m.source.OwnRatings(gctx, m.cfg.UserID)
		return nil
	})
	g.Go(func() error {
		in.friends, in.friendsErr = m.source.FriendRatings(gctx, friendUIDs)
		return nil
	})
	_ = g.Wait()
	return in
}

// applyInputs replaces each input that loaded and keeps the previous value of
// each one that failed. Actor only.
func (m *Map) applyInputs(in inputs) {
	st := &m.st
	st.inputsDegraded = false
	if in.profileErr == nil {
		st.profile = in.profile
	} else {
		m.degrade("profile", in.profileErr)
	}
	if in.ownErr == nil {
		st.own = in.own
	} else {
		m.degrade("own_ratings", in.ownErr)
	}
	if in.friendsErr == nil {
		st.friends = in.friends
	} else {
		m.degrade("friend_ratings", in.friendsErr)
	}
}

// degrade marks the snapshot degraded. Without a session there is nothing
// to load, which is not a failure.
func (m *Map) degrade(input string, err error) {
	if errors.Is(err, ErrNoSession) {
		return
	}
	m.st.inputsDegraded = true
	metrics.DegradedLoads.WithLabelValues(input).Inc()
	m.logger.Warn().Err(err).Str("input", input).Msg("Failed to load personalization input, keeping previous value")
}

func (m *Map) logReport(report repository.LoadReport) {
	for _, src := range report.Sources {
		if src.Err != nil {
			m.logger.Warn().Err(src.Err).Str("collection", src.Collection).Msg("Spot source unavailable")
			continue
		}
		for _, rec := range src.Dropped {
			m.logger.Debug().Err(rec).Str("collection", rec.Collection).Str("id", rec.ID).Msg("Dropped malformed spot record")
		}
		m.logger.Debug().
			Str("collection", src.Collection).
			Int("loaded", src.Loaded).
			Int("dropped", len(src.Dropped)).
			Msg("Loaded spot source")
	}
	if report.Duplicates > 0 {
		m.logger.Debug().Int("duplicates", report.Duplicates).Msg("Merged duplicate spots")
	}
}
