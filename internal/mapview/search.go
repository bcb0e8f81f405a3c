// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package mapview

import (
	"context"
	"strings"
	"time"

	"github.com/tomtom215/chaimap/internal/metrics"
	"github.com/tomtom215/chaimap/internal/models"
)

// Search sets the search query and narrows the displayed list before
// returning. A blank query restores the filters. With a geocoder configured,
// a non-blank query is geocoded after the debounce delay and the viewport
// centers on the result, unless a newer query was issued first.
func (m *Map) Search(ctx context.Context, text string) error {
	gen := m.searchGen.Add(1)
	m.cancelSearch()

	if err := m.setQuery(ctx, gen, text); err != nil {
		return err
	}

	query := strings.TrimSpace(text)
	if m.geocoder == nil || query == "" {
		return nil
	}

	m.searchMu.Lock()
	gctx, cancel := context.WithCancel(m.runCtx)
	m.searchCancel = cancel
	m.searchMu.Unlock()

	go m.geocode(gctx, cancel, gen, query)
	return nil
}

// setQuery applies text unless a newer generation already set the query.
// Concurrent searches may reach the actor out of generation order.
func (m *Map) setQuery(ctx context.Context, gen uint64, text string) error {
	return m.exec(ctx, func(context.Context) {
		if gen < m.st.queryGen {
			m.logger.Debug().Uint64("generation", gen).Msg("Ignoring superseded search query")
			return
		}
		m.st.queryGen = gen
		m.st.query = text
		m.publish()
	})
}

// SearchGeneration returns the generation of the latest query.
func (m *Map) SearchGeneration() uint64 {
	return m.searchGen.Load()
}

func (m *Map) geocode(ctx context.Context, cancel context.CancelFunc, gen uint64, query string) {
	defer cancel()

	if m.cfg.SearchDebounce > 0 {
		timer := time.NewTimer(m.cfg.SearchDebounce)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return
		}
	}

	coord, found, err := m.geocoder.Geocode(ctx, query)
	if err != nil {
		if ctx.Err() == nil {
			m.logger.Debug().Err(err).Str("query", query).Msg("Geocoding failed")
		}
		return
	}
	if !found {
		return
	}

	// A response that beat its cancellation still goes to the actor, which
	// discards it if a newer query exists.
	_ = m.exec(m.runContext(), func(actx context.Context) {
		m.applyGeocode(actx, gen, coord)
	})
}

// applyGeocode centers on coord if gen is still the latest query. Actor only.
func (m *Map) applyGeocode(ctx context.Context, gen uint64, coord models.Coordinate) {
	if gen != m.searchGen.Load() {
		metrics.StaleSearchResults.Inc()
		m.logger.Debug().Uint64("generation", gen).Msg("Discarding stale geocoding result")
		return
	}
	m.reconciler.CenterOn(ctx, coord)
	m.publish()
}

func (m *Map) cancelSearch() {
	m.searchMu.Lock()
	defer m.searchMu.Unlock()
	if m.searchCancel != nil {
		m.searchCancel()
		m.searchCancel = nil
	}
}

func (m *Map) runContext() context.Context {
	m.searchMu.Lock()
	defer m.searchMu.Unlock()
	return m.runCtx
}
