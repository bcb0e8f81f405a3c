// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package recommend

import (
	"sync"

	"github.com/tomtom215/chaimap/internal/cache"
	"github.com/tomtom215/chaimap/internal/metrics"
	"github.com/tomtom215/chaimap/internal/models"
)

type memoKey struct {
	version uint64
	spotID  string
}

// Memo caches scores per (data version, spot id). Callers bump the version
// whenever spots, ratings or the profile change; the first lookup at a new
// version drops every cached score.
type Memo struct {
	mu      sync.Mutex
	version uint64
	lru     *cache.LRU[memoKey, float64]
}

// NewMemo creates a memo holding up to size scores.
func NewMemo(size int) *Memo {
	return &Memo{lru: cache.NewLRU[memoKey, float64](size, 0)}
}

// Score returns the memoized score, computing it on a miss.
func (m *Memo) Score(version uint64, spot models.Spot, in Inputs) float64 {
	m.mu.Lock()
	if version != m.version {
		m.lru.Purge()
		m.version = version
	}
	m.mu.Unlock()

	key := memoKey{version: version, spotID: spot.ID}
	if v, ok := m.lru.Get(key); ok {
		metrics.ScoreCacheHits.Inc()
		return v
	}
	metrics.ScoreCacheMisses.Inc()
	v := Score(spot, in)
	m.lru.Add(key, v)
	return v
}

// Len returns the number of cached scores.
func (m *Memo) Len() int {
	return m.lru.Len()
}

// Scorer returns a score function bound to one version and input set.
// A nil memo computes every score directly.
func (m *Memo) Scorer(version uint64, in Inputs) func(models.Spot) float64 {
	if m == nil {
		return func(s models.Spot) float64 { return Score(s, in) }
	}
	return func(s models.Spot) float64 { return m.Score(version, s, in) }
}
