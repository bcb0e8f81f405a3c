// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package repository

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/chaimap/internal/metrics"
	"github.com/tomtom215/chaimap/internal/models"
)

// SourceResult describes one venue collection read during a load.
type SourceResult struct {
	Collection string
	Loaded     int
	Dropped    []*RecordError
	Err        *SourceError
}

// LoadReport summarizes a spot load.
type LoadReport struct {
	Sources    []SourceResult
	Duplicates int
}

// Degraded reports whether any source was unavailable.
func (r LoadReport) Degraded() bool {
	for _, s := range r.Sources {
		if s.Err != nil {
			return true
		}
	}
	return false
}

// Unavailable reports whether every source failed, leaving nothing loaded.
func (r LoadReport) Unavailable() bool {
	if len(r.Sources) == 0 {
		return false
	}
	for _, s := range r.Sources {
		if s.Err == nil {
			return false
		}
	}
	return true
}

// Malformed returns the number of dropped records across all sources.
func (r LoadReport) Malformed() int {
	n := 0
	for _, s := range r.Sources {
		n += len(s.Dropped)
	}
	return n
}

// LoadSpots reads both venue collections and returns the merged canonical
// set. The legacy collection is read first so that, for an id present in
// both, the primary record survives deduplication. LoadSpots never fails:
// unavailable sources and malformed records are reported and skipped. A
// canceled context is reported as an unavailable source.
func (r *Repository) LoadSpots(ctx context.Context) ([]models.Spot, LoadReport) {
	collections := []string{r.cfg.LegacySpotsCollection, r.cfg.SpotsCollection}
	results := make([]SourceResult, len(collections))
	spotsBySource := make([][]models.Spot, len(collections))

	var g errgroup.Group
	for i, collection := range collections {
		g.Go(func() error {
			spotsBySource[i], results[i] = r.loadSource(ctx, collection)
			return nil
		})
	}
	_ = g.Wait()

	var all []models.Spot
	for _, spots := range spotsBySource {
		all = append(all, spots...)
	}
	canonical := Dedupe(all)

	report := LoadReport{Sources: results, Duplicates: len(all) - len(canonical)}
	if report.Duplicates > 0 {
		metrics.DuplicateSpots.Add(float64(report.Duplicates))
	}
	return canonical, report
}

func (r *Repository) loadSource(ctx context.Context, collection string) ([]models.Spot, SourceResult) {
	result := SourceResult{Collection: collection}

	docs, err := r.store.Query(ctx, collection)
	metrics.RecordSourceLoad(collection, err)
	if err != nil {
		result.Err = &SourceError{Collection: collection, Err: err}
		r.logger.Warn().Err(err).Str("collection", collection).Msg("Spot source unavailable, skipping")
		return nil, result
	}

	spots := make([]models.Spot, 0, len(docs))
	for _, doc := range docs {
		spot, err := decodeSpot(doc)
		if err != nil {
			recErr := &RecordError{Collection: collection, ID: doc.ID, Err: err}
			result.Dropped = append(result.Dropped, recErr)
			metrics.MalformedRecords.WithLabelValues(collection).Inc()
			r.logger.Debug().Err(err).Str("collection", collection).Str("id", doc.ID).Msg("Dropping malformed spot record")
			continue
		}
		spots = append(spots, spot)
	}
	result.Loaded = len(spots)
	return spots, result
}

// Dedupe collapses spots sharing an id. The last occurrence's value wins and
// takes the position of the first occurrence, so the result is
// deterministic and Dedupe(Dedupe(x)) == Dedupe(x).
func Dedupe(spots []models.Spot) []models.Spot {
	index := make(map[string]int, len(spots))
	out := make([]models.Spot, 0, len(spots))
	for _, s := range spots {
		if i, ok := index[s.ID]; ok {
			out[i] = s
			continue
		}
		index[s.ID] = len(out)
		out = append(out, s)
	}
	return out
}
