// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package repository

import (
	"context"
	"fmt"

	"github.com/tomtom215/chaimap/internal/metrics"
	"github.com/tomtom215/chaimap/internal/models"
	"github.com/tomtom215/chaimap/internal/store"
)

const userIDField = "userId"

// OwnRatings returns every rating authored by uid.
func (r *Repository) OwnRatings(ctx context.Context, uid string) ([]models.Rating, error) {
	docs, err := r.store.Query(ctx, r.cfg.RatingsCollection, store.Eq(userIDField, uid))
	if err != nil {
		return nil, fmt.Errorf("load own ratings: %w", err)
	}
	return r.decodeRatings(docs), nil
}

// FriendRatings returns the ratings authored by any of friendUIDs. Ids are
// queried in chunks of ChunkSize and the results concatenated in chunk
// order. Any chunk failing fails the whole call.
func (r *Repository) FriendRatings(ctx context.Context, friendUIDs []string) ([]models.Rating, error) {
	var ratings []models.Rating
	for _, chunk := range chunkStrings(friendUIDs, r.cfg.ChunkSize) {
		docs, err := r.store.Query(ctx, r.cfg.RatingsCollection, store.In(userIDField, chunk))
		if err != nil {
			return nil, fmt.Errorf("load friend ratings: %w", err)
		}
		ratings = append(ratings, r.decodeRatings(docs)...)
	}
	return ratings, nil
}

// RatingsForSpot returns every rating of one spot.
func (r *Repository) RatingsForSpot(ctx context.Context, spotID string) ([]models.Rating, error) {
	docs, err := r.store.Query(ctx, r.cfg.RatingsCollection, store.Eq("spotId", spotID))
	if err != nil {
		return nil, fmt.Errorf("load spot ratings: %w", err)
	}
	return r.decodeRatings(docs), nil
}

func (r *Repository) decodeRatings(docs []store.Document) []models.Rating {
	ratings := make([]models.Rating, 0, len(docs))
	for _, doc := range docs {
		rating, err := decodeRating(doc)
		if err != nil {
			metrics.MalformedRecords.WithLabelValues(r.cfg.RatingsCollection).Inc()
			r.logger.Debug().Err(err).Str("id", doc.ID).Msg("Dropping malformed rating record")
			continue
		}
		ratings = append(ratings, rating)
	}
	return ratings
}

func chunkStrings(values []string, size int) [][]string {
	if len(values) == 0 {
		return nil
	}
	if size < 1 {
		size = len(values)
	}
	chunks := make([][]string, 0, (len(values)+size-1)/size)
	for start := 0; start < len(values); start += size {
		end := min(start+size, len(values))
		chunks = append(chunks, values[start:end])
	}
	return chunks
}
