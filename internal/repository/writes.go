// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package repository

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/tomtom215/chaimap/internal/metrics"
	"github.com/tomtom215/chaimap/internal/models"
	"github.com/tomtom215/chaimap/internal/store"
	"github.com/tomtom215/chaimap/internal/validation"
)

// NewSpot is a venue submitted by a user together with their first rating.
type NewSpot struct {
	Name      string   `json:"name" validate:"required,notblank,max=200"`
	Address   string   `json:"address" validate:"required,notblank,max=500"`
	Latitude  float64  `json:"latitude" validate:"latitude"`
	Longitude float64  `json:"longitude" validate:"longitude"`
	ChaiTypes []string `json:"chaiTypes" validate:"required,max=20,dive,notblank"`

	CreatorID          string   `json:"creatorId" validate:"required"`
	Rating             int      `json:"rating" validate:"gte=1,lte=5"`
	CreaminessRating   *int     `json:"creaminessRating,omitempty" validate:"omitempty,gte=1,lte=5"`
	ChaiStrengthRating *int     `json:"chaiStrengthRating,omitempty" validate:"omitempty,gte=1,lte=5"`
	FlavorNotes        []string `json:"flavorNotes,omitempty" validate:"max=20"`
}

// NewRating is a rating submitted for an existing spot.
type NewRating struct {
	SpotID             string   `json:"spotId" validate:"required"`
	UserID             string   `json:"userId" validate:"required"`
	Value              int      `json:"value" validate:"gte=1,lte=5"`
	CreaminessRating   *int     `json:"creaminessRating,omitempty" validate:"omitempty,gte=1,lte=5"`
	ChaiStrengthRating *int     `json:"chaiStrengthRating,omitempty" validate:"omitempty,gte=1,lte=5"`
	FlavorNotes        []string `json:"flavorNotes,omitempty" validate:"max=20"`
}

// CreateSpot stores a new spot and its creator's rating and returns the new
// spot id. Only a failed primary write is returned (wrapping
// ErrWriteFailed); the legacy mirror and the initial rating are best-effort.
// A new spot always carries exactly one rating.
func (r *Repository) CreateSpot(ctx context.Context, in NewSpot) (string, error) {
	if verr := validation.ValidateStruct(&in); verr != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteFailed, verr)
	}

	spot := models.Spot{
		ID:            r.newID(),
		Name:          in.Name,
		Address:       in.Address,
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		ChaiTypes:     in.ChaiTypes,
		AverageRating: float64(in.Rating),
		RatingCount:   1,
	}
	fields := spotFields(spot)

	if err := r.store.Create(ctx, r.cfg.SpotsCollection, spot.ID, fields); err != nil {
		metrics.RecordWriteFailure("spot", true)
		r.logger.Error().Err(err).Str("spot_id", spot.ID).Msg("Failed to create spot")
		return "", fmt.Errorf("%w: create spot: %w", ErrWriteFailed, err)
	}

	if err := r.store.Create(ctx, r.cfg.LegacySpotsCollection, spot.ID, fields); err != nil {
		metrics.RecordWriteFailure("spot_legacy", false)
		r.logger.Warn().Err(err).Str("spot_id", spot.ID).Str("collection", r.cfg.LegacySpotsCollection).
			Msg("Legacy spot mirror failed")
	}

	rating := models.Rating{
		ID:                 r.newID(),
		SpotID:             spot.ID,
		UserID:             in.CreatorID,
		Value:              in.Rating,
		CreaminessRating:   in.CreaminessRating,
		ChaiStrengthRating: in.ChaiStrengthRating,
		FlavorNotes:        in.FlavorNotes,
		Timestamp:          r.now(),
	}
	if err := r.store.Create(ctx, r.cfg.RatingsCollection, rating.ID, ratingFields(rating)); err != nil {
		metrics.RecordWriteFailure("initial_rating", false)
		r.logger.Warn().Err(err).Str("spot_id", spot.ID).Msg("Initial rating write failed")
	}

	r.publishSpot(ctx, spot)
	r.logger.Info().Str("spot_id", spot.ID).Str("name", spot.Name).Msg("Spot created")
	return spot.ID, nil
}

// CreateRating stores a rating and recomputes the rated spot's aggregate
// statistics. Only the rating write itself can fail the call.
func (r *Repository) CreateRating(ctx context.Context, in NewRating) (string, error) {
	if verr := validation.ValidateStruct(&in); verr != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteFailed, verr)
	}

	rating := models.Rating{
		ID:                 r.newID(),
		SpotID:             in.SpotID,
		UserID:             in.UserID,
		Value:              in.Value,
		CreaminessRating:   in.CreaminessRating,
		ChaiStrengthRating: in.ChaiStrengthRating,
		FlavorNotes:        in.FlavorNotes,
		Timestamp:          r.now(),
	}

	if err := r.store.Create(ctx, r.cfg.RatingsCollection, rating.ID, ratingFields(rating)); err != nil {
		metrics.RecordWriteFailure("rating", true)
		r.logger.Error().Err(err).Str("spot_id", in.SpotID).Msg("Failed to create rating")
		return "", fmt.Errorf("%w: create rating: %w", ErrWriteFailed, err)
	}

	if err := r.refreshAggregates(ctx, in.SpotID); err != nil {
		metrics.RecordWriteFailure("aggregate", false)
		r.logger.Warn().Err(err).Str("spot_id", in.SpotID).Msg("Spot aggregate refresh failed")
	}

	if r.publisher != nil {
		if err := r.publisher.PublishRatingChanged(ctx, rating); err != nil {
			r.logger.Warn().Err(err).Str("rating_id", rating.ID).Msg("Failed to publish rating change")
		}
	}
	return rating.ID, nil
}

// refreshAggregates rewrites averageRating and ratingCount on every venue
// collection that holds the spot.
func (r *Repository) refreshAggregates(ctx context.Context, spotID string) error {
	ratings, err := r.RatingsForSpot(ctx, spotID)
	if err != nil {
		return err
	}
	if len(ratings) == 0 {
		return nil
	}

	sum := 0
	for _, rt := range ratings {
		sum += rt.Value
	}
	avg := math.Round(float64(sum)/float64(len(ratings))*100) / 100

	found := false
	var errs []error
	for _, collection := range []string{r.cfg.SpotsCollection, r.cfg.LegacySpotsCollection} {
		doc, err := r.store.Get(ctx, collection, spotID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		found = true

		fields := make(map[string]any, len(doc.Fields)+2)
		for k, v := range doc.Fields {
			fields[k] = v
		}
		fields["averageRating"] = avg
		fields["ratingCount"] = len(ratings)
		if err := r.store.Create(ctx, collection, spotID, fields); err != nil {
			errs = append(errs, err)
		}
	}
	if !found && len(errs) == 0 {
		return fmt.Errorf("spot %s: %w", spotID, store.ErrNotFound)
	}
	return errors.Join(errs...)
}

func (r *Repository) publishSpot(ctx context.Context, spot models.Spot) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.PublishSpotChanged(ctx, spot); err != nil {
		r.logger.Warn().Err(err).Str("spot_id", spot.ID).Msg("Failed to publish spot change")
	}
}
