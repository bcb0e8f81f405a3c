// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package repository

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/chaimap/internal/logging"
	"github.com/tomtom215/chaimap/internal/models"
	"github.com/tomtom215/chaimap/internal/store"
	"github.com/tomtom215/chaimap/internal/validation"
)

// spotRecord is the typed shape of a venue document. Pointer fields
// distinguish a missing value from a zero one.
type spotRecord struct {
	Name          *string  `json:"name" validate:"required"`
	Address       *string  `json:"address" validate:"required"`
	Latitude      *float64 `json:"latitude" validate:"required"`
	Longitude     *float64 `json:"longitude" validate:"required"`
	ChaiTypes     []string `json:"chaiTypes" validate:"required"`
	AverageRating any      `json:"averageRating"`
	RatingCount   any      `json:"ratingCount"`
}

type ratingRecord struct {
	SpotID             *string    `json:"spotId" validate:"required"`
	UserID             *string    `json:"userId" validate:"required"`
	Value              *int       `json:"value" validate:"required,gte=1,lte=5"`
	CreaminessRating   *int       `json:"creaminessRating" validate:"omitempty,gte=1,lte=5"`
	ChaiStrengthRating *int       `json:"chaiStrengthRating" validate:"omitempty,gte=1,lte=5"`
	FlavorNotes        []string   `json:"flavorNotes"`
	Timestamp          *time.Time `json:"timestamp"`
}

type profileRecord struct {
	TasteVector  []int    `json:"tasteVector"`
	TopTasteTags []string `json:"topTasteTags"`
	Friends      []string `json:"friends"`
}

// decodeFields re-encodes a document's field map into a typed record.
func decodeFields(fields map[string]any, v any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode fields: %w", err)
	}
	return nil
}

func decodeSpot(doc store.Document) (models.Spot, error) {
	var rec spotRecord
	if err := decodeFields(doc.Fields, &rec); err != nil {
		return models.Spot{}, err
	}
	if verr := validation.ValidateStruct(&rec); verr != nil {
		return models.Spot{}, verr
	}

	return models.Spot{
		ID:            doc.ID,
		Name:          *rec.Name,
		Address:       *rec.Address,
		Latitude:      *rec.Latitude,
		Longitude:     *rec.Longitude,
		ChaiTypes:     rec.ChaiTypes,
		AverageRating: aggregateFloat(doc, "averageRating", rec.AverageRating),
		RatingCount:   int(aggregateFloat(doc, "ratingCount", rec.RatingCount)),
	}, nil
}

// aggregateFloat coerces an optional aggregate field. Aggregates are
// maintained by writers outside this service, so a value of the wrong type
// falls back to 0 instead of dropping the venue.
func aggregateFloat(doc store.Document, field string, v any) float64 {
	var (
		f  float64
		ok bool
	)
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		f, ok = x, true
	case string:
		var err error
		f, err = strconv.ParseFloat(strings.TrimSpace(x), 64)
		ok = err == nil
	}
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		logging.Debug().
			Str("spot_id", doc.ID).
			Str("field", field).
			Interface("value", v).
			Msg("Unusable aggregate value, using 0")
		return 0
	}
	return f
}

func decodeRating(doc store.Document) (models.Rating, error) {
	var rec ratingRecord
	if err := decodeFields(doc.Fields, &rec); err != nil {
		return models.Rating{}, err
	}
	if verr := validation.ValidateStruct(&rec); verr != nil {
		return models.Rating{}, verr
	}

	r := models.Rating{
		ID:                 doc.ID,
		SpotID:             *rec.SpotID,
		UserID:             *rec.UserID,
		Value:              *rec.Value,
		CreaminessRating:   rec.CreaminessRating,
		ChaiStrengthRating: rec.ChaiStrengthRating,
		FlavorNotes:        rec.FlavorNotes,
	}
	if rec.Timestamp != nil {
		r.Timestamp = *rec.Timestamp
	}
	return r, nil
}

// decodeProfile builds a profile. An invalid taste vector is dropped and
// reported through tasteDropped.
func decodeProfile(doc store.Document) (profile *models.UserProfile, tasteDropped bool, err error) {
	var rec profileRecord
	if err := decodeFields(doc.Fields, &rec); err != nil {
		return nil, false, err
	}

	p := &models.UserProfile{
		UID:          doc.ID,
		TopTasteTags: rec.TopTasteTags,
		Friends:      rec.Friends,
	}
	if rec.TasteVector != nil {
		if models.ValidTasteVector(rec.TasteVector) {
			p.TasteVector = rec.TasteVector
		} else {
			tasteDropped = true
		}
	}
	return p, tasteDropped, nil
}

func spotFields(s models.Spot) map[string]any {
	return map[string]any{
		"name":          s.Name,
		"address":       s.Address,
		"latitude":      s.Latitude,
		"longitude":     s.Longitude,
		"chaiTypes":     s.ChaiTypes,
		"averageRating": s.AverageRating,
		"ratingCount":   s.RatingCount,
	}
}

func ratingFields(r models.Rating) map[string]any {
	fields := map[string]any{
		"spotId":    r.SpotID,
		"userId":    r.UserID,
		"value":     r.Value,
		"timestamp": r.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	if r.CreaminessRating != nil {
		fields["creaminessRating"] = *r.CreaminessRating
	}
	if r.ChaiStrengthRating != nil {
		fields["chaiStrengthRating"] = *r.ChaiStrengthRating
	}
	if len(r.FlavorNotes) > 0 {
		fields["flavorNotes"] = r.FlavorNotes
	}
	return fields
}
