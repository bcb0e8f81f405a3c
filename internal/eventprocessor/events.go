// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package eventprocessor

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/chaimap/internal/models"
)

// SchemaVersion is the current event schema version.
const SchemaVersion = 1

// Topics.
const (
	TopicSpotChanged    = "chaimap.spots.changed"
	TopicRatingChanged  = "chaimap.ratings.changed"
	TopicProfileChanged = "chaimap.profile.changed"
)

// Topics lists every topic the router consumes.
var Topics = []string{TopicSpotChanged, TopicRatingChanged, TopicProfileChanged}

// ErrInvalidEvent is returned for events missing required fields.
var ErrInvalidEvent = errors.New("invalid event")

// ChangeEvent describes one change to stored data.
type ChangeEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventID       string    `json:"event_id"`
	Topic         string    `json:"topic"`
	OccurredAt    time.Time `json:"occurred_at"`

	SpotID   string `json:"spot_id,omitempty"`
	RatingID string `json:"rating_id,omitempty"`
	UserID   string `json:"user_id,omitempty"`

	Name      string   `json:"name,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Value     int      `json:"value,omitempty"`
}

func newEvent(topic string, now time.Time) *ChangeEvent {
	return &ChangeEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.NewString(),
		Topic:         topic,
		OccurredAt:    now.UTC(),
	}
}

// NewSpotChanged builds the event for a created or updated spot.
func NewSpotChanged(spot models.Spot, now time.Time) *ChangeEvent {
	e := newEvent(TopicSpotChanged, now)
	lat, lon := spot.Latitude, spot.Longitude
	e.SpotID = spot.ID
	e.Name = spot.Name
	e.Latitude = &lat
	e.Longitude = &lon
	return e
}

// NewRatingChanged builds the event for a created rating.
func NewRatingChanged(r models.Rating, now time.Time) *ChangeEvent {
	e := newEvent(TopicRatingChanged, now)
	e.RatingID = r.ID
	e.SpotID = r.SpotID
	e.UserID = r.UserID
	e.Value = r.Value
	return e
}

// NewProfileChanged builds the event for a changed profile.
func NewProfileChanged(uid string, now time.Time) *ChangeEvent {
	e := newEvent(TopicProfileChanged, now)
	e.UserID = uid
	return e
}

// Validate checks the fields each topic requires.
func (e *ChangeEvent) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("%w: event_id required", ErrInvalidEvent)
	}
	switch e.Topic {
	case TopicSpotChanged:
		if e.SpotID == "" {
			return fmt.Errorf("%w: spot_id required", ErrInvalidEvent)
		}
	case TopicRatingChanged:
		if e.SpotID == "" || e.RatingID == "" {
			return fmt.Errorf("%w: spot_id and rating_id required", ErrInvalidEvent)
		}
	case TopicProfileChanged:
		if e.UserID == "" {
			return fmt.Errorf("%w: user_id required", ErrInvalidEvent)
		}
	default:
		return fmt.Errorf("%w: unknown topic %q", ErrInvalidEvent, e.Topic)
	}
	return nil
}

// Marshal validates and encodes the event.
func (e *ChangeEvent) Marshal() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// UnmarshalEvent decodes and validates an event.
func UnmarshalEvent(data []byte) (*ChangeEvent, error) {
	var e ChangeEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
