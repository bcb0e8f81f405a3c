// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package eventprocessor

import (
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/chaimap/internal/models"
)

func TestChangeEvent_Validate(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		event   *ChangeEvent
		wantErr bool
	}{
		{"spot", NewSpotChanged(models.Spot{ID: "s1", Name: "Masala House"}, now), false},
		{"rating", NewRatingChanged(models.Rating{ID: "r1", SpotID: "s1", UserID: "u1", Value: 4}, now), false},
		{"profile", NewProfileChanged("u1", now), false},
		{"spot without id", NewSpotChanged(models.Spot{}, now), true},
		{"rating without id", NewRatingChanged(models.Rating{SpotID: "s1"}, now), true},
		{"profile without user", NewProfileChanged("", now), true},
		{"unknown topic", &ChangeEvent{EventID: "e1", Topic: "chaimap.other"}, true},
		{"missing event id", &ChangeEvent{Topic: TopicProfileChanged, UserID: "u1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidEvent) {
				t.Errorf("error should wrap ErrInvalidEvent: %v", err)
			}
		})
	}
}

func TestUnmarshalEvent(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	in := NewSpotChanged(models.Spot{ID: "s1", Name: "Masala House", Latitude: 37.78, Longitude: -122.41}, now)

	data, err := in.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	out, err := UnmarshalEvent(data)
	if err != nil {
		t.Fatalf("UnmarshalEvent() error = %v", err)
	}
	if out.EventID != in.EventID || out.SpotID != "s1" || out.Topic != TopicSpotChanged {
		t.Errorf("decoded = %+v", out)
	}
	if out.Latitude == nil || *out.Latitude != 37.78 {
		t.Errorf("Latitude = %v, want 37.78", out.Latitude)
	}
	if !out.OccurredAt.Equal(now) {
		t.Errorf("OccurredAt = %v, want %v", out.OccurredAt, now)
	}

	if _, err := UnmarshalEvent([]byte("not json")); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("garbage error = %v, want ErrInvalidEvent", err)
	}
}
