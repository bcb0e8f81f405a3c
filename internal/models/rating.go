// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package models

import "time"

// Rating is a single user's review of a spot.
type Rating struct {
	ID     string `json:"id"`
	SpotID string `json:"spotId"`
	UserID string `json:"userId"`

	// Value is the overall rating (1-5).
	Value int `json:"value"`

	// CreaminessRating and ChaiStrengthRating are optional 1-5 sub-ratings.
	CreaminessRating   *int `json:"creaminessRating,omitempty"`
	ChaiStrengthRating *int `json:"chaiStrengthRating,omitempty"`

	FlavorNotes []string `json:"flavorNotes,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// RatingFor returns the first rating in ratings for the given spot.
func RatingFor(ratings []Rating, spotID string) (Rating, bool) {
	for i := range ratings {
		if ratings[i].SpotID == spotID {
			return ratings[i], true
		}
	}
	return Rating{}, false
}

// RatingsFor returns every rating in ratings for the given spot.
func RatingsFor(ratings []Rating, spotID string) []Rating {
	var out []Rating
	for i := range ratings {
		if ratings[i].SpotID == spotID {
			out = append(out, ratings[i])
		}
	}
	return out
}
