// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package recommend

import (
	"fmt"

	"github.com/tomtom215/chaimap/internal/models"
)

// DefaultThreshold is the score at which a spot counts as personalized.
const DefaultThreshold = 3.5

// Classifier labels spots as personalized.
type Classifier struct {
	Threshold float64
}

// DefaultClassifier returns a classifier using DefaultThreshold.
func DefaultClassifier() Classifier {
	return Classifier{Threshold: DefaultThreshold}
}

// Validate checks the threshold lies within the score range.
func (c Classifier) Validate() error {
	if c.Threshold < MinScore || c.Threshold > MaxScore {
		return fmt.Errorf("threshold %v outside [%v, %v]", c.Threshold, MinScore, MaxScore)
	}
	return nil
}

// IsPersonalized reports whether a spot with the given score is
// personalized. A spot with exactly one rating is always personalized.
func (c Classifier) IsPersonalized(spot models.Spot, score float64) bool {
	return score >= c.Threshold || spot.RatingCount == 1
}

// PersonalizedIDs classifies every spot and returns the ids of the
// personalized ones.
func (c Classifier) PersonalizedIDs(spots []models.Spot, score func(models.Spot) float64) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, s := range spots {
		if c.IsPersonalized(s, score(s)) {
			ids[s.ID] = struct{}{}
		}
	}
	return ids
}

// IsPersonalized classifies with DefaultThreshold.
func IsPersonalized(spot models.Spot, score float64) bool {
	return DefaultClassifier().IsPersonalized(spot, score)
}

// PersonalizedIDs classifies with DefaultThreshold.
func PersonalizedIDs(spots []models.Spot, score func(models.Spot) float64) map[string]struct{} {
	return DefaultClassifier().PersonalizedIDs(spots, score)
}
