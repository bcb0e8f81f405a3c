// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package models

// Taste scale bounds for the (creaminess, strength) preference pair.
const (
	MinTaste = 1
	MaxTaste = 5
)

// UserProfile holds the personalization inputs owned by a session.
type UserProfile struct {
	UID string `json:"uid"`

	// TasteVector is (preferred creaminess, preferred strength), both 1-5.
	// A nil vector means the user never completed taste setup.
	TasteVector []int `json:"tasteVector,omitempty"`

	// TopTasteTags are the user's favorite flavor tags in preference order.
	TopTasteTags []string `json:"topTasteTags,omitempty"`

	// Friends holds the UIDs of the user's friends.
	Friends []string `json:"friends,omitempty"`
}

// HasTasteVector reports whether the profile carries a complete taste vector.
func (p *UserProfile) HasTasteVector() bool {
	return p != nil && len(p.TasteVector) == 2
}

// Creaminess returns the preferred creaminess, or 0 without a taste vector.
func (p *UserProfile) Creaminess() int {
	if !p.HasTasteVector() {
		return 0
	}
	return p.TasteVector[0]
}

// Strength returns the preferred strength, or 0 without a taste vector.
func (p *UserProfile) Strength() int {
	if !p.HasTasteVector() {
		return 0
	}
	return p.TasteVector[1]
}

// HasTopTags reports whether the profile lists any favorite flavor tags.
func (p *UserProfile) HasTopTags() bool {
	return p != nil && len(p.TopTasteTags) > 0
}

// ValidTasteVector reports whether v is exactly two values on the 1-5 scale.
func ValidTasteVector(v []int) bool {
	if len(v) != 2 {
		return false
	}
	for _, x := range v {
		if x < MinTaste || x > MaxTaste {
			return false
		}
	}
	return true
}
