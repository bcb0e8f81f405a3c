// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package recommend

import (
	"math"
	"strings"

	"github.com/tomtom215/chaimap/internal/models"
)

// Score bounds.
const (
	MinScore = 1.0
	MaxScore = 5.0
)

// Channel weights and per-channel maxima.
const (
	TasteWeight         = 2.0
	TasteChannelMax     = 10.0
	OwnRatingWeight     = 3.0
	OwnRatingMax        = 15.0
	FlavorPerMatch      = 5.0
	FriendWeight        = 2.0
	FriendMax           = 10.0
	CommunityWeight     = 1.5
	CommunityMax        = 7.5
	PopularityPerRating = 0.5
	PopularityMax       = 10.0
)

// Channel names a scoring signal.
type Channel string

const (
	ChannelTaste      Channel = "taste_match"
	ChannelOwnRating  Channel = "own_rating"
	ChannelFlavor     Channel = "flavor_match"
	ChannelFriend     Channel = "friend_recommendation"
	ChannelCommunity  Channel = "community_rating"
	ChannelPopularity Channel = "popularity"
)

// Channels lists every channel in evaluation order.
var Channels = []Channel{
	ChannelTaste,
	ChannelOwnRating,
	ChannelFlavor,
	ChannelFriend,
	ChannelCommunity,
	ChannelPopularity,
}

// Inputs are the user-side signals a score is computed from.
type Inputs struct {
	Profile       *models.UserProfile
	OwnRatings    []models.Rating
	FriendRatings []models.Rating
}

// Contribution is one channel's share of a score.
type Contribution struct {
	Raw float64 `json:"raw"`
	Max float64 `json:"max"`
}

// evaluation holds the accumulated channel contributions for one spot.
type evaluation struct {
	contributions map[Channel]Contribution
	raw           float64
	max           float64

	ownRating   *models.Rating
	friendCount int
	flavorHits  int
}

func (e *evaluation) add(ch Channel, raw, max float64) {
	c := e.contributions[ch]
	c.Raw += raw
	c.Max += max
	e.contributions[ch] = c
	e.raw += raw
	e.max += max
}

func (e *evaluation) score(spot models.Spot) float64 {
	if e.max > 0 {
		return clamp(e.raw/e.max*MaxScore, MinScore, MaxScore)
	}
	return clamp(spot.AverageRating, MinScore, MaxScore)
}

func evaluate(spot models.Spot, in Inputs) *evaluation {
	e := &evaluation{contributions: make(map[Channel]Contribution, len(Channels))}

	if own, ok := models.RatingFor(in.OwnRatings, spot.ID); ok && in.Profile.HasTasteVector() {
		e.ownRating = &own

		if own.CreaminessRating != nil {
			e.add(ChannelTaste, tasteCloseness(*own.CreaminessRating, in.Profile.Creaminess())*TasteWeight, TasteChannelMax)
		}
		if own.ChaiStrengthRating != nil {
			e.add(ChannelTaste, tasteCloseness(*own.ChaiStrengthRating, in.Profile.Strength())*TasteWeight, TasteChannelMax)
		}
		e.add(ChannelOwnRating, float64(own.Value)*OwnRatingWeight, OwnRatingMax)
	}

	if in.Profile.HasTopTags() {
		e.flavorHits = flavorMatches(spot.ChaiTypes, in.Profile.TopTasteTags)
		e.add(ChannelFlavor, float64(e.flavorHits)*FlavorPerMatch, float64(len(spot.ChaiTypes))*FlavorPerMatch)
	}

	if friends := models.RatingsFor(in.FriendRatings, spot.ID); len(friends) > 0 {
		e.friendCount = len(friends)
		sum := 0
		for _, r := range friends {
			sum += r.Value
		}
		mean := float64(sum) / float64(len(friends))
		e.add(ChannelFriend, mean*FriendWeight, FriendMax)
	}

	e.add(ChannelCommunity, spot.AverageRating*CommunityWeight, CommunityMax)
	e.add(ChannelPopularity, math.Min(float64(spot.RatingCount)*PopularityPerRating, PopularityMax), PopularityMax)

	return e
}

// tasteCloseness is 5 minus the distance between a sub-rating and the
// preferred value, in [0, 5] for valid inputs.
func tasteCloseness(rating, preferred int) float64 {
	d := rating - preferred
	if d < 0 {
		d = -d
	}
	return math.Max(0, 5-float64(d))
}

// flavorMatches counts chai types that contain any of tags, ignoring case.
func flavorMatches(chaiTypes, tags []string) int {
	lowered := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			lowered = append(lowered, t)
		}
	}

	n := 0
	for _, ct := range chaiTypes {
		ct = strings.ToLower(ct)
		for _, t := range lowered {
			if strings.Contains(ct, t) {
				n++
				break
			}
		}
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Score returns the personalization score of spot for the given inputs,
// always within [MinScore, MaxScore].
func Score(spot models.Spot, in Inputs) float64 {
	return evaluate(spot, in).score(spot)
}

// Breakdown returns each channel's raw contribution. Channels that did not
// apply are absent.
func Breakdown(spot models.Spot, in Inputs) map[Channel]float64 {
	e := evaluate(spot, in)
	out := make(map[Channel]float64, len(e.contributions))
	for ch, c := range e.contributions {
		out[ch] = c.Raw
	}
	return out
}
