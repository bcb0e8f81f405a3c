// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

// Package recommend scores how well a chai spot fits the acting user and
// classifies spots as personalized.
//
// # Scoring
//
// Score combines up to six signal channels. Each active channel adds a raw
// contribution and a maximum possible contribution; the score is
// raw/max scaled to 5 and clamped to [1, 5]:
//
//   - taste_match: closeness of the user's own creaminess and strength
//     sub-ratings for the spot to their taste vector (weight 2, max 10 each)
//   - own_rating: the user's own overall rating of the spot (weight 3, max 15)
//   - flavor_match: the spot's chai types containing a favorite flavor tag
//     (5 per match, max 5 per chai type)
//   - friend_recommendation: mean of friends' ratings (weight 2, max 10)
//   - community_rating: the spot's average rating (weight 1.5, max 7.5)
//   - popularity: 0.5 per rating, capped at 10 (max 10)
//
// The first two channels only apply when the user has a taste vector and
// has rated the spot. The last two always apply.
//
// # Design Principles
//
//   - Deterministic: Score is a pure function of its inputs
//   - Auditable: Breakdown and Explanation expose every contribution
//   - Observable: memoization hits and misses are exported as metrics
//
// # Classification
//
// A spot is personalized when its score reaches the threshold (3.5 by
// default) or when it has exactly one rating, which is the state of a spot
// its creator just added.
//
// # Usage
//
//	in := recommend.Inputs{Profile: profile, OwnRatings: own, FriendRatings: friends}
//	res := recommend.Evaluate(spot, in)
//	fmt.Println(res.Score, res.Label, res.Explanation)
package recommend
