// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package recommend

import (
	"fmt"
	"strings"

	"github.com/tomtom215/chaimap/internal/models"
)

// Label thresholds.
const (
	ExcellentThreshold = 4.5
	GoodThreshold      = 3.5
	ModerateThreshold  = 2.5
)

// Label returns the qualitative label for a score.
func Label(score float64) string {
	switch {
	case score >= ExcellentThreshold:
		return "excellent"
	case score >= GoodThreshold:
		return "good"
	case score >= ModerateThreshold:
		return "moderate"
	default:
		return "low"
	}
}

// Result is a fully evaluated score.
type Result struct {
	SpotID        string                   `json:"spotId"`
	Score         float64                  `json:"score"`
	Label         string                   `json:"label"`
	Explanation   string                   `json:"explanation"`
	Personalized  bool                     `json:"personalized"`
	Raw           float64                  `json:"raw"`
	Max           float64                  `json:"max"`
	Contributions map[Channel]Contribution `json:"contributions"`
}

// Evaluate computes the score together with its breakdown, label and
// explanation in one pass. Personalized uses DefaultThreshold.
func Evaluate(spot models.Spot, in Inputs) Result {
	return DefaultClassifier().Evaluate(spot, in)
}

// Evaluate is Evaluate with the classifier's threshold.
func (c Classifier) Evaluate(spot models.Spot, in Inputs) Result {
	e := evaluate(spot, in)
	score := e.score(spot)

	contributions := make(map[Channel]Contribution, len(e.contributions))
	for ch, v := range e.contributions {
		contributions[ch] = v
	}

	return Result{
		SpotID:        spot.ID,
		Score:         score,
		Label:         Label(score),
		Explanation:   explain(spot, e, score),
		Personalized:  c.IsPersonalized(spot, score),
		Raw:           e.raw,
		Max:           e.max,
		Contributions: contributions,
	}
}

// Explanation returns a human-readable account of the score.
func Explanation(spot models.Spot, in Inputs) string {
	e := evaluate(spot, in)
	return explain(spot, e, e.score(spot))
}

func explain(spot models.Spot, e *evaluation, score float64) string {
	var clauses []string

	if e.contributions[ChannelTaste].Raw > 0 {
		clauses = append(clauses, "matches your creaminess and strength preferences")
	}
	if e.contributions[ChannelOwnRating].Raw > 0 && e.ownRating != nil {
		clauses = append(clauses, fmt.Sprintf("you rated it %d/5", e.ownRating.Value))
	}
	if e.contributions[ChannelFlavor].Raw > 0 {
		clauses = append(clauses, fmt.Sprintf("serves %s of your favorite flavors", plural(e.flavorHits, "one", "several")))
	}
	if e.contributions[ChannelFriend].Raw > 0 {
		clauses = append(clauses, fmt.Sprintf("recommended by %s", plural(e.friendCount, "a friend", fmt.Sprintf("%d friends", e.friendCount))))
	}
	if e.contributions[ChannelCommunity].Raw > 0 {
		clauses = append(clauses, fmt.Sprintf("rated %.1f by the community", spot.AverageRating))
	}
	if e.contributions[ChannelPopularity].Raw > 0 {
		clauses = append(clauses, plural(spot.RatingCount, "1 rating so far", fmt.Sprintf("%d ratings", spot.RatingCount)))
	}

	label := Label(score)
	head := fmt.Sprintf("%s%s match (%.1f)", strings.ToUpper(label[:1]), label[1:], score)
	if len(clauses) == 0 {
		return head + ": not enough information yet."
	}
	return head + ": " + joinClauses(clauses) + "."
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// joinClauses renders "a", "a and b" or "a, b and c".
func joinClauses(clauses []string) string {
	switch len(clauses) {
	case 0:
		return ""
	case 1:
		return clauses[0]
	default:
		return strings.Join(clauses[:len(clauses)-1], ", ") + " and " + clauses[len(clauses)-1]
	}
}
