// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package recommend

import (
	"testing"

	"github.com/tomtom215/chaimap/internal/models"
)

func TestMemo_MatchesDirectScore(t *testing.T) {
	spot, in := scenarioA()
	m := NewMemo(16)

	first := m.Score(1, spot, in)
	second := m.Score(1, spot, in)
	if first != Score(spot, in) || second != first {
		t.Errorf("memoized %v/%v, direct %v", first, second, Score(spot, in))
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestMemo_VersionChangeInvalidates(t *testing.T) {
	spot, in := scenarioA()
	m := NewMemo(16)

	before := m.Score(1, spot, in)

	// Same version: stale inputs are served from the memo.
	changed := Inputs{}
	if got := m.Score(1, spot, changed); got != before {
		t.Errorf("same version should hit the memo: got %v, want %v", got, before)
	}

	// New version: recomputed.
	if got := m.Score(2, spot, changed); got != Score(spot, changed) {
		t.Errorf("new version score = %v, want %v", got, Score(spot, changed))
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after purge", m.Len())
	}
}

func TestMemo_NilScorer(t *testing.T) {
	var m *Memo
	spot := models.Spot{ID: "s", AverageRating: 3}
	if got := m.Scorer(1, Inputs{})(spot); got != Score(spot, Inputs{}) {
		t.Errorf("nil memo scorer = %v", got)
	}
}
