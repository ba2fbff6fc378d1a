// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"strings"

	"github.com/dmarkovic/trialscope/pkg/types"
)

// Similarity dimension weights. They sum to 1.0 so two identical
// trials score exactly 1; when a dimension is absent from both trials
// it is dropped and the remaining weights renormalize.
const (
	weightCondition    = 0.35
	weightIntervention = 0.35
	weightPhase        = 0.20
	weightSponsor      = 0.10
)

// Similarity scores how alike two trials are, in [0, 1]. Conditions
// and interventions compare by token-set Jaccard overlap, phases by
// shared-phase indicator, sponsors by name equality. The score is
// symmetric.
func Similarity(a, b types.StudySummary) float64 {
	var score, weight float64

	addDim := func(w float64, present bool, value float64) {
		if !present {
			return
		}
		weight += w
		score += w * value
	}

	condA, condB := tokenSet(a.Conditions), tokenSet(b.Conditions)
	addDim(weightCondition, len(condA) > 0 || len(condB) > 0, jaccard(condA, condB))

	intA, intB := tokenSet(a.Interventions), tokenSet(b.Interventions)
	addDim(weightIntervention, len(intA) > 0 || len(intB) > 0, jaccard(intA, intB))

	addDim(weightPhase, len(a.Phases) > 0 || len(b.Phases) > 0, phaseOverlap(a.Phases, b.Phases))

	addDim(weightSponsor, a.Sponsor != "" || b.Sponsor != "",
		boolScore(a.Sponsor != "" && strings.EqualFold(a.Sponsor, b.Sponsor)))

	if weight == 0 {
		return 0
	}
	return score / weight
}

// tokenSet lowercases and splits a string list into its word set.
func tokenSet(values []string) map[string]bool {
	set := map[string]bool{}
	for _, v := range values {
		for _, tok := range strings.Fields(strings.ToLower(v)) {
			set[tok] = true
		}
	}
	return set
}

// jaccard is |A ∩ B| / |A ∪ B|; two empty sets score 0.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range a {
		if b[tok] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// phaseOverlap is 1 when the trials share any phase, 0 otherwise.
func phaseOverlap(a, b []string) float64 {
	for _, pa := range a {
		for _, pb := range b {
			if pa == pb {
				return 1
			}
		}
	}
	return 0
}

func boolScore(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
