// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"math"
	"testing"

	"github.com/dmarkovic/trialscope/pkg/types"
)

func trial(conditions, interventions, phases []string, sponsor string) types.StudySummary {
	return types.StudySummary{
		Conditions:    conditions,
		Interventions: interventions,
		Phases:        phases,
		Sponsor:       sponsor,
	}
}

func TestSimilarityIdentical(t *testing.T) {
	a := trial([]string{"Non-Small Cell Lung Cancer"}, []string{"Pembrolizumab"}, []string{"PHASE3"}, "Merck")
	if got := Similarity(a, a); got != 1.0 {
		t.Errorf("Similarity(a, a) = %v, want 1.0", got)
	}
}

func TestSimilarityDisjoint(t *testing.T) {
	a := trial([]string{"melanoma"}, []string{"nivolumab"}, []string{"PHASE1"}, "BMS")
	b := trial([]string{"asthma"}, []string{"salbutamol"}, []string{"PHASE4"}, "GSK")
	if got := Similarity(a, b); got != 0.0 {
		t.Errorf("Similarity(disjoint) = %v, want 0.0", got)
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	a := trial([]string{"lung cancer"}, []string{"pembrolizumab"}, []string{"PHASE2", "PHASE3"}, "Merck")
	b := trial([]string{"lung cancer", "melanoma"}, []string{"nivolumab"}, []string{"PHASE3"}, "BMS")

	ab, ba := Similarity(a, b), Similarity(b, a)
	if ab != ba {
		t.Errorf("Similarity not symmetric: %v vs %v", ab, ba)
	}
	if ab <= 0 || ab >= 1 {
		t.Errorf("partially overlapping trials scored %v, want strictly between 0 and 1", ab)
	}
}

func TestSimilarityWeighting(t *testing.T) {
	// Same condition only: the condition dimension is fully matched,
	// everything else disjoint, so the score is the condition weight.
	a := trial([]string{"melanoma"}, []string{"nivolumab"}, []string{"PHASE1"}, "BMS")
	b := trial([]string{"melanoma"}, []string{"salbutamol"}, []string{"PHASE4"}, "GSK")
	if got := Similarity(a, b); math.Abs(got-0.35) > 1e-9 {
		t.Errorf("condition-only match = %v, want 0.35", got)
	}

	// Shared phase adds its weight on top.
	b.Phases = []string{"PHASE1"}
	if got := Similarity(a, b); math.Abs(got-0.55) > 1e-9 {
		t.Errorf("condition+phase match = %v, want 0.55", got)
	}
}

func TestSimilarityRenormalizesMissingDimensions(t *testing.T) {
	// No sponsor or phase on either trial: remaining dimensions carry
	// the whole weight, so exact matches still reach 1.0.
	a := trial([]string{"diabetes"}, []string{"metformin"}, nil, "")
	b := trial([]string{"diabetes"}, []string{"metformin"}, nil, "")
	if got := Similarity(a, b); got != 1.0 {
		t.Errorf("Similarity with missing dimensions = %v, want 1.0", got)
	}
}

func TestSimilarityEmpty(t *testing.T) {
	if got := Similarity(types.StudySummary{}, types.StudySummary{}); got != 0 {
		t.Errorf("Similarity(empty, empty) = %v, want 0", got)
	}
}
