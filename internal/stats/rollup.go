// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stats computes client-side rollups over aggregated trial
// records: geographic distribution, enrollment patterns, and the
// disease landscape. Registry-side field statistics come straight
// from the /stats endpoints and are not duplicated here.
package stats

import (
	"sort"

	"github.com/dmarkovic/trialscope/pkg/types"
)

// CountEntry is one label and its trial or site count.
type CountEntry struct {
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// Geographic is the site distribution of a trial set.
type Geographic struct {
	ByCountry []CountEntry `json:"by_country" yaml:"by_country"`
	ByState   []CountEntry `json:"by_state" yaml:"by_state"`
}

// GeographicDistribution counts study sites by country and by
// state-within-country, descending, limited to limit entries each.
func GeographicDistribution(studies []types.Study, limit int) Geographic {
	byCountry := map[string]int{}
	byState := map[string]int{}

	for _, study := range studies {
		for _, loc := range study.ProtocolSection.ContactsLocations.Locations {
			country := loc.Country
			if country == "" {
				country = "Unknown"
			}
			byCountry[country]++
			if loc.State != "" {
				byState[loc.State+", "+country]++
			}
		}
	}

	return Geographic{
		ByCountry: topCounts(byCountry, limit),
		ByState:   topCounts(byState, limit),
	}
}

// EnrollmentStats summarizes enrollment targets across a trial set.
type EnrollmentStats struct {
	TotalTrials     int     `json:"total_trials" yaml:"total_trials"`
	TotalEnrollment int     `json:"total_enrollment" yaml:"total_enrollment"`
	Mean            float64 `json:"mean" yaml:"mean"`
	Median          int     `json:"median" yaml:"median"`
	Min             int     `json:"min" yaml:"min"`
	Max             int     `json:"max" yaml:"max"`
	P25             int     `json:"p25" yaml:"p25"`
	P75             int     `json:"p75" yaml:"p75"`

	ByPhase map[string]PhaseEnrollment `json:"by_phase" yaml:"by_phase"`
}

// PhaseEnrollment is the enrollment summary for one phase.
type PhaseEnrollment struct {
	Count int     `json:"count" yaml:"count"`
	Mean  float64 `json:"mean" yaml:"mean"`
	Total int     `json:"total" yaml:"total"`
}

// EnrollmentPatterns computes enrollment statistics over a trial set.
// Trials without an enrollment target are ignored; ok is false when
// none carry one.
func EnrollmentPatterns(studies []types.Study) (EnrollmentStats, bool) {
	var enrollments []int
	byPhase := map[string][]int{}

	for _, study := range studies {
		s := study.Summarize()
		if s.Enrollment <= 0 {
			continue
		}
		enrollments = append(enrollments, s.Enrollment)
		phases := s.Phases
		if len(phases) == 0 {
			phases = []string{"N/A"}
		}
		for _, phase := range phases {
			byPhase[phase] = append(byPhase[phase], s.Enrollment)
		}
	}
	if len(enrollments) == 0 {
		return EnrollmentStats{}, false
	}

	sort.Ints(enrollments)
	n := len(enrollments)
	total := 0
	for _, e := range enrollments {
		total += e
	}

	stats := EnrollmentStats{
		TotalTrials:     n,
		TotalEnrollment: total,
		Mean:            float64(total) / float64(n),
		Median:          enrollments[n/2],
		Min:             enrollments[0],
		Max:             enrollments[n-1],
		P25:             enrollments[n/4],
		P75:             enrollments[3*n/4],
		ByPhase:         map[string]PhaseEnrollment{},
	}
	for phase, vals := range byPhase {
		sum := 0
		for _, v := range vals {
			sum += v
		}
		stats.ByPhase[phase] = PhaseEnrollment{
			Count: len(vals),
			Mean:  float64(sum) / float64(len(vals)),
			Total: sum,
		}
	}
	return stats, true
}

// ConditionStats is one condition's slice of the disease landscape.
type ConditionStats struct {
	Condition       string         `json:"condition" yaml:"condition"`
	TrialCount      int            `json:"trial_count" yaml:"trial_count"`
	TotalEnrollment int            `json:"total_enrollment" yaml:"total_enrollment"`
	PhaseCounts     map[string]int `json:"phase_distribution" yaml:"phase_distribution"`
}

// conditionsPerStudy bounds how many of a study's conditions feed the
// landscape; registry records sometimes list dozens.
const conditionsPerStudy = 3

// DiseaseLandscape groups a trial set by condition, descending by
// trial count. It returns the top limit conditions and the total
// number of distinct conditions seen.
func DiseaseLandscape(studies []types.Study, limit int) ([]ConditionStats, int) {
	byCondition := map[string]*ConditionStats{}

	for _, study := range studies {
		s := study.Summarize()
		conditions := s.Conditions
		if len(conditions) > conditionsPerStudy {
			conditions = conditions[:conditionsPerStudy]
		}
		phases := s.Phases
		if len(phases) == 0 {
			phases = []string{"N/A"}
		}
		for _, cond := range conditions {
			cs, ok := byCondition[cond]
			if !ok {
				cs = &ConditionStats{Condition: cond, PhaseCounts: map[string]int{}}
				byCondition[cond] = cs
			}
			cs.TrialCount++
			cs.TotalEnrollment += s.Enrollment
			for _, phase := range phases {
				cs.PhaseCounts[phase]++
			}
		}
	}

	out := make([]ConditionStats, 0, len(byCondition))
	for _, cs := range byCondition {
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TrialCount != out[j].TrialCount {
			return out[i].TrialCount > out[j].TrialCount
		}
		return out[i].Condition < out[j].Condition
	})
	found := len(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, found
}

// topCounts flattens a count map into a descending list, name as
// tiebreak, limited to limit entries.
func topCounts(counts map[string]int, limit int) []CountEntry {
	out := make([]CountEntry, 0, len(counts))
	for label, count := range counts {
		out = append(out, CountEntry{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
