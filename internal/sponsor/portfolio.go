// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sponsor analyzes an organization's trial portfolio: phase
// and status distribution, therapeutic focus, collaborators, and
// pipeline shape. All analysis is client-side over aggregated records.
package sponsor

import (
	"sort"

	"github.com/dmarkovic/trialscope/pkg/types"
)

// Portfolio is the derived view of one sponsor's trials.
type Portfolio struct {
	Name            string         `json:"name" yaml:"name"`
	Class           string         `json:"class" yaml:"class"`
	TrialCount      int            `json:"trial_count" yaml:"trial_count"`
	TotalEnrollment int            `json:"total_enrollment_target" yaml:"total_enrollment_target"`
	ActiveTrials    int            `json:"active_trials_count" yaml:"active_trials_count"`
	CompletedTrials int            `json:"completed_trials_count" yaml:"completed_trials_count"`
	ByPhase         map[string]int `json:"phase_distribution" yaml:"phase_distribution"`
	ByStatus        map[string]int `json:"status_distribution" yaml:"status_distribution"`

	TherapeuticAreas []Area         `json:"therapeutic_areas" yaml:"therapeutic_areas"`
	Collaborators    []Collaborator `json:"collaborators" yaml:"collaborators"`
	PipelineShape    string         `json:"pipeline_shape" yaml:"pipeline_shape"`
}

// Area is one disease area within a portfolio.
type Area struct {
	Condition       string         `json:"disease_area" yaml:"disease_area"`
	TrialCount      int            `json:"trial_count" yaml:"trial_count"`
	TotalEnrollment int            `json:"enrollment_focus" yaml:"enrollment_focus"`
	PhaseCounts     map[string]int `json:"phase_distribution" yaml:"phase_distribution"`
	ActiveCount     int            `json:"active_count" yaml:"active_count"`
}

// Collaborator is one partner organization and how often it appears.
type Collaborator struct {
	Name       string `json:"name" yaml:"name"`
	TrialCount int    `json:"trial_count" yaml:"trial_count"`
}

// maxAreas bounds the therapeutic-area breakdown.
const maxAreas = 15

// Analyze rolls a sponsor's aggregated trials into a portfolio view.
// Area and collaborator lists are ordered by descending trial count
// with name as tiebreak, so output is reproducible.
func Analyze(name string, studies []types.Study) Portfolio {
	p := Portfolio{
		Name:       name,
		TrialCount: len(studies),
		ByPhase:    map[string]int{},
		ByStatus:   map[string]int{},
	}

	areas := map[string]*Area{}
	collabs := map[string]int{}

	for _, study := range studies {
		s := study.Summarize()

		if p.Class == "" {
			p.Class = s.SponsorClass
		}
		p.TotalEnrollment += s.Enrollment
		if s.IsActive() {
			p.ActiveTrials++
		}
		p.ByStatus[s.Status]++
		if s.Status == string(types.StatusCompleted) {
			p.CompletedTrials++
		}

		phases := s.Phases
		if len(phases) == 0 {
			phases = []string{"N/A"}
		}
		for _, phase := range phases {
			p.ByPhase[phase]++
		}

		for _, cond := range s.Conditions {
			area, ok := areas[cond]
			if !ok {
				area = &Area{Condition: cond, PhaseCounts: map[string]int{}}
				areas[cond] = area
			}
			area.TrialCount++
			area.TotalEnrollment += s.Enrollment
			for _, phase := range phases {
				area.PhaseCounts[phase]++
			}
			if s.IsActive() {
				area.ActiveCount++
			}
		}

		for _, collab := range study.ProtocolSection.SponsorCollaborators.Collaborators {
			if collab.Name != "" {
				collabs[collab.Name]++
			}
		}
	}

	for _, area := range areas {
		p.TherapeuticAreas = append(p.TherapeuticAreas, *area)
	}
	sort.Slice(p.TherapeuticAreas, func(i, j int) bool {
		a, b := p.TherapeuticAreas[i], p.TherapeuticAreas[j]
		if a.TrialCount != b.TrialCount {
			return a.TrialCount > b.TrialCount
		}
		return a.Condition < b.Condition
	})
	if len(p.TherapeuticAreas) > maxAreas {
		p.TherapeuticAreas = p.TherapeuticAreas[:maxAreas]
	}

	for name, count := range collabs {
		p.Collaborators = append(p.Collaborators, Collaborator{Name: name, TrialCount: count})
	}
	sort.Slice(p.Collaborators, func(i, j int) bool {
		a, b := p.Collaborators[i], p.Collaborators[j]
		if a.TrialCount != b.TrialCount {
			return a.TrialCount > b.TrialCount
		}
		return a.Name < b.Name
	})

	p.PipelineShape = pipelineShape(p.ByPhase)
	return p
}

// pipelineShape characterizes where a sponsor's trials cluster.
func pipelineShape(byPhase map[string]int) string {
	early := byPhase[string(types.Phase1)] + byPhase[string(types.EarlyPhase1)]
	mid := byPhase[string(types.Phase2)]
	late := byPhase[string(types.Phase3)] + byPhase[string(types.Phase4)]

	total := early + mid + late
	if total == 0 {
		return "No phased trials"
	}
	switch {
	case early*2 > total:
		return "Early-Heavy - Focus on discovery"
	case late*2 > total:
		return "Late-Heavy - Near-term commercial potential"
	default:
		return "Balanced - Diversified pipeline"
	}
}
