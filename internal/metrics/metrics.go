// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics derives per-trial indicators the registry does not
// expose directly: maturity stage, enrollment pace, completion
// likelihood, and inter-trial similarity. Everything here is a pure
// function over summaries; callers inject the clock.
package metrics

import (
	"time"

	"github.com/dmarkovic/trialscope/pkg/types"
)

// Phase-duration benchmarks, in months. Later phases run longer.
const (
	benchmarkPhase3 = 36
	benchmarkPhase2 = 24
	benchmarkOther  = 12
)

// expectedMonths returns the benchmark duration for a study's phases.
// The longest applicable benchmark wins.
func expectedMonths(s types.StudySummary) int {
	switch {
	case s.HasPhase(types.Phase3) || s.HasPhase(types.Phase4):
		return benchmarkPhase3
	case s.HasPhase(types.Phase2):
		return benchmarkPhase2
	default:
		return benchmarkOther
	}
}

// MaturityResult is the derived maturity stage. LowConfidence is set
// when the study carries no usable start date and the stage fell back
// to phase and status alone.
type MaturityResult struct {
	Stage         types.Maturity
	LowConfidence bool
}

// Maturity classifies a study as EARLY, MID, or LATE from its phases,
// status, and elapsed time against the phase benchmark. A trial that
// has consumed most of its benchmark duration is promoted one stage.
func Maturity(s types.StudySummary, now time.Time) MaturityResult {
	switch types.OverallStatus(s.Status) {
	case types.StatusCompleted, types.StatusTerminated, types.StatusWithdrawn:
		return MaturityResult{Stage: types.MaturityLate}
	}

	stage := stageFromPhases(s)

	start, ok := ParseDate(s.StartDate)
	if !ok {
		if stage == "" {
			stage = stageFromStatus(s)
		}
		if stage == "" {
			stage = types.MaturityEarly
		}
		return MaturityResult{Stage: stage, LowConfidence: true}
	}

	if stage == "" {
		stage = stageFromStatus(s)
	}
	if stage == "" {
		stage = types.MaturityEarly
	}

	elapsed := now.Sub(start)
	expected := time.Duration(expectedMonths(s)) * 30 * 24 * time.Hour
	if expected > 0 && elapsed >= expected*4/5 {
		stage = promote(stage)
	}
	return MaturityResult{Stage: stage}
}

func stageFromPhases(s types.StudySummary) types.Maturity {
	switch {
	case s.HasPhase(types.Phase4):
		return types.MaturityLate
	case s.HasPhase(types.Phase2), s.HasPhase(types.Phase3):
		return types.MaturityMid
	case s.HasPhase(types.Phase1), s.HasPhase(types.EarlyPhase1):
		return types.MaturityEarly
	}
	return ""
}

func stageFromStatus(s types.StudySummary) types.Maturity {
	switch types.OverallStatus(s.Status) {
	case types.StatusNotYetRecruiting, types.StatusRecruiting:
		return types.MaturityEarly
	case types.StatusActiveNotRecruiting, types.StatusEnrollingByInvitation:
		return types.MaturityMid
	case types.StatusSuspended:
		return types.MaturityLate
	}
	return ""
}

func promote(m types.Maturity) types.Maturity {
	switch m {
	case types.MaturityEarly:
		return types.MaturityMid
	default:
		return types.MaturityLate
	}
}

// PaceResult is the derived enrollment-pace assessment. Known is false
// when the enrollment target or start date is missing, in which case
// Ratio and Label carry no information.
type PaceResult struct {
	Known bool

	// Ratio is elapsed time over the phase benchmark duration,
	// clipped to [0, 1.5].
	Ratio float64

	// Label is the human-readable pace band.
	Label string
}

// Pace assesses how far through its expected enrollment window a
// study is. A missing target or start date yields an unknown result,
// never a zero.
func Pace(s types.StudySummary, now time.Time) PaceResult {
	if s.Enrollment <= 0 {
		return PaceResult{Label: "Unknown"}
	}
	start, ok := ParseDate(s.StartDate)
	if !ok {
		return PaceResult{Label: "Unknown"}
	}

	days := now.Sub(start).Hours() / 24
	if days <= 0 {
		return PaceResult{Known: true, Ratio: 0, Label: "Not Started"}
	}
	if s.EnrollmentType == "ACTUAL" {
		return PaceResult{Known: true, Ratio: 1, Label: "Completed Enrollment"}
	}

	monthsElapsed := days / 30
	ratio := monthsElapsed / float64(expectedMonths(s))
	if ratio > 1.5 {
		ratio = 1.5
	}

	var label string
	switch {
	case monthsElapsed < 3:
		label = "Recently Started"
	case ratio > 0.8:
		label = "Approaching Completion"
	case ratio < 0.3:
		label = "Early Stage"
	case ratio < 0.7:
		label = "On Track"
	default:
		label = "Nearing Target"
	}
	return PaceResult{Known: true, Ratio: ratio, Label: label}
}

// Historical completion base rates by phase. Roughly: phase 1 trials
// mostly run to completion, phase 3 attrition is the worst, phase 4
// rarely fails.
var phaseBaseRate = map[types.Phase]float64{
	types.EarlyPhase1: 0.55,
	types.Phase1:      0.60,
	types.Phase2:      0.40,
	types.Phase3:      0.35,
	types.Phase4:      0.80,
}

const defaultBaseRate = 0.50

// Sponsor-class multipliers on the phase base rate.
var sponsorMultiplier = map[types.SponsorClass]float64{
	types.SponsorIndustry: 1.15,
	types.SponsorNIH:      1.10,
	types.SponsorFed:      1.05,
	types.SponsorNetwork:  1.00,
	types.SponsorOther:    0.95,
	types.SponsorIndiv:    0.85,
}

// Likelihood scores the probability that a study completes as planned,
// bounded to [0, 1]. Terminal statuses override the formula: completed
// studies score 1, terminated and withdrawn score 0, suspended studies
// score near zero.
func Likelihood(s types.StudySummary) float64 {
	switch types.OverallStatus(s.Status) {
	case types.StatusCompleted:
		return 1
	case types.StatusTerminated, types.StatusWithdrawn:
		return 0
	case types.StatusSuspended:
		return 0.1
	}

	rate := defaultBaseRate
	best := 0.0
	for phase, r := range phaseBaseRate {
		if s.HasPhase(phase) && r > best {
			best = r
		}
	}
	if best > 0 {
		rate = best
	}

	if m, ok := sponsorMultiplier[types.SponsorClass(s.SponsorClass)]; ok {
		rate *= m
	}

	if rate > 1 {
		rate = 1
	}
	if rate < 0 {
		rate = 0
	}
	return rate
}

// DaysSinceStart returns whole days elapsed since the study's start
// date, or false when no usable start date exists.
func DaysSinceStart(s types.StudySummary, now time.Time) (int, bool) {
	start, ok := ParseDate(s.StartDate)
	if !ok {
		return 0, false
	}
	return int(now.Sub(start).Hours() / 24), true
}

// DaysToCompletion returns whole days until the study's completion
// date, zero for studies already past it or in a terminal status, and
// false when no usable completion date exists.
func DaysToCompletion(s types.StudySummary, now time.Time) (int, bool) {
	switch types.OverallStatus(s.Status) {
	case types.StatusCompleted, types.StatusTerminated, types.StatusWithdrawn:
		return 0, true
	}
	end, ok := ParseDate(s.CompletionDate)
	if !ok {
		return 0, false
	}
	days := int(end.Sub(now).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return days, true
}

// ParseDate parses the registry's partial date forms: "2023-06-15",
// "2023-06", and "2023". Partial dates resolve to the first day of
// the period.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
