// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"testing"
	"time"

	"github.com/dmarkovic/trialscope/pkg/types"
)

// now is a fixed clock so date-derived metrics are stable.
var now = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

func summary(phases []string, status, start string, enrollment int) types.StudySummary {
	return types.StudySummary{
		NCTID:      "NCT00000001",
		Phases:     phases,
		Status:     status,
		StartDate:  start,
		Enrollment: enrollment,
	}
}

func TestMaturity(t *testing.T) {
	tests := []struct {
		name    string
		s       types.StudySummary
		want    types.Maturity
		lowConf bool
	}{
		{
			name: "completed is late",
			s:    summary([]string{"PHASE1"}, "COMPLETED", "2020-01-01", 100),
			want: types.MaturityLate,
		},
		{
			name: "phase 4 is late",
			s:    summary([]string{"PHASE4"}, "RECRUITING", "2025-12-01", 100),
			want: types.MaturityLate,
		},
		{
			name: "young phase 2 is mid",
			s:    summary([]string{"PHASE2"}, "RECRUITING", "2025-10-01", 100),
			want: types.MaturityMid,
		},
		{
			name: "young phase 1 is early",
			s:    summary([]string{"PHASE1"}, "RECRUITING", "2025-10-01", 100),
			want: types.MaturityEarly,
		},
		{
			name: "aged phase 1 promotes to mid",
			s:    summary([]string{"PHASE1"}, "RECRUITING", "2024-06-01", 100),
			want: types.MaturityMid,
		},
		{
			name:    "missing start date defaults early with low confidence",
			s:       summary(nil, "RECRUITING", "", 100),
			want:    types.MaturityEarly,
			lowConf: true,
		},
		{
			name: "no phase falls back to status",
			s:    summary(nil, "ACTIVE_NOT_RECRUITING", "2025-12-01", 100),
			want: types.MaturityMid,
		},
		{
			name:    "suspended without phases is late",
			s:       summary(nil, "SUSPENDED", "", 100),
			want:    types.MaturityLate,
			lowConf: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Maturity(tt.s, now)
			if got.Stage != tt.want {
				t.Errorf("Maturity() stage = %v, want %v", got.Stage, tt.want)
			}
			if got.LowConfidence != tt.lowConf {
				t.Errorf("Maturity() low confidence = %v, want %v", got.LowConfidence, tt.lowConf)
			}
		})
	}
}

func TestPace(t *testing.T) {
	tests := []struct {
		name      string
		s         types.StudySummary
		wantKnown bool
		wantLabel string
	}{
		{
			name:      "missing enrollment target is unknown",
			s:         summary([]string{"PHASE2"}, "RECRUITING", "2025-01-01", 0),
			wantKnown: false,
			wantLabel: "Unknown",
		},
		{
			name:      "missing start date is unknown",
			s:         summary([]string{"PHASE2"}, "RECRUITING", "", 100),
			wantKnown: false,
			wantLabel: "Unknown",
		},
		{
			name:      "future start is not started",
			s:         summary([]string{"PHASE2"}, "NOT_YET_RECRUITING", "2026-09", 100),
			wantKnown: true,
			wantLabel: "Not Started",
		},
		{
			name:      "one month in is recently started",
			s:         summary([]string{"PHASE2"}, "RECRUITING", "2026-02-01", 100),
			wantKnown: true,
			wantLabel: "Recently Started",
		},
		{
			name:      "year into a phase 2 is on track",
			s:         summary([]string{"PHASE2"}, "RECRUITING", "2025-03-01", 100),
			wantKnown: true,
			wantLabel: "On Track",
		},
		{
			name:      "nearly through benchmark is approaching completion",
			s:         summary([]string{"PHASE2"}, "RECRUITING", "2024-01-01", 100),
			wantKnown: true,
			wantLabel: "Approaching Completion",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pace(tt.s, now)
			if got.Known != tt.wantKnown {
				t.Errorf("Pace() known = %v, want %v", got.Known, tt.wantKnown)
			}
			if got.Label != tt.wantLabel {
				t.Errorf("Pace() label = %q, want %q", got.Label, tt.wantLabel)
			}
		})
	}
}

func TestPaceRatioClipped(t *testing.T) {
	s := summary([]string{"PHASE1"}, "RECRUITING", "2020-01-01", 100)
	got := Pace(s, now)
	if !got.Known {
		t.Fatal("Pace() unknown for fully specified study")
	}
	if got.Ratio != 1.5 {
		t.Errorf("Pace() ratio = %v, want clip at 1.5", got.Ratio)
	}
}

func TestLikelihood(t *testing.T) {
	tests := []struct {
		name string
		s    types.StudySummary
		want float64
	}{
		{name: "completed is certain", s: summary(nil, "COMPLETED", "", 0), want: 1},
		{name: "terminated is zero", s: summary(nil, "TERMINATED", "", 0), want: 0},
		{name: "withdrawn is zero", s: summary(nil, "WITHDRAWN", "", 0), want: 0},
		{name: "suspended is near zero", s: summary(nil, "SUSPENDED", "", 0), want: 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Likelihood(tt.s); got != tt.want {
				t.Errorf("Likelihood() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLikelihoodBounds(t *testing.T) {
	phases := [][]string{nil, {"PHASE1"}, {"PHASE2"}, {"PHASE3"}, {"PHASE4"}}
	classes := []string{"", "INDUSTRY", "NIH", "FED", "OTHER", "INDIV"}
	for _, p := range phases {
		for _, c := range classes {
			s := summary(p, "RECRUITING", "2025-01-01", 100)
			s.SponsorClass = c
			got := Likelihood(s)
			if got < 0 || got > 1 {
				t.Errorf("Likelihood(phases=%v class=%s) = %v outside [0,1]", p, c, got)
			}
		}
	}
}

func TestLikelihoodSponsorOrdering(t *testing.T) {
	industry := summary([]string{"PHASE3"}, "RECRUITING", "2025-01-01", 100)
	industry.SponsorClass = "INDUSTRY"
	individual := summary([]string{"PHASE3"}, "RECRUITING", "2025-01-01", 100)
	individual.SponsorClass = "INDIV"

	if Likelihood(industry) <= Likelihood(individual) {
		t.Error("industry sponsorship should score above individual sponsorship")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2023-06-15", time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC), true},
		{"2023-06", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), true},
		{"2023", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"June 2023", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseDate(tt.in)
		if ok != tt.ok || !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDaysToCompletion(t *testing.T) {
	s := summary(nil, "RECRUITING", "", 0)
	s.CompletionDate = "2026-03-31"
	days, ok := DaysToCompletion(s, now)
	if !ok || days != 30 {
		t.Errorf("DaysToCompletion() = %d, %v; want 30, true", days, ok)
	}

	past := summary(nil, "RECRUITING", "", 0)
	past.CompletionDate = "2020-01-01"
	days, ok = DaysToCompletion(past, now)
	if !ok || days != 0 {
		t.Errorf("DaysToCompletion(past due) = %d, %v; want 0, true", days, ok)
	}
}
