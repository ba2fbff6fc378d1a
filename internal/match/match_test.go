// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"strings"
	"testing"

	"github.com/dmarkovic/trialscope/pkg/types"
)

func eligibleStudy(nctID, sex, minAge, maxAge string) types.Study {
	var s types.Study
	s.ProtocolSection.Identification.NCTID = nctID
	s.ProtocolSection.Eligibility.Sex = sex
	s.ProtocolSection.Eligibility.MinimumAge = minAge
	s.ProtocolSection.Eligibility.MaximumAge = maxAge
	return s
}

func TestScoreFullyEligible(t *testing.T) {
	p := Profile{Age: 45, Sex: "FEMALE"}
	r := Score(p, eligibleStudy("NCT00000001", "ALL", "18 Years", "65 Years"))

	if r.Score != 100 {
		t.Errorf("score = %v, want 100", r.Score)
	}
	if r.Status != LikelyEligible {
		t.Errorf("status = %v, want %v", r.Status, LikelyEligible)
	}
	if len(r.Issues) != 0 {
		t.Errorf("unexpected issues: %v", r.Issues)
	}
}

func TestScoreDeductions(t *testing.T) {
	tests := []struct {
		name       string
		profile    Profile
		study      types.Study
		wantScore  float64
		wantStatus Status
	}{
		{
			name:       "below minimum age",
			profile:    Profile{Age: 15, Sex: "MALE"},
			study:      eligibleStudy("NCT1", "ALL", "18 Years", ""),
			wantScore:  60,
			wantStatus: PossiblyEligible,
		},
		{
			name:       "above maximum age",
			profile:    Profile{Age: 80, Sex: "MALE"},
			study:      eligibleStudy("NCT1", "ALL", "18 Years", "65 Years"),
			wantScore:  60,
			wantStatus: PossiblyEligible,
		},
		{
			name:       "wrong sex",
			profile:    Profile{Age: 45, Sex: "MALE"},
			study:      eligibleStudy("NCT1", "FEMALE", "", ""),
			wantScore:  50,
			wantStatus: Unclear,
		},
		{
			name:       "age and sex conflicts together",
			profile:    Profile{Age: 15, Sex: "MALE"},
			study:      eligibleStudy("NCT1", "FEMALE", "18 Years", ""),
			wantScore:  10,
			wantStatus: LikelyIneligible,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Score(tt.profile, tt.study)
			if r.Score != tt.wantScore {
				t.Errorf("score = %v, want %v", r.Score, tt.wantScore)
			}
			if r.Status != tt.wantStatus {
				t.Errorf("status = %v, want %v", r.Status, tt.wantStatus)
			}
			if len(r.Issues) == 0 {
				t.Error("expected at least one issue")
			}
		})
	}
}

func TestScoreExcludedIntervention(t *testing.T) {
	study := eligibleStudy("NCT1", "ALL", "", "")
	study.ProtocolSection.ArmsInterventions.Interventions = []types.Intervention{
		{Type: "DRUG", Name: "Pembrolizumab"},
	}
	p := Profile{Age: 45, Sex: "FEMALE", ExcludedInterventions: []string{"pembrolizumab"}}

	r := Score(p, study)
	if r.Score != 70 {
		t.Errorf("score = %v, want 70", r.Score)
	}
	if r.Status != PossiblyEligible {
		t.Errorf("status = %v, want %v", r.Status, PossiblyEligible)
	}
}

func TestEvaluateStrictnessFilter(t *testing.T) {
	studies := []types.Study{
		eligibleStudy("NCT00000001", "ALL", "", ""),          // 100
		eligibleStudy("NCT00000002", "ALL", "60 Years", ""),  // 60
		eligibleStudy("NCT00000003", "MALE", "60 Years", ""), // 10
	}
	p := Profile{Age: 45, Sex: "FEMALE"}

	strict := Evaluate(p, studies, Strict)
	if len(strict) != 1 || strict[0].Summary.NCTID != "NCT00000001" {
		t.Errorf("strict kept %d results, want only the fully eligible trial", len(strict))
	}

	balanced := Evaluate(p, studies, Balanced)
	if len(balanced) != 2 {
		t.Fatalf("balanced kept %d results, want 2", len(balanced))
	}
	if balanced[0].Score < balanced[1].Score {
		t.Error("results not sorted by descending score")
	}

	lenient := Evaluate(p, studies, Lenient)
	if len(lenient) != 3 {
		t.Errorf("lenient kept %d results, want all 3", len(lenient))
	}
}

func TestAlternativeConditions(t *testing.T) {
	tests := []struct {
		name      string
		secondary []string
		matched   int
		want      []string
	}{
		{
			name:      "few matches suggests secondaries",
			secondary: []string{"hypertension", "obesity"},
			matched:   2,
			want:      []string{"hypertension", "obesity"},
		},
		{
			name:      "suggestions capped at three",
			secondary: []string{"a", "b", "c", "d"},
			matched:   0,
			want:      []string{"a", "b", "c"},
		},
		{
			name:      "enough matches suppresses suggestions",
			secondary: []string{"hypertension"},
			matched:   5,
		},
		{
			name:    "no secondaries",
			matched: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Profile{PrimaryCondition: "diabetes", SecondaryConditions: tt.secondary}
			got := AlternativeConditions(p, tt.matched)
			if len(got) != len(tt.want) {
				t.Fatalf("AlternativeConditions = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("AlternativeConditions = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestSearchParams(t *testing.T) {
	p := Profile{
		PrimaryCondition: "melanoma",
		RecruitingOnly:   true,
		LocationCity:     "Boston",
		LocationCountry:  "United States",
		PreferredPhases:  []string{"phase 2"},
	}
	params := SearchParams(p)

	if params.Condition != "melanoma" {
		t.Errorf("condition = %q", params.Condition)
	}
	if len(params.Statuses) != 2 {
		t.Errorf("statuses = %v, want recruiting pair", params.Statuses)
	}
	if !strings.Contains(params.Query, `SEARCH[Location](AREA[LocationCity]"Boston" AND AREA[LocationCountry]"United States")`) {
		t.Errorf("location filter missing: %q", params.Query)
	}
	if !strings.Contains(params.Query, "(AREA[Phase]PHASE2)") {
		t.Errorf("phase filter missing: %q", params.Query)
	}
}

func TestParseAge(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"18 Years", 18, true},
		{"18 years", 18, true},
		{"65 Years", 65, true},
		{"6 Months", 0, true},
		{"30 Months", 2, true},
		{"N/A", 0, false},
		{"", 0, false},
		{"no limit", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseAge(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseAge(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseCriteria(t *testing.T) {
	text := `Inclusion Criteria:

* Age 18 or older
* Histologically confirmed melanoma
2. Adequate organ function

Exclusion Criteria:

* Prior immunotherapy
- Pregnant or nursing`

	c := ParseCriteria(text)
	if len(c.Inclusion) != 3 {
		t.Fatalf("inclusion = %v, want 3 entries", c.Inclusion)
	}
	if c.Inclusion[0] != "Age 18 or older" {
		t.Errorf("inclusion[0] = %q", c.Inclusion[0])
	}
	if c.Inclusion[2] != "Adequate organ function" {
		t.Errorf("inclusion[2] = %q", c.Inclusion[2])
	}
	if len(c.Exclusion) != 2 {
		t.Fatalf("exclusion = %v, want 2 entries", c.Exclusion)
	}
	if c.Exclusion[1] != "Pregnant or nursing" {
		t.Errorf("exclusion[1] = %q", c.Exclusion[1])
	}
}

func TestParseCriteriaEmpty(t *testing.T) {
	c := ParseCriteria("")
	if len(c.Inclusion) != 0 || len(c.Exclusion) != 0 {
		t.Errorf("ParseCriteria(\"\") = %+v, want empty", c)
	}
}
