// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match scores clinical trials against a patient profile.
// Scoring starts from a perfect score and deducts for each eligibility
// conflict; the result is informational only, never a determination.
package match

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dmarkovic/trialscope/internal/ctgov"
	"github.com/dmarkovic/trialscope/pkg/types"
)

// Strictness controls which eligibility statuses survive filtering.
type Strictness string

const (
	Strict   Strictness = "STRICT"
	Balanced Strictness = "BALANCED"
	Lenient  Strictness = "LENIENT"
)

// ParseStrictness normalizes a strictness flag, defaulting to Balanced.
func ParseStrictness(s string) Strictness {
	switch Strictness(strings.ToUpper(strings.TrimSpace(s))) {
	case Strict:
		return Strict
	case Lenient:
		return Lenient
	default:
		return Balanced
	}
}

// Status is the eligibility assessment band.
type Status string

const (
	LikelyEligible   Status = "LIKELY_ELIGIBLE"
	PossiblyEligible Status = "POSSIBLY_ELIGIBLE"
	Unclear          Status = "UNCLEAR"
	LikelyIneligible Status = "LIKELY_INELIGIBLE"
)

// Score deductions per conflict. Sex conflicts weigh heaviest since
// they are definitive; age bounds allow for screening discretion.
const (
	perfectScore       = 100.0
	ageDeduction       = 40.0
	sexDeduction       = 50.0
	exclusionDeduction = 30.0
	likelyThreshold    = 80.0
	possiblyThreshold  = 60.0
	unclearThreshold   = 40.0
)

// Profile describes the patient being matched.
type Profile struct {
	Age                   int
	Sex                   string
	PrimaryCondition      string
	SecondaryConditions   []string
	LocationCity          string
	LocationState         string
	LocationCountry       string
	ExcludedInterventions []string
	PreferredPhases       []string
	RecruitingOnly        bool
}

// Result is one scored trial.
type Result struct {
	Summary     types.StudySummary `json:"trial" yaml:"trial"`
	Score       float64            `json:"match_score" yaml:"match_score"`
	Status      Status             `json:"eligibility_status" yaml:"eligibility_status"`
	Explanation string             `json:"eligibility_explanation" yaml:"eligibility_explanation"`
	Issues      []string           `json:"potential_issues,omitempty" yaml:"potential_issues,omitempty"`
	NextSteps   []string           `json:"next_steps" yaml:"next_steps"`
}

// SearchParams builds the registry query for a profile: condition
// search, recruiting filter, site-scoped location clauses, and a
// preferred-phase filter.
func SearchParams(p Profile) ctgov.SearchParams {
	params := ctgov.SearchParams{Condition: p.PrimaryCondition}
	if p.RecruitingOnly {
		params.Statuses = []string{string(types.StatusRecruiting), string(types.StatusEnrollingByInvitation)}
	}

	var filters []string
	if loc := locationFilter(p); loc != "" {
		filters = append(filters, loc)
	}
	if len(p.PreferredPhases) > 0 {
		alts := make([]string, 0, len(p.PreferredPhases))
		for _, raw := range p.PreferredPhases {
			if phase, ok := types.ParsePhase(raw); ok {
				alts = append(alts, fmt.Sprintf("AREA[Phase]%s", phase))
			}
		}
		if len(alts) > 0 {
			filters = append(filters, "("+strings.Join(alts, " OR ")+")")
		}
	}
	if len(filters) > 0 {
		params.Query = strings.Join(filters, " AND ")
	}
	return params
}

// locationFilter scopes the location clauses to a single site using
// SEARCH[Location], so a trial with a Boston site in the US matches
// "Boston, United States" but not a trial with sites in each
// separately.
func locationFilter(p Profile) string {
	var clauses []string
	if p.LocationCity != "" {
		clauses = append(clauses, fmt.Sprintf("AREA[LocationCity]%q", p.LocationCity))
	}
	if p.LocationState != "" {
		clauses = append(clauses, fmt.Sprintf("AREA[LocationState]%q", p.LocationState))
	}
	if p.LocationCountry != "" {
		clauses = append(clauses, fmt.Sprintf("AREA[LocationCountry]%q", p.LocationCountry))
	}
	if len(clauses) == 0 {
		return ""
	}
	return "SEARCH[Location](" + strings.Join(clauses, " AND ") + ")"
}

// Score evaluates one study against the profile.
func Score(p Profile, study types.Study) Result {
	summary := study.Summarize()
	elig := study.ProtocolSection.Eligibility

	score := perfectScore
	var issues, met []string

	minAge, hasMin := ParseAge(elig.MinimumAge)
	maxAge, hasMax := ParseAge(elig.MaximumAge)
	switch {
	case hasMin && p.Age < minAge:
		score -= ageDeduction
		issues = append(issues, fmt.Sprintf("Below minimum age (%s)", elig.MinimumAge))
	case hasMax && p.Age > maxAge:
		score -= ageDeduction
		issues = append(issues, fmt.Sprintf("Above maximum age (%s)", elig.MaximumAge))
	default:
		met = append(met, "Age requirement met")
	}

	trialSex := strings.ToUpper(elig.Sex)
	if trialSex != "" && trialSex != string(types.SexAll) && trialSex != strings.ToUpper(p.Sex) {
		score -= sexDeduction
		issues = append(issues, fmt.Sprintf("Trial requires %s participants", trialSex))
	} else {
		met = append(met, "Sex requirement met")
	}

	if excluded := excludedIntervention(p.ExcludedInterventions, summary.Interventions); excluded != "" {
		score -= exclusionDeduction
		issues = append(issues, "Contains excluded intervention: "+excluded)
	}

	if elig.HealthyVolunteers {
		met = append(met, "Accepts healthy volunteers")
	}

	status := statusForScore(score)
	return Result{
		Summary:     summary,
		Score:       score,
		Status:      status,
		Explanation: explain(issues, met),
		Issues:      issues,
		NextSteps:   nextSteps(study, status),
	}
}

// Evaluate scores all studies, drops those below the strictness bar,
// and returns the survivors ordered by descending score. Ties keep a
// stable NCT-identifier order so output is reproducible.
func Evaluate(p Profile, studies []types.Study, strictness Strictness) []Result {
	var results []Result
	for _, study := range studies {
		r := Score(p, study)
		switch strictness {
		case Strict:
			if r.Status != LikelyEligible {
				continue
			}
		case Balanced:
			if r.Status == LikelyIneligible {
				continue
			}
		}
		results = append(results, r)
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Summary.NCTID < results[j].Summary.NCTID
	})
	return results
}

// Thin result sets trigger alternative-search suggestions drawn from
// the profile's secondary conditions.
const (
	fewMatchesThreshold = 5
	maxAlternatives     = 3
)

// AlternativeConditions returns secondary conditions worth a follow-up
// search when the primary search produced few surviving matches. An
// empty slice means the result set was large enough or the profile
// carries no secondary conditions.
func AlternativeConditions(p Profile, matched int) []string {
	if matched >= fewMatchesThreshold || len(p.SecondaryConditions) == 0 {
		return nil
	}
	alts := p.SecondaryConditions
	if len(alts) > maxAlternatives {
		alts = alts[:maxAlternatives]
	}
	return alts
}

func statusForScore(score float64) Status {
	switch {
	case score >= likelyThreshold:
		return LikelyEligible
	case score >= possiblyThreshold:
		return PossiblyEligible
	case score >= unclearThreshold:
		return Unclear
	default:
		return LikelyIneligible
	}
}

func excludedIntervention(excluded, interventions []string) string {
	for _, iv := range interventions {
		for _, ex := range excluded {
			if strings.EqualFold(iv, ex) {
				return iv
			}
		}
	}
	return ""
}

func explain(issues, met []string) string {
	switch {
	case len(issues) > 0 && len(met) > 0:
		return "Issues found: " + strings.Join(issues, "; ") + ". Meets: " + strings.Join(met, ", ")
	case len(issues) > 0:
		return "Issues found: " + strings.Join(issues, "; ")
	case len(met) > 0:
		return "Eligibility criteria appear satisfied: " + strings.Join(met, ", ")
	default:
		return "Unable to determine eligibility from available data"
	}
}

// nextSteps suggests what the patient should do with a match,
// including study contacts when the record carries them.
func nextSteps(study types.Study, status Status) []string {
	contacts := study.ProtocolSection.ContactsLocations
	var steps []string

	switch status {
	case LikelyEligible, PossiblyEligible:
		steps = append(steps, "Review the full eligibility criteria with your doctor")
		if len(contacts.CentralContacts) > 0 {
			c := contacts.CentralContacts[0]
			if c.Phone != "" {
				steps = append(steps, "Contact study team: "+c.Phone)
			}
			if c.Email != "" {
				steps = append(steps, "Email: "+c.Email)
			}
		}
		if n := len(contacts.Locations); n > 0 {
			steps = append(steps, fmt.Sprintf("Visit one of %d study site(s) for screening", n))
		}
		steps = append(steps, "Bring your medical records to the screening appointment")
	case Unclear:
		steps = append(steps,
			"Discuss eligibility with your healthcare provider",
			"Contact the study team for clarification")
	default:
		steps = append(steps,
			"You may not qualify, but discuss with your doctor",
			"Consider asking about similar trials")
	}
	return steps
}

var (
	monthsAgePattern = regexp.MustCompile(`^(\d+)\s*months?`)
	yearsAgePattern  = regexp.MustCompile(`^(\d+)\s*(years?|yrs?|y)?`)
)

// ParseAge converts registry age strings ("18 Years", "6 Months",
// "N/A") into whole years. Month-denominated ages round down.
func ParseAge(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || strings.Contains(s, "n/a") || strings.Contains(s, "no limit") {
		return 0, false
	}
	if m := monthsAgePattern.FindStringSubmatch(s); m != nil {
		months, _ := strconv.Atoi(m[1])
		return months / 12, true
	}
	if m := yearsAgePattern.FindStringSubmatch(s); m != nil && m[1] != "" {
		years, _ := strconv.Atoi(m[1])
		return years, true
	}
	return 0, false
}
