// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package essie translates search intents into the Essie field-query
// grammar used by the ClinicalTrials.gov v2 API. Translation is pure
// and deterministic: the same intent always yields the same query
// string, with clauses emitted in a fixed field-priority order so
// downstream cache keys stay stable.
package essie

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dmarkovic/trialscope/pkg/types"
)

// Intent is one search request before translation. Text carries an
// optional natural-language phrase; the remaining fields are
// structured filters that bypass tokenization. Structured filters take
// precedence over anything inferred from Text for the same field.
type Intent struct {
	Text string

	Condition       string
	Intervention    string
	Phases          []string
	Statuses        []string
	StudyType       string
	Sponsor         string
	LocationCity    string
	LocationState   string
	LocationCountry string
	Sex             string
	HealthyOnly     bool
	HasResults      *bool

	// StartDateFrom and StartDateTo bound the study start date,
	// formatted YYYY-MM-DD. Open ends are allowed.
	StartDateFrom string
	StartDateTo   string
}

// TranslationError reports an intent that cannot be expressed as an
// Essie query. It is never retried.
type TranslationError struct {
	Reason string
}

func (e *TranslationError) Error() string {
	return "translating query: " + e.Reason
}

// Essie field names, in the canonical emission order. Clauses are
// always joined in this order regardless of how the intent was built.
const (
	fieldCondition    = "Condition"
	fieldIntervention = "InterventionName"
	fieldPhase        = "Phase"
	fieldStatus       = "OverallStatus"
	fieldStudyType    = "StudyType"
	fieldSponsor      = "LeadSponsorName"
	fieldLocCity      = "LocationCity"
	fieldLocState     = "LocationState"
	fieldLocCountry   = "LocationCountry"
	fieldSex          = "Sex"
	fieldHealthy      = "HealthyVolunteers"
	fieldHasResults   = "HasResults"
	fieldStartDate    = "StartDate"
)

var fieldOrder = []string{
	fieldCondition,
	fieldIntervention,
	fieldPhase,
	fieldStatus,
	fieldStudyType,
	fieldSponsor,
	fieldLocCity,
	fieldLocState,
	fieldLocCountry,
	fieldSex,
	fieldHealthy,
	fieldHasResults,
	fieldStartDate,
}

// Translate converts an intent into a single Essie query string. Text
// already written in Essie form (containing AREA[ or SEARCH[) is
// returned verbatim, ignoring structured filters. An intent that
// yields no clauses, or that carries an unrecognized phase, status,
// study type, or sex value, fails with a TranslationError.
func Translate(intent Intent) (string, error) {
	text := strings.TrimSpace(intent.Text)
	if strings.Contains(text, "AREA[") || strings.Contains(text, "SEARCH[") {
		return text, nil
	}

	clauses := map[string][]string{}
	if text != "" {
		tokenize(text, clauses)
	}
	if err := applyStructured(intent, clauses); err != nil {
		return "", err
	}
	if len(clauses) == 0 {
		return "", &TranslationError{Reason: "empty intent yields no clauses"}
	}

	var parts []string
	for _, field := range fieldOrder {
		values := clauses[field]
		if len(values) == 0 {
			continue
		}
		parts = append(parts, emit(field, values))
	}
	return strings.Join(parts, " AND "), nil
}

// applyStructured maps the intent's structured filters onto clauses,
// overwriting any same-field inference made from the free text.
func applyStructured(intent Intent, clauses map[string][]string) error {
	set := func(field string, values ...string) {
		clauses[field] = canonicalValues(values)
	}

	if intent.Condition != "" {
		set(fieldCondition, intent.Condition)
	}
	if intent.Intervention != "" {
		set(fieldIntervention, intent.Intervention)
	}
	if len(intent.Phases) > 0 {
		normalized := make([]string, 0, len(intent.Phases))
		for _, p := range intent.Phases {
			phase, ok := types.ParsePhase(p)
			if !ok {
				return &TranslationError{Reason: fmt.Sprintf("unrecognized phase %q", p)}
			}
			normalized = append(normalized, string(phase))
		}
		set(fieldPhase, normalized...)
	}
	if len(intent.Statuses) > 0 {
		normalized := make([]string, 0, len(intent.Statuses))
		for _, s := range intent.Statuses {
			status, ok := types.ParseStatus(s)
			if !ok {
				return &TranslationError{Reason: fmt.Sprintf("unrecognized status %q", s)}
			}
			normalized = append(normalized, string(status))
		}
		set(fieldStatus, normalized...)
	}
	if intent.StudyType != "" {
		st, ok := types.ParseStudyType(intent.StudyType)
		if !ok {
			return &TranslationError{Reason: fmt.Sprintf("unrecognized study type %q", intent.StudyType)}
		}
		set(fieldStudyType, string(st))
	}
	if intent.Sponsor != "" {
		set(fieldSponsor, intent.Sponsor)
	}
	if intent.LocationCity != "" {
		set(fieldLocCity, intent.LocationCity)
	}
	if intent.LocationState != "" {
		set(fieldLocState, intent.LocationState)
	}
	if intent.LocationCountry != "" {
		set(fieldLocCountry, intent.LocationCountry)
	}
	if intent.Sex != "" {
		sex, ok := types.ParseSex(intent.Sex)
		if !ok {
			return &TranslationError{Reason: fmt.Sprintf("unrecognized sex %q", intent.Sex)}
		}
		set(fieldSex, string(sex))
	}
	if intent.HealthyOnly {
		set(fieldHealthy, "true")
	}
	if intent.HasResults != nil {
		set(fieldHasResults, fmt.Sprintf("%t", *intent.HasResults))
	}
	if intent.StartDateFrom != "" || intent.StartDateTo != "" {
		from, to := intent.StartDateFrom, intent.StartDateTo
		if from == "" {
			from = "MIN"
		}
		if to == "" {
			to = "MAX"
		}
		for _, d := range []string{from, to} {
			if d == "MIN" || d == "MAX" {
				continue
			}
			if !datePattern.MatchString(d) {
				return &TranslationError{Reason: fmt.Sprintf("malformed date %q, want YYYY-MM-DD", d)}
			}
		}
		set(fieldStartDate, fmt.Sprintf("RANGE[%s,%s]", from, to))
	}
	return nil
}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// OrClause renders one field's values as OR alternatives, for callers
// that assemble a filter expression clause by clause instead of going
// through an Intent. Returns "" when no usable values remain.
func OrClause(field string, values []string) string {
	vals := canonicalValues(values)
	if len(vals) == 0 {
		return ""
	}
	return emit(field, vals)
}

// canonicalValues deduplicates and sorts a value set so that intents
// differing only in filter order translate identically.
func canonicalValues(values []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// emit renders one field's clause. Multi-value fields OR their
// alternatives inside parentheses before joining with the rest.
func emit(field string, values []string) string {
	render := quoteValue
	switch field {
	case fieldLocCity, fieldLocState, fieldLocCountry:
		// Place names are quoted unconditionally. "New York" and
		// "York" must stay distinguishable after upstream tokenizes.
		render = quoteAlways
	case fieldStartDate:
		// RANGE expressions are grammar, not values.
		render = func(v string) string { return v }
	}
	if len(values) == 1 {
		return fmt.Sprintf("AREA[%s]%s", field, render(values[0]))
	}
	alts := make([]string, len(values))
	for i, v := range values {
		alts[i] = fmt.Sprintf("AREA[%s]%s", field, render(v))
	}
	return "(" + strings.Join(alts, " OR ") + ")"
}

// reservedChars are Essie grammar characters that force quoting.
const reservedChars = "()[]|:,"

// quoteValue quotes multi-word values and values containing grammar
// characters, escaping embedded quotes.
func quoteValue(v string) string {
	if !strings.ContainsAny(v, " \t"+reservedChars+`"`) {
		return v
	}
	return quoteAlways(v)
}

func quoteAlways(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
}
