// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package essie

import (
	"regexp"
	"strings"

	"github.com/dmarkovic/trialscope/pkg/types"
)

// Free-text tokenization is an ordered rule table. Each rule consumes
// the spans it recognizes from the working text and records clauses;
// rules run in a fixed priority order so translation stays
// deterministic. Whatever survives every rule is treated as condition
// or intervention terms.

var (
	phasePattern    = regexp.MustCompile(`(?i)\b(?:in\s+)?(early\s*phase\s*1|phase\s*(?:iv|i{1,3}|[1-4]))\b`)
	locationPattern = regexp.MustCompile(`(?i)\b(?:in|near|at)\s+([A-Za-z][A-Za-z ]*?)(?:\s+(?:and|or|for|with|the|an?|trials?|studies?)\b|\s*,|$)`)
	fillerPattern   = regexp.MustCompile(`(?i)\b(trials?|studies?|for|with|the|a|an)\b`)
	spacePattern    = regexp.MustCompile(`\s+`)
	operatorSplit   = regexp.MustCompile(`(?i)\s+(AND|OR)\s+`)
)

// statusWords maps spoken status phrases to registry values. Longer
// phrases are matched before their single-word prefixes.
var statusWords = []struct {
	pattern *regexp.Regexp
	value   types.OverallStatus
}{
	{statusRe("active not recruiting"), types.StatusActiveNotRecruiting},
	{statusRe("not yet recruiting"), types.StatusNotYetRecruiting},
	{statusRe("recruiting"), types.StatusRecruiting},
	{statusRe("active"), types.StatusActiveNotRecruiting},
	{statusRe("completed"), types.StatusCompleted},
	{statusRe("suspended"), types.StatusSuspended},
	{statusRe("terminated"), types.StatusTerminated},
	{statusRe("withdrawn"), types.StatusWithdrawn},
}

func statusRe(phrase string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + strings.ReplaceAll(phrase, " ", `\s+`) + `\b`)
}

// drugSuffixes mark tokens that are almost certainly drug names:
// monoclonal antibodies, kinase inhibitors, ACE inhibitors, beta
// blockers, statins, and penicillins.
var drugSuffixes = []string{"mab", "nib", "pril", "olol", "statin", "cillin"}

// tokenize extracts clauses from a natural-language phrase into
// clauses, consuming recognized spans as it goes. Inferred values
// never overwrite an already-present field.
func tokenize(text string, clauses map[string][]string) {
	remaining := text

	// Phase markers, including the "in phase 3" form.
	for {
		m := phasePattern.FindStringSubmatchIndex(remaining)
		if m == nil {
			break
		}
		raw := remaining[m[2]:m[3]]
		if phase, ok := types.ParsePhase(raw); ok {
			addInferred(clauses, fieldPhase, string(phase))
		}
		remaining = remaining[:m[0]] + " " + remaining[m[1]:]
	}

	// Status words, longest phrase first.
	for _, sw := range statusWords {
		if sw.pattern.MatchString(remaining) {
			addInferred(clauses, fieldStatus, string(sw.value))
			remaining = sw.pattern.ReplaceAllString(remaining, " ")
		}
	}

	// "in/near/at <place>" is read as a country filter. City and state
	// granularity needs a structured filter.
	if m := locationPattern.FindStringSubmatchIndex(remaining); m != nil {
		place := strings.TrimSpace(remaining[m[2]:m[3]])
		if len(place) > 2 {
			addInferred(clauses, fieldLocCountry, place)
			remaining = remaining[:m[0]] + " " + remaining[m[1]:]
		}
	}

	remaining = fillerPattern.ReplaceAllString(remaining, " ")
	remaining = strings.TrimSpace(spacePattern.ReplaceAllString(remaining, " "))

	// Residual terms split on boolean operators.
	for _, term := range splitTerms(remaining) {
		if isDrugName(term) {
			addInferred(clauses, fieldIntervention, term)
		} else {
			addInferred(clauses, fieldCondition, term)
		}
	}
}

// addInferred records a free-text inference unless a value for the
// field already exists.
func addInferred(clauses map[string][]string, field, value string) {
	for _, have := range clauses[field] {
		if have == value {
			return
		}
	}
	clauses[field] = append(clauses[field], value)
}

// splitTerms splits residual text on AND/OR operators, dropping the
// operators and empty fragments.
func splitTerms(text string) []string {
	if text == "" {
		return nil
	}
	var terms []string
	for _, frag := range operatorSplit.Split(text, -1) {
		frag = strings.Trim(frag, " ,")
		if frag == "" || strings.EqualFold(frag, "and") || strings.EqualFold(frag, "or") || strings.EqualFold(frag, "not") {
			continue
		}
		terms = append(terms, frag)
	}
	return terms
}

// isDrugName reports whether a single-word term carries a recognized
// pharmaceutical suffix.
func isDrugName(term string) bool {
	if strings.Contains(term, " ") {
		return false
	}
	lower := strings.ToLower(term)
	for _, suffix := range drugSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
