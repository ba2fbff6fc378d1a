// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import "strings"

// Criteria is an eligibility-criteria block split into its inclusion
// and exclusion lists.
type Criteria struct {
	Inclusion []string `json:"inclusion" yaml:"inclusion"`
	Exclusion []string `json:"exclusion" yaml:"exclusion"`
}

// ParseCriteria splits the registry's free-text eligibility block on
// its "Inclusion Criteria" / "Exclusion Criteria" headers and strips
// bullet markers and numbering from each line. Text before any header
// counts as inclusion.
func ParseCriteria(text string) Criteria {
	var c Criteria
	inExclusion := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		if strings.Contains(lower, "inclusion") && (strings.Contains(lower, "criteria") || strings.Contains(line, ":")) {
			inExclusion = false
			continue
		}
		if strings.Contains(lower, "exclusion") && (strings.Contains(lower, "criteria") || strings.Contains(line, ":")) {
			inExclusion = true
			continue
		}

		line = strings.TrimSpace(strings.TrimLeft(line, "•-*·"))
		line = strings.TrimSpace(strings.TrimLeft(line, "0123456789."))
		if line == "" {
			continue
		}
		if inExclusion {
			c.Exclusion = append(c.Exclusion, line)
		} else {
			c.Inclusion = append(c.Inclusion, line)
		}
	}
	return c
}
