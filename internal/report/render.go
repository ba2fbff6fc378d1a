// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders aggregated trial results into the output
// forms the CLI exposes: compact text, Markdown, CSV, and JSON, plus
// saved result files.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmarkovic/trialscope/pkg/types"
)

// Summary renders one trial as compact multi-line text.
func Summary(t types.StudySummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", t.NCTID, orUnknown(t.Title))
	fmt.Fprintf(&b, "- Status: %s\n", orUnknown(t.Status))
	fmt.Fprintf(&b, "- Phase: %s\n", orNA(strings.Join(t.Phases, ", ")))
	fmt.Fprintf(&b, "- Sponsor: %s", orUnknown(t.Sponsor))

	if len(t.Conditions) > 0 {
		fmt.Fprintf(&b, "\n- Conditions: %s", strings.Join(head(t.Conditions, 3), ", "))
	}
	if len(t.Interventions) > 0 {
		fmt.Fprintf(&b, "\n- Interventions: %s", strings.Join(head(t.Interventions, 3), ", "))
	}
	if t.Enrollment > 0 {
		fmt.Fprintf(&b, "\n- Enrollment: %d", t.Enrollment)
	}
	if len(t.Locations) > 0 {
		b.WriteString("\n- Locations: " + t.Locations[0])
		if extra := len(t.Locations) - 1; extra > 0 {
			fmt.Fprintf(&b, " (+%d more)", extra)
		}
	}
	return b.String()
}

// Markdown renders trials as a Markdown document.
func Markdown(trials []types.StudySummary, title string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Found %d trial(s).\n\n", len(trials))

	for i, t := range trials {
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, orUnknown(t.Title))
		fmt.Fprintf(&b, "**NCT ID:** %s\n", t.NCTID)
		fmt.Fprintf(&b, "**Status:** %s\n", orUnknown(t.Status))
		fmt.Fprintf(&b, "**Phase:** %s\n", orNA(strings.Join(t.Phases, ", ")))
		fmt.Fprintf(&b, "**Sponsor:** %s\n", orUnknown(t.Sponsor))

		if len(t.Conditions) > 0 {
			fmt.Fprintf(&b, "**Conditions:** %s\n", strings.Join(t.Conditions, ", "))
		}
		if len(t.Interventions) > 0 {
			fmt.Fprintf(&b, "**Interventions:** %s\n", strings.Join(t.Interventions, ", "))
		}
		if t.Enrollment > 0 {
			fmt.Fprintf(&b, "**Enrollment:** %d\n", t.Enrollment)
		}
		if t.StartDate != "" {
			fmt.Fprintf(&b, "**Start Date:** %s\n", t.StartDate)
		}
		if t.CompletionDate != "" {
			fmt.Fprintf(&b, "**Expected Completion:** %s\n", t.CompletionDate)
		}
		if len(t.Locations) > 0 {
			fmt.Fprintf(&b, "**Locations:** %s\n", strings.Join(head(t.Locations, 3), "; "))
		}
		b.WriteString("\n---\n\n")
	}
	return b.String()
}

// csvFields is the default CSV column set.
var csvFields = []string{"nct_id", "title", "status", "phase", "sponsor", "enrollment", "conditions"}

// CSV renders trials as a CSV document with a header row. A nil
// fields slice uses the default column set.
func CSV(trials []types.StudySummary, fields []string) (string, error) {
	if fields == nil {
		fields = csvFields
	}

	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(fields); err != nil {
		return "", fmt.Errorf("writing CSV header: %w", err)
	}
	for _, t := range trials {
		row := make([]string, len(fields))
		for i, f := range fields {
			row[i] = csvValue(t, f)
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("writing CSV row for %s: %w", t.NCTID, err)
		}
	}
	w.Flush()
	return b.String(), w.Error()
}

func csvValue(t types.StudySummary, field string) string {
	switch field {
	case "nct_id":
		return t.NCTID
	case "title":
		return t.Title
	case "status":
		return t.Status
	case "phase":
		return strings.Join(t.Phases, "; ")
	case "study_type":
		return t.StudyType
	case "sponsor":
		return t.Sponsor
	case "sponsor_class":
		return t.SponsorClass
	case "enrollment":
		if t.Enrollment == 0 {
			return ""
		}
		return fmt.Sprintf("%d", t.Enrollment)
	case "conditions":
		return strings.Join(t.Conditions, "; ")
	case "interventions":
		return strings.Join(t.Interventions, "; ")
	case "start_date":
		return t.StartDate
	case "completion_date":
		return t.CompletionDate
	case "locations":
		return strings.Join(t.Locations, "; ")
	default:
		return ""
	}
}

// JSON renders trials as indented JSON.
func JSON(trials []types.StudySummary) (string, error) {
	data, err := json.MarshalIndent(trials, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling trials: %w", err)
	}
	return string(data), nil
}

// Truncate shortens text to max runes with a trailing ellipsis.
func Truncate(text string, max int) string {
	if max <= 3 || len(text) <= max {
		return text
	}
	return text[:max-3] + "..."
}

func head(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
