// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package essie

import (
	"errors"
	"strings"
	"testing"
)

func TestTranslateFreeText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "condition drug and phase",
			text: "lung cancer AND pembrolizumab in phase 3",
			want: `AREA[Condition]"lung cancer" AND AREA[InterventionName]pembrolizumab AND AREA[Phase]PHASE3`,
		},
		{
			name: "status word with filler",
			text: "recruiting trials for diabetes",
			want: `AREA[Condition]diabetes AND AREA[OverallStatus]RECRUITING`,
		},
		{
			name: "roman numeral phase",
			text: "melanoma phase III",
			want: `AREA[Condition]melanoma AND AREA[Phase]PHASE3`,
		},
		{
			name: "location after in",
			text: "asthma in Germany",
			want: `AREA[Condition]asthma AND AREA[LocationCountry]"Germany"`,
		},
		{
			name: "location ends before filler word",
			text: "diabetes in California with metformin",
			want: `AREA[Condition]"diabetes metformin" AND AREA[LocationCountry]"California"`,
		},
		{
			name: "drug suffix routes to intervention",
			text: "atorvastatin",
			want: `AREA[InterventionName]atorvastatin`,
		},
		{
			name: "multi word condition is quoted",
			text: "chronic kidney disease",
			want: `AREA[Condition]"chronic kidney disease"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Translate(Intent{Text: tt.text})
			if err != nil {
				t.Fatalf("Translate(%q): %v", tt.text, err)
			}
			if got != tt.want {
				t.Errorf("Translate(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestTranslateStructured(t *testing.T) {
	got, err := Translate(Intent{
		Condition:     "diabetes",
		Statuses:      []string{"RECRUITING"},
		LocationState: "California",
	})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	want := `AREA[Condition]diabetes AND AREA[OverallStatus]RECRUITING AND AREA[LocationState]"California"`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTranslateMultiValueOR(t *testing.T) {
	got, err := Translate(Intent{
		Condition: "melanoma",
		Phases:    []string{"phase 3", "phase 2"},
	})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	want := `AREA[Condition]melanoma AND (AREA[Phase]PHASE2 OR AREA[Phase]PHASE3)`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTranslateDeterministic(t *testing.T) {
	a := Intent{Condition: "melanoma", Phases: []string{"PHASE2", "PHASE3"}, Statuses: []string{"recruiting", "completed"}}
	b := Intent{Condition: "melanoma", Phases: []string{"PHASE3", "PHASE2"}, Statuses: []string{"completed", "recruiting"}}

	qa, err := Translate(a)
	if err != nil {
		t.Fatalf("Translate(a): %v", err)
	}
	qb, err := Translate(b)
	if err != nil {
		t.Fatalf("Translate(b): %v", err)
	}
	if qa != qb {
		t.Errorf("value order changed output: %q vs %q", qa, qb)
	}
}

func TestTranslateStructuredWins(t *testing.T) {
	got, err := Translate(Intent{
		Text:     "breast cancer in phase 1",
		Phases:   []string{"PHASE3"},
		Statuses: []string{"RECRUITING"},
	})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if strings.Contains(got, "PHASE1") {
		t.Errorf("free-text phase survived structured override: %q", got)
	}
	if !strings.Contains(got, "AREA[Phase]PHASE3") {
		t.Errorf("structured phase missing: %q", got)
	}
}

func TestTranslatePassthrough(t *testing.T) {
	query := `AREA[Condition]"lung cancer" AND AREA[Phase]PHASE2`
	got, err := Translate(Intent{Text: query, Condition: "ignored"})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != query {
		t.Errorf("formal query was rewritten: %q", got)
	}
}

func TestTranslateStartDateRange(t *testing.T) {
	tests := []struct {
		name   string
		intent Intent
		want   string
	}{
		{
			name:   "both ends",
			intent: Intent{Condition: "melanoma", StartDateFrom: "2023-01-01", StartDateTo: "2024-06-30"},
			want:   `AREA[Condition]melanoma AND AREA[StartDate]RANGE[2023-01-01,2024-06-30]`,
		},
		{
			name:   "open upper end",
			intent: Intent{Condition: "melanoma", StartDateFrom: "2023-01-01"},
			want:   `AREA[Condition]melanoma AND AREA[StartDate]RANGE[2023-01-01,MAX]`,
		},
		{
			name:   "open lower end",
			intent: Intent{Condition: "melanoma", StartDateTo: "2024-06-30"},
			want:   `AREA[Condition]melanoma AND AREA[StartDate]RANGE[MIN,2024-06-30]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Translate(tt.intent)
			if err != nil {
				t.Fatalf("Translate: %v", err)
			}
			if got != tt.want {
				t.Errorf("Translate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTranslateErrors(t *testing.T) {
	tests := []struct {
		name   string
		intent Intent
	}{
		{name: "empty intent", intent: Intent{}},
		{name: "blank text", intent: Intent{Text: "   "}},
		{name: "unknown phase", intent: Intent{Condition: "melanoma", Phases: []string{"phase 9"}}},
		{name: "unknown status", intent: Intent{Condition: "melanoma", Statuses: []string{"paused"}}},
		{name: "unknown study type", intent: Intent{Condition: "melanoma", StudyType: "SURVEY"}},
		{name: "malformed date", intent: Intent{Condition: "melanoma", StartDateFrom: "last year"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Translate(tt.intent)
			var terr *TranslationError
			if !errors.As(err, &terr) {
				t.Fatalf("Translate(%+v) err = %v, want TranslationError", tt.intent, err)
			}
		})
	}
}

func TestOrClause(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		values []string
		want   string
	}{
		{
			name:   "single value",
			field:  "Condition",
			values: []string{"melanoma"},
			want:   "AREA[Condition]melanoma",
		},
		{
			name:   "alternatives grouped",
			field:  "Condition",
			values: []string{"melanoma", "lung cancer"},
			want:   `(AREA[Condition]"lung cancer" OR AREA[Condition]melanoma)`,
		},
		{
			name:   "phases stay unquoted",
			field:  "Phase",
			values: []string{"PHASE2", "PHASE3"},
			want:   "(AREA[Phase]PHASE2 OR AREA[Phase]PHASE3)",
		},
		{
			name:   "blank values dropped",
			field:  "InterventionName",
			values: []string{"", "  "},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OrClause(tt.field, tt.values); got != tt.want {
				t.Errorf("OrClause(%s, %v) = %q, want %q", tt.field, tt.values, got, tt.want)
			}
		})
	}
}

func TestQuoteValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"diabetes", "diabetes"},
		{"lung cancer", `"lung cancer"`},
		{"her2+ (positive)", `"her2+ (positive)"`},
		{`say "ahh"`, `"say \"ahh\""`},
	}
	for _, tt := range tests {
		if got := quoteValue(tt.in); got != tt.want {
			t.Errorf("quoteValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
