// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/dmarkovic/trialscope/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.ArchiveConfig{
		ArchiveDir: filepath.Join(t.TempDir(), "archive"),
		MaxResults: 20,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSummaries() []types.StudySummary {
	return []types.StudySummary{
		{
			NCTID:         "NCT00000001",
			Title:         "Pembrolizumab in Advanced Melanoma",
			Status:        "RECRUITING",
			Phases:        []string{"PHASE3"},
			StudyType:     "INTERVENTIONAL",
			Conditions:    []string{"Melanoma"},
			Interventions: []string{"Pembrolizumab"},
			Sponsor:       "Acme Pharma",
			SponsorClass:  "INDUSTRY",
			Enrollment:    500,
			StartDate:     "2024-01-15",
			Locations:     []string{"Boston, Massachusetts, United States"},
		},
		{
			NCTID:         "NCT00000002",
			Title:         "Metformin for Type 2 Diabetes Prevention",
			Status:        "COMPLETED",
			Phases:        []string{"PHASE4"},
			StudyType:     "INTERVENTIONAL",
			Conditions:    []string{"Type 2 Diabetes"},
			Interventions: []string{"Metformin"},
			Sponsor:       "University Hospital",
			SponsorClass:  "OTHER",
			Enrollment:    1200,
			HasResults:    true,
		},
	}
}

func TestArchiveAndGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Archive(ctx, sampleSummaries(), "first pass"); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, "NCT00000001")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("Get() = nil for archived trial")
	}
	if got.Title != "Pembrolizumab in Advanced Melanoma" {
		t.Errorf("title = %q", got.Title)
	}
	if len(got.Phases) != 1 || got.Phases[0] != "PHASE3" {
		t.Errorf("phases = %v", got.Phases)
	}
	if got.Note != "first pass" {
		t.Errorf("note = %q", got.Note)
	}
	if got.ArchivedAt.IsZero() {
		t.Error("archived_at not set")
	}

	missing, err := s.Get(ctx, "NCT99999999")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Errorf("Get() = %+v for unknown NCT ID", missing)
	}
}

func TestArchiveUpsert(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	trials := sampleSummaries()
	if err := s.Archive(ctx, trials, ""); err != nil {
		t.Fatal(err)
	}

	trials[0].Status = "COMPLETED"
	if err := s.Archive(ctx, trials[:1], "refreshed"); err != nil {
		t.Fatal(err)
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("Count() = %d after upsert, want 2", n)
	}

	got, err := s.Get(ctx, "NCT00000001")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != "COMPLETED" || got.Note != "refreshed" {
		t.Errorf("upserted record = status %q, note %q", got.Status, got.Note)
	}
}

func TestArchiveMissingNCTID(t *testing.T) {
	s := testStore(t)
	err := s.Archive(context.Background(), []types.StudySummary{{Title: "no id"}}, "")
	if err == nil {
		t.Error("Archive() accepted a summary without an NCT ID")
	}
}

func TestListSearch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	if err := s.Archive(ctx, sampleSummaries(), ""); err != nil {
		t.Fatal(err)
	}

	results, err := s.List(ctx, ListOptions{Query: "melanoma"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].NCTID != "NCT00000001" {
		t.Errorf("search results = %+v", results)
	}

	results, err = s.List(ctx, ListOptions{Status: "COMPLETED"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].NCTID != "NCT00000002" {
		t.Errorf("status filter results = %+v", results)
	}

	results, err = s.List(ctx, ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("unfiltered list = %d trials, want 2", len(results))
	}
}

func TestDelete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	if err := s.Archive(ctx, sampleSummaries(), ""); err != nil {
		t.Fatal(err)
	}

	removed, err := s.Delete(ctx, "NCT00000001")
	if err != nil {
		t.Fatal(err)
	}
	if !removed {
		t.Error("Delete() = false for archived trial")
	}

	removed, err = s.Delete(ctx, "NCT00000001")
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Error("Delete() = true for already-removed trial")
	}

	// FTS index stays consistent after delete.
	results, err := s.List(ctx, ListOptions{Query: "melanoma"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("search after delete = %+v", results)
	}
}

func TestPrune(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	if err := s.Archive(ctx, sampleSummaries()[:1], ""); err != nil {
		t.Fatal(err)
	}

	s.now = func() time.Time { return base.Add(40 * 24 * time.Hour) }
	if err := s.Archive(ctx, sampleSummaries()[1:], ""); err != nil {
		t.Fatal(err)
	}

	pruned, err := s.Prune(ctx, 30*24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if pruned != 1 {
		t.Errorf("Prune() = %d, want 1", pruned)
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Count() = %d after prune, want 1", n)
	}
}

func TestExportYAML(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	if err := s.Archive(ctx, sampleSummaries(), ""); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "export.yaml")
	if err := s.ExportYAML(ctx, ListOptions{}, path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var exported []ArchivedTrial
	if err := yaml.Unmarshal(data, &exported); err != nil {
		t.Fatal(err)
	}
	if len(exported) != 2 {
		t.Errorf("exported %d trials, want 2", len(exported))
	}
}
