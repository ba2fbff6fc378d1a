// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmarkovic/trialscope/internal/ctgov"
	"github.com/dmarkovic/trialscope/internal/essie"
	"github.com/dmarkovic/trialscope/internal/metrics"
	"github.com/dmarkovic/trialscope/internal/report"
	"github.com/dmarkovic/trialscope/pkg/types"
)

var similarCmd = &cobra.Command{
	Use:   "similar <nct-id>",
	Short: "Find trials similar to a reference trial",
	Long: `Similar fetches the reference trial, searches the registry for trials
sharing its conditions or interventions, and scores each candidate against
the reference across conditions, interventions, phase, and sponsor. Results
above --threshold are listed by descending similarity.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func init() {
	similarCmd.Flags().Float64("threshold", 0.3, "minimum similarity score (0-1)")
	similarCmd.Flags().Int("limit", 10, "maximum similar trials to list")
	similarCmd.Flags().Int("max-results", 100, "candidate records to aggregate before scoring")

	rootCmd.AddCommand(similarCmd)
}

// scoredTrial pairs a candidate with its similarity to the reference.
type scoredTrial struct {
	Summary types.StudySummary `json:"trial" yaml:"trial"`
	Score   float64            `json:"similarity" yaml:"similarity"`
}

func runSimilar(cmd *cobra.Command, args []string) error {
	nctID := args[0]
	client, _ := newRegistryClient(cmd)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	reference, err := client.GetStudy(ctx, nctID, nil)
	if err != nil {
		return fmt.Errorf("fetching reference trial %s: %w", nctID, err)
	}
	ref := reference.Summarize()

	if len(ref.Conditions) == 0 && len(ref.Interventions) == 0 {
		return fmt.Errorf("reference trial %s lists no conditions or interventions to match on", nctID)
	}

	query, err := similarityQuery(ref)
	if err != nil {
		return err
	}

	maxResults, _ := cmd.Flags().GetInt("max-results")
	agg, err := client.Aggregate(ctx, ctgov.SearchParams{Query: query}, ctgov.AggregateOptions{
		MaxResults: maxResults,
	})
	if err != nil {
		return err
	}

	threshold, _ := cmd.Flags().GetFloat64("threshold")
	limit, _ := cmd.Flags().GetInt("limit")

	var scored []scoredTrial
	for _, candidate := range agg.Summaries() {
		if candidate.NCTID == ref.NCTID {
			continue
		}
		score := metrics.Similarity(ref, candidate)
		if score >= threshold {
			scored = append(scored, scoredTrial{Summary: candidate, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Summary.NCTID < scored[j].Summary.NCTID
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	fmt.Printf("Reference: %s: %s\n\n", ref.NCTID, ref.Title)
	if len(scored) == 0 {
		fmt.Println("No similar trials above the threshold.")
		return nil
	}
	for _, st := range scored {
		fmt.Printf("%.2f  %s\n", st.Score, report.Summary(st.Summary))
	}
	fmt.Printf("\n%d similar trials\n", len(scored))

	return nil
}

// similarCap bounds how many values each field contributes to the
// candidate query.
const similarCap = 3

// similarityQuery ORs the reference trial's conditions, interventions,
// and phases so any shared attribute admits a candidate. ANDing the
// fields would starve the pool.
func similarityQuery(ref types.StudySummary) (string, error) {
	var groups []string
	if clause := essie.OrClause("Condition", capValues(ref.Conditions)); clause != "" {
		groups = append(groups, clause)
	}
	if clause := essie.OrClause("InterventionName", capValues(ref.Interventions)); clause != "" {
		groups = append(groups, clause)
	}
	if clause := essie.OrClause("Phase", ref.Phases); clause != "" {
		groups = append(groups, clause)
	}
	if len(groups) == 0 {
		return "", fmt.Errorf("reference trial %s lists no conditions or interventions to match on", ref.NCTID)
	}
	return strings.Join(groups, " OR "), nil
}

func capValues(values []string) []string {
	if len(values) > similarCap {
		return values[:similarCap]
	}
	return values
}
