// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmarkovic/trialscope/internal/ctgov"
	"github.com/dmarkovic/trialscope/internal/match"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match a patient profile against recruiting trials",
	Long: `Match searches recruiting trials for the patient's primary condition,
scores each against the profile (age, sex, excluded interventions), and
reports eligibility: LIKELY_ELIGIBLE, POSSIBLY_ELIGIBLE, UNCLEAR, or
LIKELY_INELIGIBLE, with an explanation and suggested next steps.

Strictness controls filtering: strict keeps only likely-eligible trials,
balanced (default) drops likely-ineligible ones, lenient keeps everything.`,
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().String("condition", "", "primary condition (required)")
	matchCmd.Flags().Int("age", 0, "patient age in years")
	matchCmd.Flags().String("sex", "", "patient sex: male or female")
	matchCmd.Flags().StringSlice("secondary", nil, "secondary conditions")
	matchCmd.Flags().String("city", "", "preferred trial site city")
	matchCmd.Flags().String("state", "", "preferred trial site state")
	matchCmd.Flags().String("country", "", "preferred trial site country")
	matchCmd.Flags().StringSlice("exclude", nil, "interventions the patient cannot take")
	matchCmd.Flags().StringSlice("phase", nil, "preferred trial phases")
	matchCmd.Flags().String("strictness", "balanced", "filtering: strict, balanced, lenient")
	matchCmd.Flags().Int("max-results", 50, "candidate records to aggregate before scoring")
	matchCmd.Flags().Bool("all-statuses", false, "include non-recruiting trials")
	matchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	condition, _ := cmd.Flags().GetString("condition")
	if condition == "" {
		return fmt.Errorf("--condition is required")
	}

	profile := match.Profile{PrimaryCondition: condition}
	profile.Age, _ = cmd.Flags().GetInt("age")
	profile.Sex, _ = cmd.Flags().GetString("sex")
	profile.SecondaryConditions, _ = cmd.Flags().GetStringSlice("secondary")
	profile.LocationCity, _ = cmd.Flags().GetString("city")
	profile.LocationState, _ = cmd.Flags().GetString("state")
	profile.LocationCountry, _ = cmd.Flags().GetString("country")
	profile.ExcludedInterventions, _ = cmd.Flags().GetStringSlice("exclude")
	profile.PreferredPhases, _ = cmd.Flags().GetStringSlice("phase")

	allStatuses, _ := cmd.Flags().GetBool("all-statuses")
	profile.RecruitingOnly = !allStatuses

	strictnessFlag, _ := cmd.Flags().GetString("strictness")
	strictness := match.ParseStrictness(strictnessFlag)

	client, _ := newRegistryClient(cmd)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	maxResults, _ := cmd.Flags().GetInt("max-results")
	agg, err := client.Aggregate(ctx, match.SearchParams(profile), ctgov.AggregateOptions{
		MaxResults: maxResults,
	})
	if err != nil {
		return err
	}

	results := match.Evaluate(profile, agg.Studies, strictness)
	alternatives := match.AlternativeConditions(profile, len(results))

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Matches      []match.Result `json:"matches"`
			Alternatives []string       `json:"alternative_conditions,omitempty"`
		}{Matches: results, Alternatives: alternatives})
	}

	if len(results) == 0 {
		fmt.Println("No matching trials found.")
		printAlternatives(alternatives)
		return nil
	}

	for i, r := range results {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("%s: %s\n", r.Summary.NCTID, r.Summary.Title)
		fmt.Printf("- Match: %.0f/100 (%s)\n", r.Score, r.Status)
		fmt.Printf("- %s\n", r.Explanation)
		for _, issue := range r.Issues {
			fmt.Printf("- Issue: %s\n", issue)
		}
		for _, step := range r.NextSteps {
			fmt.Printf("- Next: %s\n", step)
		}
	}
	fmt.Printf("\n%d trials evaluated against the profile\n", len(results))
	printAlternatives(alternatives)

	return nil
}

func printAlternatives(conditions []string) {
	if len(conditions) == 0 {
		return
	}
	fmt.Printf("Few matches found. Consider searching for trials related to: %s\n",
		strings.Join(conditions, ", "))
}
