// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmarkovic/trialscope/internal/match"
	"github.com/dmarkovic/trialscope/internal/report"
	"github.com/dmarkovic/trialscope/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <nct-id>...",
	Short: "Fetch trials by NCT ID and report details with derived metrics",
	Long: `Analyze fetches full study records by NCT identifier and reports design,
eligibility criteria (split into inclusion and exclusion lists), outcomes,
and derived metrics: maturity stage, enrollment pace, and completion
likelihood.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().Bool("criteria", false, "print parsed inclusion/exclusion criteria")
	analyzeCmd.Flags().Bool("outcomes", false, "print outcome measures")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	client, _ := newRegistryClient(cmd)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	showCriteria, _ := cmd.Flags().GetBool("criteria")
	showOutcomes, _ := cmd.Flags().GetBool("outcomes")
	now := time.Now()

	for i, nctID := range args {
		if i > 0 {
			fmt.Println()
		}

		study, err := client.GetStudy(ctx, nctID, nil)
		if err != nil {
			return fmt.Errorf("fetching %s: %w", nctID, err)
		}

		summary := study.Summarize()
		fmt.Println(report.Summary(summary))
		fmt.Println(metricLine(summary, now))

		elig := study.ProtocolSection.Eligibility
		fmt.Printf("- Eligibility: sex %s, age %s to %s", orAny(elig.Sex), orNone(elig.MinimumAge), orNone(elig.MaximumAge))
		if elig.HealthyVolunteers {
			fmt.Print(", accepts healthy volunteers")
		}
		fmt.Println()

		if showCriteria {
			printCriteria(match.ParseCriteria(elig.Criteria))
		}
		if showOutcomes {
			printOutcomes(study.ProtocolSection.Outcomes)
		}
	}

	return nil
}

func printCriteria(c match.Criteria) {
	if len(c.Inclusion) > 0 {
		fmt.Println("- Inclusion criteria:")
		for _, line := range c.Inclusion {
			fmt.Printf("    - %s\n", line)
		}
	}
	if len(c.Exclusion) > 0 {
		fmt.Println("- Exclusion criteria:")
		for _, line := range c.Exclusion {
			fmt.Printf("    - %s\n", line)
		}
	}
}

func printOutcomes(o types.OutcomesModule) {
	printOutcomeList("Primary outcomes", o.Primary)
	printOutcomeList("Secondary outcomes", o.Secondary)
}

func printOutcomeList(label string, outcomes []types.Outcome) {
	if len(outcomes) == 0 {
		return
	}
	fmt.Printf("- %s:\n", label)
	for _, out := range outcomes {
		line := out.Measure
		if out.TimeFrame != "" {
			line += " [" + out.TimeFrame + "]"
		}
		fmt.Printf("    - %s\n", line)
	}
}

func orAny(s string) string {
	if s == "" {
		return "ALL"
	}
	return s
}

func orNone(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
