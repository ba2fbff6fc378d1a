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
	"github.com/dmarkovic/trialscope/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats [question]",
	Short: "Registry statistics and trial-set rollups",
	Long: `Stats reports registry-wide statistics (--overall, --field) or, given a
search question, aggregates the matching trials and rolls them up client
side: geographic site distribution, enrollment patterns, and the disease
landscape across conditions.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().Bool("overall", false, "print registry-wide study counts and sizes")
	statsCmd.Flags().String("field", "", "print value statistics for a registry field")
	statsCmd.Flags().String("field-sizes", "", "print size statistics for a registry field (JSON)")
	statsCmd.Flags().String("condition", "", "disease or condition for the rollup query")
	statsCmd.Flags().Int("max-results", 500, "records to aggregate for rollups")
	statsCmd.Flags().Int("top", 10, "entries per rollup table")

	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	client, _ := newRegistryClient(cmd)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if overall, _ := cmd.Flags().GetBool("overall"); overall {
		return printOverallStats(ctx, client)
	}
	if field, _ := cmd.Flags().GetString("field"); field != "" {
		return printFieldStats(ctx, client, field)
	}
	if field, _ := cmd.Flags().GetString("field-sizes"); field != "" {
		doc, err := client.FieldSizes(ctx, field)
		if err != nil {
			return err
		}
		fmt.Println(string(doc))
		return nil
	}

	intent := essie.Intent{Text: strings.Join(args, " ")}
	intent.Condition, _ = cmd.Flags().GetString("condition")
	query, err := essie.Translate(intent)
	if err != nil {
		return fmt.Errorf("provide a search question, --condition, --overall, or --field: %w", err)
	}

	maxResults, _ := cmd.Flags().GetInt("max-results")
	agg, err := client.Aggregate(ctx, ctgov.SearchParams{Query: query}, ctgov.AggregateOptions{
		MaxResults: maxResults,
	})
	if err != nil {
		return err
	}

	top, _ := cmd.Flags().GetInt("top")
	printRollups(agg, top)
	return nil
}

func printOverallStats(ctx context.Context, client *ctgov.Client) error {
	size, err := client.OverallStats(ctx)
	if err != nil {
		return err
	}
	version, err := client.Version(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Registry: %d studies (API %s, data %s)\n",
		size.TotalStudies, version.APIVersion, version.DataTimestamp)
	fmt.Printf("- Average record size: %d bytes\n", size.AverageSizeBytes)
	for _, s := range size.LargestStudies {
		fmt.Printf("- Largest: %s (%d bytes)\n", s.ID, s.SizeBytes)
	}
	return nil
}

func printFieldStats(ctx context.Context, client *ctgov.Client, field string) error {
	fs, err := client.FieldValues(ctx, field)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d unique values\n", fs.Field, fs.UniqueValues)
	for _, v := range fs.TopValues {
		fmt.Printf("    %-40s %d\n", v.Value, v.StudiesCount)
	}
	return nil
}

func printRollups(agg *ctgov.Aggregate, top int) {
	fmt.Printf("Analyzed %d of %d matching trials\n", len(agg.Studies), agg.TotalCount)

	geo := stats.GeographicDistribution(agg.Studies, top)
	if len(geo.ByCountry) > 0 {
		fmt.Println("\nSites by country:")
		for _, e := range geo.ByCountry {
			fmt.Printf("    %-30s %d\n", e.Label, e.Count)
		}
	}
	if len(geo.ByState) > 0 {
		fmt.Println("\nSites by state:")
		for _, e := range geo.ByState {
			fmt.Printf("    %-30s %d\n", e.Label, e.Count)
		}
	}

	if enroll, ok := stats.EnrollmentPatterns(agg.Studies); ok {
		fmt.Printf("\nEnrollment (%d trials with targets): total %d, mean %.0f, median %d\n",
			enroll.TotalTrials, enroll.TotalEnrollment, enroll.Mean, enroll.Median)
		fmt.Printf("    min %d, p25 %d, p75 %d, max %d\n",
			enroll.Min, enroll.P25, enroll.P75, enroll.Max)
		for _, phase := range sortedPhaseKeys(enroll.ByPhase) {
			pe := enroll.ByPhase[phase]
			fmt.Printf("    %-14s %d trials, mean %.0f\n", phase, pe.Count, pe.Mean)
		}
	}

	landscape, found := stats.DiseaseLandscape(agg.Studies, top)
	if len(landscape) > 0 {
		fmt.Printf("\nDisease landscape (%d distinct conditions):\n", found)
		for _, c := range landscape {
			fmt.Printf("    %-40s %d trials, %d enrollment\n", c.Condition, c.TrialCount, c.TotalEnrollment)
		}
	}
}

func sortedPhaseKeys(m map[string]stats.PhaseEnrollment) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
