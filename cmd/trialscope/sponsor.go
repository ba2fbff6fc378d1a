// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dmarkovic/trialscope/internal/ctgov"
	"github.com/dmarkovic/trialscope/internal/sponsor"
)

var sponsorCmd = &cobra.Command{
	Use:   "sponsor <name>",
	Short: "Analyze a sponsor's trial portfolio",
	Long: `Sponsor aggregates a sponsor's registered trials and rolls them into a
portfolio view: phase and status distribution, therapeutic areas,
collaborators, and overall pipeline shape (early-heavy, late-heavy, or
balanced).`,
	Args: cobra.ExactArgs(1),
	RunE: runSponsor,
}

func init() {
	sponsorCmd.Flags().Int("max-results", 200, "records to aggregate for the analysis")
	sponsorCmd.Flags().Bool("json", false, "output the portfolio as JSON")

	rootCmd.AddCommand(sponsorCmd)
}

func runSponsor(cmd *cobra.Command, args []string) error {
	name := args[0]
	client, _ := newRegistryClient(cmd)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	maxResults, _ := cmd.Flags().GetInt("max-results")
	agg, err := client.Aggregate(ctx, ctgov.SearchParams{Sponsor: name}, ctgov.AggregateOptions{
		MaxResults: maxResults,
	})
	if err != nil {
		return err
	}
	if len(agg.Studies) == 0 {
		return fmt.Errorf("no trials found for sponsor %q", name)
	}

	portfolio := sponsor.Analyze(name, agg.Studies)

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(portfolio)
	}

	printPortfolio(portfolio, agg.TotalCount)
	return nil
}

func printPortfolio(p sponsor.Portfolio, totalCount int) {
	fmt.Printf("%s (%s)\n", p.Name, p.Class)
	fmt.Printf("- Trials analyzed: %d (of %d registered)\n", p.TrialCount, totalCount)
	fmt.Printf("- Total enrollment target: %d\n", p.TotalEnrollment)
	fmt.Printf("- Active: %d, completed: %d\n", p.ActiveTrials, p.CompletedTrials)
	fmt.Printf("- Pipeline: %s\n", p.PipelineShape)

	fmt.Println("- By phase:")
	for _, label := range sortedKeys(p.ByPhase) {
		fmt.Printf("    %-14s %d\n", label, p.ByPhase[label])
	}
	fmt.Println("- By status:")
	for _, label := range sortedKeys(p.ByStatus) {
		fmt.Printf("    %-24s %d\n", label, p.ByStatus[label])
	}

	if len(p.TherapeuticAreas) > 0 {
		fmt.Println("- Therapeutic areas:")
		for _, a := range p.TherapeuticAreas {
			fmt.Printf("    %s: %d trials, %d enrollment\n", a.Condition, a.TrialCount, a.TotalEnrollment)
		}
	}
	if len(p.Collaborators) > 0 {
		fmt.Println("- Collaborators:")
		for _, c := range p.Collaborators {
			fmt.Printf("    %s: %d trials\n", c.Name, c.TrialCount)
		}
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
