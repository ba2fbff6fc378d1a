// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmarkovic/trialscope/internal/ctgov"
	"github.com/dmarkovic/trialscope/internal/essie"
	"github.com/dmarkovic/trialscope/internal/metrics"
	"github.com/dmarkovic/trialscope/internal/report"
	"github.com/dmarkovic/trialscope/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [question]",
	Short: "Search the registry with natural language or structured filters",
	Long: `Search translates a natural-language question ("recruiting phase 3 trials
for melanoma in Germany") or structured flags into an Essie expression and
queries the registry. Structured flags override anything inferred from the
question text. Queries already containing AREA[ or SEARCH[ operators pass
through untranslated.

Results are aggregated across pages up to --max-results, deduplicated by
NCT ID, and rendered as text, markdown, CSV, or JSON.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("condition", "", "disease or condition")
	searchCmd.Flags().String("intervention", "", "drug or intervention name")
	searchCmd.Flags().StringSlice("phase", nil, "trial phase (1-4, repeatable)")
	searchCmd.Flags().StringSlice("status", nil, "overall status (e.g. recruiting, completed)")
	searchCmd.Flags().String("study-type", "", "interventional, observational, or expanded access")
	searchCmd.Flags().String("sponsor", "", "lead sponsor name")
	searchCmd.Flags().String("city", "", "trial site city")
	searchCmd.Flags().String("state", "", "trial site state or province")
	searchCmd.Flags().String("country", "", "trial site country")
	searchCmd.Flags().String("started-after", "", "study start date lower bound (YYYY-MM-DD)")
	searchCmd.Flags().String("started-before", "", "study start date upper bound (YYYY-MM-DD)")
	searchCmd.Flags().String("sex", "", "eligibility sex: male, female, all")
	searchCmd.Flags().Bool("healthy", false, "trials accepting healthy volunteers")
	searchCmd.Flags().Bool("has-results", false, "trials with posted results")
	searchCmd.Flags().Int("max-results", 0, "maximum records to aggregate (default from config)")
	searchCmd.Flags().Int("page-size", 0, "records per page (default from config)")
	searchCmd.Flags().Bool("best-effort", false, "keep partial results when a later page fails")
	searchCmd.Flags().Bool("show-query", false, "print the translated Essie expression and exit")
	searchCmd.Flags().Bool("metrics", false, "annotate each trial with derived metrics")
	searchCmd.Flags().String("format", "text", "output format: text, markdown, csv, json")
	searchCmd.Flags().String("save", "", "write results to a YAML file")

	rootCmd.AddCommand(searchCmd)
}

func intentFromFlags(cmd *cobra.Command, args []string) essie.Intent {
	intent := essie.Intent{Text: strings.Join(args, " ")}
	intent.Condition, _ = cmd.Flags().GetString("condition")
	intent.Intervention, _ = cmd.Flags().GetString("intervention")
	intent.Phases, _ = cmd.Flags().GetStringSlice("phase")
	intent.Statuses, _ = cmd.Flags().GetStringSlice("status")
	intent.StudyType, _ = cmd.Flags().GetString("study-type")
	intent.Sponsor, _ = cmd.Flags().GetString("sponsor")
	intent.LocationCity, _ = cmd.Flags().GetString("city")
	intent.LocationState, _ = cmd.Flags().GetString("state")
	intent.LocationCountry, _ = cmd.Flags().GetString("country")
	intent.StartDateFrom, _ = cmd.Flags().GetString("started-after")
	intent.StartDateTo, _ = cmd.Flags().GetString("started-before")
	intent.Sex, _ = cmd.Flags().GetString("sex")
	intent.HealthyOnly, _ = cmd.Flags().GetBool("healthy")
	if cmd.Flags().Changed("has-results") {
		v, _ := cmd.Flags().GetBool("has-results")
		intent.HasResults = &v
	}
	return intent
}

func runSearch(cmd *cobra.Command, args []string) error {
	intent := intentFromFlags(cmd, args)

	query, err := essie.Translate(intent)
	if err != nil {
		return err
	}

	if show, _ := cmd.Flags().GetBool("show-query"); show {
		fmt.Println(query)
		return nil
	}

	client, _ := newRegistryClient(cmd)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	maxResults, _ := cmd.Flags().GetInt("max-results")
	pageSize, _ := cmd.Flags().GetInt("page-size")
	bestEffort, _ := cmd.Flags().GetBool("best-effort")

	agg, err := client.Aggregate(ctx, ctgov.SearchParams{Query: query}, ctgov.AggregateOptions{
		PageSize:   pageSize,
		MaxResults: maxResults,
		BestEffort: bestEffort,
	})
	if err != nil && agg == nil {
		return err
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	summaries := agg.Summaries()

	if save, _ := cmd.Flags().GetString("save"); save != "" {
		params := report.QueryParams{
			Text:       intent.Text,
			Essie:      query,
			Condition:  intent.Condition,
			Phases:     intent.Phases,
			Statuses:   intent.Statuses,
			MaxResults: maxResults,
		}
		if err := report.WriteResultFile(save, params, summaries, agg.TotalCount, agg.Truncated); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved %d results to %s\n", len(summaries), save)
	}

	format, _ := cmd.Flags().GetString("format")
	if err := renderTrials(summaries, format, "Search Results"); err != nil {
		return err
	}

	if withMetrics, _ := cmd.Flags().GetBool("metrics"); withMetrics && format == "text" {
		printMetrics(summaries)
	}

	fmt.Printf("\nFetched %d of %d matching trials", len(summaries), agg.TotalCount)
	if agg.Truncated {
		fmt.Print(" (truncated; raise --max-results for more)")
	}
	fmt.Println()

	return nil
}

// renderTrials writes the trial set to stdout in the requested format.
func renderTrials(trials []types.StudySummary, format, title string) error {
	switch format {
	case "text", "":
		if len(trials) == 0 {
			fmt.Println("No trials found.")
			return nil
		}
		for _, t := range trials {
			fmt.Println(report.Summary(t))
		}
	case "markdown":
		fmt.Println(report.Markdown(trials, title))
	case "csv":
		out, err := report.CSV(trials, nil)
		if err != nil {
			return err
		}
		fmt.Print(out)
	case "json":
		out, err := report.JSON(trials)
		if err != nil {
			return err
		}
		fmt.Println(out)
	default:
		return fmt.Errorf("unsupported format %q: use text, markdown, csv, or json", format)
	}
	return nil
}

// printMetrics appends a derived-metrics line per trial.
func printMetrics(summaries []types.StudySummary) {
	now := time.Now()
	fmt.Println("\nDerived metrics:")
	for _, s := range summaries {
		fmt.Println(metricLine(s, now))
	}
}

func metricLine(s types.StudySummary, now time.Time) string {
	m := metrics.Maturity(s, now)
	p := metrics.Pace(s, now)
	likelihood := metrics.Likelihood(s)

	var b strings.Builder
	fmt.Fprintf(&b, "%s: maturity %s", s.NCTID, m.Stage)
	if m.LowConfidence {
		b.WriteString(" (low confidence)")
	}
	if p.Known {
		fmt.Fprintf(&b, ", pace %s (%.0f%% of benchmark)", p.Label, p.Ratio*100)
	} else {
		fmt.Fprintf(&b, ", pace %s", p.Label)
	}
	fmt.Fprintf(&b, ", completion likelihood %.0f%%", likelihood*100)
	return b.String()
}
