// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmarkovic/trialscope/internal/report"
	"github.com/dmarkovic/trialscope/internal/store"
	"github.com/dmarkovic/trialscope/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export <nct-id>...",
	Short: "Export trials to CSV, markdown, or JSON, optionally archiving them",
	Long: `Export fetches trials by NCT identifier and writes them in the requested
format to stdout or --out. With --archive the summaries are also upserted
into the local SQLite archive for later offline listing and search.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("format", "csv", "output format: csv, markdown, json")
	exportCmd.Flags().String("out", "", "write to file instead of stdout")
	exportCmd.Flags().StringSlice("fields", nil, "CSV columns (default nct_id,title,status,phase,sponsor,enrollment,conditions)")
	exportCmd.Flags().Bool("archive", false, "also store the trials in the local archive")
	exportCmd.Flags().String("note", "", "note attached to archived trials")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	client, cfg := newRegistryClient(cmd)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	summaries := make([]types.StudySummary, 0, len(args))
	for _, nctID := range args {
		study, err := client.GetStudy(ctx, nctID, nil)
		if err != nil {
			return fmt.Errorf("fetching %s: %w", nctID, err)
		}
		summaries = append(summaries, study.Summarize())
	}

	format, _ := cmd.Flags().GetString("format")
	fields, _ := cmd.Flags().GetStringSlice("fields")

	var out string
	var err error
	switch format {
	case "csv":
		out, err = report.CSV(summaries, fields)
	case "markdown":
		out = report.Markdown(summaries, "Exported Trials")
	case "json":
		out, err = report.JSON(summaries)
	default:
		return fmt.Errorf("unsupported format %q: use csv, markdown, or json", format)
	}
	if err != nil {
		return err
	}

	if outPath, _ := cmd.Flags().GetString("out"); outPath != "" {
		if err := os.WriteFile(outPath, []byte(out), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
		fmt.Fprintf(os.Stderr, "Exported %d trials to %s\n", len(summaries), outPath)
	} else {
		fmt.Print(out)
	}

	if doArchive, _ := cmd.Flags().GetBool("archive"); doArchive {
		note, _ := cmd.Flags().GetString("note")
		s, err := store.NewStore(cfg.Archive)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Archive(ctx, summaries, note); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Archived %d trials\n", len(summaries))
	}

	return nil
}
