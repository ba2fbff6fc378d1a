// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmarkovic/trialscope/internal/report"
	"github.com/dmarkovic/trialscope/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the local trial archive",
	Long: `Store manages the local SQLite archive of exported trials. Use
subcommands to list or search archived trials, show one record, remove
entries, prune old ones, or export the archive to a file.`,
}

var storeListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List or search archived trials",
	RunE:  runStoreList,
}

var storeShowCmd = &cobra.Command{
	Use:   "show <nct-id>",
	Short: "Show one archived trial",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreShow,
}

var storeRemoveCmd = &cobra.Command{
	Use:   "remove <nct-id>",
	Short: "Remove one archived trial",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreRemove,
}

var storePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove archived trials older than --older-than",
	RunE:  runStorePrune,
}

var storeExportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Export the archive to a YAML or JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreExport,
}

func init() {
	storeListCmd.Flags().String("status", "", "filter by overall status")
	storeListCmd.Flags().String("sponsor", "", "filter by lead sponsor")
	storeListCmd.Flags().Int("limit", 0, "maximum results (default from config)")

	storePruneCmd.Flags().Duration("older-than", 90*24*time.Hour, "age cutoff for pruning")

	storeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	storeCmd.AddCommand(storeListCmd, storeShowCmd, storeRemoveCmd, storePruneCmd, storeExportCmd)
	rootCmd.AddCommand(storeCmd)
}

func openArchive() (*store.Store, error) {
	cfg := loadConfig()
	return store.NewStore(cfg.Archive)
}

func runStoreList(cmd *cobra.Command, args []string) error {
	s, err := openArchive()
	if err != nil {
		return err
	}
	defer s.Close()

	opts := store.ListOptions{}
	if len(args) > 0 {
		opts.Query = args[0]
	}
	opts.Status, _ = cmd.Flags().GetString("status")
	opts.Sponsor, _ = cmd.Flags().GetString("sponsor")
	opts.MaxResults, _ = cmd.Flags().GetInt("limit")

	trials, err := s.List(context.Background(), opts)
	if err != nil {
		return err
	}
	if len(trials) == 0 {
		fmt.Println("Archive is empty or nothing matched.")
		return nil
	}

	for _, t := range trials {
		fmt.Printf("%s  %-12s  %s\n", t.ArchivedAt.Format("2006-01-02"), t.Status, t.NCTID+"  "+report.Truncate(t.Title, 60))
	}
	fmt.Printf("\n%d archived trials\n", len(trials))
	return nil
}

func runStoreShow(cmd *cobra.Command, args []string) error {
	s, err := openArchive()
	if err != nil {
		return err
	}
	defer s.Close()

	t, err := s.Get(context.Background(), args[0])
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("trial %s is not archived", args[0])
	}

	fmt.Println(report.Summary(t.StudySummary))
	fmt.Printf("- Archived: %s\n", t.ArchivedAt.Format(time.RFC3339))
	if t.Note != "" {
		fmt.Printf("- Note: %s\n", t.Note)
	}
	return nil
}

func runStoreRemove(cmd *cobra.Command, args []string) error {
	s, err := openArchive()
	if err != nil {
		return err
	}
	defer s.Close()

	removed, err := s.Delete(context.Background(), args[0])
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("trial %s is not archived", args[0])
	}
	fmt.Printf("Removed %s\n", args[0])
	return nil
}

func runStorePrune(cmd *cobra.Command, args []string) error {
	s, err := openArchive()
	if err != nil {
		return err
	}
	defer s.Close()

	olderThan, _ := cmd.Flags().GetDuration("older-than")
	pruned, err := s.Prune(context.Background(), olderThan)
	if err != nil {
		return err
	}
	fmt.Printf("Pruned %d archived trials\n", pruned)
	return nil
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	s, err := openArchive()
	if err != nil {
		return err
	}
	defer s.Close()

	path := args[0]
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "yaml", "":
		err = s.ExportYAML(context.Background(), store.ListOptions{}, path)
	case "json":
		err = s.ExportJSON(context.Background(), store.ListOptions{}, path)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Exported archive to %s\n", path)
	return nil
}
