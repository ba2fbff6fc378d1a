// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Inspect the registry schema: fields, search areas, enums, version",
	Long: `Metadata prints the registry's data model documents: the study field
tree (default), searchable areas (--search-areas), enumerated value types
(--enums), or the API version (--version-info). Documents are emitted as
JSON, straight from the registry.`,
	RunE: runMetadata,
}

func init() {
	metadataCmd.Flags().Bool("search-areas", false, "print searchable areas")
	metadataCmd.Flags().Bool("enums", false, "print enumerated value types")
	metadataCmd.Flags().Bool("version-info", false, "print API version and data timestamp")

	rootCmd.AddCommand(metadataCmd)
}

func runMetadata(cmd *cobra.Command, args []string) error {
	client, _ := newRegistryClient(cmd)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if v, _ := cmd.Flags().GetBool("version-info"); v {
		info, err := client.Version(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("API version %s, data updated %s\n", info.APIVersion, info.DataTimestamp)
		return nil
	}

	var doc json.RawMessage
	var err error
	switch {
	case flagSet(cmd, "search-areas"):
		doc, err = client.SearchAreas(ctx)
	case flagSet(cmd, "enums"):
		doc, err = client.Enums(ctx)
	default:
		doc, err = client.Metadata(ctx)
	}
	if err != nil {
		return err
	}

	var pretty any
	if err := json.Unmarshal(doc, &pretty); err != nil {
		return fmt.Errorf("parsing metadata document: %w", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(pretty)
}

func flagSet(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Flags().GetBool(name)
	return v
}
