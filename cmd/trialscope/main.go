// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the trialscope CLI.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dmarkovic/trialscope/internal/ctgov"
	"github.com/dmarkovic/trialscope/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the trialscope CLI.
var rootCmd = &cobra.Command{
	Use:   "trialscope",
	Short: "Semantic query and analysis layer over the ClinicalTrials.gov registry",
	Long: `trialscope queries the ClinicalTrials.gov v2 registry with natural-language
or structured search terms, translated into Essie expressions. Results are
aggregated across pages, enriched with derived metrics (maturity, enrollment
pace, completion likelihood), and can be matched against patient profiles,
rolled up per sponsor, exported, or archived locally.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./trialscope.yaml or ~/.config/trialscope/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "log request progress to stderr")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("trialscope")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "trialscope"))
		}
	}

	viper.SetEnvPrefix("TRIALSCOPE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the runtime configuration from the config file,
// environment, and defaults.
func loadConfig() types.Config {
	var cfg types.Config

	cfg.Search.Timeout = viper.GetDuration("search.timeout")
	cfg.Search.UserAgent = viper.GetString("search.user_agent")
	cfg.Search.MaxRetries = viper.GetInt("search.max_retries")
	cfg.Search.PageSize = viper.GetInt("search.page_size")
	cfg.Search.MaxResults = viper.GetInt("search.max_results")
	cfg.Search.ApplyDefaults()

	cfg.Cache.MetadataTTL = viper.GetDuration("cache.metadata_ttl")
	cfg.Cache.StatisticsTTL = viper.GetDuration("cache.statistics_ttl")
	cfg.Cache.StudyTTL = viper.GetDuration("cache.study_ttl")
	cfg.Cache.SearchTTL = viper.GetDuration("cache.search_ttl")
	cfg.Cache.ApplyDefaults()

	cfg.Archive.ArchiveDir = viper.GetString("archive.archive_dir")
	cfg.Archive.MaxResults = viper.GetInt("archive.max_results")

	return cfg
}

// newRegistryClient builds a registry client from configuration. The
// progress writer is stderr when --verbose is set, discarded otherwise.
func newRegistryClient(cmd *cobra.Command) (*ctgov.Client, types.Config) {
	cfg := loadConfig()

	var progress io.Writer
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		progress = os.Stderr
	}

	cache := ctgov.NewCache(cfg.Cache)
	return ctgov.NewClient(cfg.Search, cache, progress), cfg
}

// commandTimeout bounds a single CLI invocation end to end.
const commandTimeout = 5 * time.Minute

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
