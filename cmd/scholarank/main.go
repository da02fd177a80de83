// Package main provides the scholarank CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// configPath overrides the default config file location
var configPath string

func main() {
	// A .env in the working directory can carry SCHOLARANK_* settings;
	// absence is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "scholarank",
	Short: "Bibliography deduplication and venue-rank resolution",
	Long: `scholarank resolves a scholar's raw bibliography into a ranked,
deduplicated, statistically summarized publication record.

Pipeline:
  - Parse BibTeX citations into uniform records
  - Deduplicate preprint/published pairs into canonical papers
  - Resolve the distinct venue set and enrich it from DBLP (cached)
  - Match each venue against CCF and CAS rank tables
  - Aggregate per-tier, per-zone, and union statistics

All commands output JSON by default for scripting.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.config/scholarank/config.yml)")
	rootCmd.Version = Version
}
