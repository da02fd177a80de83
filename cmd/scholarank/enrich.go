package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/scholarank/internal/citation"
	"github.com/matsen/scholarank/internal/dedupe"
	"github.com/matsen/scholarank/internal/venue"
)

var enrichNoFetch bool

func init() {
	enrichCmd.Flags().BoolVar(&enrichNoFetch, "no-fetch", false, "Cache-only: report what is already cached")
	rootCmd.AddCommand(enrichCmd)
}

var enrichCmd = &cobra.Command{
	Use:   "enrich <file.bib>",
	Short: "Fetch DBLP metadata for the venues in a bibliography",
	Long: `Resolve the distinct venue set of a bibliography and fetch each
venue's canonical title and ISSN list from DBLP, populating the local
metadata cache. Venues without a DBLP abbreviation are skipped.

Examples:
  scholarank enrich scholar.bib
  scholarank enrich --no-fetch scholar.bib   # inspect cache coverage`,
	Args: cobra.ExactArgs(1),
	RunE: runEnrich,
}

type enrichResult struct {
	Venues   []venue.Venue               `json:"venues"`
	Enriched map[string]venue.Enrichment `json:"enriched"`
	Warnings []string                    `json:"warnings,omitempty"`
}

func runEnrich(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	data, err := os.ReadFile(args[0])
	if err != nil {
		exitWithError(ExitDataError, "reading bibliography: %v", err)
	}
	records, _ := citation.Parse(data)
	if len(records) == 0 {
		exitWithError(ExitDataError, "no entries parsed from %s", args[0])
	}

	venues := venue.Resolve(dedupe.Dedupe(records).Papers)
	enrichment, warnings := enrichVenues(cmd.Context(), cfg, venues, enrichNoFetch)

	if humanOutput {
		for _, w := range warnings {
			warn("%s", w)
		}
		fmt.Printf("%d venues, %d enriched\n", len(venues), len(enrichment))
		for _, v := range venues {
			e, ok := enrichment[v.Key]
			if !ok {
				continue
			}
			fmt.Printf("  %-12s %s %v\n", v.Abbrev, e.FullName, e.ISSNs)
		}
		return nil
	}

	return outputJSON(enrichResult{Venues: venues, Enriched: enrichment, Warnings: warnings})
}
