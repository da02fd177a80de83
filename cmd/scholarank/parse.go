package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/scholarank/internal/citation"
	"github.com/matsen/scholarank/internal/dedupe"
)

var parseDedupe bool

func init() {
	parseCmd.Flags().BoolVar(&parseDedupe, "dedupe", false, "Deduplicate records into canonical papers")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse <file.bib>",
	Short: "Parse a BibTeX file into uniform citation records",
	Long: `Parse a BibTeX file and print the records it contains.

With --dedupe, records describing the same work (preprint plus venue
version) are merged into one canonical paper each, with provenance.

Examples:
  scholarank parse scholar.bib
  scholarank parse --dedupe scholar.bib --human`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

type parseResult struct {
	Records  []citation.Record `json:"records,omitempty"`
	Papers   []dedupe.Paper    `json:"papers,omitempty"`
	Invalid  []dedupe.Invalid  `json:"invalid,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
}

func runParse(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		exitWithError(ExitDataError, "reading bibliography: %v", err)
	}

	records, diags := citation.Parse(data)
	if len(records) == 0 {
		exitWithError(ExitDataError, "no entries parsed from %s", args[0])
	}

	var warnings []string
	for _, d := range diags {
		warnings = append(warnings, d.Error())
	}

	res := parseResult{Warnings: warnings}
	if parseDedupe {
		out := dedupe.Dedupe(records)
		res.Papers = out.Papers
		res.Invalid = out.Invalid
	} else {
		res.Records = records
	}

	if humanOutput {
		for _, w := range warnings {
			warn("%s", w)
		}
		if parseDedupe {
			fmt.Printf("%d records -> %d canonical papers (%d invalid)\n",
				len(records), len(res.Papers), len(res.Invalid))
			for _, p := range res.Papers {
				fmt.Printf("  [%d] %s (%d) %s\n", p.GroupSize, p.Title, p.Year, p.VenueRaw)
			}
		} else {
			fmt.Printf("%d records\n", len(records))
			for _, r := range records {
				fmt.Printf("  %s (%d) %s [%s/%s]\n", r.Title, r.Year, r.VenueRaw, r.VenueType, r.EntryKind)
			}
		}
		return nil
	}

	return outputJSON(res)
}
