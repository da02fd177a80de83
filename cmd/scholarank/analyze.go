package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matsen/scholarank/internal/citation"
	"github.com/matsen/scholarank/internal/config"
	"github.com/matsen/scholarank/internal/dblp"
	"github.com/matsen/scholarank/internal/dedupe"
	"github.com/matsen/scholarank/internal/match"
	"github.com/matsen/scholarank/internal/ranktab"
	"github.com/matsen/scholarank/internal/report"
	"github.com/matsen/scholarank/internal/stats"
	"github.com/matsen/scholarank/internal/storage"
	"github.com/matsen/scholarank/internal/venue"
)

var (
	analyzeBib     string
	analyzeCCF     string
	analyzeCAS     string
	analyzeNoFetch bool
	analyzeOutDir  string
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeBib, "bib", "", "BibTeX file to analyze (required)")
	analyzeCmd.Flags().StringVar(&analyzeCCF, "ccf", "", "CCF rank table CSV (overrides config)")
	analyzeCmd.Flags().StringVar(&analyzeCAS, "cas", "", "CAS rank table CSV (overrides config)")
	analyzeCmd.Flags().BoolVar(&analyzeNoFetch, "no-fetch", false, "Skip DBLP metadata fetching (cache-only enrichment)")
	analyzeCmd.Flags().StringVar(&analyzeOutDir, "out-dir", "", "Directory for papers.jsonl, papers.csv, summary.json")
	analyzeCmd.MarkFlagRequired("bib")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full analysis pipeline over a BibTeX file",
	Long: `Parse, deduplicate, enrich, rank-match, and summarize a bibliography.

Examples:
  scholarank analyze --bib scholar.bib --ccf ccf.csv --cas cas.csv --human
  scholarank analyze --bib scholar.bib --no-fetch --out-dir results/`,
	RunE: runAnalyze,
}

// analyzeResult is the JSON shape of a full analysis run.
type analyzeResult struct {
	Summary  stats.Summary                 `json:"summary"`
	Papers   []match.RankedPaper           `json:"papers"`
	Venues   map[string]match.VenueRanking `json:"venues"`
	Invalid  []dedupe.Invalid              `json:"invalid,omitempty"`
	Warnings []string                      `json:"warnings,omitempty"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	ccfPath, casPath := analyzeCCF, analyzeCAS
	if ccfPath == "" {
		ccfPath = cfg.CCFTable
	}
	if casPath == "" {
		casPath = cfg.CASTable
	}
	if ccfPath == "" || casPath == "" {
		exitWithError(ExitConfigError, "both rank tables are required (--ccf/--cas flags or config)")
	}

	// The loading boundary fails fast: an empty or missing table would
	// make a zero-match run look legitimate.
	ccf, err := ranktab.LoadCCF(ccfPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading CCF table: %v", err)
	}
	cas, err := ranktab.LoadCAS(casPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading CAS table: %v", err)
	}

	var warnings []string
	for _, c := range ccf.Conflicts() {
		warnings = append(warnings, fmt.Sprintf("ccf table: duplicate %s %q, kept %q", c.Kind, c.Identifier, c.Kept))
	}
	for _, c := range cas.Conflicts() {
		warnings = append(warnings, fmt.Sprintf("cas table: duplicate %s %q, kept %q", c.Kind, c.Identifier, c.Kept))
	}

	data, err := os.ReadFile(analyzeBib)
	if err != nil {
		exitWithError(ExitDataError, "reading bibliography: %v", err)
	}
	records, diags := citation.Parse(data)
	if len(records) == 0 {
		exitWithError(ExitDataError, "no entries parsed from %s", analyzeBib)
	}
	for _, d := range diags {
		warnings = append(warnings, d.Error())
	}

	deduped := dedupe.Dedupe(records)
	venues := venue.Resolve(deduped.Papers)

	enrichment, enrichWarnings := enrichVenues(cmd.Context(), cfg, venues, analyzeNoFetch)
	warnings = append(warnings, enrichWarnings...)
	venues = venue.ApplyEnrichment(venues, enrichment)

	matcher := &match.Matcher{CCF: ccf, CAS: cas, MinContainment: cfg.MinContainment}
	rankings := matcher.MatchAll(venues)
	papers := match.Annotate(deduped.Papers, rankings)
	summary := stats.Compute(papers)

	if analyzeOutDir != "" {
		if err := writeOutputs(analyzeOutDir, papers, summary); err != nil {
			exitWithError(ExitError, "writing outputs: %v", err)
		}
	}

	if humanOutput {
		for _, w := range warnings {
			warn("%s", w)
		}
		report.ConsoleConflicts(os.Stderr, "CCF", ccf.Conflicts())
		report.ConsoleConflicts(os.Stderr, "CAS", cas.Conflicts())
		if n := len(deduped.Invalid); n > 0 {
			warn("%d record(s) excluded from grouping (missing title or authors)", n)
		}
		report.Console(os.Stdout, summary, papers)
		return nil
	}

	return outputJSON(analyzeResult{
		Summary:  summary,
		Papers:   papers,
		Venues:   rankings,
		Invalid:  deduped.Invalid,
		Warnings: warnings,
	})
}

// enrichVenues resolves external metadata for every venue that carries
// a DBLP abbreviation, going to the cache first and the network second.
// Failures are warnings, never fatal: the matcher runs on whatever
// identifiers the raw citations already provided.
func enrichVenues(ctx context.Context, cfg *config.Config, venues []venue.Venue, noFetch bool) (map[string]venue.Enrichment, []string) {
	enrichment := make(map[string]venue.Enrichment)
	var warnings []string

	cache, err := storage.OpenCache(cfg.CachePath)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("metadata cache unavailable: %v", err))
		cache = nil
	} else {
		defer cache.Close()
	}

	var client *dblp.Client
	if !noFetch {
		client = dblp.NewClient(
			dblp.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.HTTPTimeoutSeconds) * time.Second}),
			dblp.WithRateLimit(cfg.RequestsPerSecond),
		)
	}

	for _, v := range venues {
		if v.Abbrev == "" {
			continue
		}

		if cache != nil {
			meta, ok, err := cache.Get(v.Type, v.Abbrev)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("cache read %s: %v", v.Abbrev, err))
			} else if ok {
				enrichment[v.Key] = venue.Enrichment{FullName: meta.Title, ISSNs: meta.ISSNs}
				continue
			}
		}

		if client == nil {
			continue
		}
		meta, err := client.VenueMeta(ctx, v.Type, v.Abbrev)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("enriching %s: %v", v.Abbrev, err))
			continue
		}
		enrichment[v.Key] = venue.Enrichment{FullName: meta.Title, ISSNs: meta.ISSNs}
		if cache != nil {
			if err := cache.Put(v.Type, v.Abbrev, meta); err != nil {
				warnings = append(warnings, fmt.Sprintf("cache write %s: %v", v.Abbrev, err))
			}
		}
	}

	return enrichment, warnings
}

func writeOutputs(dir string, papers []match.RankedPaper, summary stats.Summary) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := storage.WritePapers(filepath.Join(dir, "papers.jsonl"), papers); err != nil {
		return err
	}
	if err := report.WritePapersCSV(filepath.Join(dir, "papers.csv"), papers); err != nil {
		return err
	}
	return report.WriteSummaryJSON(filepath.Join(dir, "summary.json"), summary)
}
