// Package report renders analysis results for humans and export
// formats for downstream tools.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/matsen/scholarank/internal/match"
	"github.com/matsen/scholarank/internal/ranktab"
	"github.com/matsen/scholarank/internal/stats"
)

// sampleLimit is how many example papers each highlight section shows.
const sampleLimit = 3

// titleMaxLen truncates long titles in console output.
const titleMaxLen = 60

// Console writes a human-readable summary of the analysis.
func Console(w io.Writer, summary stats.Summary, papers []match.RankedPaper) {
	fmt.Fprintf(w, "Total papers: %d\n", summary.TotalPapers)

	fmt.Fprintf(w, "\n=== CCF tiers ===\n")
	for _, tier := range stats.CCFTiers {
		n := summary.CCFByTier[tier]
		fmt.Fprintf(w, "CCF-%s: %d papers (%.1f%%)  journals %d, conferences %d\n",
			tier, n, summary.Percent["ccf_"+strings.ToLower(tier)],
			summary.CCFJournalByTier[tier], summary.CCFConferenceByTier[tier])
	}

	fmt.Fprintf(w, "\n=== CAS zones ===\n")
	for _, zone := range stats.CASZones {
		fmt.Fprintf(w, "Zone %s: %d papers (%.1f%%)\n",
			zone, summary.CASByZone[zone], summary.Percent["cas_"+zone])
	}
	fmt.Fprintf(w, "CAS Top: %d papers (%.1f%%)\n", summary.CASTop, summary.Percent["cas_top"])

	fmt.Fprintf(w, "\n=== Combined (union, deduplicated) ===\n")
	fmt.Fprintf(w, "CCF-A or CAS zone 1:       %d papers (%.1f%%)\n",
		summary.TopUnion, summary.Percent["top_union"])
	fmt.Fprintf(w, "CCF-A/B or CAS zone 1/2:   %d papers (%.1f%%)\n",
		summary.BroadUnion, summary.Percent["broad_union"])

	printSamples(w, "CCF-A papers", papers, func(p match.RankedPaper) bool {
		return p.CCF.Matched && p.CCF.Tier == "A"
	})
	printSamples(w, "CAS zone 1 papers", papers, func(p match.RankedPaper) bool {
		return p.CAS.Matched && p.CAS.Tier == "1"
	})
}

func printSamples(w io.Writer, heading string, papers []match.RankedPaper, want func(match.RankedPaper) bool) {
	var sample []match.RankedPaper
	for _, p := range papers {
		if want(p) {
			sample = append(sample, p)
			if len(sample) == sampleLimit {
				break
			}
		}
	}
	if len(sample) == 0 {
		return
	}

	fmt.Fprintf(w, "\n=== %s ===\n", heading)
	for i, p := range sample {
		fmt.Fprintf(w, "%d. %s\n   %s\n", i+1, truncate(p.Title, titleMaxLen), p.VenueRaw)
	}
}

// ConsoleConflicts reports duplicate-identifier diagnostics from rank
// table loading.
func ConsoleConflicts(w io.Writer, table string, conflicts []ranktab.Conflict) {
	if len(conflicts) == 0 {
		return
	}
	fmt.Fprintf(w, "%s table: %d duplicate identifier(s), first-loaded row kept:\n", table, len(conflicts))
	for _, c := range conflicts {
		fmt.Fprintf(w, "  %s %q: kept %q, ignored %q\n", c.Kind, c.Identifier, c.Kept, c.Dropped)
	}
}

// WriteSummaryJSON writes the statistics structure as indented JSON.
func WriteSummaryJSON(path string, summary stats.Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

// WritePapersCSV exports the canonical ranked papers as CSV, sorted by
// key for stable diffs.
func WritePapersCSV(path string, papers []match.RankedPaper) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv: %w", err)
	}
	defer f.Close()

	sorted := make([]match.RankedPaper, len(papers))
	copy(sorted, papers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	w := csv.NewWriter(f)
	header := []string{
		"key", "title", "first_author", "year", "venue", "venue_type",
		"entry_kind", "group_size", "provenance",
		"ccf_tier", "ccf_strategy", "cas_zone", "cas_top", "cas_strategy",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, p := range sorted {
		row := []string{
			p.Key,
			p.Title,
			p.FirstAuthor(),
			strconv.Itoa(p.Year),
			p.VenueRaw,
			string(p.VenueType),
			string(p.EntryKind),
			strconv.Itoa(p.GroupSize),
			strings.Join(p.Provenance, "; "),
			p.CCF.Tier,
			p.CCF.Strategy,
			p.CAS.Tier,
			strconv.FormatBool(p.CAS.Matched && p.CAS.IsTop),
			p.CAS.Strategy,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
