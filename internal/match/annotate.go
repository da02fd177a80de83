package match

import (
	"github.com/matsen/scholarank/internal/dedupe"
	"github.com/matsen/scholarank/internal/normalize"
)

// RankedPaper is a canonical paper with its per-table match results
// attached. Construction here is the single post-dedupe mutation a
// paper receives; RankedPaper values are immutable afterwards.
type RankedPaper struct {
	dedupe.Paper

	VenueKey string `json:"venue_key"`
	CCF      Result `json:"ccf"`
	CAS      Result `json:"cas"`
}

// Annotate attaches each paper's venue ranking. Papers whose venue is
// missing from the rankings map (enrichment skipped, venue set built
// elsewhere) get unmatched results rather than being dropped: a
// partial venue map must never abort the batch.
func Annotate(papers []dedupe.Paper, rankings map[string]VenueRanking) []RankedPaper {
	out := make([]RankedPaper, len(papers))
	for i, p := range papers {
		key := normalize.Venue(p.VenueRaw)
		rp := RankedPaper{Paper: p, VenueKey: key}
		if r, ok := rankings[key]; ok {
			rp.CCF = r.CCF
			rp.CAS = r.CAS
		} else {
			rp.CCF = Result{Table: "ccf", Reason: ReasonNoMatch}
			rp.CAS = Result{Table: "cas", Reason: ReasonNoMatch}
		}
		out[i] = rp
	}
	return out
}
