// Package stats computes aggregate rank statistics over a canonical
// ranked paper set. Pure aggregation: it never mutates its input and
// is independent of iteration order.
package stats

import (
	"strings"

	"github.com/matsen/scholarank/internal/citation"
	"github.com/matsen/scholarank/internal/match"
)

// CCF tiers and CAS zones in report order.
var (
	CCFTiers = []string{"A", "B", "C"}
	CASZones = []string{"1", "2", "3", "4"}
)

// Summary is the fixed set of named counts and percentages over the
// deduplicated paper set. Percentages are against total paper count,
// not venue count.
type Summary struct {
	TotalPapers int `json:"total_papers"`

	CCFByTier           map[string]int `json:"ccf_by_tier"`
	CCFJournalByTier    map[string]int `json:"ccf_journal_by_tier"`
	CCFConferenceByTier map[string]int `json:"ccf_conference_by_tier"`

	CASByZone map[string]int `json:"cas_by_zone"`
	CASTop    int            `json:"cas_top"`

	// TopUnion counts papers in CCF tier A or CAS zone 1 (or both,
	// counted once). BroadUnion widens to tiers A/B and zones 1/2.
	TopUnion   int `json:"top_union"`
	BroadUnion int `json:"broad_union"`

	Percent map[string]float64 `json:"percent"`
}

// Compute aggregates per-tier, per-zone, top, and union counts over
// the papers.
func Compute(papers []match.RankedPaper) Summary {
	s := Summary{
		TotalPapers:         len(papers),
		CCFByTier:           zeroed(CCFTiers),
		CCFJournalByTier:    zeroed(CCFTiers),
		CCFConferenceByTier: zeroed(CCFTiers),
		CASByZone:           zeroed(CASZones),
	}

	for _, p := range papers {
		if p.CCF.Matched {
			if _, known := s.CCFByTier[p.CCF.Tier]; known {
				s.CCFByTier[p.CCF.Tier]++
				switch p.VenueType {
				case citation.VenueJournal:
					s.CCFJournalByTier[p.CCF.Tier]++
				case citation.VenueConference:
					s.CCFConferenceByTier[p.CCF.Tier]++
				}
			}
		}
		if p.CAS.Matched {
			if _, known := s.CASByZone[p.CAS.Tier]; known {
				s.CASByZone[p.CAS.Tier]++
			}
			if p.CAS.IsTop {
				s.CASTop++
			}
		}

		// Union counts: each paper contributes at most once per
		// union, no matter how many criteria it satisfies.
		if inUnion(p, []string{"A"}, []string{"1"}) {
			s.TopUnion++
		}
		if inUnion(p, []string{"A", "B"}, []string{"1", "2"}) {
			s.BroadUnion++
		}
	}

	s.Percent = percentages(s)
	return s
}

// inUnion reports whether a paper's CCF tier or CAS zone falls in the
// given sets.
func inUnion(p match.RankedPaper, ccfTiers, casZones []string) bool {
	if p.CCF.Matched {
		for _, tier := range ccfTiers {
			if p.CCF.Tier == tier {
				return true
			}
		}
	}
	if p.CAS.Matched {
		for _, zone := range casZones {
			if p.CAS.Tier == zone {
				return true
			}
		}
	}
	return false
}

func percentages(s Summary) map[string]float64 {
	pct := make(map[string]float64)
	of := func(n int) float64 {
		if s.TotalPapers == 0 {
			return 0
		}
		return float64(n) / float64(s.TotalPapers) * 100
	}

	for _, tier := range CCFTiers {
		pct["ccf_"+strings.ToLower(tier)] = of(s.CCFByTier[tier])
	}
	for _, zone := range CASZones {
		pct["cas_"+zone] = of(s.CASByZone[zone])
	}
	pct["cas_top"] = of(s.CASTop)
	pct["top_union"] = of(s.TopUnion)
	pct["broad_union"] = of(s.BroadUnion)
	return pct
}

func zeroed(keys []string) map[string]int {
	m := make(map[string]int, len(keys))
	for _, k := range keys {
		m[k] = 0
	}
	return m
}
