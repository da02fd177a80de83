// Package venue derives the distinct set of publication venues
// referenced by a canonical paper set.
package venue

import (
	"sort"

	"github.com/matsen/scholarank/internal/citation"
	"github.com/matsen/scholarank/internal/dedupe"
	"github.com/matsen/scholarank/internal/normalize"
)

// Venue is the normalized identity of a publication venue. Two papers
// whose raw venue strings normalize to the same key resolve to one
// Venue.
type Venue struct {
	Key        string             `json:"key"`  // normalized name, grouping identity
	Name       string             `json:"name"` // representative raw name
	FullName   string             `json:"full_name,omitempty"`
	Abbrev     string             `json:"abbrev,omitempty"`
	ISSNs      []string           `json:"issns,omitempty"`
	Type       citation.VenueType `json:"type"`
	PaperCount int                `json:"paper_count"`
}

// Enrichment carries identifiers resolved from an external metadata
// source. Absent entries mean "no enrichment available", not errors.
type Enrichment struct {
	FullName string   `json:"full_name,omitempty"`
	ISSNs    []string `json:"issns,omitempty"`
}

// Resolve produces the distinct venues referenced by the papers, each
// with its paper count and majority-vote type. Type ties break in
// favor of journal: the journal-only rank table is the more
// restrictive one, so misclassifying a journal costs more matching
// opportunity than misclassifying a conference.
func Resolve(papers []dedupe.Paper) []Venue {
	type acc struct {
		name       string // representative raw name (from smallest key)
		nameFrom   string
		abbrev     string
		abbrevFrom string
		count      int
		votes      map[citation.VenueType]int
	}

	byKey := make(map[string]*acc)
	for _, p := range papers {
		key := normalize.Venue(p.VenueRaw)
		a := byKey[key]
		if a == nil {
			a = &acc{votes: make(map[citation.VenueType]int)}
			byKey[key] = a
		}
		a.count++
		a.votes[p.VenueType]++
		if p.VenueRaw != "" && (a.nameFrom == "" || p.Key < a.nameFrom) {
			a.name = p.VenueRaw
			a.nameFrom = p.Key
		}
		if p.SourceAbbrev != "" && (a.abbrevFrom == "" || p.Key < a.abbrevFrom) {
			a.abbrev = p.SourceAbbrev
			a.abbrevFrom = p.Key
		}
	}

	venues := make([]Venue, 0, len(byKey))
	for key, a := range byKey {
		venues = append(venues, Venue{
			Key:        key,
			Name:       a.name,
			Abbrev:     a.abbrev,
			Type:       dominantType(a.votes),
			PaperCount: a.count,
		})
	}

	sort.Slice(venues, func(i, j int) bool { return venues[i].Key < venues[j].Key })
	return venues
}

// dominantType returns the majority venue type. Journal wins ties;
// unknown only wins when nothing else was voted at all.
func dominantType(votes map[citation.VenueType]int) citation.VenueType {
	j, c := votes[citation.VenueJournal], votes[citation.VenueConference]
	switch {
	case j == 0 && c == 0:
		return citation.VenueUnknown
	case c > j:
		return citation.VenueConference
	default:
		return citation.VenueJournal
	}
}

// ApplyEnrichment returns a copy of the venues with external metadata
// attached where available. Venues without an enrichment entry pass
// through unchanged; matching proceeds on whatever identifiers they
// already carry.
func ApplyEnrichment(venues []Venue, enrich map[string]Enrichment) []Venue {
	out := make([]Venue, len(venues))
	for i, v := range venues {
		out[i] = v
		e, ok := enrich[v.Key]
		if !ok {
			continue
		}
		if e.FullName != "" {
			out[i].FullName = e.FullName
		}
		if len(e.ISSNs) > 0 {
			issns := make([]string, 0, len(e.ISSNs))
			seen := make(map[string]bool)
			for _, raw := range e.ISSNs {
				issn := normalize.ISSN(raw)
				if issn == normalize.EmptyKey || seen[issn] {
					continue
				}
				seen[issn] = true
				issns = append(issns, issn)
			}
			out[i].ISSNs = issns
		}
	}
	return out
}
