// Package dedupe partitions raw bibliographic records into groups
// describing the same work and selects one canonical survivor per
// group.
package dedupe

import (
	"sort"
	"strings"

	"github.com/matsen/scholarank/internal/citation"
	"github.com/matsen/scholarank/internal/normalize"
)

// Paper is the canonical survivor of a duplicate group.
type Paper struct {
	citation.Record

	// GroupSize is the number of raw records merged into this paper.
	GroupSize int `json:"duplicate_group_size"`

	// Provenance lists the keys of all merged records, sorted. Every
	// input record appears in exactly one paper's provenance.
	Provenance []string `json:"provenance"`
}

// Reason codes for records excluded from grouping.
const (
	ReasonNoTitle   = "missing_title"
	ReasonNoAuthors = "missing_authors"
)

// Invalid is a structurally incomplete record, kept on a side list so
// callers can report it without losing visibility.
type Invalid struct {
	Record citation.Record `json:"record"`
	Reason string          `json:"reason"`
}

// Result holds the outcome of a dedupe pass.
type Result struct {
	Papers  []Paper   `json:"papers"`
	Invalid []Invalid `json:"invalid,omitempty"`
}

// Dedupe groups records that describe the same work and picks one
// survivor per group. Two records share a group when their normalized
// titles are equal and their first-author name tokens overlap; year is
// deliberately not a grouping key since preprint and venue versions of
// one work carry different years.
//
// The result is deterministic: the same record set produces identical
// grouping and survivor choice regardless of input order.
func Dedupe(records []citation.Record) Result {
	var res Result

	valid := make([]citation.Record, 0, len(records))
	for _, rec := range records {
		switch {
		case strings.TrimSpace(rec.Title) == "":
			res.Invalid = append(res.Invalid, Invalid{Record: rec, Reason: ReasonNoTitle})
		case len(rec.Authors) == 0:
			res.Invalid = append(res.Invalid, Invalid{Record: rec, Reason: ReasonNoAuthors})
		default:
			valid = append(valid, rec)
		}
	}

	// Canonical processing order, so grouping does not depend on how
	// the caller iterated its sources.
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].Key < valid[j].Key })
	sort.SliceStable(res.Invalid, func(i, j int) bool {
		return res.Invalid[i].Record.Key < res.Invalid[j].Record.Key
	})

	type bucketGroup struct {
		members []citation.Record
		tokens  map[string]bool // union of first-author tokens
	}

	// Bucket by normalized title, then split buckets by first-author
	// token overlap so identically-titled works by different authors
	// stay separate.
	buckets := make(map[string][]*bucketGroup)
	var order []string // title keys in first-seen order (already canonical)

	for _, rec := range valid {
		titleKey := normalize.Title(rec.Title)
		tokens := normalize.AuthorTokens(rec.FirstAuthor())

		groups, seen := buckets[titleKey]
		if !seen {
			order = append(order, titleKey)
		}

		var joined *bucketGroup
		for _, g := range groups {
			if overlaps(g.tokens, tokens) {
				joined = g
				break
			}
		}
		if joined == nil {
			joined = &bucketGroup{tokens: make(map[string]bool)}
			buckets[titleKey] = append(groups, joined)
		}
		joined.members = append(joined.members, rec)
		for _, t := range tokens {
			joined.tokens[t] = true
		}
	}

	for _, titleKey := range order {
		for _, g := range buckets[titleKey] {
			res.Papers = append(res.Papers, selectSurvivor(g.members))
		}
	}

	sort.SliceStable(res.Papers, func(i, j int) bool { return res.Papers[i].Key < res.Papers[j].Key })
	return res
}

// overlaps reports whether any token is present in the set. An empty
// token list only joins groups that are also tokenless.
func overlaps(set map[string]bool, tokens []string) bool {
	if len(tokens) == 0 {
		return len(set) == 0
	}
	for _, t := range tokens {
		if set[t] {
			return true
		}
	}
	return false
}

// selectSurvivor picks the canonical record of a group by strict
// precedence: formally published first, then known venue type, then
// most recent year, then lexically smallest key.
func selectSurvivor(members []citation.Record) Paper {
	best := members[0]
	for _, cand := range members[1:] {
		if beats(cand, best) {
			best = cand
		}
	}

	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = m.Key
	}
	sort.Strings(keys)

	return Paper{Record: best, GroupSize: len(members), Provenance: keys}
}

// beats reports whether a should survive over b.
func beats(a, b citation.Record) bool {
	if ap, bp := a.EntryKind == citation.KindPublished, b.EntryKind == citation.KindPublished; ap != bp {
		return ap
	}
	if av, bv := a.VenueType != citation.VenueUnknown, b.VenueType != citation.VenueUnknown; av != bv {
		return av
	}
	if a.Year != b.Year {
		return a.Year > b.Year
	}
	return a.Key < b.Key
}
