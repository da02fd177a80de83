// Package match resolves venues against rank tables through an
// ordered chain of matching strategies with explicit precedence.
package match

import (
	"strings"

	"github.com/matsen/scholarank/internal/citation"
	"github.com/matsen/scholarank/internal/normalize"
	"github.com/matsen/scholarank/internal/ranktab"
	"github.com/matsen/scholarank/internal/venue"
)

// Strategy names record which step of the chain produced a match, so
// consumers can filter by confidence. fuzzy_containment is the only
// approximate strategy.
const (
	StrategyAbbrev    = "abbrev"
	StrategyISSN      = "issn"
	StrategyNameExact = "name_exact"
	StrategyFuzzy     = "fuzzy_containment"
)

// Unmatched reason codes.
const (
	ReasonScopeExcluded = "scope_excluded" // conference venue vs journal-only table
	ReasonEmptyVenue    = "empty_venue"
	ReasonNoMatch       = "no_match"
)

// DefaultMinContainment is the minimum rune length of the shorter
// string in a containment match. Short common substrings ("ACM")
// would otherwise match half the table.
const DefaultMinContainment = 10

// Result is the outcome of resolving one venue against one table.
type Result struct {
	Matched  bool   `json:"matched"`
	Table    string `json:"table"`
	Tier     string `json:"tier,omitempty"`
	IsTop    bool   `json:"is_top,omitempty"`
	FullName string `json:"full_name,omitempty"` // the table row's name

	// MatchedIdentifier is the identifier that produced the match;
	// Strategy names the chain step. Both empty when unmatched.
	MatchedIdentifier string `json:"matched_identifier,omitempty"`
	Strategy          string `json:"strategy,omitempty"`

	// Reason explains an unmatched result. An unmatched venue is an
	// expected steady-state outcome, not an error.
	Reason string `json:"reason,omitempty"`
}

// VenueRanking pairs the per-table results for one venue.
type VenueRanking struct {
	Venue venue.Venue `json:"venue"`
	CCF   Result      `json:"ccf"`
	CAS   Result      `json:"cas"`
}

// Matcher resolves venues against a CCF-style and a CAS-style table.
// The two tables are matched independently; a venue can match one,
// both, or neither.
type Matcher struct {
	CCF *ranktab.Table
	CAS *ranktab.Table

	// MinContainment guards the fuzzy containment strategy. Zero
	// means DefaultMinContainment.
	MinContainment int
}

// Match resolves one venue against both tables.
func (m *Matcher) Match(v venue.Venue) VenueRanking {
	return VenueRanking{
		Venue: v,
		CCF:   m.MatchTable(v, m.CCF),
		CAS:   m.MatchTable(v, m.CAS),
	}
}

// MatchAll resolves every venue, keyed by venue key.
func (m *Matcher) MatchAll(venues []venue.Venue) map[string]VenueRanking {
	out := make(map[string]VenueRanking, len(venues))
	for _, v := range venues {
		out[v.Key] = m.Match(v)
	}
	return out
}

// MatchTable runs the strategy chain for one venue against one table,
// first success wins:
//
//  1. exact abbreviation (case-insensitive, type-scoped)
//  2. exact ISSN (journals with a known ISSN only)
//  3. normalized full-name exact
//  4. normalized full-name containment (shorter side >= MinContainment)
//
// A conference venue never reaches the chain of a journal-only table;
// the scope check short-circuits first.
func (m *Matcher) MatchTable(v venue.Venue, t *ranktab.Table) Result {
	if t == nil {
		return Result{Reason: ReasonNoMatch}
	}
	res := Result{Table: t.Name}

	if t.JournalOnly && v.Type == citation.VenueConference {
		res.Reason = ReasonScopeExcluded
		return res
	}
	if v.Key == normalize.EmptyKey && v.Abbrev == "" && len(v.ISSNs) == 0 {
		res.Reason = ReasonEmptyVenue
		return res
	}

	if e, ok := t.ByAbbrev(v.Type, v.Abbrev); ok {
		return matched(res, e, StrategyAbbrev, strings.ToLower(v.Abbrev))
	}

	if v.Type != citation.VenueConference {
		for _, raw := range v.ISSNs {
			if e, ok := t.ByISSN(raw); ok {
				return matched(res, e, StrategyISSN, normalize.ISSN(raw))
			}
		}
	}

	for _, nameKey := range nameKeys(v) {
		if e, ok := t.ByName(nameKey); ok {
			return matched(res, e, StrategyNameExact, nameKey)
		}
	}

	if e, id := m.containmentScan(v, t); e != nil {
		return matched(res, e, StrategyFuzzy, id)
	}

	res.Reason = ReasonNoMatch
	return res
}

// containmentScan finds the first table row whose normalized name
// contains, or is contained by, one of the venue's normalized names.
// The shorter string must meet the minimum length; scan order is the
// table's load order, so results are deterministic.
func (m *Matcher) containmentScan(v venue.Venue, t *ranktab.Table) (*ranktab.Entry, string) {
	min := m.MinContainment
	if min <= 0 {
		min = DefaultMinContainment
	}

	keys := nameKeys(v)
	if len(keys) == 0 {
		return nil, ""
	}

	for _, e := range t.Entries() {
		if e.NormName == normalize.EmptyKey {
			continue
		}
		for _, key := range keys {
			shorter := key
			if len([]rune(e.NormName)) < len([]rune(key)) {
				shorter = e.NormName
			}
			if len([]rune(shorter)) < min {
				continue
			}
			if strings.Contains(key, e.NormName) || strings.Contains(e.NormName, key) {
				return e, key
			}
		}
	}
	return nil, ""
}

// nameKeys returns the normalized name candidates of a venue: the
// enriched full name first (it is the canonical spelling), then the
// raw-citation key.
func nameKeys(v venue.Venue) []string {
	var keys []string
	if full := normalize.Venue(v.FullName); full != normalize.EmptyKey {
		keys = append(keys, full)
	}
	if v.Key != normalize.EmptyKey && (len(keys) == 0 || keys[0] != v.Key) {
		keys = append(keys, v.Key)
	}
	return keys
}

func matched(res Result, e *ranktab.Entry, strategy, identifier string) Result {
	res.Matched = true
	res.Tier = e.Tier
	res.IsTop = e.IsTop
	res.FullName = e.FullName
	res.Strategy = strategy
	res.MatchedIdentifier = identifier
	return res
}
