// Package ranktab loads external venue rank tables into lookup
// structures keyed by abbreviation, ISSN, and normalized full name.
package ranktab

import (
	"fmt"
	"strings"

	"github.com/matsen/scholarank/internal/citation"
	"github.com/matsen/scholarank/internal/normalize"
)

// Entry is one row of a rank table.
type Entry struct {
	FullName string             `json:"full_name"`
	NormName string             `json:"-"` // normalized lookup key for FullName
	Abbrev   string             `json:"abbrev,omitempty"`
	ISSNs    []string           `json:"issns,omitempty"`
	Tier     string             `json:"tier"` // "A"/"B"/"C" or "1".."4"
	IsTop    bool               `json:"is_top,omitempty"`
	Type     citation.VenueType `json:"type"` // scope of this row
}

// Conflict records a duplicate identifier inside one table. The first
// loaded row wins; the conflict is kept for diagnostics rather than
// raised, since duplicate identifiers are a data-quality condition in
// the source tables, not an error.
type Conflict struct {
	Kind       string `json:"kind"` // abbrev, issn, name
	Identifier string `json:"identifier"`
	Kept       string `json:"kept"`    // FullName of the retained row
	Dropped    string `json:"dropped"` // FullName of the ignored row
}

// Table is an indexed rank table supporting O(1) lookup by any
// identifier a row carries.
type Table struct {
	Name        string // "ccf", "cas"
	JournalOnly bool   // true when the table does not rank conferences

	entries   []*Entry
	byAbbrev  map[string]*Entry
	byISSN    map[string]*Entry
	byName    map[string]*Entry
	conflicts []Conflict
}

// New creates an empty table. Loading adapters (the CSV loaders here,
// or anything else row-shaped) populate it with Add.
func New(name string, journalOnly bool) *Table {
	return &Table{
		Name:        name,
		JournalOnly: journalOnly,
		byAbbrev:    make(map[string]*Entry),
		byISSN:      make(map[string]*Entry),
		byName:      make(map[string]*Entry),
	}
}

// Add indexes an entry under every identifier it carries. Identifiers
// already claimed by an earlier row are left pointing at that row.
func (t *Table) Add(e Entry) {
	e.NormName = normalize.Venue(e.FullName)
	entry := &e
	t.entries = append(t.entries, entry)

	if e.Abbrev != "" {
		t.index(t.byAbbrev, "abbrev", abbrevKey(e.Type, e.Abbrev), entry)
	}
	for _, raw := range e.ISSNs {
		if issn := normalize.ISSN(raw); issn != normalize.EmptyKey {
			t.index(t.byISSN, "issn", issn, entry)
		}
	}
	if entry.NormName != normalize.EmptyKey {
		t.index(t.byName, "name", entry.NormName, entry)
	}
}

func (t *Table) index(m map[string]*Entry, kind, key string, e *Entry) {
	if prev, exists := m[key]; exists {
		t.conflicts = append(t.conflicts, Conflict{
			Kind:       kind,
			Identifier: key,
			Kept:       prev.FullName,
			Dropped:    e.FullName,
		})
		return
	}
	m[key] = e
}

// abbrevKey scopes an abbreviation by venue type where known, since
// DBLP reuses short names across the journal and conference namespaces
// ("www" is both).
func abbrevKey(vt citation.VenueType, abbrev string) string {
	abbrev = strings.ToLower(strings.TrimSpace(abbrev))
	if vt == citation.VenueUnknown {
		return abbrev
	}
	return string(vt) + ":" + abbrev
}

// ByAbbrev looks up a row by exact abbreviation, preferring the
// type-scoped namespace. A venue of unknown type probes the untyped
// namespace first, then journal, then conference, so it can still
// reach rows indexed under a known scope.
func (t *Table) ByAbbrev(vt citation.VenueType, abbrev string) (*Entry, bool) {
	if abbrev == "" {
		return nil, false
	}
	if e, ok := t.byAbbrev[abbrevKey(vt, abbrev)]; ok {
		return e, true
	}
	if vt == citation.VenueUnknown {
		for _, scoped := range []citation.VenueType{citation.VenueJournal, citation.VenueConference} {
			if e, ok := t.byAbbrev[abbrevKey(scoped, abbrev)]; ok {
				return e, true
			}
		}
		return nil, false
	}
	e, ok := t.byAbbrev[abbrevKey(citation.VenueUnknown, abbrev)]
	return e, ok
}

// ByISSN looks up a row by exact ISSN.
func (t *Table) ByISSN(raw string) (*Entry, bool) {
	issn := normalize.ISSN(raw)
	if issn == normalize.EmptyKey {
		return nil, false
	}
	e, ok := t.byISSN[issn]
	return e, ok
}

// ByName looks up a row by normalized full name.
func (t *Table) ByName(normKey string) (*Entry, bool) {
	if normKey == normalize.EmptyKey {
		return nil, false
	}
	e, ok := t.byName[normKey]
	return e, ok
}

// Entries returns all rows in load order, for strategies that must
// scan (name containment).
func (t *Table) Entries() []*Entry {
	return t.entries
}

// Conflicts returns the duplicate-identifier diagnostics recorded
// while loading.
func (t *Table) Conflicts() []Conflict {
	return t.conflicts
}

// Len returns the number of loaded rows.
func (t *Table) Len() int {
	return len(t.entries)
}

// validate enforces the fail-fast contract: an empty table would make
// a broken configuration indistinguishable from a legitimate
// zero-match run.
func (t *Table) validate(path string) error {
	if len(t.entries) == 0 {
		return fmt.Errorf("rank table %s (%s): no data rows", t.Name, path)
	}
	return nil
}
