// Package citation defines the raw bibliographic record shape and the
// BibTeX parser that produces it.
package citation

// VenueType classifies the kind of venue a record was published in.
type VenueType string

const (
	VenueJournal    VenueType = "journal"
	VenueConference VenueType = "conference"
	VenueUnknown    VenueType = "unknown"
)

// EntryKind distinguishes formally published records from preprints.
type EntryKind string

const (
	KindPublished EntryKind = "published"
	KindPreprint  EntryKind = "preprint"
	KindUnknown   EntryKind = "unknown"
)

// Record is one bibliographic entry as captured from a source.
// Records are immutable once parsed.
type Record struct {
	Key       string    `json:"key"` // source-assigned, not unique across sources
	Title     string    `json:"title"`
	Authors   []string  `json:"authors"`
	Year      int       `json:"year"` // 0 if unknown
	VenueRaw  string    `json:"venue_raw"`
	VenueType VenueType `json:"venue_type"`
	EntryKind EntryKind `json:"entry_kind"`

	// DOI when the source carried one; informs EntryKind.
	DOI string `json:"doi,omitempty"`

	// SourceAbbrev is the venue abbreviation embedded in DBLP-style
	// keys ("DBLP:journals/tkde/..." -> "tkde"). Empty when the key
	// follows no recognized scheme.
	SourceAbbrev string `json:"source_abbrev,omitempty"`
}

// FirstAuthor returns the first author string, or "" if none.
func (r Record) FirstAuthor() string {
	if len(r.Authors) == 0 {
		return ""
	}
	return r.Authors[0]
}
