package citation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// dblpKeyRe extracts the venue abbreviation from DBLP citation keys,
// e.g. "DBLP:journals/tkde/LiWZ23" or "DBLP:conf/kdd/Smith22".
var dblpKeyRe = regexp.MustCompile(`(?i)^dblp:(journals|conf)/([^/]+)/`)

// preprintVenues are journal field values that mark arXiv-style
// preprints rather than formal publications.
var preprintVenues = map[string]bool{
	"corr":  true,
	"arxiv": true,
}

// Parse parses a BibTeX document into records. Per-entry problems
// (missing fields, unparsable years) are returned as diagnostics
// alongside the records that did parse; only a document that yields
// nothing at all is considered unusable by callers.
func Parse(data []byte) ([]Record, []error) {
	var records []Record
	var diags []error

	p := &bibParser{src: string(data)}
	for {
		entryType, key, fields, ok := p.nextEntry()
		if !ok {
			break
		}
		rec, entryDiags := buildRecord(entryType, key, fields)
		diags = append(diags, entryDiags...)
		records = append(records, rec)
	}

	return records, diags
}

// buildRecord maps parsed BibTeX fields onto a Record.
func buildRecord(entryType, key string, fields map[string]string) (Record, []error) {
	var diags []error

	rec := Record{
		Key: key,
		DOI: fields["doi"],
	}

	rec.Title = cleanText(fields["title"])
	rec.Authors = splitAuthors(fields["author"])

	switch entryType {
	case "article":
		rec.VenueRaw = cleanText(fields["journal"])
		rec.VenueType = VenueJournal
	case "inproceedings", "conference", "incollection":
		rec.VenueRaw = cleanText(fields["booktitle"])
		rec.VenueType = VenueConference
	default:
		if j := cleanText(fields["journal"]); j != "" {
			rec.VenueRaw = j
		} else {
			rec.VenueRaw = cleanText(fields["booktitle"])
		}
		rec.VenueType = VenueUnknown
	}

	if y := strings.TrimSpace(fields["year"]); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			diags = append(diags, fmt.Errorf("entry %s: unparsable year %q", key, y))
		} else {
			rec.Year = year
		}
	}

	rec.EntryKind = deriveEntryKind(rec, fields)

	if m := dblpKeyRe.FindStringSubmatch(key); m != nil {
		rec.SourceAbbrev = strings.ToLower(m[2])
		// The key scheme is more reliable than the entry type for
		// records DBLP files under a series.
		if rec.VenueType == VenueUnknown {
			if m[1] == "journals" || strings.EqualFold(m[1], "journals") {
				rec.VenueType = VenueJournal
			} else {
				rec.VenueType = VenueConference
			}
		}
	}

	return rec, diags
}

// deriveEntryKind decides whether a record is a formal publication or
// a preprint. arXiv's DBLP journal alias is "CoRR"; explicit eprint
// tags also mark preprints.
func deriveEntryKind(rec Record, fields map[string]string) EntryKind {
	venueLower := strings.ToLower(rec.VenueRaw)
	if preprintVenues[venueLower] || strings.Contains(venueLower, "arxiv") {
		return KindPreprint
	}
	if ep := strings.ToLower(fields["archiveprefix"]); strings.Contains(ep, "arxiv") {
		return KindPreprint
	}
	if ep := strings.ToLower(fields["eprinttype"]); strings.Contains(ep, "arxiv") {
		return KindPreprint
	}
	if rec.DOI != "" || rec.VenueRaw != "" {
		return KindPublished
	}
	return KindUnknown
}

// cleanText collapses whitespace and strips the grouping braces BibTeX
// uses to protect capitalization.
func cleanText(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '{' || r == '}' {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// splitAuthors splits a BibTeX author field on the "and" keyword.
func splitAuthors(s string) []string {
	s = cleanText(s)
	if s == "" {
		return nil
	}
	var authors []string
	for _, part := range strings.Split(s, " and ") {
		part = strings.TrimSpace(part)
		if part != "" {
			authors = append(authors, part)
		}
	}
	return authors
}

// bibParser is a minimal cursor-based BibTeX scanner. It understands
// @type{key, name = {value}, name = "value", name = 123} entries with
// arbitrarily nested braces in values, which covers what DBLP and
// Google Scholar emit.
type bibParser struct {
	src string
	pos int
}

// nextEntry advances to the next @entry and returns its type, citation
// key, and fields. ok is false when no further entry exists.
func (p *bibParser) nextEntry() (entryType, key string, fields map[string]string, ok bool) {
	for {
		at := strings.IndexByte(p.src[p.pos:], '@')
		if at < 0 {
			return "", "", nil, false
		}
		p.pos += at + 1

		entryType = strings.ToLower(p.ident())
		p.skipSpace()
		if p.pos >= len(p.src) || (p.src[p.pos] != '{' && p.src[p.pos] != '(') {
			continue // stray @, keep scanning
		}

		// @comment, @string and @preamble blocks have no citation key
		// and may contain no comma, so skip their balanced group whole.
		switch entryType {
		case "comment", "string", "preamble":
			p.skipGroup()
			continue
		}
		p.pos++ // consume opener

		key = strings.TrimSpace(p.until(','))
		fields = p.parseFields()
		return entryType, key, fields, true
	}
}

// parseFields reads name = value pairs until the entry's closing brace.
func (p *bibParser) parseFields() map[string]string {
	fields := make(map[string]string)
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return fields
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
			continue
		case '}', ')':
			p.pos++
			return fields
		}

		name := strings.ToLower(p.ident())
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != '=' {
			// Malformed field; resync at the next separator.
			p.until(',')
			continue
		}
		p.pos++
		p.skipSpace()

		value := p.value()
		if name != "" {
			fields[name] = value
		}
	}
}

// value reads a single field value: braced (nesting-aware), quoted, or
// a bare token.
func (p *bibParser) value() string {
	if p.pos >= len(p.src) {
		return ""
	}
	switch p.src[p.pos] {
	case '{':
		depth := 0
		start := p.pos + 1
		for ; p.pos < len(p.src); p.pos++ {
			switch p.src[p.pos] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					v := p.src[start:p.pos]
					p.pos++
					return v
				}
			}
		}
		return p.src[start:]
	case '"':
		p.pos++
		start := p.pos
		for ; p.pos < len(p.src); p.pos++ {
			if p.src[p.pos] == '"' {
				v := p.src[start:p.pos]
				p.pos++
				return v
			}
		}
		return p.src[start:]
	default:
		start := p.pos
		for ; p.pos < len(p.src); p.pos++ {
			if c := p.src[p.pos]; c == ',' || c == '}' || c == ')' || c == '\n' {
				break
			}
		}
		return strings.TrimSpace(p.src[start:p.pos])
	}
}

// skipGroup consumes a balanced {...} or (...) group starting at the
// current opener.
func (p *bibParser) skipGroup() {
	open := p.src[p.pos]
	close := byte('}')
	if open == '(' {
		close = ')'
	}
	depth := 0
	for ; p.pos < len(p.src); p.pos++ {
		switch p.src[p.pos] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				p.pos++
				return
			}
		}
	}
}

// ident reads an identifier (entry type or field name).
func (p *bibParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '-' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

// until consumes up to and including the delimiter, returning the text
// before it.
func (p *bibParser) until(delim byte) string {
	start := p.pos
	for p.pos < len(p.src) {
		if p.src[p.pos] == delim {
			v := p.src[start:p.pos]
			p.pos++
			return v
		}
		p.pos++
	}
	return p.src[start:]
}

func (p *bibParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}
