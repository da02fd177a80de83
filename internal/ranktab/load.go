package ranktab

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matsen/scholarank/internal/citation"
)

// LoadCCF loads a CCF-style rank table (tiers A/B/C, journals and
// conferences) from a CSV file with a header row. Recognized columns:
// name, abbrev, type, rank, url. The DBLP abbreviation is taken from
// the abbrev column, falling back to the trailing segment of the DBLP
// url column when absent.
func LoadCCF(path string) (*Table, error) {
	t := New("ccf", false)

	err := readCSV(path, func(row map[string]string) {
		tier := normalizeTier(row["rank"])
		name := strings.TrimSpace(row["name"])
		if name == "" || tier == "" {
			return // skip unusable rows, they are diagnostics not errors
		}

		abbrev := strings.TrimSpace(row["abbrev"])
		vt := parseVenueType(row["type"])
		if urlAbbrev, urlType := dblpURLAbbrev(row["url"]); urlAbbrev != "" {
			if abbrev == "" {
				abbrev = urlAbbrev
			}
			if vt == citation.VenueUnknown {
				vt = urlType
			}
		}

		t.Add(Entry{
			FullName: name,
			Abbrev:   abbrev,
			Tier:     tier,
			Type:     vt,
		})
	})
	if err != nil {
		return nil, err
	}
	return t, t.validate(path)
}

// LoadCAS loads a CAS-style rank table (zones 1-4 with a Top flag,
// journals only) from a CSV file with a header row. Recognized
// columns: journal, issn, zone, top. The issn column may carry an
// ISSN/EISSN pair separated by a slash; both are indexed. The zone
// column may carry a suffix ("3 [224/758]"); the leading ordinal is
// used.
func LoadCAS(path string) (*Table, error) {
	t := New("cas", true)

	err := readCSV(path, func(row map[string]string) {
		name := strings.TrimSpace(row["journal"])
		zone := normalizeZone(row["zone"])
		if name == "" || zone == "" {
			return
		}

		var issns []string
		for _, part := range strings.Split(row["issn"], "/") {
			if part = strings.TrimSpace(part); part != "" {
				issns = append(issns, part)
			}
		}

		t.Add(Entry{
			FullName: name,
			ISSNs:    issns,
			Tier:     zone,
			IsTop:    truthy(row["top"]),
			Type:     citation.VenueJournal,
		})
	})
	if err != nil {
		return nil, err
	}
	return t, t.validate(path)
}

// readCSV streams a headered CSV file, calling fn with a lowercased
// column-name map per data row. A missing or unreadable file is fatal:
// the loading boundary is the one place this system fails fast.
func readCSV(path string, fn func(row map[string]string)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening rank table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate ragged rows
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("reading rank table header %s: %w", path, err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	for {
		fields, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading rank table %s: %w", path, err)
		}

		row := make(map[string]string, len(cols))
		for i, v := range fields {
			if i < len(cols) {
				row[cols[i]] = v
			}
		}
		fn(row)
	}
}

// parseVenueType maps a CCF type cell onto a venue type.
func parseVenueType(s string) citation.VenueType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "journal", "j":
		return citation.VenueJournal
	case "conference", "conf", "c":
		return citation.VenueConference
	}
	return citation.VenueUnknown
}

// normalizeTier reduces a CCF rank cell to its letter ("A类" -> "A").
func normalizeTier(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	switch s[0] {
	case 'A', 'B', 'C':
		return string(s[0])
	}
	return ""
}

// normalizeZone reduces a CAS zone cell to its ordinal ("3 [224/758]"
// -> "3").
func normalizeZone(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if f := strings.Fields(s); len(f) > 0 {
		s = f[0]
	}
	switch s {
	case "1", "2", "3", "4":
		return s
	}
	return ""
}

// truthy interprets the Top flag column across the encodings seen in
// exported tables.
func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "y", "yes", "true", "是":
		return true
	}
	return false
}

// dblpURLAbbrev extracts the venue abbreviation and type from a DBLP
// URL like https://dblp.org/db/journals/tkde/ or .../conf/kdd.
func dblpURLAbbrev(url string) (string, citation.VenueType) {
	url = strings.TrimSuffix(strings.TrimSpace(url), "/")
	for _, probe := range []struct {
		marker string
		vt     citation.VenueType
	}{
		{"/journals/", citation.VenueJournal},
		{"/conf/", citation.VenueConference},
	} {
		idx := strings.Index(url, probe.marker)
		if idx < 0 {
			continue
		}
		rest := url[idx+len(probe.marker):]
		if slash := strings.IndexByte(rest, '/'); slash >= 0 {
			rest = rest[:slash]
		}
		if rest != "" {
			return strings.ToLower(rest), probe.vt
		}
	}
	return "", citation.VenueUnknown
}
