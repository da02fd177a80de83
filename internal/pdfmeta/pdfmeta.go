// Package pdfmeta extracts bibliographic hints (DOI, title) from
// paper PDFs so stray files can be appended to a record set before
// analysis.
package pdfmeta

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/matsen/scholarank/internal/citation"
)

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// doiSearchPages is how deep to look for a DOI; it is almost always on
// the first page.
const doiSearchPages = 3

// ExtractDOI extracts a DOI from a PDF file. Returns "" (not an
// error) when no DOI is present.
func ExtractDOI(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	maxPages := doiSearchPages
	if r.NumPage() < maxPages {
		maxPages = r.NumPage()
	}

	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if doi := findDOI(text); doi != "" {
			return doi, nil
		}
	}
	return "", nil
}

// ExtractTitle attempts to extract the title from a PDF, taking the
// first substantial non-header line of page one.
func ExtractTitle(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if r.NumPage() < 1 {
		return "", nil
	}
	page := r.Page(1)
	if page.V.IsNull() {
		return "", nil
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 20 && !isHeaderLine(line) {
			return line, nil
		}
	}
	return "", nil
}

// Record builds a raw citation record from a PDF's extractable
// metadata. The record is minimal: no authors and no venue can be
// read reliably from layout, so it lands on the invalid side list
// unless merged with a parsed citation later.
func Record(filePath string) (citation.Record, error) {
	title, err := ExtractTitle(filePath)
	if err != nil {
		return citation.Record{}, fmt.Errorf("extracting title: %w", err)
	}
	doi, err := ExtractDOI(filePath)
	if err != nil {
		return citation.Record{}, fmt.Errorf("extracting doi: %w", err)
	}

	kind := citation.KindUnknown
	if doi != "" {
		kind = citation.KindPublished
	}

	return citation.Record{
		Key:       "pdf:" + filepath.Base(filePath),
		Title:     title,
		DOI:       doi,
		VenueType: citation.VenueUnknown,
		EntryKind: kind,
	}, nil
}

// findDOI finds the first valid DOI in text.
func findDOI(text string) string {
	for _, m := range doiPattern.FindAllString(text, -1) {
		m = strings.TrimRight(m, ".,;:)")
		if isValidDOI(m) {
			return m
		}
	}
	return ""
}

// isValidDOI performs basic validation on a DOI.
func isValidDOI(doi string) bool {
	if len(doi) < 10 {
		return false
	}
	if !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	return slashIdx != -1 && slashIdx < len(doi)-1
}

// isHeaderLine checks if a line is likely a running header or footer
// rather than the title.
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	if strings.Contains(lower, "journal") {
		return true
	}
	if strings.Contains(lower, "volume") && strings.Contains(lower, "issue") {
		return true
	}
	if strings.Contains(lower, "copyright") {
		return true
	}
	if strings.Contains(lower, "article") && strings.Contains(lower, "published") {
		return true
	}
	return false
}
