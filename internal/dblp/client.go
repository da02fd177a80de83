// Package dblp fetches venue metadata (canonical title, ISSN list)
// from dblp.org venue index pages.
package dblp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/matsen/scholarank/internal/citation"
)

const (
	// BaseURL is the DBLP database root.
	BaseURL = "https://dblp.org"

	// DefaultTimeout bounds a single page fetch.
	DefaultTimeout = 60 * time.Second

	// DefaultRateLimit keeps well under DBLP's crawler tolerance.
	DefaultRateLimit = 0.5 // requests per second

	// maxBodySize caps how much of a venue page is read.
	maxBodySize = 2 << 20
)

var (
	issnRe  = regexp.MustCompile(`\b\d{4}-\d{3}[\dxX]\b`)
	h1Re    = regexp.MustCompile(`(?s)<h1[^>]*>(.*?)</h1>`)
	titleRe = regexp.MustCompile(`(?s)<title[^>]*>(.*?)</title>`)
	tagRe   = regexp.MustCompile(`<[^>]*>`)
)

// Meta is the metadata extracted from one venue page.
type Meta struct {
	Title string   `json:"title"`
	ISSNs []string `json:"issns,omitempty"`
}

// Client is a rate-limited HTTP client for DBLP venue pages.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(url, "/") }
}

// WithRateLimit overrides the request rate in requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// NewClient creates a DBLP client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		baseURL:    BaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// VenueMeta fetches the index page for a venue abbreviation and
// extracts its canonical title and ISSN list. A page that yields
// neither is reported as an error so callers do not cache blanks.
func (c *Client) VenueMeta(ctx context.Context, vt citation.VenueType, abbrev string) (Meta, error) {
	if abbrev == "" {
		return Meta{}, fmt.Errorf("empty venue abbreviation")
	}

	var section string
	switch vt {
	case citation.VenueConference:
		section = "conf"
	default:
		section = "journals"
	}
	url := fmt.Sprintf("%s/db/%s/%s/", c.baseURL, section, strings.ToLower(abbrev))

	if err := c.limiter.Wait(ctx); err != nil {
		return Meta{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Meta{}, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Meta{}, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Meta{}, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Meta{}, fmt.Errorf("reading %s: %w", url, err)
	}

	meta := parsePage(string(body))
	if meta.Title == "" && len(meta.ISSNs) == 0 {
		return Meta{}, fmt.Errorf("no metadata on %s", url)
	}
	return meta, nil
}

// parsePage pulls the venue title (first h1, falling back to the page
// title minus the "dblp: " prefix) and every ISSN-shaped token from a
// venue page.
func parsePage(html string) Meta {
	var meta Meta

	if m := h1Re.FindStringSubmatch(html); m != nil {
		meta.Title = stripTags(m[1])
	}
	if meta.Title == "" {
		if m := titleRe.FindStringSubmatch(html); m != nil {
			title := stripTags(m[1])
			title = strings.TrimSpace(strings.TrimPrefix(title, "dblp:"))
			meta.Title = title
		}
	}

	seen := make(map[string]bool)
	for _, issn := range issnRe.FindAllString(html, -1) {
		issn = strings.ToUpper(issn)
		if !seen[issn] {
			seen[issn] = true
			meta.ISSNs = append(meta.ISSNs, issn)
		}
	}
	sort.Strings(meta.ISSNs)

	return meta
}

func stripTags(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}
