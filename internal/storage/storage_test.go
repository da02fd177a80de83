package storage

import (
	"path/filepath"
	"testing"

	"github.com/matsen/scholarank/internal/citation"
	"github.com/matsen/scholarank/internal/dblp"
	"github.com/matsen/scholarank/internal/dedupe"
	"github.com/matsen/scholarank/internal/match"
)

func TestCacheRoundTrip(t *testing.T) {
	cache, err := OpenCache(filepath.Join(t.TempDir(), "sub", "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	meta := dblp.Meta{
		Title: "IEEE Transactions on Knowledge and Data Engineering",
		ISSNs: []string{"1041-4347", "1558-2191"},
	}
	if err := cache.Put(citation.VenueJournal, "tkde", meta); err != nil {
		t.Fatal(err)
	}

	got, ok, err := cache.Get(citation.VenueJournal, "tkde")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("cache miss after Put")
	}
	if got.Title != meta.Title {
		t.Errorf("Title = %q", got.Title)
	}
	if len(got.ISSNs) != 2 || got.ISSNs[0] != "1041-4347" {
		t.Errorf("ISSNs = %v", got.ISSNs)
	}

	// Same abbreviation in the conference namespace is a miss.
	if _, ok, err := cache.Get(citation.VenueConference, "tkde"); err != nil || ok {
		t.Errorf("Get(conference, tkde) = %v, %v", ok, err)
	}
}

func TestCacheMiss(t *testing.T) {
	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	_, ok, err := cache.Get(citation.VenueJournal, "absent")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("want miss on empty cache")
	}
}

func TestCacheReplace(t *testing.T) {
	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	if err := cache.Put(citation.VenueJournal, "x", dblp.Meta{Title: "Old"}); err != nil {
		t.Fatal(err)
	}
	if err := cache.Put(citation.VenueJournal, "x", dblp.Meta{Title: "New"}); err != nil {
		t.Fatal(err)
	}

	got, ok, err := cache.Get(citation.VenueJournal, "x")
	if err != nil || !ok {
		t.Fatal(err, ok)
	}
	if got.Title != "New" {
		t.Errorf("Title = %q, want replacement to win", got.Title)
	}
}

func TestPapersRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.jsonl")

	papers := []match.RankedPaper{
		{
			Paper: dedupe.Paper{
				Record: citation.Record{
					Key:       "DBLP:journals/tkde/SmithC23",
					Title:     "Efficient Query Processing.",
					Authors:   []string{"Jane Smith", "Wei Chen"},
					Year:      2023,
					VenueRaw:  "IEEE Trans. on Knowl. and Data Eng.",
					VenueType: citation.VenueJournal,
					EntryKind: citation.KindPublished,
				},
				GroupSize:  2,
				Provenance: []string{"DBLP:journals/corr/abs-2201-01234", "DBLP:journals/tkde/SmithC23"},
			},
			VenueKey: "ieee trans knowl data eng",
			CCF:      match.Result{Matched: true, Table: "ccf", Tier: "A", Strategy: match.StrategyAbbrev},
			CAS:      match.Result{Table: "cas", Reason: match.ReasonScopeExcluded},
		},
		{
			Paper:    dedupe.Paper{Record: citation.Record{Key: "k2", Title: "Other"}, GroupSize: 1},
			VenueKey: "",
			CCF:      match.Result{Table: "ccf", Reason: match.ReasonEmptyVenue},
			CAS:      match.Result{Table: "cas", Reason: match.ReasonEmptyVenue},
		},
	}

	if err := WritePapers(path, papers); err != nil {
		t.Fatal(err)
	}
	got, err := ReadPapers(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d papers", len(got))
	}

	p := got[0]
	if p.Key != papers[0].Key || p.GroupSize != 2 || len(p.Provenance) != 2 {
		t.Errorf("paper 0 = %+v", p.Paper)
	}
	if !p.CCF.Matched || p.CCF.Tier != "A" || p.CCF.Strategy != match.StrategyAbbrev {
		t.Errorf("paper 0 CCF = %+v", p.CCF)
	}
	if p.CAS.Matched || p.CAS.Reason != match.ReasonScopeExcluded {
		t.Errorf("paper 0 CAS = %+v", p.CAS)
	}
}

func TestReadPapersMissingFile(t *testing.T) {
	papers, err := ReadPapers(filepath.Join(t.TempDir(), "absent.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	if papers != nil {
		t.Errorf("got %v, want nil for a missing file", papers)
	}
}
