package ranktab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matsen/scholarank/internal/citation"
)

func writeTable(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCCF(t *testing.T) {
	path := writeTable(t, "ccf.csv", `name,abbrev,type,rank,url
IEEE Transactions on Software Engineering,TSE,journal,A,https://dblp.org/db/journals/tse/
ACM SIGKDD Conference on Knowledge Discovery and Data Mining,,conference,A,https://dblp.org/db/conf/kdd/
Empirical Software Engineering,,journal,B类,https://dblp.org/db/journals/ese/
Some Venue Without Rank,SVW,journal,,https://dblp.org/db/journals/svw/
`)

	tab, err := LoadCCF(path)
	if err != nil {
		t.Fatal(err)
	}
	if tab.Name != "ccf" || tab.JournalOnly {
		t.Errorf("Name = %q, JournalOnly = %v", tab.Name, tab.JournalOnly)
	}
	if tab.Len() != 3 {
		t.Fatalf("Len = %d, want 3 (rankless row skipped)", tab.Len())
	}

	e, ok := tab.ByAbbrev(citation.VenueJournal, "tse")
	if !ok {
		t.Fatal("ByAbbrev(tse) missed")
	}
	if e.Tier != "A" || e.FullName != "IEEE Transactions on Software Engineering" {
		t.Errorf("tse entry = %+v", e)
	}

	// Abbrev fell back to the DBLP URL segment.
	if e, ok := tab.ByAbbrev(citation.VenueConference, "kdd"); !ok || e.Tier != "A" {
		t.Errorf("ByAbbrev(kdd) = %+v, %v", e, ok)
	}

	// "B类" reduces to "B".
	if e, ok := tab.ByAbbrev(citation.VenueJournal, "ese"); !ok || e.Tier != "B" {
		t.Errorf("ByAbbrev(ese) = %+v, %v", e, ok)
	}
}

func TestLoadCCFDuplicateAbbrev(t *testing.T) {
	path := writeTable(t, "ccf.csv", `name,abbrev,type,rank,url
IEEE Transactions on Software Engineering,TSE,journal,A,
Transactions on Software Engineering Reprint,TSE,journal,B,
`)

	tab, err := LoadCCF(path)
	if err != nil {
		t.Fatal(err)
	}
	if tab.Len() != 2 {
		t.Fatalf("Len = %d, want 2 (both rows kept, one index slot)", tab.Len())
	}

	e, ok := tab.ByAbbrev(citation.VenueJournal, "TSE")
	if !ok || e.Tier != "A" {
		t.Fatalf("ByAbbrev(TSE) = %+v, %v; first loaded row should win", e, ok)
	}

	conflicts := tab.Conflicts()
	if len(conflicts) != 1 {
		t.Fatalf("got %d conflicts, want 1", len(conflicts))
	}
	c := conflicts[0]
	if c.Kind != "abbrev" || c.Kept != "IEEE Transactions on Software Engineering" {
		t.Errorf("conflict = %+v", c)
	}
}

func TestLoadCAS(t *testing.T) {
	path := writeTable(t, "cas.csv", `journal,issn,zone,top
IEEE Transactions on Knowledge and Data Engineering,1041-4347/1558-2191,2,no
Nature Machine Intelligence,2522-5839,1 [5/135],是
Journal of Systems and Software,0164-1212,3 [224/758],
Unzoned Journal,1111-2222,unranked,
`)

	tab, err := LoadCAS(path)
	if err != nil {
		t.Fatal(err)
	}
	if !tab.JournalOnly {
		t.Error("CAS table should be journal-only")
	}
	if tab.Len() != 3 {
		t.Fatalf("Len = %d, want 3 (unzoned row skipped)", tab.Len())
	}

	// Both halves of an ISSN/EISSN pair are indexed.
	for _, issn := range []string{"1041-4347", "1558-2191"} {
		e, ok := tab.ByISSN(issn)
		if !ok || e.Tier != "2" {
			t.Errorf("ByISSN(%s) = %+v, %v", issn, e, ok)
		}
	}

	e, ok := tab.ByISSN("2522-5839")
	if !ok {
		t.Fatal("ByISSN(2522-5839) missed")
	}
	if e.Tier != "1" {
		t.Errorf("zone = %q, want suffix stripped to 1", e.Tier)
	}
	if !e.IsTop {
		t.Error("IsTop = false, want true for 是")
	}

	if e, ok := tab.ByISSN("0164-1212"); !ok || e.Tier != "3" || e.IsTop {
		t.Errorf("ByISSN(0164-1212) = %+v, %v", e, ok)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadCCF(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Error("LoadCCF on a missing file should fail")
	}
}

func TestLoadHeaderOnly(t *testing.T) {
	path := writeTable(t, "ccf.csv", "name,abbrev,type,rank,url\n")
	if _, err := LoadCCF(path); err == nil {
		t.Error("a table with no data rows should fail validation")
	}
}

func TestByNameNormalization(t *testing.T) {
	tab := New("ccf", false)
	tab.Add(Entry{
		FullName: "IEEE Transactions on Knowledge and Data Engineering",
		Tier:     "A",
		Type:     citation.VenueJournal,
	})

	e, ok := tab.ByName("ieee transactions knowledge data engineering")
	if !ok || e.Tier != "A" {
		t.Fatalf("ByName = %+v, %v", e, ok)
	}
}

func TestLoadCCFTypeColumn(t *testing.T) {
	// No url column values: the type column alone must scope the rows.
	path := writeTable(t, "ccf.csv", `name,abbrev,type,rank,url
IEEE Transactions on Software Engineering,TSE,journal,A,
International Conference on Software Engineering,ICSE,conference,A,
Some Unscoped Venue,SUV,periodical,B,
`)

	tab, err := LoadCCF(path)
	if err != nil {
		t.Fatal(err)
	}

	e, ok := tab.ByAbbrev(citation.VenueJournal, "tse")
	if !ok || e.Type != citation.VenueJournal {
		t.Errorf("tse = %+v, %v", e, ok)
	}
	e, ok = tab.ByAbbrev(citation.VenueConference, "icse")
	if !ok || e.Type != citation.VenueConference {
		t.Errorf("icse = %+v, %v", e, ok)
	}
	// Unrecognized type cell stays unscoped but still loads.
	e, ok = tab.ByAbbrev(citation.VenueUnknown, "suv")
	if !ok || e.Type != citation.VenueUnknown {
		t.Errorf("suv = %+v, %v", e, ok)
	}
}

func TestLoadCCFByteOrderMark(t *testing.T) {
	path := writeTable(t, "ccf.csv", "\ufeffname,abbrev,type,rank,url\nIEEE Transactions on Software Engineering,TSE,journal,A,\n")

	tab, err := LoadCCF(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tab.ByAbbrev(citation.VenueJournal, "tse"); !ok {
		t.Error("leading BOM should be stripped from the header cell")
	}
}

func TestByAbbrevUnknownTypeFallback(t *testing.T) {
	tab := New("ccf", false)
	tab.Add(ranktabEntry("The Web Conference", "www", "A", citation.VenueConference))

	e, ok := tab.ByAbbrev(citation.VenueUnknown, "www")
	if !ok || e.Tier != "A" {
		t.Fatalf("unknown-type lookup = %+v, %v; want the type-scoped row", e, ok)
	}

	// When both scopes claim an abbreviation, journal is probed first.
	tab = New("ccf", false)
	tab.Add(ranktabEntry("The Web Conference", "www", "A", citation.VenueConference))
	tab.Add(ranktabEntry("WWW Journal", "www", "B", citation.VenueJournal))
	if e, _ := tab.ByAbbrev(citation.VenueUnknown, "www"); e == nil || e.Tier != "B" {
		t.Errorf("ambiguous lookup = %+v, want the journal row", e)
	}
}

func ranktabEntry(name, abbrev, tier string, vt citation.VenueType) Entry {
	return Entry{FullName: name, Abbrev: abbrev, Tier: tier, Type: vt}
}

func TestAbbrevNamespaces(t *testing.T) {
	tab := New("ccf", false)
	tab.Add(Entry{FullName: "WWW Journal", Abbrev: "www", Tier: "B", Type: citation.VenueJournal})
	tab.Add(Entry{FullName: "The Web Conference", Abbrev: "www", Tier: "A", Type: citation.VenueConference})

	if len(tab.Conflicts()) != 0 {
		t.Fatalf("typed namespaces should not conflict: %v", tab.Conflicts())
	}
	if e, _ := tab.ByAbbrev(citation.VenueJournal, "www"); e == nil || e.Tier != "B" {
		t.Errorf("journal lookup = %+v", e)
	}
	if e, _ := tab.ByAbbrev(citation.VenueConference, "www"); e == nil || e.Tier != "A" {
		t.Errorf("conference lookup = %+v", e)
	}
}
