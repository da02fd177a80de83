package dedupe

import (
	"testing"

	"github.com/matsen/scholarank/internal/citation"
)

func rec(key, title string, authors []string, year int, kind citation.EntryKind, vt citation.VenueType) citation.Record {
	return citation.Record{
		Key:       key,
		Title:     title,
		Authors:   authors,
		Year:      year,
		EntryKind: kind,
		VenueType: vt,
	}
}

func TestDedupePreprintAndPublished(t *testing.T) {
	records := []citation.Record{
		rec("DBLP:journals/corr/abs-2201-01234", "Efficient Query Processing",
			[]string{"Jane Smith", "Wei Chen"}, 2022, citation.KindPreprint, citation.VenueJournal),
		rec("DBLP:journals/tkde/SmithC23", "Efficient Query Processing.",
			[]string{"Jane Smith", "Wei Chen"}, 2023, citation.KindPublished, citation.VenueJournal),
	}

	res := Dedupe(records)
	if len(res.Invalid) != 0 {
		t.Fatalf("unexpected invalid records: %v", res.Invalid)
	}
	if len(res.Papers) != 1 {
		t.Fatalf("got %d papers, want 1", len(res.Papers))
	}

	p := res.Papers[0]
	if p.Key != "DBLP:journals/tkde/SmithC23" {
		t.Errorf("survivor = %q, want the published record", p.Key)
	}
	if p.EntryKind != citation.KindPublished {
		t.Errorf("EntryKind = %q", p.EntryKind)
	}
	if p.Year != 2023 {
		t.Errorf("Year = %d, want 2023", p.Year)
	}
	if p.GroupSize != 2 {
		t.Errorf("GroupSize = %d, want 2", p.GroupSize)
	}
	want := []string{"DBLP:journals/corr/abs-2201-01234", "DBLP:journals/tkde/SmithC23"}
	if len(p.Provenance) != 2 || p.Provenance[0] != want[0] || p.Provenance[1] != want[1] {
		t.Errorf("Provenance = %v, want %v", p.Provenance, want)
	}
}

func TestDedupeSameTitleDifferentAuthors(t *testing.T) {
	records := []citation.Record{
		rec("a1", "Attention Is All You Need", []string{"Ashish Vaswani"}, 2017, citation.KindPublished, citation.VenueConference),
		rec("b1", "Attention Is All You Need", []string{"Grace Hopper"}, 2019, citation.KindPublished, citation.VenueJournal),
	}

	res := Dedupe(records)
	if len(res.Papers) != 2 {
		t.Fatalf("got %d papers, want 2 (no first-author token overlap)", len(res.Papers))
	}
	for _, p := range res.Papers {
		if p.GroupSize != 1 {
			t.Errorf("paper %s: GroupSize = %d, want 1", p.Key, p.GroupSize)
		}
	}
}

func TestDedupeOrderIndependent(t *testing.T) {
	base := []citation.Record{
		rec("k3", "Shared Title", []string{"Ada Lovelace"}, 2020, citation.KindPreprint, citation.VenueJournal),
		rec("k1", "Shared Title", []string{"Ada Lovelace"}, 2021, citation.KindPublished, citation.VenueJournal),
		rec("k2", "Another Work", []string{"Alan Turing"}, 1950, citation.KindPublished, citation.VenueJournal),
	}
	reversed := []citation.Record{base[2], base[1], base[0]}

	a := Dedupe(base)
	b := Dedupe(reversed)
	if len(a.Papers) != len(b.Papers) {
		t.Fatalf("paper counts differ: %d vs %d", len(a.Papers), len(b.Papers))
	}
	for i := range a.Papers {
		if a.Papers[i].Key != b.Papers[i].Key {
			t.Errorf("paper %d: survivor %q vs %q", i, a.Papers[i].Key, b.Papers[i].Key)
		}
		if a.Papers[i].GroupSize != b.Papers[i].GroupSize {
			t.Errorf("paper %d: group size %d vs %d", i, a.Papers[i].GroupSize, b.Papers[i].GroupSize)
		}
	}
}

func TestDedupeProvenancePartition(t *testing.T) {
	records := []citation.Record{
		rec("k1", "Work One", []string{"A Author"}, 2020, citation.KindPublished, citation.VenueJournal),
		rec("k2", "Work One.", []string{"A Author"}, 2019, citation.KindPreprint, citation.VenueJournal),
		rec("k3", "Work Two", []string{"B Author"}, 2021, citation.KindPublished, citation.VenueConference),
		rec("k4", "Work Three", []string{"C Author"}, 2018, citation.KindUnknown, citation.VenueUnknown),
	}

	res := Dedupe(records)
	seen := make(map[string]int)
	for _, p := range res.Papers {
		for _, key := range p.Provenance {
			seen[key]++
		}
	}
	if len(seen) != len(records) {
		t.Fatalf("provenance covers %d keys, want %d", len(seen), len(records))
	}
	for key, n := range seen {
		if n != 1 {
			t.Errorf("key %s appears in %d provenance lists", key, n)
		}
	}
}

func TestDedupeInvalid(t *testing.T) {
	records := []citation.Record{
		rec("k1", "", []string{"A Author"}, 2020, citation.KindPublished, citation.VenueJournal),
		rec("k2", "Valid Title", nil, 2020, citation.KindPublished, citation.VenueJournal),
		rec("k3", "Valid Title", []string{"B Author"}, 2020, citation.KindPublished, citation.VenueJournal),
	}

	res := Dedupe(records)
	if len(res.Papers) != 1 {
		t.Fatalf("got %d papers, want 1", len(res.Papers))
	}
	if len(res.Invalid) != 2 {
		t.Fatalf("got %d invalid, want 2", len(res.Invalid))
	}
	if res.Invalid[0].Record.Key != "k1" || res.Invalid[0].Reason != ReasonNoTitle {
		t.Errorf("invalid[0] = %s/%s", res.Invalid[0].Record.Key, res.Invalid[0].Reason)
	}
	if res.Invalid[1].Record.Key != "k2" || res.Invalid[1].Reason != ReasonNoAuthors {
		t.Errorf("invalid[1] = %s/%s", res.Invalid[1].Record.Key, res.Invalid[1].Reason)
	}
}

func TestBeats(t *testing.T) {
	tests := []struct {
		name string
		a, b citation.Record
		want bool
	}{
		{
			name: "published beats preprint",
			a:    rec("z", "t", nil, 2019, citation.KindPublished, citation.VenueJournal),
			b:    rec("a", "t", nil, 2023, citation.KindPreprint, citation.VenueJournal),
			want: true,
		},
		{
			name: "known venue type beats unknown",
			a:    rec("z", "t", nil, 2019, citation.KindPublished, citation.VenueConference),
			b:    rec("a", "t", nil, 2023, citation.KindPublished, citation.VenueUnknown),
			want: true,
		},
		{
			name: "later year wins",
			a:    rec("z", "t", nil, 2023, citation.KindPublished, citation.VenueJournal),
			b:    rec("a", "t", nil, 2019, citation.KindPublished, citation.VenueJournal),
			want: true,
		},
		{
			name: "key breaks full ties",
			a:    rec("a", "t", nil, 2023, citation.KindPublished, citation.VenueJournal),
			b:    rec("z", "t", nil, 2023, citation.KindPublished, citation.VenueJournal),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := beats(tt.a, tt.b); got != tt.want {
				t.Errorf("beats = %v, want %v", got, tt.want)
			}
		})
	}
}
