package toc

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/Createyourfreeacc/Beook2PDF-sub000/model"
)

func mappings(from, to, pdfStart int) []model.PageMapping {
	var ret []model.PageMapping
	for p := from; p <= to; p++ {
		ret = append(ret, model.PageMapping{PdfPage: pdfStart + p - from, PrintedPage: p, HasPrinted: true})
	}
	return ret
}

func TestMergeScenario(t *testing.T) {
	books := []*model.Book{{Id: 1, Title: "Physik", IssueIds: []int64{10}}}
	rows := []*model.TOCRow{
		{Id: 1, IssueId: 10, PrintedPage: 1, Label: "Einleitung", Level: 1},
		{Id: 2, IssueId: 10, PrintedPage: 5, Label: "Kräfte", Level: 2},
		{Id: 3, IssueId: 10, PrintedPage: 9, Label: "Energie", Level: 1},
	}
	groups := [][]model.PageMapping{mappings(1, 12, 1)}

	got := Merge(books, rows, groups)[0]
	want := []model.TOCEntry{
		{BookPage: 1, PdfPage: 1, Label: "Physik", Level: 1, IssueId: 10, Synthetic: true},
		{BookPage: 1, PdfPage: 1, Label: "Einleitung", Level: 2, IssueId: 10},
		{BookPage: 5, PdfPage: 5, Label: "Kräfte", Level: 3, IssueId: 10},
		{BookPage: 9, PdfPage: 9, Label: "Energie", Level: 2, IssueId: 10},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Merge =\n%+v\nwant\n%+v", got, want)
	}
}

func TestMergeDropsUnresolvable(t *testing.T) {
	books := []*model.Book{{Title: "A", IssueIds: []int64{10}}}
	rows := []*model.TOCRow{
		{IssueId: 99, PrintedPage: 1, Label: "other book"},
		{IssueId: 10, PrintedPage: 0, Label: "no page"},
		{IssueId: 10, PrintedPage: 2, Label: "  "},
		{IssueId: 10, PrintedPage: 40, Label: "unmapped"},
		{IssueId: 10, PrintedPage: 3, Label: "kept", Level: 1},
	}

	got := Merge(books, rows, [][]model.PageMapping{mappings(1, 5, 1)})[0]
	if len(got) != 2 || got[1].Label != "kept" {
		t.Fatalf("Merge = %+v, want root plus kept", got)
	}
}

func TestMergeEmptyBook(t *testing.T) {
	books := []*model.Book{{Title: "A", IssueIds: []int64{10}}, {Title: "B", IssueIds: []int64{20}}}
	rows := []*model.TOCRow{{IssueId: 20, PrintedPage: 1, Label: "x", Level: 1}}
	groups := [][]model.PageMapping{mappings(1, 3, 1), mappings(1, 3, 4)}

	got := Merge(books, rows, groups)
	if len(got) != 2 || len(got[0]) != 0 {
		t.Fatalf("first book should have no entries: %+v", got)
	}
	if got[1][0].PdfPage != 4 || got[1][0].Label != "B" {
		t.Errorf("second book root = %+v", got[1][0])
	}
}

func TestMergeFirstOccurrenceWins(t *testing.T) {
	books := []*model.Book{{Title: "A", IssueIds: []int64{10}}}
	groups := [][]model.PageMapping{{
		{PdfPage: 1, PrintedPage: 3, HasPrinted: true},
		{PdfPage: 2, PrintedPage: 3, HasPrinted: true},
	}}
	got := Merge(books, []*model.TOCRow{{IssueId: 10, PrintedPage: 3, Label: "x"}}, groups)[0]
	if got[1].PdfPage != 1 {
		t.Errorf("pdf page = %d, want 1", got[1].PdfPage)
	}
}

func TestMergeDeterministic(t *testing.T) {
	books := []*model.Book{{Title: "A", IssueIds: []int64{10, 11}}}
	var rows []*model.TOCRow
	for i := 0; i < 30; i++ {
		rows = append(rows, &model.TOCRow{
			Id:          int64(i),
			IssueId:     10 + int64(i%2),
			PrintedPage: 1 + i%7,
			Label:       string(rune('a' + i%5)),
			Level:       1 + i%3,
			OrderHint:   i % 4,
		})
	}
	groups := [][]model.PageMapping{mappings(1, 10, 1)}

	first := Merge(books, rows, groups)
	r := rand.New(rand.NewSource(1))
	for n := 0; n < 10; n++ {
		shuffled := append([]*model.TOCRow(nil), rows...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got := Merge(books, shuffled, groups)
		for i := range got[0] {
			a, b := got[0][i], first[0][i]
			if a.BookPage != b.BookPage || a.OrderHint != b.OrderHint || a.Label != b.Label {
				t.Fatalf("run %d position %d: %+v != %+v", n, i, a, b)
			}
		}
	}
}

func TestDropLeadingDuplicate(t *testing.T) {
	tests := []struct {
		name string
		in   []model.TOCEntry
		drop bool
	}{
		{
			name: "deeper first on equal hint",
			in:   []model.TOCEntry{{BookPage: 1, PdfPage: 1, Level: 2}, {BookPage: 1, PdfPage: 1, Level: 1}},
			drop: true,
		},
		{
			name: "higher hint first",
			in:   []model.TOCEntry{{BookPage: 1, PdfPage: 1, OrderHint: 2}, {BookPage: 1, PdfPage: 1, OrderHint: 1, Level: 3}},
			drop: true,
		},
		{
			name: "same level",
			in:   []model.TOCEntry{{BookPage: 1, PdfPage: 1, Level: 1}, {BookPage: 1, PdfPage: 1, Level: 1}},
		},
		{
			name: "different page",
			in:   []model.TOCEntry{{BookPage: 1, PdfPage: 1, Level: 2}, {BookPage: 2, PdfPage: 2, Level: 1}},
		},
		{
			name: "single",
			in:   []model.TOCEntry{{BookPage: 1, PdfPage: 1, Level: 2}},
		},
	}

	for _, tt := range tests {
		got := dropLeadingDuplicate(tt.in)
		if dropped := len(got) < len(tt.in); dropped != tt.drop {
			t.Errorf("%s: dropped = %v, want %v", tt.name, dropped, tt.drop)
		}
	}
}

func TestOffsetLaw(t *testing.T) {
	entries := [][]model.TOCEntry{
		{{PdfPage: 1}, {PdfPage: 3}, {PdfPage: 5}},
		{{PdfPage: 7}, {PdfPage: 9}},
	}
	before := model.CloneEntries(entries)

	const inserted, at = 2, 3
	ShiftBook(entries, 0, at, inserted)
	ShiftAfter(entries, 0, inserted)

	for i, e := range entries[0] {
		want := before[0][i].PdfPage
		if want >= at {
			want += inserted
		}
		if e.PdfPage != want {
			t.Errorf("book 0 entry %d: %d, want %d", i, e.PdfPage, want)
		}
	}
	for i, e := range entries[1] {
		if e.PdfPage != before[1][i].PdfPage+inserted {
			t.Errorf("book 1 entry %d: %d, want %d", i, e.PdfPage, before[1][i].PdfPage+inserted)
		}
	}
}

func TestShiftFrom(t *testing.T) {
	entries := [][]model.TOCEntry{{{PdfPage: 2}, {PdfPage: 6}}, {{PdfPage: 9}}}
	ShiftFrom(entries, 6, 3)
	if entries[0][0].PdfPage != 2 || entries[0][1].PdfPage != 9 || entries[1][0].PdfPage != 12 {
		t.Errorf("entries = %+v", entries)
	}
}
