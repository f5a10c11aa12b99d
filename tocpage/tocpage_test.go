package tocpage

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/Createyourfreeacc/Beook2PDF-sub000/document"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/model"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/toc"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// runeMeasurer makes every rune one point wide.
type runeMeasurer struct{}

func (runeMeasurer) Width(s string, _ document.Font) float64 {
	return float64(utf8.RuneCountInString(s))
}

func runeWidth(s string) float64 { return float64(utf8.RuneCountInString(s)) }

func mappings(from, to, pdfStart int) []model.PageMapping {
	var ret []model.PageMapping
	for p := from; p <= to; p++ {
		ret = append(ret, model.PageMapping{PdfPage: pdfStart + p - from, PrintedPage: p, HasPrinted: true})
	}
	return ret
}

func TestWrap(t *testing.T) {
	tests := []struct {
		text  string
		width float64
		want  []string
	}{
		{"short", 10, []string{"short"}},
		{"one two three", 7, []string{"one two", "three"}},
		{"Elektrizitätslehre und Magnetismus", 8, []string{"Elektriz", "itätsleh", "re und", "Magnetis", "mus"}},
		{"   ", 5, []string{""}},
		{"a verylongword", 4, []string{"a", "very", "long", "word"}},
	}

	for _, tt := range tests {
		got := Wrap(tt.text, tt.width, runeWidth)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Wrap(%q, %v) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestWrapNarrowerThanOneRune(t *testing.T) {
	got := Wrap("abc", 0.5, runeWidth)
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Wrap = %q", got)
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name     string
		sizes    []int
		budget   int
		reserved int
		want     [][]Piece
	}{
		{
			name:   "fits one page",
			sizes:  []int{1, 2},
			budget: 10, reserved: 3,
			want: [][]Piece{{{0, 0, 1}, {1, 0, 2}}},
		},
		{
			name:   "moves entry that fits a fresh page",
			sizes:  []int{3, 2},
			budget: 6, reserved: 2,
			want: [][]Piece{{{0, 0, 3}}, {{1, 0, 2}}},
		},
		{
			name:   "splits entry longer than a page",
			sizes:  []int{1, 7},
			budget: 4, reserved: 1,
			want: [][]Piece{{{0, 0, 1}, {1, 0, 2}}, {{1, 2, 6}}, {{1, 6, 7}}},
		},
		{
			name:   "empty",
			budget: 4,
			want:   [][]Piece{nil},
		},
	}

	for _, tt := range tests {
		got := Paginate(tt.sizes, tt.budget, tt.reserved)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: Paginate = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestInsertionPoint(t *testing.T) {
	withCover := append([]model.PageMapping{{PdfPage: 20}, {PdfPage: 21}}, mappings(3, 14, 22)...)

	gapInMiddle := mappings(1, 4, 1)
	gapInMiddle = append(gapInMiddle, mappings(7, 12, 5)...)

	tests := []struct {
		name  string
		group []model.PageMapping
		want  int
	}{
		{"no gap appends", mappings(1, 12, 1), 13},
		{"cover pages before page 3", withCover, 22},
		{"gap after page 4", gapInMiddle, 5},
		{"nothing after gap", mappings(1, 3, 1), 4},
	}

	for _, tt := range tests {
		if got := InsertionPoint(tt.group); got != tt.want {
			t.Errorf("%s: InsertionPoint = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestEligible(t *testing.T) {
	if Eligible(mappings(1, 9, 1)) {
		t.Error("9 printed pages should not be eligible")
	}
	if !Eligible(mappings(1, 10, 1)) {
		t.Error("10 printed pages should be eligible")
	}
}

func TestView(t *testing.T) {
	entries := []model.TOCEntry{
		{Label: "Book", Level: 1, Synthetic: true},
		{Label: "A", Level: 2},
		{Label: "B", Level: 3},
	}
	rows := View(entries)
	if len(rows) != 2 || rows[0].Index != 1 || rows[0].Entry.Level != 1 || rows[1].Entry.Level != 2 {
		t.Errorf("View = %+v", rows)
	}
	if entries[1].Level != 2 {
		t.Error("View changed the canonical list")
	}
}

func blankDoc(n int) *document.Document {
	d := document.New(document.A4)
	for i := 0; i < n; i++ {
		d.Append(document.NewPage())
	}
	return d
}

func TestRunSingleBook(t *testing.T) {
	books := []*model.Book{{Id: 1, Title: "Physik", IssueIds: []int64{10}, Language: "de"}}
	groups := [][]model.PageMapping{mappings(1, 12, 1)}
	rows := []*model.TOCRow{
		{IssueId: 10, PrintedPage: 1, Label: "Einleitung", Level: 1},
		{IssueId: 10, PrintedPage: 5, Label: "Kräfte", Level: 2},
		{IssueId: 10, PrintedPage: 9, Label: "Energie", Level: 1},
	}
	entries := toc.Merge(books, rows, groups)
	if len(entries[0]) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries[0]))
	}

	doc := blankDoc(12)
	last, _ := doc.PageAt(12)

	in := New(document.A4, runeMeasurer{}, discard)
	inserted, err := in.Run(context.Background(), doc, books, entries, groups)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if inserted != 1 || doc.Len() != 13 {
		t.Fatalf("inserted %d pages, doc has %d; want 1 and 13", inserted, doc.Len())
	}
	if doc.Index(last) != 12 {
		t.Errorf("last content page moved to %d", doc.Index(last))
	}
	for _, e := range entries[0] {
		if e.PdfPage != e.BookPage {
			t.Errorf("entry %q moved to %d", e.Label, e.PdfPage)
		}
	}
	if doc.Links() != 3 {
		t.Errorf("got %d links, want 3", doc.Links())
	}
	if first, ok := in.FirstPage(0); !ok || doc.Index(first) != 13 {
		t.Errorf("first contents page at %d, want 13", doc.Index(first))
	}
	if _, ok := in.FirstPage(1); ok {
		t.Error("contents reported for a book that was not selected")
	}
}

func TestRunOffsetLaw(t *testing.T) {
	books := []*model.Book{
		{Id: 1, Title: "A", IssueIds: []int64{10}},
		{Id: 2, Title: "B", IssueIds: []int64{20}},
		{Id: 3, Title: "C", IssueIds: []int64{30}},
	}
	// book 2 skips printed page 2, book 3 is too short
	second := append(mappings(1, 1, 13), mappings(3, 15, 14)...)
	groups := [][]model.PageMapping{mappings(1, 12, 1), second, mappings(1, 5, 27)}

	var rows []*model.TOCRow
	for p := 1; p <= 12; p++ {
		rows = append(rows, &model.TOCRow{IssueId: 10, PrintedPage: p, Label: strings.Repeat("x", p), Level: 1})
	}
	for _, p := range []int{1, 3, 8, 15} {
		rows = append(rows, &model.TOCRow{IssueId: 20, PrintedPage: p, Label: "b", Level: 1})
	}
	rows = append(rows, &model.TOCRow{IssueId: 30, PrintedPage: 2, Label: "c", Level: 1})

	entries := toc.Merge(books, rows, groups)
	before := model.CloneEntries(entries)

	doc := blankDoc(31)
	in := New(document.A4, runeMeasurer{}, discard)
	in.MaxLines = 8

	inserted, err := in.Run(context.Background(), doc, books, entries, groups)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// book 1: 12 rows, 8 lines per page with 3 for the title -> 2 pages after page 12
	// book 2: 4 rows -> 1 page before printed page 3
	if inserted != 3 || doc.Len() != 34 {
		t.Fatalf("inserted %d, len %d; want 3 and 34", inserted, doc.Len())
	}

	for i, e := range entries[0] {
		if e.PdfPage != before[0][i].PdfPage {
			t.Errorf("book 1 entry %d moved", i)
		}
	}
	// book 2 inserts before its printed page 3 (base pdf 14, shifted to 16)
	for i, e := range entries[1] {
		want := before[1][i].PdfPage + 2
		if want >= 16 {
			want++
		}
		if e.PdfPage != want {
			t.Errorf("book 2 entry %q: pdf page %d, want %d", e.Label, e.PdfPage, want)
		}
	}
	for i, e := range entries[2] {
		if e.PdfPage != before[2][i].PdfPage+3 {
			t.Errorf("book 3 entry %d: pdf page %d, want %d", i, e.PdfPage, before[2][i].PdfPage+3)
		}
	}
	if doc.Links() != 16 {
		t.Errorf("got %d links, want 16", doc.Links())
	}
}
