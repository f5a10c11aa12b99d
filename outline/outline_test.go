package outline

import (
	"testing"

	"github.com/Createyourfreeacc/Beook2PDF-sub000/document"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/model"
)

func labels(nodes []*Node) []string {
	var ret []string
	for _, n := range nodes {
		ret = append(ret, n.Label)
	}
	return ret
}

func TestBuild(t *testing.T) {
	entries := []model.TOCEntry{
		{Label: "Book", Level: 1, PdfPage: 1},
		{Label: "1", Level: 2, PdfPage: 1},
		{Label: "1.1", Level: 3, PdfPage: 2},
		{Label: "1.1.1", Level: 4, PdfPage: 2},
		{Label: "1.2", Level: 3, PdfPage: 3},
		{Label: "2", Level: 2, PdfPage: 4},
		{Label: "deep jump", Level: 5, PdfPage: 5},
	}

	roots := Build(entries)
	if len(roots) != 1 || roots[0].Label != "Book" {
		t.Fatalf("roots = %v", labels(roots))
	}
	book := roots[0]
	if got := labels(book.Children); len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Fatalf("chapters = %v", got)
	}
	if got := labels(book.Children[0].Children); len(got) != 2 || got[1] != "1.2" {
		t.Errorf("sections = %v", got)
	}
	if got := labels(book.Children[1].Children); len(got) != 1 || got[0] != "deep jump" {
		t.Errorf("level jump should attach to the previous node, got %v", got)
	}
}

func TestBuildScenario(t *testing.T) {
	entries := []model.TOCEntry{
		{Label: "Physik", Level: 1, PdfPage: 1, Synthetic: true},
		{Label: "Einleitung", Level: 2, PdfPage: 1},
		{Label: "Kräfte", Level: 3, PdfPage: 5},
		{Label: "Energie", Level: 2, PdfPage: 9},
	}
	roots := Build(entries)
	if len(roots) != 1 || len(roots[0].Children) != 2 {
		t.Fatalf("want title root with two children, got %v / %d", labels(roots), len(roots[0].Children))
	}
}

func TestForest(t *testing.T) {
	books := [][]model.TOCEntry{
		{{Label: "A", Level: 1}, {Label: "a", Level: 2}},
		nil,
		{{Label: "B", Level: 1}},
	}
	if got := labels(Forest(books)); len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("Forest = %v", got)
	}
}

func TestResolveValidity(t *testing.T) {
	doc := document.New(document.A4)
	for i := 0; i < 3; i++ {
		doc.Append(document.NewPage())
	}

	nodes := []*Node{
		{Label: "A", Page: 1, Children: []*Node{
			{Label: "bad", Page: 9, Children: []*Node{{Label: "kept", Page: 3}}},
			{Label: "zero", Page: 0},
		}},
		{Label: "gone", Page: -1},
	}

	items := Resolve(nodes, doc)
	if Count(items) != 2 {
		t.Fatalf("got %d bookmarks, want 2", Count(items))
	}
	if items[0].Children[0].Label != "kept" {
		t.Errorf("child not re-parented: %+v", items[0].Children[0])
	}

	var check func([]*document.Bookmark)
	check = func(items []*document.Bookmark) {
		for _, b := range items {
			if p := doc.Index(b.Page); p < 1 || p > doc.Len() {
				t.Errorf("bookmark %q points at page %d", b.Label, p)
			}
			check(b.Children)
		}
	}
	check(items)

	if got := Resolve([]*Node{{Page: 42}}, doc); len(got) != 0 {
		t.Errorf("expected no outline, got %d items", len(got))
	}
}
