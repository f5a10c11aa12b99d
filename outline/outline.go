package outline

import (
	"github.com/Createyourfreeacc/Beook2PDF-sub000/document"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/model"
)

// Node is one outline item pointing at a 1-based pdf page.
type Node struct {
	Label    string
	Page     int
	Level    int
	Children []*Node
}

// Build turns a flat, ordered TOC list into a tree. Each entry becomes a
// child of the closest preceding entry with a lower level; entries without
// one are top-level.
func Build(entries []model.TOCEntry) []*Node {
	root := &Node{Level: 0}
	stack := []*Node{root}

	for _, e := range entries {
		n := &Node{Label: e.Label, Page: e.PdfPage, Level: e.Level}
		for len(stack) > 1 && stack[len(stack)-1].Level >= n.Level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1]
		parent.Children = append(parent.Children, n)
		stack = append(stack, n)
	}
	return root.Children
}

// Forest concatenates the top-level nodes of every book in order.
func Forest(books [][]model.TOCEntry) []*Node {
	var ret []*Node
	for _, entries := range books {
		ret = append(ret, Build(entries)...)
	}
	return ret
}

// Pages looks up a page by its 1-based position.
type Pages interface {
	PageAt(n int) (*document.Page, bool)
}

// Resolve binds nodes to pages. Nodes whose page does not exist are dropped
// and their children take their place. An empty result means the document
// gets no outline.
func Resolve(nodes []*Node, pages Pages) []*document.Bookmark {
	var ret []*document.Bookmark
	for _, n := range nodes {
		children := Resolve(n.Children, pages)
		p, ok := pages.PageAt(n.Page)
		if !ok {
			ret = append(ret, children...)
			continue
		}
		ret = append(ret, &document.Bookmark{Label: n.Label, Page: p, Children: children})
	}
	return ret
}

// Count returns the number of bookmarks in the tree.
func Count(items []*document.Bookmark) int {
	n := 0
	for _, b := range items {
		n += 1 + Count(b.Children)
	}
	return n
}
