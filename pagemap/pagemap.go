package pagemap

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Createyourfreeacc/Beook2PDF-sub000/model"
)

const markerSelector = "span.pagenumber, span[data-page-number]"

// Marker returns the printed page number of a document: the last marker span
// in document order, read from data-page-number or its text. Markers that do
// not hold a positive decimal number count as absent.
func Marker(html string) (int, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, false
	}

	s := doc.Find(markerSelector).Last()
	if s.Length() == 0 {
		return 0, false
	}

	raw, ok := s.Attr("data-page-number")
	if !ok {
		raw = s.Text()
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Assign numbers the documents 1..N in order, attaching their markers.
func Assign(docs []string) []model.PageMapping {
	ret := make([]model.PageMapping, len(docs))
	for i, html := range docs {
		printed, ok := Marker(html)
		ret[i] = model.PageMapping{PdfPage: i + 1, PrintedPage: printed, HasPrinted: ok}
	}
	return ret
}

// Group starts a new group whenever a printed number is lower than the last
// printed number seen in the current group. Pages without a number never
// start a group.
func Group(mappings []model.PageMapping) [][]model.PageMapping {
	var (
		groups  [][]model.PageMapping
		current []model.PageMapping
		last    int
		hasLast bool
	)

	for _, m := range mappings {
		if m.HasPrinted && hasLast && m.PrintedPage < last {
			groups = append(groups, current)
			current = nil
			hasLast = false
		}
		current = append(current, m)
		if m.HasPrinted {
			last, hasLast = m.PrintedPage, true
		}
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

// ByBook splits mappings by the known owning book of each document. The
// result has one group per book; books without documents get an empty group.
func ByBook(mappings []model.PageMapping, bookOf []int, books int) [][]model.PageMapping {
	groups := make([][]model.PageMapping, books)
	for i, m := range mappings {
		if i >= len(bookOf) || bookOf[i] < 0 || bookOf[i] >= books {
			continue
		}
		groups[bookOf[i]] = append(groups[bookOf[i]], m)
	}
	return groups
}

// Reconcile checks the printed-number grouping against the known book
// ownership of each document. It always returns one group per book; matched
// reports whether the heuristic agreed with the ownership split.
func Reconcile(mappings []model.PageMapping, bookOf []int, books int) ([][]model.PageMapping, bool) {
	explicit := ByBook(mappings, bookOf, books)
	heuristic := Group(mappings)

	var nonEmpty [][]model.PageMapping
	for _, g := range explicit {
		if len(g) > 0 {
			nonEmpty = append(nonEmpty, g)
		}
	}

	if len(nonEmpty) != len(heuristic) {
		return explicit, false
	}
	for i := range heuristic {
		if len(heuristic[i]) != len(nonEmpty[i]) || heuristic[i][0].PdfPage != nonEmpty[i][0].PdfPage {
			return explicit, false
		}
	}
	return explicit, true
}

// Sizes returns the number of pages in each group.
func Sizes(groups [][]model.PageMapping) []int {
	ret := make([]int, len(groups))
	for i, g := range groups {
		ret[i] = len(g)
	}
	return ret
}
