package tocpage

import "github.com/Createyourfreeacc/Beook2PDF-sub000/model"

const (
	// books ending before this printed page get no contents pages
	minPrintedPages = 10
	// printed pages scanned for the gap that receives the contents pages
	gapScanPages = 10
)

// Row is one line item of the printed contents: an entry of the canonical
// list, referenced by its index there.
type Row struct {
	Index int
	Entry model.TOCEntry
}

// View drops the synthetic title entry and moves every level up by one, so
// top-level chapters are drawn at level 1. entries is not modified.
func View(entries []model.TOCEntry) []Row {
	rows := make([]Row, 0, len(entries))
	for i, e := range entries {
		if e.Synthetic {
			continue
		}
		e.Level = max(e.Level-1, 1)
		rows = append(rows, Row{Index: i, Entry: e})
	}
	return rows
}

// Eligible reports whether a book reaches printed page 10.
func Eligible(group []model.PageMapping) bool {
	highest := 0
	for _, m := range group {
		if m.HasPrinted && m.PrintedPage > highest {
			highest = m.PrintedPage
		}
	}
	return highest >= minPrintedPages
}

// InsertionPoint returns the pdf page the contents pages are inserted before.
// It looks for the first printed page in 1..10 that has no page and picks the
// first page printed after that gap; front matter usually leaves such a gap.
// Without a gap, or without a page after it, the contents go after the
// book's last page.
func InsertionPoint(group []model.PageMapping) int {
	if len(group) == 0 {
		return 1
	}

	pdfOf := make(map[int]int)
	for _, m := range group {
		if !m.HasPrinted {
			continue
		}
		if _, ok := pdfOf[m.PrintedPage]; !ok {
			pdfOf[m.PrintedPage] = m.PdfPage
		}
	}

	after := group[len(group)-1].PdfPage + 1

	gap := 0
	for p := 1; p <= gapScanPages; p++ {
		if _, ok := pdfOf[p]; !ok {
			gap = p
			break
		}
	}
	if gap == 0 {
		return after
	}

	next, found := 0, false
	for printed := range pdfOf {
		if printed > gap && (!found || printed < next) {
			next, found = printed, true
		}
	}
	if !found {
		return after
	}
	return pdfOf[next]
}
