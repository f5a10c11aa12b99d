package toc

import (
	"sort"
	"strings"

	"github.com/Createyourfreeacc/Beook2PDF-sub000/model"
)

// Merge builds the per-book TOC lists. groups holds the page mappings of each
// selected book in selection order. Rows are resolved to pdf pages through
// their book's printed page numbers; rows that cannot be resolved are dropped.
// Every non-empty book list starts with a synthetic title entry at level 1
// and carries the catalog levels raised by one.
func Merge(books []*model.Book, rows []*model.TOCRow, groups [][]model.PageMapping) [][]model.TOCEntry {
	bookOf := make(map[int64]int)
	for bi, book := range books {
		for _, issueId := range book.IssueIds {
			if _, ok := bookOf[issueId]; !ok {
				bookOf[issueId] = bi
			}
		}
	}

	pdfOf := make([]map[int]int, len(books))
	for bi := range books {
		pdfOf[bi] = make(map[int]int)
		if bi >= len(groups) {
			continue
		}
		for _, m := range groups[bi] {
			if !m.HasPrinted {
				continue
			}
			if _, ok := pdfOf[bi][m.PrintedPage]; !ok {
				pdfOf[bi][m.PrintedPage] = m.PdfPage
			}
		}
	}

	candidates := make([][]model.TOCEntry, len(books))
	for _, row := range rows {
		bi, ok := bookOf[row.IssueId]
		if !ok {
			continue
		}
		label := strings.TrimSpace(row.Label)
		if row.PrintedPage <= 0 || label == "" {
			continue
		}
		pdfPage, ok := pdfOf[bi][row.PrintedPage]
		if !ok || pdfPage <= 0 {
			continue
		}
		candidates[bi] = append(candidates[bi], model.TOCEntry{
			BookPage:  row.PrintedPage,
			PdfPage:   pdfPage,
			Label:     label,
			Level:     row.Level,
			OrderHint: row.OrderHint,
			IssueId:   row.IssueId,
		})
	}

	ret := make([][]model.TOCEntry, len(books))
	for bi, entries := range candidates {
		Sort(entries)
		entries = dropLeadingDuplicate(entries)
		if len(entries) == 0 {
			continue
		}

		list := make([]model.TOCEntry, 0, len(entries)+1)
		list = append(list, model.TOCEntry{
			BookPage:  entries[0].BookPage,
			PdfPage:   entries[0].PdfPage,
			Label:     books[bi].DisplayTitle(),
			Level:     1,
			IssueId:   entries[0].IssueId,
			Synthetic: true,
		})
		for _, e := range entries {
			e.Level++
			list = append(list, e)
		}
		ret[bi] = list
	}
	return ret
}

// Sort orders entries by printed page, then order hint, then label.
func Sort(entries []model.TOCEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.BookPage != b.BookPage {
			return a.BookPage < b.BookPage
		}
		if a.OrderHint != b.OrderHint {
			return a.OrderHint < b.OrderHint
		}
		return a.Label < b.Label
	})
}

// dropLeadingDuplicate removes the first entry when the first two point at
// the same page and the first one ranks lower, by order hint or by depth on
// equal hints. Only the first pair is inspected.
func dropLeadingDuplicate(entries []model.TOCEntry) []model.TOCEntry {
	if len(entries) < 2 {
		return entries
	}
	a, b := entries[0], entries[1]
	if a.BookPage != b.BookPage || a.PdfPage != b.PdfPage {
		return entries
	}
	if a.OrderHint > b.OrderHint || (a.OrderHint == b.OrderHint && a.Level > b.Level) {
		return entries[1:]
	}
	return entries
}
