package toc

import "github.com/Createyourfreeacc/Beook2PDF-sub000/model"

// ShiftBook moves the entries of one book that sit at or after pdf page from
// by n pages.
func ShiftBook(entries [][]model.TOCEntry, book, from, n int) {
	if book < 0 || book >= len(entries) || n == 0 {
		return
	}
	for i := range entries[book] {
		if entries[book][i].PdfPage >= from {
			entries[book][i].PdfPage += n
		}
	}
}

// ShiftAfter moves every entry of the books following book by n pages.
func ShiftAfter(entries [][]model.TOCEntry, book, n int) {
	if n == 0 {
		return
	}
	for bi := book + 1; bi < len(entries); bi++ {
		for i := range entries[bi] {
			entries[bi][i].PdfPage += n
		}
	}
}

// ShiftFrom moves every entry of every book at or after pdf page from by n.
func ShiftFrom(entries [][]model.TOCEntry, from, n int) {
	if n == 0 {
		return
	}
	for bi := range entries {
		for i := range entries[bi] {
			if entries[bi][i].PdfPage >= from {
				entries[bi][i].PdfPage += n
			}
		}
	}
}
