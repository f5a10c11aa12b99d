package model

// TOCRow is one table-of-contents row as listed by the catalog.
type TOCRow struct {
	Id          int64
	IssueId     int64
	PrintedPage int
	Label       string
	Level       int
	OrderHint   int
}

type TOCEntry struct {
	BookPage  int
	PdfPage   int
	Label     string
	Level     int
	OrderHint int
	IssueId   int64
	// Synthetic marks the book-title root added by the merge.
	Synthetic bool
}

type PageMapping struct {
	PdfPage     int
	PrintedPage int
	HasPrinted  bool
}

func CloneEntries(books [][]TOCEntry) [][]TOCEntry {
	out := make([][]TOCEntry, len(books))
	for i, entries := range books {
		out[i] = append([]TOCEntry(nil), entries...)
	}
	return out
}

func CloneGroups(groups [][]PageMapping) [][]PageMapping {
	out := make([][]PageMapping, len(groups))
	for i, group := range groups {
		out[i] = append([]PageMapping(nil), group...)
	}
	return out
}
