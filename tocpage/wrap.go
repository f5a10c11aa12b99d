package tocpage

import "strings"

// Wrap breaks text into lines no wider than width. Words wider than a whole
// line are split at the longest prefix that still fits, found by binary
// search over the measured width.
func Wrap(text string, width float64, measure func(string) float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var (
		lines []string
		cur   string
	)
	for _, w := range words {
		candidate := w
		if cur != "" {
			candidate = cur + " " + w
		}
		if measure(candidate) <= width {
			cur = candidate
			continue
		}

		if cur != "" {
			lines = append(lines, cur)
			cur = ""
		}
		for measure(w) > width {
			n := fitPrefix(w, width, measure)
			lines = append(lines, w[:n])
			w = w[n:]
		}
		cur = w
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// fitPrefix returns the byte length of the longest rune prefix of w that fits
// width. At least one rune is always taken.
func fitPrefix(w string, width float64, measure func(string) float64) int {
	offsets := make([]int, 0, len(w)+1)
	for i := range w {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(w))

	// offsets[k] is the byte length of the first k runes
	lo, hi := 1, len(offsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if measure(w[:offsets[mid]]) <= width {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return offsets[lo]
}

// Piece is the part of one entry's lines placed on a page.
type Piece struct {
	Row      int
	From, To int
}

// Paginate distributes entries of the given line counts over pages of budget
// lines; the first page loses reserved lines to the title. An entry that does
// not fit the rest of a page moves to a fresh page when it fits there whole,
// otherwise it is split.
func Paginate(sizes []int, budget, reserved int) [][]Piece {
	budget = max(budget, 1)
	reserved = min(max(reserved, 0), budget-1)

	var (
		pages   [][]Piece
		current []Piece
		used    = reserved
	)
	flush := func() {
		pages = append(pages, current)
		current = nil
		used = 0
	}

	for row, n := range sizes {
		from := 0
		if n > budget-used && n <= budget && used > 0 && len(current) > 0 {
			flush()
		}
		for from < n {
			if used == budget {
				flush()
			}
			take := min(n-from, budget-used)
			current = append(current, Piece{Row: row, From: from, To: from + take})
			used += take
			from += take
		}
	}
	if len(current) > 0 || len(pages) == 0 {
		pages = append(pages, current)
	}
	return pages
}
