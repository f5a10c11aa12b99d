package export

import (
	"fmt"
	"slices"

	"github.com/Createyourfreeacc/Beook2PDF-sub000/model"
)

// Selection is the ordered list of books to export. Toggled books also get
// their quiz exported when quiz export is requested.
type Selection struct {
	Books []*model.Book
}

// Select picks books from the catalog in the order of ids. Books listed in
// toggled are marked for quiz export; an empty toggled list marks all of them.
func Select(catalog []*model.Book, ids []int64, toggled []int64) (Selection, error) {
	byId := make(map[int64]*model.Book, len(catalog))
	for _, b := range catalog {
		byId[b.Id] = b
	}

	var sel Selection
	seen := make(map[int64]bool)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		b, ok := byId[id]
		if !ok {
			return Selection{}, fmt.Errorf("book %d: %w", id, ErrUnknownBook)
		}
		cp := *b
		cp.IssueIds = slices.Clone(b.IssueIds)
		cp.Toggled = len(toggled) == 0 || slices.Contains(toggled, id)
		sel.Books = append(sel.Books, &cp)
	}
	return sel, nil
}

func (s Selection) validate() error {
	if len(s.Books) == 0 {
		return ErrEmptySelection
	}
	for i, b := range s.Books {
		if b == nil {
			return fmt.Errorf("book #%d is missing: %w", i, ErrEmptySelection)
		}
		if len(b.IssueIds) == 0 {
			return fmt.Errorf("book %d has no issues: %w", b.Id, ErrEmptySelection)
		}
	}
	return nil
}

func (s Selection) issueIds(toggledOnly bool) []int64 {
	var ret []int64
	seen := make(map[int64]bool)
	for _, b := range s.Books {
		if toggledOnly && !b.Toggled {
			continue
		}
		for _, id := range b.IssueIds {
			if !seen[id] {
				seen[id] = true
				ret = append(ret, id)
			}
		}
	}
	return ret
}

func (s Selection) title() string {
	var t string
	for i, b := range s.Books {
		if i > 0 {
			t += " + "
		}
		t += b.DisplayTitle()
	}
	return t
}
