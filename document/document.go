package document

import (
	"fmt"
	"slices"
)

// Canvas is the uniform output page size in points.
type Canvas struct {
	Width  float64
	Height float64
	Margin float64
}

var A4 = Canvas{Width: 595.28, Height: 841.89, Margin: 36}

// Usable returns the box inside the margins.
func (c Canvas) Usable() (x, y, w, h float64) {
	return c.Margin, c.Margin, c.Width - 2*c.Margin, c.Height - 2*c.Margin
}

type Rect struct {
	X, Y, W, H float64
}

type link struct {
	from *Page
	rect Rect
	to   *Page
}

// Bookmark is one outline item. Page must belong to the document when the
// outline is written, otherwise the item is skipped and its children move up.
type Bookmark struct {
	Label    string
	Page     *Page
	Children []*Bookmark
}

// Document is an ordered list of pages plus the links and outline that point
// at them. Pages are addressed by handle, so inserting pages never breaks
// links or bookmarks registered earlier.
type Document struct {
	Canvas  Canvas
	Title   string
	Creator string

	pages   []*Page
	links   []link
	outline []*Bookmark
}

func New(c Canvas) *Document {
	return &Document{Canvas: c}
}

func (d *Document) Len() int {
	return len(d.pages)
}

// PageAt returns the page at 1-based position n.
func (d *Document) PageAt(n int) (*Page, bool) {
	if n < 1 || n > len(d.pages) {
		return nil, false
	}
	return d.pages[n-1], true
}

// Index returns the 1-based position of p, or 0 when p is not in the document.
func (d *Document) Index(p *Page) int {
	return slices.Index(d.pages, p) + 1
}

func (d *Document) Append(pages ...*Page) {
	d.pages = append(d.pages, pages...)
}

// Insert places pages before 1-based position at. at == Len()+1 appends.
func (d *Document) Insert(at int, pages ...*Page) error {
	if at < 1 || at > len(d.pages)+1 {
		return fmt.Errorf("insert position %d outside 1..%d", at, len(d.pages)+1)
	}
	d.pages = slices.Insert(d.pages, at-1, pages...)
	return nil
}

// AddLink registers a clickable area on from that jumps to to.
func (d *Document) AddLink(from *Page, r Rect, to *Page) error {
	if d.Index(from) == 0 || d.Index(to) == 0 {
		return fmt.Errorf("link between pages outside the document")
	}
	d.links = append(d.links, link{from: from, rect: r, to: to})
	return nil
}

func (d *Document) Links() int {
	return len(d.links)
}

func (d *Document) SetOutline(roots []*Bookmark) {
	d.outline = roots
}

func (d *Document) Outline() []*Bookmark {
	return d.outline
}

// Clone copies page order, links and outline. Page contents are shared and
// must not be changed through the clone.
func (d *Document) Clone() *Document {
	return &Document{
		Canvas:  d.Canvas,
		Title:   d.Title,
		Creator: d.Creator,
		pages:   slices.Clone(d.pages),
		links:   slices.Clone(d.links),
		outline: slices.Clone(d.outline),
	}
}
