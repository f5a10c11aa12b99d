package quizpage

import "github.com/Createyourfreeacc/Beook2PDF-sub000/document"

// flow places content top to bottom and opens pages as needed.
type flow struct {
	canvas document.Canvas
	pages  []*document.Page
	page   *document.Page
	y      float64
	// onBreak draws repeated headers on pages opened by a break
	onBreak func(f *flow)
}

func newFlow(c document.Canvas) *flow {
	return &flow{canvas: c}
}

func (f *flow) top() float64    { return f.canvas.Margin }
func (f *flow) bottom() float64 { return f.canvas.Height - f.canvas.Margin }
func (f *flow) left() float64   { return f.canvas.Margin }
func (f *flow) width() float64  { return f.canvas.Width - 2*f.canvas.Margin }
func (f *flow) usable() float64 { return f.bottom() - f.top() }

func (f *flow) remaining() float64 {
	if f.page == nil {
		return 0
	}
	return f.bottom() - f.y
}

// fresh reports whether nothing was drawn on the current page yet.
func (f *flow) fresh() bool {
	return f.page != nil && f.y == f.top()
}

func (f *flow) newPage() {
	f.page = document.NewPage()
	f.pages = append(f.pages, f.page)
	f.y = f.top()
}

// brk opens a page because content ran out of room.
func (f *flow) brk() {
	f.newPage()
	if f.onBreak != nil {
		f.onBreak(f)
	}
}

// ensure makes room for h points, breaking the page if needed.
func (f *flow) ensure(h float64) {
	if f.page == nil {
		f.newPage()
		return
	}
	if h > f.remaining() && !f.fresh() {
		f.brk()
	}
}

func (f *flow) line(text string, font document.Font, indent float64) {
	f.ensure(lineHeight)
	f.page.Text(f.left()+indent, f.y+lineHeight-3, text, font)
	f.y += lineHeight
}

func (f *flow) gap(h float64) {
	if f.page != nil && h <= f.remaining() {
		f.y += h
	}
}
