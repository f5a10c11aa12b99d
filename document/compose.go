package document

import (
	"fmt"
	"strconv"

	"github.com/Createyourfreeacc/Beook2PDF-sub000/model"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/render"
)

const pointsPerCSSPixel = 72.0 / 96.0

var stampFont = Regular.WithSize(9)

// Fit scales a w×h box uniformly into the canvas and centres it.
func Fit(w, h float64, c Canvas) Rect {
	if w <= 0 || h <= 0 {
		return Rect{0, 0, c.Width, c.Height}
	}
	s := min(c.Width/w, c.Height/h)
	fw, fh := w*s, h*s
	return Rect{X: (c.Width - fw) / 2, Y: (c.Height - fh) / 2, W: fw, H: fh}
}

// Compose builds the base document: one canvas page per rendered page,
// stamped with its printed number. mappings must be parallel to pages.
func Compose(pages []render.Result, mappings []model.PageMapping, c Canvas) (*Document, error) {
	if len(pages) != len(mappings) {
		return nil, fmt.Errorf("got %d rendered pages for %d page mappings", len(pages), len(mappings))
	}

	d := New(c)
	for i, r := range pages {
		p := NewPage()
		box := Fit(r.Width*pointsPerCSSPixel, r.Height*pointsPerCSSPixel, c)
		p.Rendered(r.PDF, box.X, box.Y, box.W, box.H)

		if m := mappings[i]; m.HasPrinted {
			p.TextRight(c.Width-c.Margin/2, c.Height-c.Margin/3, strconv.Itoa(m.PrintedPage), stampFont)
		}
		d.Append(p)
	}
	return d, nil
}
