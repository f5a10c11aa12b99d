package document

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/gofpdi"
)

type writer struct {
	pdf      *fpdf.Fpdf
	imp      *gofpdi.Importer
	tr       func(string) string
	images   map[string]bool
	fontSpec Font
}

type op interface {
	draw(w *writer)
}

type renderedOp struct {
	data []byte
	box  Rect
}

func (o renderedOp) draw(w *writer) {
	var rs io.ReadSeeker = bytes.NewReader(o.data)
	tpl := w.imp.ImportPageFromStream(w.pdf, &rs, 1, "/MediaBox")
	w.imp.UseImportedTemplate(w.pdf, tpl, o.box.X, o.box.Y, o.box.W, o.box.H)
}

type textOp struct {
	x, y  float64
	text  string
	font  Font
	right bool
}

func (o textOp) draw(w *writer) {
	w.setFont(o.font)
	s := w.tr(o.text)
	x := o.x
	if o.right {
		x -= w.pdf.GetStringWidth(s)
	}
	w.pdf.Text(x, o.y, s)
}

type imageOp struct {
	key  string
	kind string
	data []byte
	box  Rect
}

func (o imageOp) draw(w *writer) {
	opts := fpdf.ImageOptions{ImageType: o.kind}
	if !w.images[o.key] {
		w.pdf.RegisterImageOptionsReader(o.key, opts, bytes.NewReader(o.data))
		w.images[o.key] = true
	}
	w.pdf.ImageOptions(o.key, o.box.X, o.box.Y, o.box.W, o.box.H, false, opts, 0, "")
}

type lineOp struct {
	x1, y1, x2, y2 float64
}

func (o lineOp) draw(w *writer) {
	w.pdf.SetLineWidth(0.5)
	w.pdf.Line(o.x1, o.y1, o.x2, o.y2)
}

func (w *writer) setFont(f Font) {
	if f == w.fontSpec {
		return
	}
	w.pdf.SetFont(f.Family, f.Style, f.Size)
	w.fontSpec = f
}

// Write emits every page, then the link annotations, then the outline.
func (d *Document) Write(out io.Writer) (err error) {
	if len(d.pages) == 0 {
		return fmt.Errorf("document has no pages")
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: d.Canvas.Width, Ht: d.Canvas.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	if d.Title != "" {
		pdf.SetTitle(d.Title, true)
	}
	if d.Creator != "" {
		pdf.SetCreator(d.Creator, true)
	}

	w := &writer{
		pdf:    pdf,
		imp:    gofpdi.NewImporter(),
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		images: make(map[string]bool),
	}

	// imported pages come from an external renderer and the importer panics
	// on malformed input
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to write pdf: %v", r)
		}
	}()

	index := make(map[*Page]int, len(d.pages))
	for i, p := range d.pages {
		pdf.AddPage()
		index[p] = i + 1
		w.fontSpec = Font{}
		for _, o := range p.ops {
			o.draw(w)
		}
		if pdf.Err() {
			return fmt.Errorf("failed to draw page %d: %w", i+1, pdf.Error())
		}
	}

	for _, l := range d.links {
		from, okFrom := index[l.from]
		to, okTo := index[l.to]
		if !okFrom || !okTo {
			continue
		}
		id := pdf.AddLink()
		pdf.SetLink(id, 0, to)
		pdf.SetPage(from)
		pdf.Link(l.rect.X, l.rect.Y, l.rect.W, l.rect.H, id)
	}

	var walk func(items []*Bookmark, level int)
	walk = func(items []*Bookmark, level int) {
		for _, b := range items {
			n, ok := index[b.Page]
			if !ok {
				walk(b.Children, level)
				continue
			}
			pdf.SetPage(n)
			pdf.Bookmark(w.tr(b.Label), level, 0)
			walk(b.Children, level+1)
		}
	}
	walk(d.outline, 0)

	pdf.SetPage(len(d.pages))
	if err := pdf.Output(out); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}
