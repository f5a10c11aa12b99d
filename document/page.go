package document

import "github.com/go-pdf/fpdf"

type Font struct {
	Family string
	Style  string
	Size   float64
}

var (
	Regular = Font{Family: "Helvetica", Size: 10}
	Bold    = Font{Family: "Helvetica", Style: "B", Size: 10}
)

func (f Font) WithSize(size float64) Font {
	f.Size = size
	return f
}

// Page is a list of drawing operations replayed when the document is written.
type Page struct {
	ops []op
}

func NewPage() *Page {
	return &Page{}
}

// Rendered places the first page of a PDF into the given box.
func (p *Page) Rendered(data []byte, x, y, w, h float64) {
	p.ops = append(p.ops, renderedOp{data: data, box: Rect{x, y, w, h}})
}

// Text draws s with its baseline at y, starting at x.
func (p *Page) Text(x, y float64, s string, f Font) {
	p.ops = append(p.ops, textOp{x: x, y: y, text: s, font: f})
}

// TextRight draws s so that it ends at x.
func (p *Page) TextRight(x, y float64, s string, f Font) {
	p.ops = append(p.ops, textOp{x: x, y: y, text: s, font: f, right: true})
}

// Image draws an image registered under key. Images sharing a key are
// embedded once. kind is an fpdf image type (PNG, JPG, GIF).
func (p *Page) Image(key, kind string, data []byte, x, y, w, h float64) {
	p.ops = append(p.ops, imageOp{key: key, kind: kind, data: data, box: Rect{x, y, w, h}})
}

// Line draws a thin rule.
func (p *Page) Line(x1, y1, x2, y2 float64) {
	p.ops = append(p.ops, lineOp{x1, y1, x2, y2})
}

func (p *Page) Ops() int {
	return len(p.ops)
}

// Texts returns the strings drawn on the page in drawing order.
func (p *Page) Texts() []string {
	var ret []string
	for _, o := range p.ops {
		if t, ok := o.(textOp); ok {
			ret = append(ret, t.text)
		}
	}
	return ret
}

// Measurer reports string widths with the metrics used by Write.
type Measurer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func NewMeasurer() *Measurer {
	pdf := fpdf.New("P", "pt", "A4", "")
	return &Measurer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (m *Measurer) Width(s string, f Font) float64 {
	m.pdf.SetFont(f.Family, f.Style, f.Size)
	return m.pdf.GetStringWidth(m.tr(s))
}
