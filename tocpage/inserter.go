package tocpage

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Createyourfreeacc/Beook2PDF-sub000/document"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/locale"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/model"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/toc"
)

const (
	lineHeight   = 14.0
	levelIndent  = 14.0
	numberColumn = 40.0
	titleLines   = 3
)

var titleFont = document.Bold.WithSize(16)

type Measurer interface {
	Width(s string, f document.Font) float64
}

// LinkJob is a clickable area on a contents page waiting for its target page
// to settle.
type LinkJob struct {
	From  *document.Page
	Rect  document.Rect
	Book  int
	Entry int
}

type Inserter struct {
	canvas  document.Canvas
	measure Measurer
	l       *slog.Logger
	// MaxLines overrides the number of lines per page derived from the canvas.
	MaxLines int

	first map[int]*document.Page
}

func New(c document.Canvas, m Measurer, l *slog.Logger) *Inserter {
	return &Inserter{canvas: c, measure: m, l: l}
}

func (in *Inserter) budget() int {
	if in.MaxLines > 0 {
		return in.MaxLines
	}
	_, _, _, h := in.canvas.Usable()
	return max(int(h/lineHeight), titleLines+1)
}

// Run inserts contents pages for every eligible book and links each drawn
// entry to its page. entries is updated in place so it keeps matching the
// document; groups are the page mappings of the base document. It returns
// the total number of pages inserted.
func (in *Inserter) Run(ctx context.Context, doc *document.Document, books []*model.Book, entries [][]model.TOCEntry, groups [][]model.PageMapping) (int, error) {
	var (
		offset int
		jobs   []LinkJob
	)
	in.first = make(map[int]*document.Page)

	for bi, book := range books {
		if bi >= len(groups) || bi >= len(entries) {
			break
		}
		if !Eligible(groups[bi]) {
			in.l.DebugContext(ctx, "book too short for contents pages", "book", book.Id)
			continue
		}

		inserted, bookJobs, err := in.insertBook(doc, bi, book, entries, groups[bi], offset)
		if err != nil {
			return offset, fmt.Errorf("failed to insert contents for book %d: %w", book.Id, err)
		}
		jobs = append(jobs, bookJobs...)
		offset += inserted
	}

	for _, job := range jobs {
		target := entries[job.Book][job.Entry].PdfPage
		page, ok := doc.PageAt(target)
		if !ok {
			return offset, fmt.Errorf("contents entry %q points at missing page %d", entries[job.Book][job.Entry].Label, target)
		}
		if err := doc.AddLink(job.From, job.Rect, page); err != nil {
			return offset, err
		}
	}

	in.l.InfoContext(ctx, "inserted contents pages", "pages", offset, "links", len(jobs))
	return offset, nil
}

// insertBook lays out and inserts one book's contents. offset is the number
// of pages inserted for earlier books; the book's mappings still carry base
// document positions.
func (in *Inserter) insertBook(doc *document.Document, bi int, book *model.Book, entries [][]model.TOCEntry, group []model.PageMapping, offset int) (int, []LinkJob, error) {
	rows := View(entries[bi])
	if len(rows) == 0 {
		return 0, nil, nil
	}

	at := InsertionPoint(group) + offset
	pages, jobs := in.layout(bi, book, rows)
	if err := doc.Insert(at, pages...); err != nil {
		return 0, nil, err
	}

	if len(pages) > 0 {
		in.first[bi] = pages[0]
	}
	toc.ShiftBook(entries, bi, at, len(pages))
	toc.ShiftAfter(entries, bi, len(pages))
	return len(pages), jobs, nil
}

// FirstPage returns the first contents page inserted for the book during the
// last Run.
func (in *Inserter) FirstPage(book int) (*document.Page, bool) {
	p, ok := in.first[book]
	return p, ok
}

func (in *Inserter) layout(bi int, book *model.Book, rows []Row) ([]*document.Page, []LinkJob) {
	x0, y0, w, _ := in.canvas.Usable()
	right := x0 + w

	wrapped := make([][]string, len(rows))
	sizes := make([]int, len(rows))
	for i, r := range rows {
		f := fontFor(r.Entry.Level)
		indent := float64(r.Entry.Level-1) * levelIndent
		wrapped[i] = Wrap(r.Entry.Label, w-indent-numberColumn, func(s string) float64 {
			return in.measure.Width(s, f)
		})
		sizes[i] = len(wrapped[i])
	}

	var (
		pages []*document.Page
		jobs  []LinkJob
	)
	for pi, pieces := range Paginate(sizes, in.budget(), titleLines) {
		page := document.NewPage()
		line := 0
		if pi == 0 {
			page.Text(x0, y0+titleFont.Size, locale.For(book.Language).Contents, titleFont)
			line = titleLines
		}

		for _, pc := range pieces {
			r := rows[pc.Row]
			f := fontFor(r.Entry.Level)
			x := x0 + float64(r.Entry.Level-1)*levelIndent
			top := y0 + float64(line)*lineHeight

			for li := pc.From; li < pc.To; li++ {
				baseline := y0 + float64(line+1)*lineHeight - 3
				page.Text(x, baseline, wrapped[pc.Row][li], f)
				if li == sizes[pc.Row]-1 {
					page.TextRight(right, baseline, strconv.Itoa(r.Entry.BookPage), f)
				}
				line++
			}

			jobs = append(jobs, LinkJob{
				From:  page,
				Rect:  document.Rect{X: x, Y: top, W: right - x, H: float64(pc.To-pc.From) * lineHeight},
				Book:  bi,
				Entry: r.Index,
			})
		}
		pages = append(pages, page)
	}
	return pages, jobs
}

func fontFor(level int) document.Font {
	if level <= 1 {
		return document.Bold
	}
	return document.Regular
}
