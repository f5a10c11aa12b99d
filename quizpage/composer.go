package quizpage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Createyourfreeacc/Beook2PDF-sub000/document"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/locale"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/model"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/toc"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/tocpage"
)

const (
	lineHeight    = 14.0
	answerIndent  = 16.0
	blockGap      = 8.0
	maxImageShare = 0.6

	PlacementEnd  = "end"
	PlacementBook = "book"

	DefaultColumns = 3
	missingLetter  = "–"
)

var (
	bookFont    = document.Bold.WithSize(16)
	chapterFont = document.Bold.WithSize(13)
	textFont    = document.Regular
)

type Measurer interface {
	Width(s string, f document.Font) float64
}

type Options struct {
	Placement string
	Columns   int
}

// Section is the outline of the pages generated for one book.
type Section struct {
	Book      int
	Bookmarks []*document.Bookmark
}

type Composer struct {
	canvas   document.Canvas
	measure  Measurer
	l        *slog.Logger
	opts     Options
	pictures map[int64]*picture
}

func New(c document.Canvas, m Measurer, l *slog.Logger, opts Options) *Composer {
	if opts.Columns <= 0 {
		opts.Columns = DefaultColumns
	}
	if opts.Placement != PlacementBook {
		opts.Placement = PlacementEnd
	}
	return &Composer{canvas: c, measure: m, l: l, opts: opts, pictures: make(map[int64]*picture)}
}

// Run inserts question and solution pages for every quiz book. starts holds
// the first page of each selected book; with book placement a book's pages
// go right before the next book's start. entries is shifted in place by the
// inserted pages. It returns the number of pages inserted.
func (c *Composer) Run(ctx context.Context, doc *document.Document, books []*model.QuizBook, starts []*document.Page, entries [][]model.TOCEntry) (int, []Section, error) {
	var (
		inserted int
		sections []Section
	)

	for _, qb := range books {
		if !hasQuestions(qb) {
			continue
		}

		pages, marks := c.compose(ctx, qb)
		if len(pages) == 0 {
			continue
		}

		at := doc.Len() + 1
		if c.opts.Placement == PlacementBook {
			if next := nextStart(doc, starts, qb.BookIndex); next > 0 {
				at = next
			}
		}
		if err := doc.Insert(at, pages...); err != nil {
			return inserted, nil, fmt.Errorf("failed to insert quiz pages for %q: %w", qb.Title, err)
		}
		toc.ShiftFrom(entries, at, len(pages))
		inserted += len(pages)

		sections = append(sections, Section{Book: qb.BookIndex, Bookmarks: marks})
		c.l.DebugContext(ctx, "inserted quiz pages", "book", qb.Title, "at", at, "pages", len(pages))
	}

	return inserted, sections, nil
}

func hasQuestions(qb *model.QuizBook) bool {
	for _, ch := range qb.Chapters {
		if len(ch.Questions) > 0 {
			return true
		}
	}
	return false
}

func nextStart(doc *document.Document, starts []*document.Page, book int) int {
	for i := book + 1; i < len(starts); i++ {
		if starts[i] == nil {
			continue
		}
		if n := doc.Index(starts[i]); n > 0 {
			return n
		}
	}
	return 0
}

func (c *Composer) compose(ctx context.Context, qb *model.QuizBook) ([]*document.Page, []*document.Bookmark) {
	strs := locale.For(qb.Language)

	qPages, qChapters := c.questions(ctx, qb, strs)
	sPages, sChapters := c.solutions(qb, strs)

	var marks []*document.Bookmark
	if len(qPages) > 0 {
		marks = append(marks, &document.Bookmark{Label: qb.Title + " – " + strs.Questions, Page: qPages[0], Children: qChapters})
	}
	if len(sPages) > 0 {
		marks = append(marks, &document.Bookmark{Label: qb.Title + " – " + strs.Solutions, Page: sPages[0], Children: sChapters})
	}
	return append(qPages, sPages...), marks
}

func (c *Composer) wrap(text string, f document.Font, width float64) []string {
	return tocpage.Wrap(text, width, func(s string) float64 {
		return c.measure.Width(s, f)
	})
}

func (c *Composer) questions(ctx context.Context, qb *model.QuizBook, strs locale.Strings) ([]*document.Page, []*document.Bookmark) {
	f := newFlow(c.canvas)
	var marks []*document.Bookmark

	for _, line := range c.wrap(qb.Title+" – "+strs.Questions, bookFont, f.width()) {
		f.line(line, bookFont, 0)
	}
	f.gap(blockGap)

	for _, ch := range qb.Chapters {
		if len(ch.Questions) == 0 {
			continue
		}

		headerLines := c.wrap(ch.Title, chapterFont, f.width())
		f.ensure(float64(len(headerLines)+1) * lineHeight)
		marks = append(marks, &document.Bookmark{Label: ch.Title, Page: f.page})
		for _, line := range headerLines {
			f.line(line, chapterFont, 0)
		}
		f.gap(blockGap / 2)

		for _, g := range ch.Shared {
			for _, a := range g.Assets {
				c.image(ctx, f, a)
			}
			for _, line := range c.wrap(strs.SharedFor+" "+g.Caption, textFont, f.width()) {
				f.line(line, textFont, 0)
			}
			f.gap(blockGap)
		}

		for _, q := range ch.Questions {
			c.question(f, q)
			for _, a := range q.Assets {
				c.image(ctx, f, a)
			}
			f.gap(blockGap)
		}
	}
	return f.pages, marks
}

type blockLine struct {
	text   string
	font   document.Font
	indent float64
}

// question keeps a question with its answers on one page when the block fits
// a fresh page; longer blocks break where the page ends.
func (c *Composer) question(f *flow, q *model.QuizQuestion) {
	var lines []blockLine
	for _, l := range c.wrap(fmt.Sprintf("%d. %s", q.Number, q.Text), document.Bold, f.width()) {
		lines = append(lines, blockLine{l, document.Bold, 0})
	}
	for _, a := range q.Answers {
		label := strings.TrimSpace(a.Letter + ") " + a.Text)
		for _, l := range c.wrap(label, textFont, f.width()-answerIndent) {
			lines = append(lines, blockLine{l, textFont, answerIndent})
		}
	}

	height := float64(len(lines)) * lineHeight
	if height > f.remaining() && height <= f.usable() {
		f.brk()
	}
	for _, l := range lines {
		f.line(l.text, l.font, l.indent)
	}
}

func (c *Composer) image(ctx context.Context, f *flow, a *model.QuizAsset) {
	pic, ok := c.pictures[a.ResourceId]
	if !ok {
		var err error
		pic, err = prepare(a)
		if err != nil {
			c.l.DebugContext(ctx, "skipping quiz image", "resource", a.ResourceId, "err", err)
		}
		c.pictures[a.ResourceId] = pic
	}
	if pic == nil {
		return
	}

	// pixels are placed at 72 dpi unless that exceeds the column or the share
	// of the page height
	w, h := float64(pic.width), float64(pic.height)
	scale := min(1, f.width()/w, f.usable()*maxImageShare/h)
	w, h = w*scale, h*scale

	f.ensure(h + blockGap/2)
	f.page.Image(pic.key, pic.kind, pic.data, f.left(), f.y, w, h)
	f.y += h + blockGap/2
}

func (c *Composer) solutions(qb *model.QuizBook, strs locale.Strings) ([]*document.Page, []*document.Bookmark) {
	f := newFlow(c.canvas)
	var marks []*document.Bookmark

	for _, line := range c.wrap(qb.Title+" – "+strs.Solutions, bookFont, f.width()) {
		f.line(line, bookFont, 0)
	}
	f.gap(blockGap)

	cols := c.opts.Columns
	cellWidth := f.width() / float64(cols)

	for _, ch := range qb.Chapters {
		if len(ch.Questions) == 0 {
			continue
		}

		header := c.wrap(ch.Title, chapterFont, f.width())
		drawHeader := func(fl *flow) {
			for _, line := range header {
				fl.line(line, chapterFont, 0)
			}
		}
		f.ensure(float64(len(header)+1) * lineHeight)
		marks = append(marks, &document.Bookmark{Label: ch.Title, Page: f.page})
		drawHeader(f)
		f.onBreak = drawHeader

		for start := 0; start < len(ch.Questions); start += cols {
			f.ensure(lineHeight)
			for col, q := range ch.Questions[start:min(start+cols, len(ch.Questions))] {
				letter, ok := q.CorrectLetter()
				if !ok || letter == "" {
					letter = missingLetter
				}
				cell := c.fit(fmt.Sprintf("%d. %s", q.Number, letter), textFont, cellWidth-4)
				f.page.Text(f.left()+float64(col)*cellWidth, f.y+lineHeight-3, cell, textFont)
			}
			f.y += lineHeight
		}

		f.onBreak = nil
		f.gap(blockGap)
	}
	return f.pages, marks
}

// fit truncates s to the first wrapped line that fits width.
func (c *Composer) fit(s string, font document.Font, width float64) string {
	lines := c.wrap(s, font, width)
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}
