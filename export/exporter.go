package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Createyourfreeacc/Beook2PDF-sub000/document"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/inline"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/logger"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/model"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/outline"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/pagemap"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/quiz"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/quizpage"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/render"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/toc"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/tocpage"
)

const Creator = "beook2pdf"

// Renderer prints self-contained HTML documents, one result per document in
// input order.
type Renderer interface {
	Render(ctx context.Context, docs []string, progress func(done int)) ([]render.Result, error)
}

type Options struct {
	GenerateTOCPages bool
	ExportQuiz       bool
	ExportMyQuiz     bool

	// Placement is quizpage.PlacementEnd or quizpage.PlacementBook.
	Placement      string
	Columns        int
	ShareThreshold int
}

type Exporter struct {
	store    model.Store
	renderer Renderer
	tracker  *Tracker
	canvas   document.Canvas
	l        *slog.Logger

	// the renderer's tabs are shared by all jobs
	renderMu sync.Mutex
}

func New(store model.Store, renderer Renderer, tracker *Tracker, l *slog.Logger) *Exporter {
	return &Exporter{
		store:    store,
		renderer: renderer,
		tracker:  tracker,
		canvas:   document.A4,
		l:        l,
	}
}

// Run exports the selection into one PDF. Failures of the contents, outline
// and quiz passes only drop that part of the output; everything else fails
// the job and resets its progress.
func (e *Exporter) Run(ctx context.Context, sel Selection, opts Options, jobId string) (pdf []byte, err error) {
	ctx = logger.WithJobId(ctx, jobId)
	e.tracker.Start(jobId)
	defer func() {
		if err != nil {
			e.l.ErrorContext(ctx, "export failed", "err", err)
			e.tracker.Fail(ctx, jobId, err)
		}
	}()

	doc, err := e.assemble(ctx, sel, opts, jobId)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}

	e.l.InfoContext(ctx, "export finished", "pages", doc.Len(), "bytes", buf.Len())
	e.tracker.Done(ctx, jobId, buf.Bytes())
	return buf.Bytes(), nil
}

type sources struct {
	topics    []*model.Topic
	tocRows   []*model.TOCRow
	resources map[int64]*model.Resource
}

func (e *Exporter) load(ctx context.Context, sel Selection, jobId string) (*sources, error) {
	issueIds := sel.issueIds(false)

	topics, err := e.store.Topics(ctx, issueIds)
	if err != nil {
		return nil, fmt.Errorf("failed to load topics: %w", err)
	}
	if placed, _ := inline.Order(sel.Books, topics); len(placed) == 0 {
		return nil, ErrNoTopics
	}
	e.tracker.Advance(ctx, jobId, PhaseLoad, 0.3)

	rows, err := e.store.TOCRows(ctx, issueIds)
	if err != nil {
		return nil, fmt.Errorf("failed to load contents rows: %w", err)
	}
	e.tracker.Advance(ctx, jobId, PhaseLoad, 0.5)

	resources, err := inline.Fetch(ctx, e.store, issueIds, topics)
	if err != nil {
		return nil, fmt.Errorf("failed to load resources: %w", err)
	}
	e.tracker.Advance(ctx, jobId, PhaseLoad, 1)

	e.l.InfoContext(ctx, "loaded sources", "topics", len(topics), "toc_rows", len(rows), "resources", len(resources))
	return &sources{topics: topics, tocRows: rows, resources: resources}, nil
}

func (e *Exporter) assemble(ctx context.Context, sel Selection, opts Options, jobId string) (*document.Document, error) {
	if err := sel.validate(); err != nil {
		return nil, err
	}
	books := sel.Books

	src, err := e.load(ctx, sel, jobId)
	if err != nil {
		return nil, err
	}

	docs, stats, err := inline.New(src.resources, e.l).Inline(ctx, books, src.topics, func(done, total int) {
		e.tracker.Advance(ctx, jobId, PhaseInline, float64(done)/float64(total))
	})
	if err != nil {
		return nil, err
	}
	e.l.InfoContext(ctx, "inlined topics", "documents", stats.Documents, "skipped", stats.Skipped, "missing_refs", stats.Missing)

	html := make([]string, len(docs))
	bookOf := make([]int, len(docs))
	for i, d := range docs {
		html[i] = d.HTML
		bookOf[i] = d.BookIndex
	}

	results, err := e.render(ctx, html, jobId)
	if err != nil {
		return nil, err
	}

	mappings := pagemap.Assign(html)
	groups, matched := pagemap.Reconcile(mappings, bookOf, len(books))
	if !matched {
		e.l.WarnContext(ctx, "printed page numbers disagree with book boundaries, using topic ownership",
			"printed_groups", pagemap.Sizes(pagemap.Group(mappings)), "book_groups", pagemap.Sizes(groups))
	}

	doc, err := document.Compose(results, mappings, e.canvas)
	if err != nil {
		return nil, fmt.Errorf("failed to compose pages: %w", err)
	}
	doc.Title = sel.title()
	doc.Creator = Creator

	starts := make([]*document.Page, len(books))
	for bi, g := range groups {
		if len(g) > 0 {
			starts[bi], _ = doc.PageAt(g[0].PdfPage)
		}
	}
	e.tracker.Advance(ctx, jobId, PhaseCompose, 1)

	entries := toc.Merge(books, src.tocRows, groups)
	measurer := document.NewMeasurer()

	if opts.GenerateTOCPages {
		e.safely(ctx, "contents", func() error {
			work, workEntries := doc.Clone(), model.CloneEntries(entries)
			in := tocpage.New(e.canvas, measurer, e.l)
			if _, err := in.Run(ctx, work, books, workEntries, model.CloneGroups(groups)); err != nil {
				return err
			}
			// a book starts at its contents when they precede its first page
			for bi := range books {
				p, ok := in.FirstPage(bi)
				if ok && (starts[bi] == nil || work.Index(p) < work.Index(starts[bi])) {
					starts[bi] = p
				}
			}
			doc, entries = work, workEntries
			return nil
		})
	}
	e.tracker.Advance(ctx, jobId, PhaseTOC, 1)

	var perBook [][]*document.Bookmark
	e.safely(ctx, "outline", func() error {
		marks := make([][]*document.Bookmark, len(books))
		for bi := range books {
			if bi < len(entries) {
				marks[bi] = outline.Resolve(outline.Build(entries[bi]), doc)
			}
		}
		perBook = marks
		return nil
	})
	e.tracker.Advance(ctx, jobId, PhaseOutline, 1)

	var sections []quizpage.Section
	if opts.ExportQuiz || opts.ExportMyQuiz {
		e.safely(ctx, "quiz", func() error {
			qbooks, err := e.loadQuiz(ctx, sel, opts)
			if err != nil {
				return err
			}
			if len(qbooks) == 0 {
				return nil
			}

			work, workEntries := doc.Clone(), model.CloneEntries(entries)
			c := quizpage.New(e.canvas, measurer, e.l, quizpage.Options{Placement: opts.Placement, Columns: opts.Columns})
			_, secs, err := c.Run(ctx, work, qbooks, starts, workEntries)
			if err != nil {
				return err
			}
			doc, entries, sections = work, workEntries, secs
			return nil
		})
	}
	e.tracker.Advance(ctx, jobId, PhaseQuiz, 1)

	doc.SetOutline(assembleOutline(len(books), perBook, sections, opts.Placement))
	return doc, nil
}

func (e *Exporter) render(ctx context.Context, html []string, jobId string) ([]render.Result, error) {
	e.renderMu.Lock()
	defer e.renderMu.Unlock()

	results, err := e.renderer.Render(ctx, html, func(done int) {
		e.tracker.Advance(ctx, jobId, PhaseRender, float64(done)/float64(len(html)))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render pages: %w", err)
	}
	if len(results) != len(html) {
		return nil, fmt.Errorf("renderer returned %d pages for %d documents", len(results), len(html))
	}
	return results, nil
}

func (e *Exporter) loadQuiz(ctx context.Context, sel Selection, opts Options) ([]*model.QuizBook, error) {
	issueIds := sel.issueIds(true)
	if len(issueIds) == 0 {
		return nil, nil
	}

	var rows []*model.QuizRow
	if opts.ExportQuiz {
		r, err := e.store.QuizRows(ctx, issueIds, false)
		if err != nil {
			return nil, fmt.Errorf("failed to load quiz rows: %w", err)
		}
		rows = append(rows, r...)
	}
	if opts.ExportMyQuiz {
		r, err := e.store.QuizRows(ctx, issueIds, true)
		if err != nil {
			return nil, fmt.Errorf("failed to load custom quiz rows: %w", err)
		}
		rows = append(rows, r...)
	}

	links, err := e.store.QuizAssets(ctx, issueIds)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz assets: %w", err)
	}

	var ids []int64
	seen := make(map[int64]bool)
	for _, l := range links {
		if !seen[l.ResourceId] {
			seen[l.ResourceId] = true
			ids = append(ids, l.ResourceId)
		}
	}

	resources := map[int64]*model.Resource{}
	if len(ids) > 0 {
		if resources, err = e.store.Resources(ctx, issueIds, ids); err != nil {
			return nil, fmt.Errorf("failed to load quiz images: %w", err)
		}
	}

	return quiz.New(opts.ShareThreshold).Aggregate(sel.Books, rows, links, resources), nil
}

// safely runs an enrichment pass. Errors and panics are logged and reported
// as false; the pass is expected to publish its changes only on success.
func (e *Exporter) safely(ctx context.Context, pass string, fn func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.l.WarnContext(ctx, "enrichment pass panicked, skipping it", "pass", pass, "panic", r)
			ok = false
		}
	}()

	if err := fn(); err != nil {
		e.l.WarnContext(ctx, "enrichment pass failed, skipping it", "pass", pass, "err", err)
		return false
	}
	return true
}

// assembleOutline orders the outline book by book. Quiz sections follow their
// book with book placement and close the outline otherwise.
func assembleOutline(books int, perBook [][]*document.Bookmark, sections []quizpage.Section, placement string) []*document.Bookmark {
	var roots []*document.Bookmark
	if placement == quizpage.PlacementBook {
		for bi := 0; bi < books; bi++ {
			if bi < len(perBook) {
				roots = append(roots, perBook[bi]...)
			}
			for _, s := range sections {
				if s.Book == bi {
					roots = append(roots, s.Bookmarks...)
				}
			}
		}
		return roots
	}

	for _, marks := range perBook {
		roots = append(roots, marks...)
	}
	for _, s := range sections {
		roots = append(roots, s.Bookmarks...)
	}
	return roots
}
