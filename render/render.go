package render

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"golang.org/x/sync/errgroup"
)

// cssPixelsPerInch converts measured CSS pixels into paper inches.
const cssPixelsPerInch = 96.0

const measureScript = `[
  Math.max(document.documentElement.scrollWidth, document.body ? document.body.scrollWidth : 0),
  Math.max(document.documentElement.scrollHeight, document.body ? document.body.scrollHeight : 0)
]`

// Result is a single-page PDF printed at the document's natural size.
type Result struct {
	PDF []byte
	// Width and Height are the measured content size in CSS pixels.
	Width  float64
	Height float64
}

// Span is a half-open range of document indexes assigned to one tab.
type Span struct {
	From, To int
}

// Spans splits n documents into at most k contiguous, non-empty ranges that
// cover 0..n in order.
func Spans(n, k int) []Span {
	if n <= 0 {
		return nil
	}
	if k <= 0 {
		k = 1
	}
	k = min(k, n)

	spans := make([]Span, 0, k)
	size, extra := n/k, n%k
	from := 0
	for i := 0; i < k; i++ {
		to := from + size
		if i < extra {
			to++
		}
		spans = append(spans, Span{From: from, To: to})
		from = to
	}
	return spans
}

// Render prints every document. The result slice is allocated up front and
// each tab writes only its own span, so results keep input order. The first
// failure aborts the job. progress is called concurrently with the running
// count of finished documents.
func (p *Pool) Render(ctx context.Context, docs []string, progress func(done int)) ([]Result, error) {
	results := make([]Result, len(docs))
	if len(docs) == 0 {
		return results, nil
	}

	dir, err := os.MkdirTemp("", "beook-render-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)

	for i, span := range Spans(len(docs), len(p.tabs)) {
		tab := p.tabs[i]
		g.Go(func() error {
			for idx := span.From; idx < span.To; idx++ {
				if err := gctx.Err(); err != nil {
					return err
				}

				res, err := p.renderOne(tab, dir, idx, docs[idx])
				if err != nil {
					return fmt.Errorf("failed to render document %d: %w", idx, err)
				}
				results[idx] = res

				n := done.Add(1)
				if progress != nil {
					progress(int(n))
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.l.DebugContext(ctx, "rendered documents", "count", len(docs), "tabs", min(len(docs), len(p.tabs)))
	return results, nil
}

func (p *Pool) renderOne(tab context.Context, dir string, idx int, html string) (Result, error) {
	path := filepath.Join(dir, fmt.Sprintf("topic-%05d.html", idx))
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return Result{}, fmt.Errorf("failed to write temp file: %w", err)
	}
	defer os.Remove(path)

	var (
		fontsReady bool
		dims       []float64
		buf        []byte
	)

	err := chromedp.Run(tab,
		chromedp.Navigate("file://"+filepath.ToSlash(path)),
		chromedp.Evaluate(`document.fonts.ready.then(() => true)`, &fontsReady,
			func(params *runtime.EvaluateParams) *runtime.EvaluateParams {
				return params.WithAwaitPromise(true)
			}),
		chromedp.Evaluate(measureScript, &dims),
		chromedp.ActionFunc(func(ctx context.Context) error {
			w, h := 1.0, 1.0
			if len(dims) == 2 {
				w, h = math.Max(dims[0], 1), math.Max(dims[1], 1)
			}
			dims = []float64{w, h}

			var err error
			buf, _, err = page.PrintToPDF().
				WithPaperWidth(w / cssPixelsPerInch).
				WithPaperHeight(h / cssPixelsPerInch).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				WithPrintBackground(true).
				WithPageRanges("1").
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return Result{}, fmt.Errorf("chromedp execution failed: %w", err)
	}

	return Result{PDF: buf, Width: dims[0], Height: dims[1]}, nil
}
