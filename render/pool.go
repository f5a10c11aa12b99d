package render

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chromedp/chromedp"
)

// Pool owns one headless browser and a fixed set of tabs. All tabs are opened
// by NewPool; documents are never rendered on a tab opened lazily.
type Pool struct {
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	tabs    []context.Context
	cancels []context.CancelFunc

	l *slog.Logger
}

func NewPool(size int, l *slog.Logger) (*Pool, error) {
	if size <= 0 {
		size = 1
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("allow-file-access-from-files", true),
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-backgrounding-occluded-windows", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
	)

	p := &Pool{l: l}
	p.allocCtx, p.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	p.browserCtx, p.browserCancel = chromedp.NewContext(p.allocCtx)

	// the first run starts the browser the tabs attach to
	if err := chromedp.Run(p.browserCtx, chromedp.Navigate("about:blank")); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to initialize browser: %w", err)
	}

	for i := 0; i < size; i++ {
		tab, cancel := chromedp.NewContext(p.browserCtx)
		p.tabs = append(p.tabs, tab)
		p.cancels = append(p.cancels, cancel)

		if err := chromedp.Run(tab, chromedp.Navigate("about:blank")); err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to open renderer tab %d: %w", i, err)
		}
	}

	l.Debug("renderer pool ready", "tabs", size)
	return p, nil
}

func (p *Pool) Size() int {
	return len(p.tabs)
}

func (p *Pool) Close() {
	for _, cancel := range p.cancels {
		cancel()
	}
	if p.browserCancel != nil {
		p.browserCancel()
	}
	if p.allocCancel != nil {
		p.allocCancel()
	}
}
