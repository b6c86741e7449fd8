package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"property-parser/scraper/loopnet"
	"property-parser/utils"
)

// ErrNoDocument means the tab reached DOMContentLoaded without reporting a
// response for the navigated document.
var ErrNoDocument = errors.New("no document response")

// Chrome drives a single chromedp tab for the whole crawl so cookies and
// the search session survive from one results page to the next.
type Chrome struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
}

func NewChrome(headless bool, userAgent string) (*Chrome, error) {
	utils.Info("Launching Chrome browser...")
	allocCtx, allocCancel := chromedp.NewExecAllocator(
		context.Background(),
		utils.StealthOpts(headless, userAgent)...,
	)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	headers := make(network.Headers)
	for k, v := range utils.BrowserHeaders(userAgent) {
		headers[k] = v
	}

	// The first Run starts the browser, so it must not carry a timeout.
	if err := chromedp.Run(tabCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(headers),
		utils.HideWebDriver(),
	); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("could not start chrome: %w", err)
	}

	utils.Success("Browser ready")
	return &Chrome{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
	}, nil
}

// Navigate loads url and returns as soon as the DOM content is parsed, with
// the main document's status and the HTML at that point. Images and late
// scripts are not waited for.
func (c *Chrome) Navigate(ctx context.Context, url string) (*loopnet.Response, error) {
	runCtx, cancel := c.runContext(ctx)
	defer cancel()

	w := newDocumentWatcher()
	chromedp.ListenTarget(runCtx, w.observe)

	var loaderID cdp.LoaderID
	if err := chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, id, errorText, _, err := page.Navigate(url).Do(ctx)
		if err != nil {
			return err
		}
		if errorText != "" {
			return fmt.Errorf("navigation failed: %s", errorText)
		}
		loaderID = id
		return nil
	})); err != nil {
		return nil, err
	}

	select {
	case <-w.domReady:
	case <-runCtx.Done():
		return nil, runCtx.Err()
	}

	status, ok := w.status(loaderID)
	if !ok {
		return nil, ErrNoDocument
	}

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("could not read page html: %w", err)
	}

	return &loopnet.Response{Status: status, HTML: html}, nil
}

// runContext derives a context from the tab that ends when ctx does.
func (c *Chrome) runContext(ctx context.Context) (context.Context, context.CancelFunc) {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if deadline, ok := ctx.Deadline(); ok {
		runCtx, cancel = context.WithDeadline(c.tabCtx, deadline)
	} else {
		runCtx, cancel = context.WithCancel(c.tabCtx)
	}

	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (c *Chrome) Close() error {
	utils.Info("Closing browser...")
	c.tabCancel()
	c.allocCancel()
	return nil
}

// documentWatcher collects tab events for one navigation: the status of each
// document response by loader, and the main frame's DOMContentLoaded.
// observe runs on chromedp's event loop and must not block.
type documentWatcher struct {
	mu       sync.Mutex
	statuses map[cdp.LoaderID]int
	domReady chan struct{}
	once     sync.Once
}

func newDocumentWatcher() *documentWatcher {
	return &documentWatcher{
		statuses: make(map[cdp.LoaderID]int),
		domReady: make(chan struct{}),
	}
}

func (w *documentWatcher) observe(ev any) {
	switch e := ev.(type) {
	case *network.EventResponseReceived:
		if e.Type != network.ResourceTypeDocument || e.Response == nil {
			return
		}
		w.mu.Lock()
		if _, seen := w.statuses[e.LoaderID]; !seen {
			w.statuses[e.LoaderID] = int(e.Response.Status)
		}
		w.mu.Unlock()
	case *page.EventDomContentEventFired:
		w.once.Do(func() { close(w.domReady) })
	}
}

// status returns the response status of the document loaded by loaderID.
func (w *documentWatcher) status(loaderID cdp.LoaderID) (int, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.statuses[loaderID]
	return s, ok
}
