package loopnet

import (
	"context"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"property-parser/models"
	"property-parser/storage"
	"property-parser/utils"
)

// PageFetcher returns the HTML of one results page. *Fetcher is the real
// one; it already retries.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// attemptCounter is a PageFetcher that also reports how many loads a page
// took.
type attemptCounter interface {
	FetchAttempts(ctx context.Context, url string) (string, int, error)
}

// State is a step of the crawl loop.
type State int

const (
	StateFetching State = iota
	StateExtracting
	StateSinking
	StateLocatingNext
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateFetching:
		return "FETCHING"
	case StateExtracting:
		return "EXTRACTING"
	case StateSinking:
		return "SINKING"
	case StateLocatingNext:
		return "LOCATING_NEXT"
	case StateDone:
		return "DONE"
	default:
		return "ABORTED"
	}
}

// StopReason says why a crawl ended.
type StopReason string

const (
	StopNoListings StopReason = "no listings found"
	StopNoNextPage StopReason = "no next page"
	StopMaxPages   StopReason = "page limit reached"
	StopAborted    StopReason = "aborted"
)

// Result summarises one crawl run. It is returned even when Run fails.
type Result struct {
	RunID    string
	Pages    int
	Records  int
	Warnings int
	// Retries counts failed loads that a later attempt recovered from or
	// that ended the crawl.
	Retries    int
	OutputPath string
	Reason     StopReason
}

// Crawler walks the result pages one by one: fetch, extract, sink, find
// the next link. Pages are never fetched concurrently since each next URL
// comes out of the previous page.
type Crawler struct {
	Fetcher PageFetcher
	Sink    storage.Sink
	Log     utils.LogFunc

	RunID      string
	OutputPath string

	// SessionParams are copied from the current URL onto next-page URLs.
	SessionParams []string
	// MaxPages stops the crawl after that many pages; 0 means no limit.
	MaxPages int
	// Limiter, when set, paces page fetches.
	Limiter *rate.Limiter
	// Archive, when set, receives the raw HTML of every fetched page.
	Archive *storage.HTMLArchive
}

// Run crawls from startURL until the results run out. It returns a
// *FetchExhaustedError when a page cannot be loaded; everything written
// before that stays in the sink.
func (c *Crawler) Run(ctx context.Context, startURL string) (*Result, error) {
	st := models.CrawlState{
		URL:        startURL,
		PageNumber: 1,
		OutputPath: c.OutputPath,
	}
	res := &Result{RunID: c.RunID, OutputPath: c.OutputPath}

	var (
		html    string
		doc     *goquery.Document
		records []models.ListingRecord
		runErr  error
	)

	state := StateFetching
	for state != StateDone && state != StateAborted {
		switch state {
		case StateFetching:
			c.log(utils.LevelInfo, "Page %d: %s", st.PageNumber, st.URL)
			if c.Limiter != nil {
				if err := c.Limiter.Wait(ctx); err != nil {
					runErr = err
					state = StateAborted
					continue
				}
			}

			var err error
			html, st.Attempts, err = c.fetch(ctx, st.URL)
			if st.Attempts > 1 {
				res.Retries += st.Attempts - 1
			}
			if err != nil {
				c.log(utils.LevelError, "Failed to load page %d: %v", st.PageNumber, err)
				runErr = err
				state = StateAborted
				continue
			}
			if st.Attempts > 1 {
				c.log(utils.LevelInfo, "Page %d loaded after %d attempts", st.PageNumber, st.Attempts)
			}
			res.Pages = st.PageNumber
			c.archive(st.PageNumber, html)
			state = StateExtracting

		case StateExtracting:
			var err error
			doc, err = ParseHTML(html)
			if err != nil {
				// x/net/html recovers from almost anything; treat a
				// failure like an empty page.
				c.log(utils.LevelWarn, "Page %d: %v", st.PageNumber, err)
				records = nil
			} else {
				var warnings []error
				records, warnings = Extract(doc)
				for _, w := range warnings {
					c.log(utils.LevelWarn, "Page %d: %v", st.PageNumber, w)
				}
				res.Warnings += len(warnings)
			}

			if len(records) == 0 {
				c.log(utils.LevelWarn, "No listings found on page %d.", st.PageNumber)
				res.Reason = StopNoListings
				state = StateDone
				continue
			}
			state = StateSinking

		case StateSinking:
			if err := c.Sink.Append(ctx, records, st.PageNumber > 1); err != nil {
				runErr = fmt.Errorf("page %d: %w", st.PageNumber, err)
				state = StateAborted
				continue
			}
			res.Records += len(records)
			c.log(utils.LevelSuccess, "Parsed and added %d listings from page %d", len(records), st.PageNumber)
			state = StateLocatingNext

		case StateLocatingNext:
			if c.MaxPages > 0 && st.PageNumber >= c.MaxPages {
				c.log(utils.LevelInfo, "Reached the page limit (%d). Done.", c.MaxPages)
				res.Reason = StopMaxPages
				state = StateDone
				continue
			}

			href, ok := FindNext(doc)
			if !ok {
				c.log(utils.LevelInfo, "No next page found. Done.")
				res.Reason = StopNoNextPage
				state = StateDone
				continue
			}

			next, err := ResolveNext(st.URL, href, c.SessionParams)
			if err != nil {
				c.log(utils.LevelWarn, "Unusable next page link on page %d: %v", st.PageNumber, err)
				res.Reason = StopNoNextPage
				state = StateDone
				continue
			}

			st.URL = next
			st.PageNumber++
			state = StateFetching
		}
	}

	if state == StateAborted {
		res.Reason = StopAborted
		return res, runErr
	}
	return res, nil
}

func (c *Crawler) fetch(ctx context.Context, url string) (string, int, error) {
	if ac, ok := c.Fetcher.(attemptCounter); ok {
		return ac.FetchAttempts(ctx, url)
	}
	html, err := c.Fetcher.Fetch(ctx, url)
	var exhausted *FetchExhaustedError
	if errors.As(err, &exhausted) {
		return html, exhausted.Attempts, err
	}
	return html, 1, err
}

func (c *Crawler) archive(page int, html string) {
	if c.Archive == nil {
		return
	}
	if _, err := c.Archive.Save(page, html); err != nil {
		c.log(utils.LevelWarn, "%v", err)
	}
}

func (c *Crawler) log(level utils.Level, format string, a ...interface{}) {
	if c.Log != nil {
		c.Log(level, format, a...)
	}
}

// IsFetchExhausted reports whether err ended a crawl because a page could
// not be loaded.
func IsFetchExhausted(err error) bool {
	var exhausted *FetchExhaustedError
	return errors.As(err, &exhausted)
}
