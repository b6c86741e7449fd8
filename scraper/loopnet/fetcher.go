package loopnet

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"property-parser/config"
	"property-parser/utils"
)

// ErrEmptyBody marks a navigation that returned 200 with nothing in it.
var ErrEmptyBody = errors.New("empty response body")

// Response is what a browser navigation hands back: the main document's
// HTTP status and the page HTML once the DOM content is parsed.
type Response struct {
	Status int
	HTML   string
}

// Navigator drives one browser tab. Implementations must honour ctx's
// deadline and keep cookies across calls.
type Navigator interface {
	Navigate(ctx context.Context, url string) (*Response, error)
}

// TransientFetchError is one failed load attempt.
type TransientFetchError struct {
	URL     string
	Attempt int
	Status  int
	Err     error
}

func (e *TransientFetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("attempt %d: %s returned status %d", e.Attempt, e.URL, e.Status)
	}
	return fmt.Sprintf("attempt %d: %s: %v", e.Attempt, e.URL, e.Err)
}

func (e *TransientFetchError) Unwrap() error { return e.Err }

// FetchExhaustedError means every attempt for one page failed. The crawl
// stops on it; pages already written stay on disk.
type FetchExhaustedError struct {
	URL      string
	Attempts int
	Last     error
}

func (e *FetchExhaustedError) Error() string {
	return fmt.Sprintf("failed to load %s after %d attempts: %v", e.URL, e.Attempts, e.Last)
}

func (e *FetchExhaustedError) Unwrap() error { return e.Last }

// Fetcher loads one results page with bounded retries and a fixed or
// jittered pause between attempts.
type Fetcher struct {
	Nav         Navigator
	MaxAttempts int
	Backoff     utils.Backoff
	Timeout     time.Duration
	Log         utils.LogFunc
}

func NewFetcher(nav Navigator, cfg *config.Config, log utils.LogFunc) *Fetcher {
	backoff := utils.FlatBackoff(cfg.RetryBackoff)
	if cfg.UseJitter() {
		backoff = utils.JitterBackoff(cfg.JitterMin, cfg.JitterMax)
	}
	return &Fetcher{
		Nav:         nav,
		MaxAttempts: cfg.MaxRetries,
		Backoff:     backoff,
		Timeout:     cfg.RequestTimeout,
		Log:         log,
	}
}

// Fetch returns the page HTML or a *FetchExhaustedError. A cancelled ctx is
// returned as is.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	html, _, err := f.FetchAttempts(ctx, url)
	return html, err
}

// FetchAttempts is Fetch that also reports how many loads were made.
func (f *Fetcher) FetchAttempts(ctx context.Context, url string) (string, int, error) {
	attempts := 0
	html, err := utils.WithRetry(ctx, f.MaxAttempts, f.Backoff,
		func(attempt int, err error, wait time.Duration) {
			if wait > 0 {
				f.log(utils.LevelWarn, "Attempt %d/%d failed: %v, retrying in %v", attempt, f.MaxAttempts, err, wait)
				return
			}
			f.log(utils.LevelWarn, "Attempt %d/%d failed: %v", attempt, f.MaxAttempts, err)
		},
		func(ctx context.Context, attempt int) (string, error) {
			attempts = attempt
			return f.attempt(ctx, url, attempt)
		},
	)
	if err != nil {
		var retryErr *utils.RetryError
		if errors.As(err, &retryErr) {
			return "", retryErr.Attempts, &FetchExhaustedError{URL: url, Attempts: retryErr.Attempts, Last: retryErr.Last}
		}
		return "", attempts, err
	}
	return html, attempts, nil
}

func (f *Fetcher) attempt(ctx context.Context, url string, attempt int) (string, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	resp, err := f.Nav.Navigate(ctx, url)
	if err != nil {
		return "", &TransientFetchError{URL: url, Attempt: attempt, Err: err}
	}
	if resp == nil {
		return "", &TransientFetchError{URL: url, Attempt: attempt, Err: errors.New("no response")}
	}
	if resp.Status != http.StatusOK {
		return "", &TransientFetchError{URL: url, Attempt: attempt, Status: resp.Status}
	}
	if strings.TrimSpace(resp.HTML) == "" {
		return "", &TransientFetchError{URL: url, Attempt: attempt, Status: resp.Status, Err: ErrEmptyBody}
	}
	return resp.HTML, nil
}

func (f *Fetcher) log(level utils.Level, format string, a ...interface{}) {
	if f.Log != nil {
		f.Log(level, format, a...)
	}
}
