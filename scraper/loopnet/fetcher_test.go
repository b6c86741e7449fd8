package loopnet_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-parser/config"
	"property-parser/scraper/loopnet"
	"property-parser/utils"
)

type fakeNavigator struct {
	NavigateFn func(ctx context.Context, url string) (*loopnet.Response, error)

	mu    sync.Mutex
	calls int
}

func (n *fakeNavigator) Navigate(ctx context.Context, url string) (*loopnet.Response, error) {
	n.mu.Lock()
	n.calls++
	n.mu.Unlock()
	return n.NavigateFn(ctx, url)
}

func (n *fakeNavigator) Calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

func newTestFetcher(nav loopnet.Navigator) *loopnet.Fetcher {
	return &loopnet.Fetcher{
		Nav:         nav,
		MaxAttempts: 3,
		Backoff:     utils.FlatBackoff(0),
		Timeout:     time.Second,
		Log:         utils.Discard,
	}
}

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns html on first success", func(t *testing.T) {
		t.Parallel()

		nav := &fakeNavigator{NavigateFn: func(_ context.Context, _ string) (*loopnet.Response, error) {
			return &loopnet.Response{Status: http.StatusOK, HTML: "<html>ok</html>"}, nil
		}}

		html, err := newTestFetcher(nav).Fetch(context.Background(), "https://example.com")
		require.NoError(t, err)
		assert.Equal(t, "<html>ok</html>", html)
		assert.Equal(t, 1, nav.Calls())
	})

	t.Run("retries bad status and empty body then succeeds", func(t *testing.T) {
		t.Parallel()

		responses := []*loopnet.Response{
			{Status: http.StatusForbidden, HTML: "<html>blocked</html>"},
			{Status: http.StatusOK, HTML: "   "},
			{Status: http.StatusOK, HTML: "<html>third</html>"},
		}
		nav := &fakeNavigator{}
		nav.NavigateFn = func(_ context.Context, _ string) (*loopnet.Response, error) {
			return responses[nav.calls-1], nil
		}

		var logged []string
		f := newTestFetcher(nav)
		f.Log = func(level utils.Level, format string, _ ...interface{}) {
			logged = append(logged, level.String())
		}

		html, err := f.Fetch(context.Background(), "https://example.com")
		require.NoError(t, err)
		assert.Equal(t, "<html>third</html>", html)
		assert.Equal(t, 3, nav.Calls())
		assert.Equal(t, []string{"WARN", "WARN"}, logged)
	})

	t.Run("reports how many loads a page took", func(t *testing.T) {
		t.Parallel()

		nav := &fakeNavigator{}
		nav.NavigateFn = func(_ context.Context, _ string) (*loopnet.Response, error) {
			if nav.calls < 2 {
				return &loopnet.Response{Status: http.StatusServiceUnavailable}, nil
			}
			return &loopnet.Response{Status: http.StatusOK, HTML: "<html>ok</html>"}, nil
		}

		html, attempts, err := newTestFetcher(nav).FetchAttempts(context.Background(), "https://example.com")
		require.NoError(t, err)
		assert.Equal(t, "<html>ok</html>", html)
		assert.Equal(t, 2, attempts)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		t.Parallel()

		navErr := errors.New("net::ERR_CONNECTION_RESET")
		nav := &fakeNavigator{NavigateFn: func(_ context.Context, _ string) (*loopnet.Response, error) {
			return nil, navErr
		}}

		_, err := newTestFetcher(nav).Fetch(context.Background(), "https://example.com/p2")
		require.Error(t, err)
		assert.Equal(t, 3, nav.Calls())

		var exhausted *loopnet.FetchExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.Equal(t, "https://example.com/p2", exhausted.URL)
		assert.Equal(t, 3, exhausted.Attempts)

		var transient *loopnet.TransientFetchError
		require.ErrorAs(t, err, &transient)
		assert.Equal(t, 3, transient.Attempt)
		assert.ErrorIs(t, err, navErr)
	})

	t.Run("empty body is reported as ErrEmptyBody", func(t *testing.T) {
		t.Parallel()

		nav := &fakeNavigator{NavigateFn: func(_ context.Context, _ string) (*loopnet.Response, error) {
			return &loopnet.Response{Status: http.StatusOK}, nil
		}}

		_, err := newTestFetcher(nav).Fetch(context.Background(), "https://example.com")
		assert.ErrorIs(t, err, loopnet.ErrEmptyBody)
	})

	t.Run("each attempt gets its own deadline", func(t *testing.T) {
		t.Parallel()

		nav := &fakeNavigator{NavigateFn: func(ctx context.Context, _ string) (*loopnet.Response, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}}
		f := newTestFetcher(nav)
		f.Timeout = 10 * time.Millisecond

		_, err := f.Fetch(context.Background(), "https://example.com")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 3, nav.Calls())
	})

	t.Run("stops when the caller cancels", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		nav := &fakeNavigator{NavigateFn: func(_ context.Context, _ string) (*loopnet.Response, error) {
			cancel()
			return nil, errors.New("boom")
		}}
		f := newTestFetcher(nav)
		f.Backoff = utils.FlatBackoff(time.Hour)

		_, err := f.Fetch(ctx, "https://example.com")
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, loopnet.IsFetchExhausted(err))
		assert.Equal(t, 1, nav.Calls())
	})
}

func TestNewFetcher(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.MaxRetries = 5
	cfg.RequestTimeout = 7 * time.Second
	cfg.RetryBackoff = 3 * time.Second

	f := loopnet.NewFetcher(&fakeNavigator{}, cfg, utils.Discard)
	assert.Equal(t, 5, f.MaxAttempts)
	assert.Equal(t, 7*time.Second, f.Timeout)
	assert.Equal(t, 3*time.Second, f.Backoff(1))

	cfg.JitterMin = time.Second
	cfg.JitterMax = 2 * time.Second
	f = loopnet.NewFetcher(&fakeNavigator{}, cfg, utils.Discard)
	for i := 1; i <= 20; i++ {
		wait := f.Backoff(i)
		assert.GreaterOrEqual(t, wait, time.Second)
		assert.Less(t, wait, 2*time.Second)
	}
}
