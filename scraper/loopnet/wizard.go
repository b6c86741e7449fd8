package loopnet

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// FilterWizard produces the already-filtered search results URL a crawl
// starts from.
type FilterWizard interface {
	StartURL(ctx context.Context) (string, error)
}

// StaticWizard hands back a URL given on the command line or in config.
type StaticWizard struct {
	URL string
}

func (w StaticWizard) StartURL(_ context.Context) (string, error) {
	return ValidateStartURL(w.URL)
}

// PromptWizard asks for the URL on Out and reads one line from In.
type PromptWizard struct {
	In  io.Reader
	Out io.Writer
}

func (w PromptWizard) StartURL(ctx context.Context) (string, error) {
	if w.Out != nil {
		fmt.Fprint(w.Out, "Paste the filtered search results URL: ")
	}

	type line struct {
		text string
		err  error
	}
	ch := make(chan line, 1)
	go func() {
		r := bufio.NewReader(w.In)
		text, err := r.ReadString('\n')
		if errors.Is(err, io.EOF) && text != "" {
			err = nil
		}
		ch <- line{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l := <-ch:
		if l.err != nil {
			return "", fmt.Errorf("read start url: %w", l.err)
		}
		return ValidateStartURL(l.text)
	}
}

// ValidateStartURL trims raw and checks it is an absolute http(s) URL.
func ValidateStartURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("start url is empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid start url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("start url must be http or https, got %q", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("start url has no host: %q", raw)
	}
	return u.String(), nil
}
