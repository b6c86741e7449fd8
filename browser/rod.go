package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"property-parser/scraper/loopnet"
	"property-parser/utils"
)

// Rod is the go-rod Navigator. It returns as soon as the DOM content is
// parsed instead of waiting for every image on the page.
type Rod struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	cleanup  func()
}

func NewRod(headless bool, userAgent string) (*Rod, error) {
	utils.Info("Launching browser (rod)...")
	l := launcher.New().Headless(headless)

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("could not connect to browser: %w", err)
	}

	r := &Rod{launcher: l, browser: b}

	r.page, err = b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	headers := utils.BrowserHeaders(userAgent)
	headerList := make([]string, 0, len(headers)*2)
	for k, v := range headers {
		headerList = append(headerList, k, v)
	}
	r.cleanup, err = r.page.SetExtraHeaders(headerList)
	if err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("failed to set headers: %w", err)
	}

	if err := r.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: userAgent}); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("failed to set user agent: %w", err)
	}

	if _, err := r.page.EvalOnNewDocument(utils.HideWebDriverJS); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("failed to install page script: %w", err)
	}

	utils.Success("Browser ready")
	return r, nil
}

func (r *Rod) Navigate(ctx context.Context, url string) (*loopnet.Response, error) {
	p := r.page.Context(ctx)

	status := 0
	waitDoc := p.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type != proto.NetworkResourceTypeDocument {
			return false
		}
		status = e.Response.Status
		return true
	})
	waitDOM := p.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)

	if err := p.Navigate(url); err != nil {
		return nil, fmt.Errorf("failed to navigate: %w", err)
	}
	waitDOM()
	waitDoc()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	html, err := p.HTML()
	if err != nil {
		return nil, fmt.Errorf("could not read page html: %w", err)
	}

	return &loopnet.Response{Status: status, HTML: html}, nil
}

func (r *Rod) Close() error {
	if r.cleanup != nil {
		r.cleanup()
	}
	var err error
	if r.browser != nil {
		err = r.browser.Close()
	}
	if r.launcher != nil {
		r.launcher.Kill()
	}
	return err
}
