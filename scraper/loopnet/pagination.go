package loopnet

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const nextPageSelector = `a[data-automation-id="NextPage"]`

// FindNext returns the href of the next-page link, or false when the page
// has none. It does not resolve or rewrite the link.
func FindNext(doc *goquery.Document) (string, bool) {
	href := strings.TrimSpace(doc.Find(nextPageSelector).First().AttrOr("href", ""))
	if href == "" {
		return "", false
	}
	return href, true
}

// ResolveNext turns the next-page href into an absolute URL relative to the
// current page and puts back the session parameters (the sort key "sk" by
// default) that the site drops from its own pagination links.
func ResolveNext(currentURL, href string, sessionParams []string) (string, error) {
	cur, err := url.Parse(currentURL)
	if err != nil {
		return "", fmt.Errorf("invalid current url %q: %w", currentURL, err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid next page href %q: %w", href, err)
	}
	next := cur.ResolveReference(ref)

	curQuery := cur.Query()
	nextQuery := next.Query()
	changed := false
	for _, key := range sessionParams {
		if !curQuery.Has(key) || nextQuery.Has(key) {
			continue
		}
		nextQuery[key] = curQuery[key]
		changed = true
	}
	if changed {
		next.RawQuery = nextQuery.Encode()
	}
	return next.String(), nil
}
