package loopnet

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"property-parser/models"
)

// Selectors for the LoopNet search results markup.
const (
	placardSelector  = "article.placard"
	tier2Class       = "tier2"
	addressSelector  = "header h4 a"
	rightSizeAnchor  = "header .text-right h4 a"
	defaultLocation  = "header .subtitle-beta"
	tier2Location    = "header h6 a"
	companyName      = ".company-logos li.company-name p"
	companyLogo      = ".company-logos img"
	tier2Contact     = "ul.contacts li[title]"
	defaultDataPoint = "ul.data-points-2c li"
	tier2DataPoint   = "ul.data-points li"
)

var currencyPerAreaRe = regexp.MustCompile(`(?i)\b(CAD|USD)\s*/\s*(SF|AC)\b|/\s*SF\s*/\s*(YR|MO)\b`)

// ExtractionWarning is a field that could not be read from one placard. The
// field is left blank (or set to the sentinel) and the placard is kept.
type ExtractionWarning struct {
	ListingID string
	Field     string
	Err       error
}

func (w *ExtractionWarning) Error() string {
	return fmt.Sprintf("listing %q: field %s: %v", w.ListingID, w.Field, w.Err)
}

func (w *ExtractionWarning) Unwrap() error { return w.Err }

// ParseHTML builds a document once so the extractor and the pagination
// locator can share it.
func ParseHTML(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("could not parse page html: %w", err)
	}
	return doc, nil
}

// Extract returns one record per listing placard in document order. A page
// without placards yields an empty slice. Field-level failures come back as
// *ExtractionWarning values and never drop the placard.
func Extract(doc *goquery.Document) ([]models.ListingRecord, []error) {
	var (
		records  []models.ListingRecord
		warnings []error
	)

	doc.Find(placardSelector).Each(func(_ int, card *goquery.Selection) {
		p := &cardParser{card: card}
		p.record.Variant = Classify(card)
		p.parse()
		records = append(records, p.record)
		warnings = append(warnings, p.warnings...)
	})

	return records, warnings
}

// Classify picks the template variant of a placard.
func Classify(card *goquery.Selection) models.TemplateVariant {
	if card.HasClass(tier2Class) {
		return models.VariantTier2
	}
	return models.VariantDefault
}

type cardParser struct {
	card     *goquery.Selection
	record   models.ListingRecord
	warnings []error
}

var variantParsers = map[models.TemplateVariant]func(*cardParser){
	models.VariantDefault: parseDefault,
	models.VariantTier2:   parseTier2,
}

func (p *cardParser) parse() {
	p.record.ListingID = strings.TrimSpace(p.card.AttrOr("data-id", ""))
	p.record.Price = models.UponRequest
	p.record.CapRate = models.UponRequest
	p.record.Size = models.UponRequest

	p.field("address", func() {
		a := addressAnchor(p.card)
		p.record.URL = strings.TrimSpace(a.AttrOr("href", ""))
		p.record.Address = cleanText(a.Text())
	})

	variantParsers[p.record.Variant](p)

	p.field("images", func() {
		p.record.Images = extractImages(p.card)
	})
}

// field runs one extraction step and turns a panic into a warning.
func (p *cardParser) field(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			p.warnings = append(p.warnings, &ExtractionWarning{
				ListingID: p.record.ListingID,
				Field:     name,
				Err:       fmt.Errorf("%v", r),
			})
		}
	}()
	fn()
}

func (p *cardParser) setLocation(raw string) {
	p.record.Location, p.record.PostalCode = SplitPostalCode(cleanText(raw))
}

func (p *cardParser) setDataPoints(found map[dataField]string) {
	if v, ok := found[fieldPrice]; ok {
		p.record.Price = numericOrSentinel(v)
	}
	if v, ok := found[fieldYear]; ok {
		p.record.CapRate = yearOrSentinel(v)
	}
	if v, ok := found[fieldSize]; ok {
		p.record.Size = numericOrSentinel(v)
	}
}

func parseDefault(p *cardParser) {
	p.field("location", func() {
		p.setLocation(p.card.Find(defaultLocation).First().Text())
	})

	p.field("company", func() {
		company := cleanText(p.card.Find(companyName).First().Text())
		if company == "" {
			p.card.Find(companyLogo).EachWithBreak(func(_ int, img *goquery.Selection) bool {
				company = cleanText(img.AttrOr("alt", ""))
				return company == ""
			})
		}
		p.record.Company = company
	})

	p.field("data points", func() {
		p.setDataPoints(sniff(p.card.Find(defaultDataPoint), defaultRules))
	})
}

func parseTier2(p *cardParser) {
	p.field("location", func() {
		p.setLocation(p.card.Find(tier2Location).First().Text())
	})

	p.field("company", func() {
		p.record.Company = cleanText(p.card.Find(tier2Contact).First().AttrOr("title", ""))
	})

	p.field("data points", func() {
		p.setDataPoints(sniff(p.card.Find(tier2DataPoint), tier2Rules))
	})

	// The right-aligned header link always wins over the list scan.
	p.field("size", func() {
		if a := p.card.Find(rightSizeAnchor).First(); a.Length() > 0 {
			p.record.Size = numericOrSentinel(cleanText(a.Text()))
		}
	})
}

// addressAnchor is the first header link outside the right-aligned column.
func addressAnchor(card *goquery.Selection) *goquery.Selection {
	return card.Find(addressSelector).FilterFunction(func(_ int, a *goquery.Selection) bool {
		return a.Closest(".text-right").Length() == 0
	}).First()
}

type dataField int

const (
	fieldPrice dataField = iota
	fieldYear
	fieldSize
)

// sniffRule classifies one data point by its content. Rules are evaluated in
// order and the first match claims the item, so anything taken as a price is
// never looked at as a size or a year.
type sniffRule struct {
	field dataField
	match func(li *goquery.Selection, text string) bool
}

var defaultRules = []sniffRule{
	{fieldPrice, hasPriceMarker},
	{fieldYear, hasBuiltIn},
	{fieldSize, hasSF},
}

var tier2Rules = []sniffRule{
	{fieldPrice, func(li *goquery.Selection, text string) bool {
		return hasPriceMarker(li, text) || strings.Contains(text, "$") || currencyPerAreaRe.MatchString(text)
	}},
	{fieldYear, hasBuiltIn},
	{fieldSize, hasSF},
}

func hasPriceMarker(li *goquery.Selection, _ string) bool {
	return strings.EqualFold(li.AttrOr("name", ""), "Price")
}

func hasBuiltIn(_ *goquery.Selection, text string) bool {
	return strings.Contains(strings.ToLower(text), "built in")
}

func hasSF(_ *goquery.Selection, text string) bool {
	return strings.Contains(text, "SF")
}

// sniff walks the items once and keeps the first text claimed for each field.
func sniff(items *goquery.Selection, rules []sniffRule) map[dataField]string {
	found := make(map[dataField]string)
	items.Each(func(_ int, li *goquery.Selection) {
		text := cleanText(li.Text())
		if text == "" {
			return
		}
		for _, rule := range rules {
			if !rule.match(li, text) {
				continue
			}
			if _, taken := found[rule.field]; !taken {
				found[rule.field] = text
			}
			return
		}
	})
	return found
}

// extractImages collects image URLs from every figure in document order. A
// figure may contribute both its inline background image and its <img>.
func extractImages(card *goquery.Selection) []string {
	var images []string
	card.Find("figure").Each(func(_ int, fig *goquery.Selection) {
		if u := backgroundURL(fig.AttrOr("style", "")); u != "" {
			images = append(images, u)
		}
		img := fig.Find("img").First()
		src := strings.TrimSpace(img.AttrOr("src", ""))
		if src == "" {
			src = strings.TrimSpace(img.AttrOr("lazy-src", ""))
		}
		if src != "" {
			images = append(images, src)
		}
	})
	return images
}

// backgroundURL returns the url(...) of a background-image declaration.
// Other url() values in the style, such as masks, are ignored.
func backgroundURL(style string) string {
	decl := strings.Index(style, "background-image")
	if decl < 0 {
		return ""
	}
	style = style[decl:]
	start := strings.Index(style, "url(")
	if start < 0 {
		return ""
	}
	rest := style[start+len("url("):]
	end := strings.Index(rest, ")")
	if end < 0 {
		return ""
	}
	return strings.Trim(strings.TrimSpace(rest[:end]), `"'`)
}
