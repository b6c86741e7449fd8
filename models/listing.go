package models

import "strings"

// UponRequest is written into price, cap rate and size when the card does
// not carry a usable value.
const UponRequest = "upon request"

// ImageDelimiter joins image URLs inside the single Images column.
const ImageDelimiter = "|"

// Columns is the fixed CSV header. Every sink call writes rows in this order.
var Columns = []string{
	"Listing ID",
	"URL",
	"Address",
	"Location",
	"Postal Code",
	"Company",
	"Price (CAD/SF/Year)",
	"Cap Rate",
	"Size (SF)",
	"Images",
}

type TemplateVariant int

const (
	VariantDefault TemplateVariant = iota
	VariantTier2
)

func (v TemplateVariant) String() string {
	if v == VariantTier2 {
		return "tier2"
	}
	return "default"
}

// ListingRecord is one placard from a search results page. All fields are
// kept as the strings found on the page after normalization.
type ListingRecord struct {
	ListingID  string          `json:"listing_id" bson:"listing_id"`
	URL        string          `json:"url" bson:"url"`
	Address    string          `json:"address" bson:"address"`
	Location   string          `json:"location" bson:"location"`
	PostalCode string          `json:"postal_code" bson:"postal_code"`
	Company    string          `json:"company" bson:"company"`
	Price      string          `json:"price" bson:"price"`
	CapRate    string          `json:"cap_rate" bson:"cap_rate"`
	Size       string          `json:"size" bson:"size"`
	Images     []string        `json:"images" bson:"images"`
	Variant    TemplateVariant `json:"-" bson:"-"`
}

// Row returns the record in Columns order.
func (r ListingRecord) Row() []string {
	return []string{
		r.ListingID,
		r.URL,
		r.Address,
		r.Location,
		r.PostalCode,
		r.Company,
		r.Price,
		r.CapRate,
		r.Size,
		strings.Join(r.Images, ImageDelimiter),
	}
}

// RecordFromRow is the inverse of Row. Short rows leave trailing fields blank.
func RecordFromRow(row []string) ListingRecord {
	get := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	r := ListingRecord{
		ListingID:  get(0),
		URL:        get(1),
		Address:    get(2),
		Location:   get(3),
		PostalCode: get(4),
		Company:    get(5),
		Price:      get(6),
		CapRate:    get(7),
		Size:       get(8),
	}
	if images := get(9); images != "" {
		r.Images = strings.Split(images, ImageDelimiter)
	}
	return r
}

// CrawlState lives for one crawl run only.
type CrawlState struct {
	URL        string
	PageNumber int
	// Attempts is how many loads the current page took, retries included.
	Attempts   int
	OutputPath string
}

// ScrapeJob is one saved page handed to the offline parse pool.
type ScrapeJob struct {
	Index int
	Path  string
}

type ScrapeResult struct {
	Index    int
	Path     string
	Listings []ListingRecord
	Warnings []error
	Error    error
}
