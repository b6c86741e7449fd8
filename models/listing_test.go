package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListingRecord_Row(t *testing.T) {
	r := ListingRecord{
		ListingID: "42",
		URL:       "https://www.loopnet.ca/Listing/42/",
		Price:     UponRequest,
		Images:    []string{"a.jpg", "b.jpg"},
	}

	row := r.Row()
	assert.Len(t, row, len(Columns))
	assert.Equal(t, "42", row[0])
	assert.Equal(t, UponRequest, row[6])
	assert.Equal(t, "a.jpg|b.jpg", row[9])
}

func TestRecordFromRow(t *testing.T) {
	r := RecordFromRow([]string{"42", "https://x/", "1 Main", "Toronto, ON", "", "", "10", "1998", "500", "a.jpg|b.jpg"})
	assert.Equal(t, "1998", r.CapRate)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, r.Images)

	short := RecordFromRow([]string{"7"})
	assert.Equal(t, "7", short.ListingID)
	assert.Empty(t, short.Size)
	assert.Nil(t, short.Images)
}

func TestTemplateVariant_String(t *testing.T) {
	assert.Equal(t, "default", VariantDefault.String())
	assert.Equal(t, "tier2", VariantTier2.String())
}
