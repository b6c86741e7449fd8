package loopnet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"property-parser/models"
	"property-parser/scraper/loopnet"
)

func TestNormalizeNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"$1,234,567 CAD/SF/YR", "1,234,567"},
		{"$10 - $20 CAD/SF/YR", "10 - 20"},
		{"1,200 – 4,800 SF", "1,200 - 4,800"},
		{"$12.50 /SF/YR", "12.50"},
		{"12,500 SF", "12,500"},
		{"Suite 2, 12,500 SF", "12,500"},
		{"7,000,", "7,000"},
		{"CAD 25 - CAD 30 /SF/YR", "25 - 30"},
		{"$25 CAD - $30 CAD /SF/YR", "25 - 30"},
		{"Price Upon Request", "Price Upon Request"},
		{models.UponRequest, models.UponRequest},
		{"  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, loopnet.NormalizeNumber(tt.in))
		})
	}
}

func TestNormalizeYear(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1998", loopnet.NormalizeYear("Built in 1998"))
	assert.Equal(t, "2004", loopnet.NormalizeYear("Office · built IN 2004"))
	assert.Equal(t, "Renovated 2010", loopnet.NormalizeYear("Renovated 2010"))
	assert.Equal(t, models.UponRequest, loopnet.NormalizeYear(models.UponRequest))
}

func TestSplitPostalCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in           string
		wantLocation string
		wantPostal   string
	}{
		{"Toronto, ON M5V 2T6", "Toronto, ON", "M5V 2T6"},
		{"Toronto, ON M5V2T6", "Toronto, ON", "M5V2T6"},
		{"Vancouver, BC", "Vancouver, BC", ""},
		{"Seattle, WA 98101", "Seattle, WA", "98101"},
		{"Buffalo, NY 14202-1234", "Buffalo, NY", "14202-1234"},
		{"M5V 2T6", "", "M5V 2T6"},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			location, postal := loopnet.SplitPostalCode(tt.in)
			assert.Equal(t, tt.wantLocation, location)
			assert.Equal(t, tt.wantPostal, postal)
		})
	}
}
