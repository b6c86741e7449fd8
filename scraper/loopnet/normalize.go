package loopnet

import (
	"regexp"
	"strings"

	"property-parser/models"
)

var (
	// A number with thousands separators and an optional decimal part,
	// optionally followed by a dash and a second number (a range). A
	// currency symbol or CAD/USD code may sit in front of the second number.
	numericRe = regexp.MustCompile(`(\d(?:[\d,]*\d)?(?:\.\d+)?)(?:\s*(?i:CAD|USD))?(?:\s*[-–]\s*(?:[$€£]|(?i:CAD|USD))?\s*(\d(?:[\d,]*\d)?(?:\.\d+)?))?`)

	builtInRe = regexp.MustCompile(`(?i)built\s+in\s+(\d{4})`)

	// Trailing Canadian postal code (A1A 1A1) or US ZIP (12345, 12345-6789).
	postalRe = regexp.MustCompile(`^(.*?)[\s,]*\b([A-Za-z]\d[A-Za-z] ?\d[A-Za-z]\d|\d{5}(?:-\d{4})?)\s*$`)

	spaceRe = regexp.MustCompile(`\s+`)
)

// NormalizeNumber keeps the longest number or number range in s and drops
// currency symbols and unit suffixes: "$1,234,567 CAD/SF/YR" -> "1,234,567",
// "$10 - $20 /SF/YR" -> "10 - 20". Text without digits is returned unchanged.
func NormalizeNumber(s string) string {
	s = strings.TrimSpace(s)
	if s == models.UponRequest {
		return s
	}

	var best string
	bestLen := 0
	for _, m := range numericRe.FindAllStringSubmatch(s, -1) {
		if len(m[0]) <= bestLen {
			continue
		}
		bestLen = len(m[0])
		best = m[1]
		if m[2] != "" {
			best = m[1] + " - " + m[2]
		}
	}
	if best == "" {
		return s
	}
	return best
}

// NormalizeYear pulls YYYY out of "Built in YYYY". Anything else passes
// through unchanged.
func NormalizeYear(s string) string {
	s = strings.TrimSpace(s)
	if s == models.UponRequest {
		return s
	}
	if m := builtInRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// SplitPostalCode separates a trailing postal or ZIP code from a location.
// "Toronto, ON M5V 2T6" -> ("Toronto, ON", "M5V 2T6").
func SplitPostalCode(s string) (location, postal string) {
	s = strings.TrimSpace(s)
	m := postalRe.FindStringSubmatch(s)
	if m == nil {
		return s, ""
	}
	location = strings.TrimRight(strings.TrimSpace(m[1]), ",")
	return location, m[2]
}

// isNumeric reports whether s holds only digits, separators, decimal points
// and the " - " range separator.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, " - ") {
		if part == "" {
			return false
		}
		for _, r := range part {
			if (r < '0' || r > '9') && r != ',' && r != '.' {
				return false
			}
		}
	}
	return true
}

// numericOrSentinel applies NormalizeNumber and falls back to UponRequest
// when the result still is not a number.
func numericOrSentinel(raw string) string {
	v := NormalizeNumber(raw)
	if isNumeric(v) {
		return v
	}
	return models.UponRequest
}

// yearOrSentinel applies NormalizeYear and falls back to UponRequest when no
// build year was found.
func yearOrSentinel(raw string) string {
	v := NormalizeYear(raw)
	if len(v) == 4 && isNumeric(v) {
		return v
	}
	return models.UponRequest
}

func cleanText(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
