package services

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"property-parser/models"
)

type Count struct {
	Name  string
	Count int
}

type Report struct {
	TotalListings      int
	UniqueListings     int
	PriceUponRequest   int
	SizeUponRequest    int
	WithImages         int
	OldestBuild        int
	NewestBuild        int
	ListingsByLocation map[string]int
	TopCompanies       []Count
	DuplicateIDs       []Count
}

// GenerateReport summarises a crawl. Duplicate listing IDs are counted and
// listed; nothing is dropped.
func GenerateReport(listings []models.ListingRecord) Report {
	report := Report{
		TotalListings:      len(listings),
		ListingsByLocation: make(map[string]int),
	}

	if len(listings) == 0 {
		return report
	}

	seen := make(map[string]int)
	companies := make(map[string]int)

	for _, l := range listings {
		report.ListingsByLocation[normalizeLocation(l.Location)]++

		if c := strings.TrimSpace(l.Company); c != "" {
			companies[c]++
		}

		if isUponRequest(l.Price) {
			report.PriceUponRequest++
		}
		if isUponRequest(l.Size) {
			report.SizeUponRequest++
		}
		if len(l.Images) > 0 {
			report.WithImages++
		}

		if year, ok := buildYear(l.CapRate); ok {
			if report.OldestBuild == 0 || year < report.OldestBuild {
				report.OldestBuild = year
			}
			if year > report.NewestBuild {
				report.NewestBuild = year
			}
		}

		if id := strings.TrimSpace(l.ListingID); id != "" {
			seen[id]++
		}
	}

	report.UniqueListings = len(seen)
	for id, n := range seen {
		if n > 1 {
			report.DuplicateIDs = append(report.DuplicateIDs, Count{Name: id, Count: n})
		}
	}
	sortCounts(report.DuplicateIDs)

	for name, n := range companies {
		report.TopCompanies = append(report.TopCompanies, Count{Name: name, Count: n})
	}
	sortCounts(report.TopCompanies)
	if len(report.TopCompanies) > 5 {
		report.TopCompanies = report.TopCompanies[:5]
	}

	return report
}

func PrintReport(w io.Writer, report Report) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "┌──────────────────────────────────────────────────────────────┐")
	fmt.Fprintln(w, "│                 Commercial Listing Insights                  │")
	fmt.Fprintln(w, "├───────────────────────────────┬──────────────────────────────┤")
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Total Listings Parsed", report.TotalListings)
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Unique Listing IDs", report.UniqueListings)
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Price Upon Request", report.PriceUponRequest)
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Size Upon Request", report.SizeUponRequest)
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Listings With Images", report.WithImages)
	fmt.Fprintf(w, "│ %-29s │ %-28s │\n", "Build Years", yearRange(report))
	fmt.Fprintln(w, "└───────────────────────────────┴──────────────────────────────┘")

	fmt.Fprintln(w)
	fmt.Fprintln(w, "┌──────────────────────────────────────────────┬───────────────┐")
	fmt.Fprintln(w, "│ Listings per Location                        │ Count         │")
	fmt.Fprintln(w, "├──────────────────────────────────────────────┼───────────────┤")
	for _, loc := range sortedLocations(report.ListingsByLocation) {
		fmt.Fprintf(w, "│ %-44s │ %-13d │\n", truncateText(loc, 44), report.ListingsByLocation[loc])
	}
	fmt.Fprintln(w, "└──────────────────────────────────────────────┴───────────────┘")

	if len(report.TopCompanies) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "┌─────┬──────────────────────────────────────────────┬──────────┐")
		fmt.Fprintln(w, "│ #   │ Top 5 Listing Companies                      │ Listings │")
		fmt.Fprintln(w, "├─────┼──────────────────────────────────────────────┼──────────┤")
		for i, c := range report.TopCompanies {
			fmt.Fprintf(w, "│ %-3d │ %-44s │ %-8d │\n", i+1, truncateText(c.Name, 44), c.Count)
		}
		fmt.Fprintln(w, "└─────┴──────────────────────────────────────────────┴──────────┘")
	}

	if len(report.DuplicateIDs) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "┌──────────────────────────────────────────────┬───────────────┐")
		fmt.Fprintln(w, "│ Listing IDs Seen More Than Once              │ Times         │")
		fmt.Fprintln(w, "├──────────────────────────────────────────────┼───────────────┤")
		for _, d := range report.DuplicateIDs {
			fmt.Fprintf(w, "│ %-44s │ %-13d │\n", truncateText(d.Name, 44), d.Count)
		}
		fmt.Fprintln(w, "└──────────────────────────────────────────────┴───────────────┘")
	}
}

func isUponRequest(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), models.UponRequest)
}

// buildYear reads the Cap Rate column, which holds a build year on tier 2
// placards.
func buildYear(v string) (int, bool) {
	v = strings.TrimSpace(v)
	if len(v) != 4 {
		return 0, false
	}
	year, err := strconv.Atoi(v)
	if err != nil || year < 1800 || year > 2100 {
		return 0, false
	}
	return year, true
}

func yearRange(r Report) string {
	if r.OldestBuild == 0 {
		return "n/a"
	}
	if r.OldestBuild == r.NewestBuild {
		return strconv.Itoa(r.OldestBuild)
	}
	return fmt.Sprintf("%d - %d", r.OldestBuild, r.NewestBuild)
}

func sortCounts(counts []Count) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count == counts[j].Count {
			return counts[i].Name < counts[j].Name
		}
		return counts[i].Count > counts[j].Count
	})
}

func normalizeLocation(location string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		return "Unknown"
	}
	return location
}

func sortedLocations(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncateText(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
