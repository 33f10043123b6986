package engine

import (
	"sort"

	"github.com/d9i2r2t1/hh-parser/internal/model"
)

// Rank orders listings by salary attractiveness and assigns 1-based rank
// numbers. Order: salary midpoint descending, then max descending, then min
// descending. Listings without a salary (0-0) naturally sort last. Ranks are
// contiguous regardless of ties; the sort is stable so equal listings keep
// their scrape order.
func Rank(listings []model.Listing) []model.RankedListing {
	sorted := make([]model.Listing, len(listings))
	copy(sorted, listings)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Salary, sorted[j].Salary
		if a.Mean() != b.Mean() {
			return a.Mean() > b.Mean()
		}
		if a.Max != b.Max {
			return a.Max > b.Max
		}
		return a.Min > b.Min
	})

	ranked := make([]model.RankedListing, len(sorted))
	for i, l := range sorted {
		ranked[i] = model.RankedListing{Rank: i + 1, Listing: l}
	}
	return ranked
}
