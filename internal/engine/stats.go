package engine

import (
	"math"
	"sort"

	"github.com/d9i2r2t1/hh-parser/internal/model"
)

// Aggregate computes the per-run statistics row from parsed listings.
// Returns ErrEmptyRun when there is nothing to aggregate.
//
// The mean/median pool is built from the listings' min and max values, with
// one asymmetry carried over from the historical reports: a lower-bound
// salary ("от N") feeds the min pool only, while ranking treats it as a
// fixed N-N fork. Changing this would skew every report produced so far.
func Aggregate(listings []model.Listing) (model.RunStats, error) {
	if len(listings) == 0 {
		return model.RunStats{}, ErrEmptyRun
	}

	var minPool, maxPool []int
	withoutSalary := 0
	for _, l := range listings {
		switch l.Salary.Kind {
		case model.SalaryLowerBound:
			minPool = append(minPool, l.Salary.Min)
		case model.SalaryUpperBound:
			maxPool = append(maxPool, l.Salary.Max)
		case model.SalaryRange, model.SalaryFixed:
			minPool = append(minPool, l.Salary.Min)
			maxPool = append(maxPool, l.Salary.Max)
		case model.SalaryUnspecified:
			withoutSalary++
		}
	}

	pool := make([]int, 0, len(minPool)+len(maxPool))
	pool = append(pool, minPool...)
	pool = append(pool, maxPool...)

	pct := float64(withoutSalary) / float64(len(listings)) * 100

	return model.RunStats{
		JobsCount:            len(listings),
		JobsWithoutSalaryPct: math.Round(pct*100) / 100,
		SalaryMean:           roundMean(pool),
		SalaryMedian:         median(pool),
		MinSalaryMean:        roundMean(minPool),
		MaxSalaryMean:        roundMean(maxPool),
	}, nil
}

// roundMean returns the mean rounded to the nearest integer, or 0 for an
// empty pool (a run where no vacancy specified a salary).
func roundMean(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return int(math.Round(float64(sum) / float64(len(values))))
}

// median returns the statistical median rounded to the nearest integer: the
// middle element for odd counts, the midpoint of the two middle elements for
// even counts. Returns 0 for an empty pool.
func median(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return int(math.Round(float64(sorted[mid-1]+sorted[mid]) / 2))
}
