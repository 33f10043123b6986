package engine_test

import (
	"errors"
	"testing"

	"github.com/d9i2r2t1/hh-parser/internal/engine"
	"github.com/d9i2r2t1/hh-parser/internal/model"
)

func listingWithSalary(href string, s model.Salary) model.Listing {
	return model.Listing{Href: href, Salary: s}
}

// ── Aggregate — empty run ──────────────────────────────────────────────────

func TestAggregate_EmptyRun(t *testing.T) {
	_, err := engine.Aggregate(nil)
	if !errors.Is(err, engine.ErrEmptyRun) {
		t.Errorf("Aggregate(nil) error = %v, want ErrEmptyRun", err)
	}
}

// ── Aggregate — missing-salary percentage ──────────────────────────────────

func TestAggregate_JobsWithoutSalaryPct(t *testing.T) {
	listings := []model.Listing{
		listingWithSalary("a", model.Salary{Min: 100, Max: 100, Kind: model.SalaryFixed}),
		listingWithSalary("b", model.Salary{Kind: model.SalaryUnspecified}),
		listingWithSalary("c", model.Salary{Kind: model.SalaryUnspecified}),
	}
	stats, err := engine.Aggregate(listings)
	if err != nil {
		t.Fatalf("Aggregate returned unexpected error: %v", err)
	}
	// 2 of 3, rounded to two decimals.
	if stats.JobsWithoutSalaryPct != 66.67 {
		t.Errorf("JobsWithoutSalaryPct = %v, want 66.67", stats.JobsWithoutSalaryPct)
	}
	if stats.JobsCount != 3 {
		t.Errorf("JobsCount = %d, want 3", stats.JobsCount)
	}
}

// ── Aggregate — pool membership per salary form ────────────────────────────

func TestAggregate_LowerBoundFeedsMinPoolOnly(t *testing.T) {
	// One "от 100000" listing: min pool = [100000], max pool empty.
	listings := []model.Listing{
		listingWithSalary("a", model.Salary{Min: 100000, Max: 100000, Kind: model.SalaryLowerBound}),
	}
	stats, err := engine.Aggregate(listings)
	if err != nil {
		t.Fatalf("Aggregate returned unexpected error: %v", err)
	}
	if stats.MinSalaryMean != 100000 {
		t.Errorf("MinSalaryMean = %d, want 100000", stats.MinSalaryMean)
	}
	if stats.MaxSalaryMean != 0 {
		t.Errorf("MaxSalaryMean = %d, want 0 (lower-bound salaries stay out of the max pool)", stats.MaxSalaryMean)
	}
	if stats.SalaryMean != 100000 {
		t.Errorf("SalaryMean = %d, want 100000", stats.SalaryMean)
	}
}

func TestAggregate_UpperBoundFeedsMaxPoolOnly(t *testing.T) {
	listings := []model.Listing{
		listingWithSalary("a", model.Salary{Min: 0, Max: 50000, Kind: model.SalaryUpperBound}),
	}
	stats, err := engine.Aggregate(listings)
	if err != nil {
		t.Fatalf("Aggregate returned unexpected error: %v", err)
	}
	if stats.MinSalaryMean != 0 {
		t.Errorf("MinSalaryMean = %d, want 0", stats.MinSalaryMean)
	}
	if stats.MaxSalaryMean != 50000 {
		t.Errorf("MaxSalaryMean = %d, want 50000", stats.MaxSalaryMean)
	}
}

func TestAggregate_RangeAndFixedFeedBothPools(t *testing.T) {
	listings := []model.Listing{
		listingWithSalary("a", model.Salary{Min: 80000, Max: 120000, Kind: model.SalaryRange}),
		listingWithSalary("b", model.Salary{Min: 70000, Max: 70000, Kind: model.SalaryFixed}),
	}
	stats, err := engine.Aggregate(listings)
	if err != nil {
		t.Fatalf("Aggregate returned unexpected error: %v", err)
	}
	if stats.MinSalaryMean != 75000 {
		t.Errorf("MinSalaryMean = %d, want 75000", stats.MinSalaryMean)
	}
	if stats.MaxSalaryMean != 95000 {
		t.Errorf("MaxSalaryMean = %d, want 95000", stats.MaxSalaryMean)
	}
	// Combined pool: 80000, 70000, 120000, 70000 → mean 85000, median 75000.
	if stats.SalaryMean != 85000 {
		t.Errorf("SalaryMean = %d, want 85000", stats.SalaryMean)
	}
	if stats.SalaryMedian != 75000 {
		t.Errorf("SalaryMedian = %d, want 75000", stats.SalaryMedian)
	}
}

func TestAggregate_UnspecifiedExcludedFromPools(t *testing.T) {
	listings := []model.Listing{
		listingWithSalary("a", model.Salary{Min: 100, Max: 100, Kind: model.SalaryFixed}),
		listingWithSalary("b", model.Salary{Kind: model.SalaryUnspecified}),
	}
	stats, err := engine.Aggregate(listings)
	if err != nil {
		t.Fatalf("Aggregate returned unexpected error: %v", err)
	}
	if stats.SalaryMean != 100 {
		t.Errorf("SalaryMean = %d, want 100 (zero sentinels must stay out of the pool)", stats.SalaryMean)
	}
}

func TestAggregate_AllUnspecified(t *testing.T) {
	listings := []model.Listing{
		listingWithSalary("a", model.Salary{Kind: model.SalaryUnspecified}),
		listingWithSalary("b", model.Salary{Kind: model.SalaryUnspecified}),
	}
	stats, err := engine.Aggregate(listings)
	if err != nil {
		t.Fatalf("Aggregate returned unexpected error: %v", err)
	}
	if stats.JobsWithoutSalaryPct != 100 {
		t.Errorf("JobsWithoutSalaryPct = %v, want 100", stats.JobsWithoutSalaryPct)
	}
	if stats.SalaryMean != 0 || stats.SalaryMedian != 0 {
		t.Errorf("means over an empty pool should be 0, got mean=%d median=%d",
			stats.SalaryMean, stats.SalaryMedian)
	}
}

// ── Aggregate — rounding ───────────────────────────────────────────────────

func TestAggregate_MeanRoundsToNearestInteger(t *testing.T) {
	// Pool: 100, 100, 101, 101, 101, 101 → mean 100.666… → 101.
	listings := []model.Listing{
		listingWithSalary("a", model.Salary{Min: 100, Max: 101, Kind: model.SalaryRange}),
		listingWithSalary("b", model.Salary{Min: 100, Max: 101, Kind: model.SalaryRange}),
		listingWithSalary("c", model.Salary{Min: 101, Max: 101, Kind: model.SalaryFixed}),
	}
	stats, err := engine.Aggregate(listings)
	if err != nil {
		t.Fatalf("Aggregate returned unexpected error: %v", err)
	}
	if stats.SalaryMean != 101 {
		t.Errorf("SalaryMean = %d, want 101", stats.SalaryMean)
	}
}

func TestAggregate_MedianOfEvenPool(t *testing.T) {
	// Pool: 100, 200 → median 150.
	listings := []model.Listing{
		listingWithSalary("a", model.Salary{Min: 100, Max: 200, Kind: model.SalaryRange}),
	}
	stats, err := engine.Aggregate(listings)
	if err != nil {
		t.Fatalf("Aggregate returned unexpected error: %v", err)
	}
	if stats.SalaryMedian != 150 {
		t.Errorf("SalaryMedian = %d, want 150", stats.SalaryMedian)
	}
}
