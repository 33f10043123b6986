// Package model defines shared data structures for the hh-parser service.
package model

import "time"

// SalaryKind identifies which form the vacancy's salary text took.
// The aggregation rules differ per kind, so it travels with the parsed values.
type SalaryKind int

const (
	// SalaryUnspecified means the vacancy carried the "Не указано" marker.
	SalaryUnspecified SalaryKind = iota
	// SalaryLowerBound means "от N" — only the lower bound is known.
	SalaryLowerBound
	// SalaryUpperBound means "до N" — only the upper bound is known.
	SalaryUpperBound
	// SalaryRange means an explicit "N-M" fork.
	SalaryRange
	// SalaryFixed means a single fixed amount.
	SalaryFixed
)

// Salary is a vacancy salary normalised to whole currency units.
// Min and Max are both zero when the salary is unspecified.
type Salary struct {
	Min  int
	Max  int
	Kind SalaryKind
}

// Specified reports whether the vacancy stated any salary at all.
func (s Salary) Specified() bool { return s.Kind != SalaryUnspecified }

// Mean is the midpoint of Min and Max, used for ranking.
func (s Salary) Mean() float64 { return float64(s.Min+s.Max) / 2 }

// Listing is one vacancy observed in a run. Href is the stable identity
// across runs; everything else may change without creating a new identity.
type Listing struct {
	Href        string
	Title       string
	Company     string
	SalaryText  string
	PublishedAt time.Time
	Salary      Salary
}

// Run holds everything one scrape produced.
type Run struct {
	Date          time.Time
	ParseDuration time.Duration
	SearchText    string
	Listings      []Listing
}

// RankedListing is a Listing with its 1-based position after salary sorting.
type RankedListing struct {
	Rank int
	Listing
}

// RunStats is one row of the parsing_results table.
type RunStats struct {
	JobsCount            int
	JobsWithoutSalaryPct float64
	SalaryMean           int
	SalaryMedian         int
	MinSalaryMean        int
	MaxSalaryMean        int
}

// JobKey is the (href, publication date) pair the reconciler works on.
type JobKey struct {
	Href string
	Date time.Time
}

// UniqueJob is one row of the unique_jobs table: a href and the date it was
// first observed. Rows are append-only and never rewritten.
type UniqueJob struct {
	Href      string
	FirstSeen time.Time
}

// ClosedJob is one row of the unique_closed_jobs table: a previously-unique
// href that disappeared from the current run. Rows are append-only.
type ClosedJob struct {
	Href         string
	PublishedAt  time.Time
	ClosedAt     time.Time
	LifetimeDays int
}
