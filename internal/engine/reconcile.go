package engine

import (
	"fmt"
	"time"

	"github.com/d9i2r2t1/hh-parser/internal/model"
)

// Reconcile diffs the current run against the persisted snapshots and emits
// the deltas to append:
//
//   - every href in current that is absent from priorUnique becomes a new
//     UniqueJob, first seen at its publication date;
//   - every href in priorUnique that is absent from current becomes a
//     closure candidate, closed at runDate;
//   - candidates already recorded in priorClosed are dropped, so a href is
//     closed at most once, ever.
//
// Reconcile is a pure function of its inputs: identical inputs always yield
// identical deltas, and it never mutates the snapshots themselves. Empty
// priors are the cold-start case and are valid. A zero date anywhere in the
// inputs is ErrFatalInput — proceeding would corrupt the lifetime of every
// closure computed from it.
func Reconcile(
	runDate time.Time,
	current []model.JobKey,
	priorUnique []model.UniqueJob,
	priorClosed []model.ClosedJob,
) (newUnique []model.UniqueJob, newClosed []model.ClosedJob, err error) {
	if runDate.IsZero() {
		return nil, nil, fmt.Errorf("%w: zero run date", ErrFatalInput)
	}

	currentSet := make(map[string]struct{}, len(current))
	for _, key := range current {
		if key.Date.IsZero() {
			return nil, nil, fmt.Errorf("%w: zero date for current href %q", ErrFatalInput, key.Href)
		}
		currentSet[key.Href] = struct{}{}
	}

	uniqueSet := make(map[string]struct{}, len(priorUnique))
	for _, u := range priorUnique {
		if u.FirstSeen.IsZero() {
			return nil, nil, fmt.Errorf("%w: zero first-seen date for unique href %q", ErrFatalInput, u.Href)
		}
		uniqueSet[u.Href] = struct{}{}
	}

	closedSet := make(map[string]struct{}, len(priorClosed))
	for _, c := range priorClosed {
		closedSet[c.Href] = struct{}{}
	}

	// New-unique detection. Iterates current in scrape order so output is
	// deterministic; duplicate hrefs within one run collapse to the first.
	seen := make(map[string]struct{}, len(current))
	for _, key := range current {
		if _, ok := uniqueSet[key.Href]; ok {
			continue
		}
		if _, ok := seen[key.Href]; ok {
			continue
		}
		seen[key.Href] = struct{}{}
		newUnique = append(newUnique, model.UniqueJob{Href: key.Href, FirstSeen: key.Date})
	}

	// Closure detection with de-duplication against prior closures. A href
	// still present in current is never a candidate.
	for _, u := range priorUnique {
		if _, ok := currentSet[u.Href]; ok {
			continue
		}
		if _, ok := closedSet[u.Href]; ok {
			continue
		}
		lifetime := daysBetween(u.FirstSeen, runDate)
		if lifetime < 0 {
			return nil, nil, fmt.Errorf("%w: href %q first seen %s after run date %s",
				ErrFatalInput, u.Href, u.FirstSeen.Format("2006-01-02"), runDate.Format("2006-01-02"))
		}
		newClosed = append(newClosed, model.ClosedJob{
			Href:         u.Href,
			PublishedAt:  u.FirstSeen,
			ClosedAt:     runDate,
			LifetimeDays: lifetime,
		})
	}

	return newUnique, newClosed, nil
}

// daysBetween counts whole calendar days from a to b, ignoring the
// time-of-day and timezone components of both.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}
