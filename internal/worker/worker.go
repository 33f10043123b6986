// Package worker runs the full scrape-analyse-persist cycle for one
// configured search query.
package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/d9i2r2t1/hh-parser/internal/engine"
	"github.com/d9i2r2t1/hh-parser/internal/mailer"
	"github.com/d9i2r2t1/hh-parser/internal/model"
	"github.com/d9i2r2t1/hh-parser/internal/report"
	"github.com/d9i2r2t1/hh-parser/internal/scraper"
	"github.com/d9i2r2t1/hh-parser/internal/store"
)

// lockTTL bounds how long a crashed run can block the next one.
const lockTTL = time.Hour

// Worker wires the fetcher, the engine, and the collaborators together.
// Lock and Mailer may be nil: without a lock the caller must serialize runs
// itself, and without a mailer no report mail goes out.
type Worker struct {
	Fetcher *scraper.Fetcher
	Store   *store.Store
	Lock    *store.RunLock
	Reports report.Writer
	Mailer  *mailer.Mailer
}

// Run executes one batch run end to end. A run either completes every step
// or aborts as a whole — snapshot writes happen in one transaction at the
// end, after all pure computation succeeded.
func (w *Worker) Run(ctx context.Context) error {
	if w.Lock != nil {
		if err := w.Lock.Acquire(ctx, lockTTL); err != nil {
			return err
		}
		defer func() {
			if err := w.Lock.Release(context.WithoutCancel(ctx)); err != nil {
				log.Printf("[worker] Release run lock: %v", err)
			}
		}()
	}

	run, err := w.Fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	if len(run.Listings) == 0 {
		return engine.ErrEmptyRun
	}

	// Normalise every salary before touching anything persistent. A single
	// unrecognised salary aborts the run rather than skewing the statistics.
	for i := range run.Listings {
		salary, err := engine.ParseSalary(run.Listings[i].SalaryText)
		if err != nil {
			return fmt.Errorf("vacancy %s: %w", run.Listings[i].Href, err)
		}
		run.Listings[i].Salary = salary
	}

	stats, err := engine.Aggregate(run.Listings)
	if err != nil {
		return err
	}
	log.Printf("[worker] Stats — %d vacancies, %.2f%% without salary, mean %d, median %d",
		stats.JobsCount, stats.JobsWithoutSalaryPct, stats.SalaryMean, stats.SalaryMedian)

	ranked := engine.Rank(run.Listings)

	priorUnique, err := w.Store.UniqueJobs(ctx)
	if err != nil {
		return err
	}
	priorClosed, err := w.Store.ClosedJobs(ctx)
	if err != nil {
		return err
	}

	current := make([]model.JobKey, len(run.Listings))
	for i, l := range run.Listings {
		current[i] = model.JobKey{Href: l.Href, Date: l.PublishedAt}
	}

	newUnique, newClosed, err := engine.Reconcile(run.Date, current, priorUnique, priorClosed)
	if err != nil {
		return err
	}
	log.Printf("[worker] Reconciled — %d new unique, %d newly closed", len(newUnique), len(newClosed))

	if err := w.Store.SaveRun(ctx, run, stats, ranked, newUnique, newClosed); err != nil {
		return err
	}

	reportPath, err := w.Reports.Write(run, ranked)
	if err != nil {
		return err
	}

	if w.Mailer != nil {
		if err := w.Mailer.SendReport(run, stats, reportPath); err != nil {
			return fmt.Errorf("report mail: %w", err)
		}
	}

	return nil
}
