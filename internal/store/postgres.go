// Package store persists runs and snapshots in PostgreSQL and guards them
// with a Redis run lock.
package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/d9i2r2t1/hh-parser/internal/model"
)

// Store owns the four result tables. unique_jobs and unique_closed_jobs are
// append-only snapshots keyed by href; current_jobs is fully replaced each
// run; parsing_results grows one row per run.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store over an established pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the result tables when they do not exist yet, so a fresh
// database cold-starts without manual setup.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS parsing_results (
			date DATE NOT NULL,
			jobs_count INTEGER NOT NULL,
			time_parse DOUBLE PRECISION NOT NULL,
			jobs_without_salary DOUBLE PRECISION NOT NULL,
			salary_mean INTEGER NOT NULL,
			salary_median INTEGER NOT NULL,
			min_salary_mean INTEGER NOT NULL,
			max_salary_mean INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS current_jobs (
			"row" INTEGER NOT NULL,
			date DATE NOT NULL,
			title TEXT NOT NULL,
			company TEXT NOT NULL,
			salary TEXT NOT NULL,
			href TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS unique_jobs (
			date DATE NOT NULL,
			href TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS unique_closed_jobs (
			href TEXT NOT NULL UNIQUE,
			publication_date DATE NOT NULL,
			closing_date DATE NOT NULL,
			date_diff INTEGER NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// UniqueJobs reads the full unique-jobs snapshot.
func (s *Store) UniqueJobs(ctx context.Context) ([]model.UniqueJob, error) {
	rows, err := s.pool.Query(ctx, `SELECT href, date FROM unique_jobs ORDER BY date, href`)
	if err != nil {
		return nil, fmt.Errorf("query unique_jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.UniqueJob
	for rows.Next() {
		var j model.UniqueJob
		if err := rows.Scan(&j.Href, &j.FirstSeen); err != nil {
			return nil, fmt.Errorf("scan unique_jobs: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// ClosedJobs reads the full closed-jobs snapshot.
func (s *Store) ClosedJobs(ctx context.Context) ([]model.ClosedJob, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT href, publication_date, closing_date, date_diff
		 FROM unique_closed_jobs ORDER BY closing_date, href`)
	if err != nil {
		return nil, fmt.Errorf("query unique_closed_jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.ClosedJob
	for rows.Next() {
		var j model.ClosedJob
		if err := rows.Scan(&j.Href, &j.PublishedAt, &j.ClosedAt, &j.LifetimeDays); err != nil {
			return nil, fmt.Errorf("scan unique_closed_jobs: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// SaveRun persists one completed run in a single transaction: the stats row,
// the fully replaced current_jobs table, and the two snapshot deltas. Either
// everything lands or nothing does — there are no partial snapshot writes.
func (s *Store) SaveRun(
	ctx context.Context,
	run *model.Run,
	stats model.RunStats,
	ranked []model.RankedListing,
	newUnique []model.UniqueJob,
	newClosed []model.ClosedJob,
) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	runDate := run.Date.Truncate(24 * time.Hour)

	_, err = tx.Exec(ctx,
		`INSERT INTO parsing_results
		   (date, jobs_count, time_parse, jobs_without_salary,
		    salary_mean, salary_median, min_salary_mean, max_salary_mean)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		runDate, stats.JobsCount, run.ParseDuration.Seconds(), stats.JobsWithoutSalaryPct,
		stats.SalaryMean, stats.SalaryMedian, stats.MinSalaryMean, stats.MaxSalaryMean,
	)
	if err != nil {
		return fmt.Errorf("insert parsing_results: %w", err)
	}

	if _, err := tx.Exec(ctx, `TRUNCATE current_jobs`); err != nil {
		return fmt.Errorf("truncate current_jobs: %w", err)
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"current_jobs"},
		[]string{"row", "date", "title", "company", "salary", "href"},
		pgx.CopyFromSlice(len(ranked), func(i int) ([]any, error) {
			r := ranked[i]
			return []any{r.Rank, r.PublishedAt, r.Title, r.Company, r.SalaryText, r.Href}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy current_jobs: %w", err)
	}

	for _, u := range newUnique {
		_, err := tx.Exec(ctx,
			`INSERT INTO unique_jobs (date, href) VALUES ($1, $2)
			 ON CONFLICT (href) DO NOTHING`,
			u.FirstSeen, u.Href,
		)
		if err != nil {
			return fmt.Errorf("insert unique_jobs: %w", err)
		}
	}

	for _, c := range newClosed {
		_, err := tx.Exec(ctx,
			`INSERT INTO unique_closed_jobs (href, publication_date, closing_date, date_diff)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (href) DO NOTHING`,
			c.Href, c.PublishedAt, c.ClosedAt, c.LifetimeDays,
		)
		if err != nil {
			return fmt.Errorf("insert unique_closed_jobs: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}

	log.Printf("[store] Run saved — %d current, %d new unique, %d new closed",
		len(ranked), len(newUnique), len(newClosed))
	return nil
}
