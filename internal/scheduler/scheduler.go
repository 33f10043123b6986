// Package scheduler wires up the cron job that re-runs the worker on a
// configured schedule instead of relying on an external crontab.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/d9i2r2t1/hh-parser/internal/worker"
)

// Scheduler wraps robfig/cron around one Worker.
type Scheduler struct {
	cron   *cron.Cron
	worker *worker.Worker
	spec   string // cron spec, e.g. "@daily"

	// OnError, when set, is called with every failed run's error in
	// addition to logging (used for failure mail notifications).
	OnError func(error)
}

// New creates a Scheduler firing on the given cron spec.
func New(w *worker.Worker, spec string) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cron.DefaultLogger)),
		worker: w,
		spec:   spec,
	}
}

// Start registers the job and starts the scheduler. One run fires
// immediately so results exist without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc(%q): %w", s.spec, err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	go s.runOnce(ctx)
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

func (s *Scheduler) runOnce(ctx context.Context) {
	log.Println("[scheduler] Run started")
	if err := s.worker.Run(ctx); err != nil {
		log.Printf("[scheduler] Run failed: %v", err)
		if s.OnError != nil {
			s.OnError(err)
		}
		return
	}
	log.Println("[scheduler] Run complete")
}
