package engine

import (
	"errors"
	"fmt"
)

// ErrEmptyRun is returned when a run yielded zero listings. There is nothing
// to aggregate or reconcile, so the run aborts before any snapshot write.
var ErrEmptyRun = errors.New("run produced no listings")

// ErrFatalInput is returned when a reconciler input carries an unusable date.
// A bad date would corrupt the lifetime of every downstream closure, so the
// run aborts instead of skipping the record.
var ErrFatalInput = errors.New("fatal input")

// MalformedSalaryError means a salary text matched no known form. The engine
// never coerces unknown text; the caller decides whether to skip or abort.
type MalformedSalaryError struct {
	Text string
}

func (e *MalformedSalaryError) Error() string {
	return fmt.Sprintf("malformed salary text %q", e.Text)
}
