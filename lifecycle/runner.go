package lifecycle

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// phaseRunner drains one phase's task queue under the configured execution
// strategy. Errors returned by run are phase failures subject to the
// coordinator's shutdown policy; errors swallowed by the stop-on-error
// policy are logged here and never re-surfaced.
type phaseRunner struct {
	cfg *Config
	log logrus.FieldLogger
}

func (r *phaseRunner) run(ctx context.Context, p Phase, q *taskQueue) error {
	if r.cfg.parallelFor(p) {
		return r.runParallel(ctx, p, q)
	}
	return r.runSequential(ctx, p, q)
}

// runSequential pops and runs one task at a time, each completing before
// the next begins.
func (r *phaseRunner) runSequential(ctx context.Context, p Phase, q *taskQueue) error {
	for {
		e := q.next()
		if e == nil {
			return nil
		}
		if err := r.runTask(ctx, p.String(), e); err != nil {
			if r.cfg.StopOnError {
				return err
			}
			r.logTaskError(p, e, err)
		}
	}
}

// runParallel starts every queued task in queue order before waiting for
// any to finish. The phase completes only once all started tasks have
// completed; in-flight tasks are never abandoned, even after a failure.
// When several tasks fail, the phase reports the error of the task that was
// started earliest and logs the rest.
func (r *phaseRunner) runParallel(ctx context.Context, p Phase, q *taskQueue) error {
	var started []*entry
	for e := q.next(); e != nil; e = q.next() {
		started = append(started, e)
	}

	errs := make([]error, len(started))
	var wg sync.WaitGroup
	for i, e := range started {
		wg.Add(1)
		go func(i int, e *entry) {
			defer wg.Done()
			errs[i] = r.runTask(ctx, p.String(), e)
		}(i, e)
	}
	wg.Wait()

	var first error
	for i, err := range errs {
		if err == nil {
			continue
		}
		if first == nil && r.cfg.StopOnError {
			first = err
			continue
		}
		r.logTaskError(p, started[i], err)
	}
	return first
}

// runTask invokes a single task under the fault-isolation boundary, with
// the slow-task warning armed. The warning never cancels or fails the
// task; completion is always awaited.
func (r *phaseRunner) runTask(ctx context.Context, state string, e *entry) (err error) {
	warn := time.AfterFunc(r.cfg.MaxTaskTime, func() {
		r.log.WithFields(logrus.Fields{
			"phase": state,
			"task":  e.name,
		}).Warnf("task still running after %v", r.cfg.MaxTaskTime)
	})
	defer warn.Stop()

	defer func() {
		if v := recover(); v != nil {
			err = &CrashError{State: state, Task: e.name, Value: v, Stack: debug.Stack()}
		}
	}()

	if err := e.fn(ctx); err != nil {
		return &TaskError{State: state, Task: e.name, Err: err}
	}
	return nil
}

// logTaskError records a task failure that does not fail its phase: either
// swallowed by StopOnError=false, or a later concurrent error in parallel
// mode when an earlier-started task already failed the phase.
func (r *phaseRunner) logTaskError(p Phase, e *entry, err error) {
	if !r.cfg.ShowErrors {
		return
	}
	r.log.WithFields(logrus.Fields{
		"phase": p.String(),
		"task":  e.name,
	}).Errorf("task failed: %v", err)
}
