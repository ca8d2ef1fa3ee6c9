package lifecycle

import (
	"errors"
	"runtime/debug"
	"time"
)

// Error/shutdown coordination: every failure, whatever its origin, funnels
// through reportError to the observers and the log, and through HandleError
// into the shutdown policy. The controller never panics toward its caller.

// HandleError routes an error through the shutdown policy:
//
//   - not yet shutting down: the error initiates a normal shutdown
//     (stop -> finish) with a nonzero exit code;
//   - shutting down with the stop phase mid-flight: the in-flight shutdown
//     still owns the stop -> finish transition, so the error only arms the
//     bounded grace timer that forces termination if shutdown never
//     settles;
//   - shutting down in any other state: the orderly path is already past
//     the point of recovery, escalate to forced termination.
//
// Controller.Go and the phase runners feed this; embedding programs may
// call it directly to route their own fatal errors.
func (c *Controller) HandleError(err error) {
	if err == nil {
		return
	}
	c.reportError(err)

	c.mu.Lock()
	switch {
	case !c.shuttingDown:
		c.shuttingDown = true
		if c.exitCode == 0 {
			c.exitCode = 1
		}
		deferred := c.startupActive
		c.mu.Unlock()
		if !deferred {
			go c.runShutdown()
		}
	case c.state == PhaseStop.String():
		c.armGraceLocked()
		c.mu.Unlock()
	default:
		c.mu.Unlock()
		c.forceExit(1)
	}
}

// armGraceLocked starts the shutdown grace timer once. Callers hold c.mu.
func (c *Controller) armGraceLocked() {
	if c.graceTimer != nil {
		return
	}
	c.graceTimer = time.AfterFunc(c.cfg.ShutdownGrace, func() {
		c.log.WithField("grace", c.cfg.ShutdownGrace).
			Error("shutdown did not settle within grace period")
		c.forceExit(1)
	})
}

// forceExit is the escalation path: immediate termination with a nonzero
// code, bypassing any remaining phases and emitting no end event.
func (c *Controller) forceExit(code int) {
	if code == 0 {
		code = 1
	}
	c.mu.Lock()
	if c.terminated {
		c.mu.Unlock()
		return
	}
	c.terminated = true
	c.exitCode = code
	if c.graceTimer != nil {
		c.graceTimer.Stop()
	}
	state := c.state
	c.mu.Unlock()

	c.log.WithField("phase", state).Error("forced termination")
	c.releaseSignals()
	close(c.done)
	if c.cfg.ExitProcess {
		c.cfg.exit(code)
	}
}

// usageError reports an API misuse both ways: funneled to the observers and
// returned to the caller.
func (c *Controller) usageError(err error) error {
	c.reportError(err)
	return err
}

// reportError surfaces an error to the registered error observers and the
// log. Without observers the error is still logged, never dropped, and
// never escalated merely for lacking an observer.
func (c *Controller) reportError(err error) {
	c.mu.Lock()
	obs := make([]func(error), len(c.errObservers))
	copy(obs, c.errObservers)
	state := c.state
	c.mu.Unlock()

	if c.cfg.ShowErrors || len(obs) == 0 {
		logEntry := c.log.WithField("phase", state)
		var crash *CrashError
		if c.cfg.ShowTraces && errors.As(err, &crash) {
			logEntry = logEntry.WithField("stack", string(crash.Stack))
		}
		logEntry.Error(err.Error())
	}

	c.emit(EventError)
	for _, fn := range obs {
		fn(err)
	}
}

// stack captures the calling goroutine's stack for crash reports.
func stack() []byte {
	return debug.Stack()
}
