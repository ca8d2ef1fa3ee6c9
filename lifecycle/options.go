package lifecycle

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Config contains the settings for a Controller. The zero value is not
// usable; start from DefaultConfig and override what you need.
type Config struct {
	// CatchErrors controls whether Controller.Go installs a recovery
	// boundary that converts panics into runtime-crash errors routed
	// through the shutdown policy.
	CatchErrors bool

	// CatchSignals installs interrupt/terminate signal traps that trigger a
	// clean shutdown. The traps are scoped to the controller and removed on
	// termination.
	CatchSignals bool

	// ExitProcess makes the controller call the process exit function after
	// "end" or a forced failure. With ExitProcess false the controller only
	// closes Done and records ExitCode; ending the process is the caller's
	// responsibility.
	ExitProcess bool

	// ShowErrors logs every propagated error with the current state name.
	ShowErrors bool

	// ShowTraces includes the captured stack in logged panic-origin errors.
	ShowTraces bool

	// LogTimes logs the elapsed wall-clock time for the startup span at
	// ready and for the shutdown span at end.
	LogTimes bool

	// StopOnError aborts a phase on the first task error. When false the
	// error is logged, the remaining tasks still run and the phase reports
	// success.
	StopOnError bool

	// MaxTaskTime is the per-task slow warning threshold. A task running
	// longer is logged as a warning but never cancelled or failed.
	MaxTaskTime time.Duration

	// ShutdownGrace bounds a shutdown that an error has already put in
	// doubt: when a failure surfaces while the stop phase is mid-flight,
	// the controller keeps waiting for in-flight work, but forces
	// termination if shutdown has not completed within this window.
	ShutdownGrace time.Duration

	// Per-phase strategy selection: true runs the phase's tasks in
	// parallel (fire all, then join), false runs them sequentially.
	InitInParallel   bool
	StartInParallel  bool
	StopInParallel   bool
	FinishInParallel bool

	// Logger is the sink for leveled messages. Defaults to the logrus
	// standard logger.
	Logger logrus.FieldLogger

	// Context is passed to every task invocation. Defaults to
	// context.Background. The controller never cancels it; there is no
	// mechanism to cancel an in-flight task.
	Context context.Context

	// exit is the process termination function, injectable for tests.
	exit func(code int)
}

// DefaultConfig returns the default controller configuration.
func DefaultConfig() *Config {
	return &Config{
		CatchErrors:   true,
		CatchSignals:  true,
		ExitProcess:   true,
		ShowErrors:    true,
		StopOnError:   true,
		MaxTaskTime:   10 * time.Second,
		ShutdownGrace: 30 * time.Second,
	}
}

// parallelFor reports the execution strategy selected for the phase.
func (c *Config) parallelFor(p Phase) bool {
	switch p {
	case PhaseInit:
		return c.InitInParallel
	case PhaseStart:
		return c.StartInParallel
	case PhaseStop:
		return c.StopInParallel
	default:
		return c.FinishInParallel
	}
}
