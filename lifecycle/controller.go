// Package lifecycle sequences registered tasks through four ordered phases
// (init, start, stop, finish) and coordinates an orderly shutdown triggered
// by completion, explicit request, an error, or a termination signal.
//
// A typical service registers its resource acquisition into init/start and
// the matching release into stop/finish, then hands control to the
// controller:
//
//	c := lifecycle.New(nil)
//	c.Init(openDatabase)
//	c.Start(listenHTTP)
//	c.Stop(drainHTTP)
//	c.Finish(closeDatabase)
//	c.Startup()
//	os.Exit(c.Wait())
package lifecycle

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Func is a task body. Invocation starts the task; returning signals
// completion exactly once, with a nil error on success. Task bodies are
// never re-invoked.
type Func func(ctx context.Context) error

// Logical states of the controller outside the four phases.
const (
	statePre        = "pre"
	stateReady      = "ready"
	stateStandalone = "standalone"
	stateEnd        = "end"
)

// Controller owns the four phase queues and drives the lifecycle state
// machine: pre -> init -> start -> ready -> [standalone] -> stop -> finish
// -> end. Transitions are forward-only; no phase is ever re-entered.
type Controller struct {
	cfg    Config
	log    logrus.FieldLogger
	ctx    context.Context
	runner *phaseRunner

	mu            sync.Mutex
	queues        map[Phase]*taskQueue
	phaseDone     map[Phase]bool
	standalone    Func
	startingUp    bool
	shuttingDown  bool
	startupActive bool // a startup-side transition is mid-flight
	shutdownRun   bool // the stop->finish transition has begun
	terminated    bool
	state         string
	exitCode      int
	observers     map[Event][]func()
	errObservers  []func(error)
	startedAt     time.Time
	shutdownAt    time.Time
	graceTimer    *time.Timer
	sigCh         chan os.Signal

	done chan struct{}
}

// New creates a Controller. A nil cfg selects DefaultConfig. The config is
// copied; later mutation of cfg has no effect.
func New(cfg *Config) *Controller {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := &Controller{
		cfg:       *cfg,
		queues:    make(map[Phase]*taskQueue, len(phases)),
		phaseDone: make(map[Phase]bool, len(phases)),
		state:     statePre,
		observers: make(map[Event][]func()),
		done:      make(chan struct{}),
	}
	if c.cfg.Logger == nil {
		c.cfg.Logger = logrus.StandardLogger()
	}
	if c.cfg.Context == nil {
		c.cfg.Context = context.Background()
	}
	if c.cfg.MaxTaskTime <= 0 {
		c.cfg.MaxTaskTime = 10 * time.Second
	}
	if c.cfg.ShutdownGrace <= 0 {
		c.cfg.ShutdownGrace = 30 * time.Second
	}
	if c.cfg.exit == nil {
		c.cfg.exit = os.Exit
	}
	c.log = c.cfg.Logger
	c.ctx = c.cfg.Context
	c.runner = &phaseRunner{cfg: &c.cfg, log: c.log}
	for _, p := range phases {
		c.queues[p] = newTaskQueue()
	}
	return c
}

// Init registers a task into the init phase. The optional priority orders
// it within the phase: lower runs earlier, omitted runs after all
// prioritized tasks in registration order.
func (c *Controller) Init(fn Func, priority ...int) error {
	return c.register(PhaseInit, fn, priority)
}

// Start registers a task into the start phase.
func (c *Controller) Start(fn Func, priority ...int) error {
	return c.register(PhaseStart, fn, priority)
}

// Stop registers a task into the stop phase.
func (c *Controller) Stop(fn Func, priority ...int) error {
	return c.register(PhaseStop, fn, priority)
}

// Finish registers a task into the finish phase.
func (c *Controller) Finish(fn Func, priority ...int) error {
	return c.register(PhaseFinish, fn, priority)
}

func (c *Controller) register(p Phase, fn Func, priority []int) error {
	if fn == nil {
		return c.usageError(ErrNilTask)
	}
	prio := 0
	if len(priority) > 0 {
		prio = priority[0]
	}
	c.mu.Lock()
	if c.terminated || c.phaseDone[p] {
		c.mu.Unlock()
		return c.usageError(&PhaseDoneError{Phase: p})
	}
	c.queues[p].add(prio, fn)
	c.mu.Unlock()
	return nil
}

// Standalone registers the single task that runs alone after the start
// phase completes, representing the one thing the process exists to do. Its
// completion, success or error, initiates shutdown.
func (c *Controller) Standalone(fn Func) error {
	if fn == nil {
		return c.usageError(ErrNilTask)
	}
	c.mu.Lock()
	if c.standalone != nil {
		c.mu.Unlock()
		return c.usageError(ErrStandaloneTaskSet)
	}
	c.standalone = fn
	c.mu.Unlock()
	return nil
}

// Startup begins the lifecycle: init phase, start phase, ready, and the
// standalone task if one is registered. The sequence runs on its own
// goroutine, so every registration made before Startup is honored. Calling
// Startup twice is a usage error.
func (c *Controller) Startup() error {
	c.mu.Lock()
	if c.startingUp {
		c.mu.Unlock()
		return c.usageError(ErrStartupCalled)
	}
	c.startingUp = true
	c.startupActive = true
	c.mu.Unlock()

	if c.cfg.CatchSignals {
		c.trapSignals()
	}
	go c.runStartup()
	return nil
}

// Shutdown requests the stop -> finish -> end sequence, terminating the
// process with the given code (0 when omitted). The first call wins; a
// repeat call while already shutting down logs a warning and has no
// further effect. A request arriving while a startup phase is mid-flight
// waits for its in-flight tasks to settle before stop begins.
func (c *Controller) Shutdown(code ...int) {
	n := 0
	if len(code) > 0 {
		n = code[0]
	}
	c.mu.Lock()
	if c.shuttingDown {
		state := c.state
		c.mu.Unlock()
		c.log.WithField("phase", state).Warn("shutdown already in progress")
		return
	}
	c.shuttingDown = true
	c.exitCode = n
	deferred := c.startupActive
	c.mu.Unlock()

	if !deferred {
		go c.runShutdown()
	}
}

// Go runs fn on its own goroutine behind the crash boundary: with
// CatchErrors enabled a panic is recovered and, like a returned error,
// funneled into the shutdown policy as a runtime crash.
func (c *Controller) Go(fn Func) {
	go func() {
		if c.cfg.CatchErrors {
			defer func() {
				if v := recover(); v != nil {
					c.HandleError(&CrashError{
						State: c.State(),
						Task:  "goroutine",
						Value: v,
						Stack: stack(),
					})
				}
			}()
		}
		if err := fn(c.ctx); err != nil {
			c.HandleError(err)
		}
	}()
}

// State returns the current state name: "pre", a phase name, "ready",
// "standalone" or "end".
func (c *Controller) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Remaining reports how many tasks are still queued for the phase.
func (c *Controller) Remaining(p Phase) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queues[p].remaining()
}

// Done is closed when the lifecycle reaches its terminal state, clean or
// forced. With ExitProcess disabled this is the caller's cue to exit.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// ExitCode returns the exit code recorded at termination. It is only
// meaningful once Done is closed.
func (c *Controller) ExitCode() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exitCode
}

// Wait blocks until the lifecycle terminates and returns the exit code.
func (c *Controller) Wait() int {
	<-c.done
	return c.ExitCode()
}

// runStartup drives init -> start -> ready -> standalone on the startup
// goroutine.
func (c *Controller) runStartup() {
	c.emit(EventStartup)
	c.mu.Lock()
	c.startedAt = time.Now()
	c.mu.Unlock()

	if !c.advance(PhaseInit) {
		return
	}
	if !c.advance(PhaseStart) {
		return
	}

	c.setState(stateReady)
	c.emit(EventReady)
	if c.cfg.LogTimes {
		c.log.WithField("elapsed", time.Since(c.startedAt).Round(time.Millisecond)).
			Info("startup complete")
	}

	c.mu.Lock()
	standalone := c.standalone
	c.mu.Unlock()
	if standalone == nil {
		c.settleStartup()
		return
	}

	c.setState(stateStandalone)
	err := c.runner.runTask(c.ctx, stateStandalone, &entry{name: "standalone", fn: standalone})

	c.mu.Lock()
	requested := c.shuttingDown
	if !requested {
		c.shuttingDown = true
		if err != nil {
			c.exitCode = 1
		}
	}
	c.startupActive = false
	c.mu.Unlock()

	if err != nil {
		c.reportError(err)
	}
	c.runShutdown()
}

// advance runs one startup-side phase. It returns false when the sequence
// must not continue: shutdown was requested, or the phase failed.
func (c *Controller) advance(p Phase) bool {
	if c.isShuttingDown() {
		c.settleStartup()
		return false
	}
	if err := c.runPhase(p); err != nil {
		c.startupFailed(err)
		return false
	}
	// A shutdown requested mid-phase short-circuits the remaining startup
	// phases now that the in-flight tasks have settled.
	if c.isShuttingDown() {
		c.settleStartup()
		return false
	}
	return true
}

// settleStartup marks the startup goroutine as settled and runs a deferred
// shutdown request, if any, on this goroutine.
func (c *Controller) settleStartup() {
	c.mu.Lock()
	c.startupActive = false
	pending := c.shuttingDown && !c.shutdownRun
	c.mu.Unlock()
	if pending {
		c.runShutdown()
	}
}

// startupFailed aborts the startup sequence on a phase failure and enters
// shutdown with a nonzero code.
func (c *Controller) startupFailed(err error) {
	c.reportError(err)
	c.mu.Lock()
	c.shuttingDown = true
	if c.exitCode == 0 {
		c.exitCode = 1
	}
	c.startupActive = false
	c.mu.Unlock()
	c.runShutdown()
}

// runShutdown drives stop -> finish -> end. Exactly one goroutine ever gets
// past the shutdownRun guard.
func (c *Controller) runShutdown() {
	c.mu.Lock()
	if c.shutdownRun {
		c.mu.Unlock()
		return
	}
	c.shutdownRun = true
	c.shutdownAt = time.Now()
	code := c.exitCode
	c.mu.Unlock()

	c.emit(EventShutdown)

	if stopErr := c.runPhase(PhaseStop); stopErr != nil {
		c.reportError(stopErr)
		if code == 0 {
			code = 1
		}
		// Symmetry guarantee: finish tasks get their chance to release
		// resources acquired during init even though stop failed.
		if finErr := c.runPhase(PhaseFinish); finErr != nil {
			c.reportError(finErr)
			c.forceExit(code)
			return
		}
		c.terminate(code)
		return
	}
	if finErr := c.runPhase(PhaseFinish); finErr != nil {
		c.reportError(finErr)
		if code == 0 {
			code = 1
		}
		c.forceExit(code)
		return
	}

	// A shutdown-path error may have escalated to forced termination while
	// the phases were draining; end must not fire after that.
	c.mu.Lock()
	forced := c.terminated
	c.mu.Unlock()
	if forced {
		return
	}

	c.setState(stateEnd)
	c.emit(EventEnd)
	if c.cfg.LogTimes {
		c.mu.Lock()
		elapsed := time.Since(c.shutdownAt).Round(time.Millisecond)
		c.mu.Unlock()
		c.log.WithField("elapsed", elapsed).Info("shutdown complete")
	}
	c.terminate(code)
}

// runPhase drains one phase queue. The phase flag is set only when the
// queue fully drains without a fatal stop; a failed phase may not be
// re-run, but it is not marked done either.
func (c *Controller) runPhase(p Phase) error {
	c.mu.Lock()
	q := c.queues[p]
	c.state = p.String()
	c.mu.Unlock()

	c.emit(p.enterEvent())
	if err := c.runner.run(c.ctx, p, q); err != nil {
		return err
	}

	c.mu.Lock()
	c.phaseDone[p] = true
	c.mu.Unlock()
	c.emit(p.exitEvent())
	return nil
}

// terminate is the clean exit path: teardown, record the code, close Done,
// and end the process if the controller owns termination.
func (c *Controller) terminate(code int) {
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
	c.mu.Unlock()

	c.releaseSignals()
	close(c.done)
	if c.cfg.ExitProcess {
		c.cfg.exit(code)
	}
}

func (c *Controller) setState(s string) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) isShuttingDown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shuttingDown
}
