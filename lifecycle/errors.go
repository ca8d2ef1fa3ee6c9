package lifecycle

import (
	"errors"
	"fmt"
)

// Usage errors report misuse of the registration/lifecycle API. They are
// returned to the caller and also funneled through the error observers.
var (
	// ErrNilTask is reported when a registration call is given a nil task.
	ErrNilTask = errors.New("lifecycle: nil task")

	// ErrStandaloneTaskSet is reported when a second standalone task is
	// registered.
	ErrStandaloneTaskSet = errors.New("lifecycle: standalone task already registered")

	// ErrStartupCalled is reported when Startup is called twice.
	ErrStartupCalled = errors.New("lifecycle: startup already called")
)

// PhaseDoneError reports a registration into a phase that already finished
// running, or into any phase once the lifecycle terminated. A phase's queue
// is append-only until it drains; afterwards it is sealed, and termination
// seals every queue, including those a short-circuited startup never ran.
type PhaseDoneError struct {
	Phase Phase
}

func (e *PhaseDoneError) Error() string {
	return fmt.Sprintf("lifecycle: %s phase already ran, cannot register task", e.Phase)
}

// TaskError wraps a failure signaled by a registered task with the state it
// surfaced in.
type TaskError struct {
	State string // phase name or "standalone"
	Task  string
	Err   error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("lifecycle: %s %s: %v", e.State, e.Task, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

// CrashError marks a recovered panic from inside a task body or a guarded
// goroutine. The fault-isolation boundary converts it into a normal task
// error so it cannot take down the host process directly.
type CrashError struct {
	State string
	Task  string
	Value any
	Stack []byte
}

func (e *CrashError) Error() string {
	return fmt.Sprintf("lifecycle: %s %s panicked: %v", e.State, e.Task, e.Value)
}
