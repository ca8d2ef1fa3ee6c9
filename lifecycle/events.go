package lifecycle

// Event identifies a lifecycle notification. Events form a fixed, known set
// rather than dynamically built names, so observers register against a
// typed variant and misspelled subscriptions fail to compile.
type Event int

const (
	// EventStartup fires when the startup sequence begins.
	EventStartup Event = iota

	// Phase entry/exit notifications, one pair per phase.
	EventIniting
	EventInited
	EventStarting
	EventStarted
	EventStopping
	EventStopped
	EventFinishing
	EventFinished

	// EventReady fires once the start phase completed successfully.
	EventReady

	// EventShutdown fires when the shutdown sequence begins.
	EventShutdown

	// EventEnd fires once the finish phase completed successfully. It is the
	// terminal success signal; it does not fire on a forced termination.
	EventEnd

	// EventError fires for every propagated failure. Use OnError to receive
	// the error value itself.
	EventError
)

func (e Event) String() string {
	switch e {
	case EventStartup:
		return "startup"
	case EventIniting:
		return "initing"
	case EventInited:
		return "inited"
	case EventStarting:
		return "starting"
	case EventStarted:
		return "started"
	case EventStopping:
		return "stopping"
	case EventStopped:
		return "stopped"
	case EventFinishing:
		return "finishing"
	case EventFinished:
		return "finished"
	case EventReady:
		return "ready"
	case EventShutdown:
		return "shutdown"
	case EventEnd:
		return "end"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// On registers an observer for the given event. Observers run synchronously
// on the goroutine driving the transition, in registration order.
func (c *Controller) On(e Event, fn func()) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.observers[e] = append(c.observers[e], fn)
	c.mu.Unlock()
}

// OnError registers an error observer. Every propagated failure (usage
// errors, task errors, runtime crashes and shutdown-path errors) is passed
// to each registered observer. Without observers errors are still logged,
// never dropped.
func (c *Controller) OnError(fn func(error)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.errObservers = append(c.errObservers, fn)
	c.mu.Unlock()
}

// emit dispatches an event to its observers.
func (c *Controller) emit(e Event) {
	c.mu.Lock()
	obs := make([]func(), len(c.observers[e]))
	copy(obs, c.observers[e])
	c.mu.Unlock()

	for _, fn := range obs {
		fn()
	}
}
