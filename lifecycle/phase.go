package lifecycle

// Phase is one of the four ordered stages a lifecycle passes through.
// Init and start run during startup, stop and finish during shutdown.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseStart
	PhaseStop
	PhaseFinish
)

// phases lists all phases in execution order.
var phases = []Phase{PhaseInit, PhaseStart, PhaseStop, PhaseFinish}

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseStart:
		return "start"
	case PhaseStop:
		return "stop"
	case PhaseFinish:
		return "finish"
	default:
		return "unknown"
	}
}

// enterEvent returns the event emitted before the phase's queue is drained.
func (p Phase) enterEvent() Event {
	switch p {
	case PhaseInit:
		return EventIniting
	case PhaseStart:
		return EventStarting
	case PhaseStop:
		return EventStopping
	default:
		return EventFinishing
	}
}

// exitEvent returns the event emitted after the phase's queue drained
// without a fatal stop.
func (p Phase) exitEvent() Event {
	switch p {
	case PhaseInit:
		return EventInited
	case PhaseStart:
		return EventStarted
	case PhaseStop:
		return EventStopped
	default:
		return EventFinished
	}
}
