package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventStrings(t *testing.T) {
	cases := map[Event]string{
		EventStartup:   "startup",
		EventIniting:   "initing",
		EventInited:    "inited",
		EventStarting:  "starting",
		EventStarted:   "started",
		EventStopping:  "stopping",
		EventStopped:   "stopped",
		EventFinishing: "finishing",
		EventFinished:  "finished",
		EventReady:     "ready",
		EventShutdown:  "shutdown",
		EventEnd:       "end",
		EventError:     "error",
	}
	for e, want := range cases {
		assert.Equal(t, want, e.String())
	}
	assert.Equal(t, "unknown", Event(99).String())
}

func TestPhaseStrings(t *testing.T) {
	assert.Equal(t, "init", PhaseInit.String())
	assert.Equal(t, "start", PhaseStart.String())
	assert.Equal(t, "stop", PhaseStop.String())
	assert.Equal(t, "finish", PhaseFinish.String())
	assert.Equal(t, "unknown", Phase(99).String())
}

func TestPhaseTransitionEvents(t *testing.T) {
	assert.Equal(t, EventIniting, PhaseInit.enterEvent())
	assert.Equal(t, EventInited, PhaseInit.exitEvent())
	assert.Equal(t, EventStarting, PhaseStart.enterEvent())
	assert.Equal(t, EventStarted, PhaseStart.exitEvent())
	assert.Equal(t, EventStopping, PhaseStop.enterEvent())
	assert.Equal(t, EventStopped, PhaseStop.exitEvent())
	assert.Equal(t, EventFinishing, PhaseFinish.enterEvent())
	assert.Equal(t, EventFinished, PhaseFinish.exitEvent())
}

func TestObserversRunInRegistrationOrder(t *testing.T) {
	c, _ := newTestController(nil)
	rec := &recorder{}

	c.On(EventStartup, func() { rec.mark("first") })
	c.On(EventStartup, func() { rec.mark("second") })
	c.On(EventStartup, nil) // ignored

	c.emit(EventStartup)
	assert.Equal(t, []string{"first", "second"}, rec.get())
}

func TestNilErrorObserverIgnored(t *testing.T) {
	c, _ := newTestController(nil)
	c.OnError(nil)
	// Must not panic when an error is reported.
	c.reportError(assert.AnError)
}
