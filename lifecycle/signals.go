package lifecycle

import (
	"os"
	"os/signal"
	"syscall"
)

// Signal traps are scoped to the controller instance: installed once at
// Startup, removed at termination. Multiple controllers (as in tests) never
// leak handlers into each other.

// trapSignals installs the interrupt/terminate traps. A trapped signal
// requests a clean shutdown with exit code 0; further signals while already
// shutting down only log the re-entry warning.
func (c *Controller) trapSignals() {
	c.mu.Lock()
	if c.sigCh != nil {
		c.mu.Unlock()
		return
	}
	ch := make(chan os.Signal, 1)
	c.sigCh = ch
	c.mu.Unlock()

	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		for sig := range ch {
			c.log.WithField("signal", sig.String()).Info("termination signal received")
			c.Shutdown(0)
		}
	}()
}

// releaseSignals removes the traps installed by trapSignals. Safe to call
// when no trap is installed.
func (c *Controller) releaseSignals() {
	c.mu.Lock()
	ch := c.sigCh
	c.sigCh = nil
	c.mu.Unlock()

	if ch == nil {
		return
	}
	signal.Stop(ch)
	close(ch)
}
