package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.CatchErrors)
	assert.True(t, cfg.CatchSignals)
	assert.True(t, cfg.ExitProcess)
	assert.True(t, cfg.ShowErrors)
	assert.True(t, cfg.StopOnError)
	assert.False(t, cfg.ShowTraces)
	assert.False(t, cfg.LogTimes)
	assert.Equal(t, 10*time.Second, cfg.MaxTaskTime)
	assert.Equal(t, 30*time.Second, cfg.ShutdownGrace)
	assert.False(t, cfg.InitInParallel)
	assert.False(t, cfg.StartInParallel)
	assert.False(t, cfg.StopInParallel)
	assert.False(t, cfg.FinishInParallel)
}

func TestParallelFor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitInParallel = true
	cfg.FinishInParallel = true

	assert.True(t, cfg.parallelFor(PhaseInit))
	assert.False(t, cfg.parallelFor(PhaseStart))
	assert.False(t, cfg.parallelFor(PhaseStop))
	assert.True(t, cfg.parallelFor(PhaseFinish))
}

func TestNewNormalizesZeroValues(t *testing.T) {
	c := New(&Config{})

	assert.NotNil(t, c.cfg.Logger)
	assert.NotNil(t, c.cfg.Context)
	assert.Equal(t, 10*time.Second, c.cfg.MaxTaskTime)
	assert.Equal(t, 30*time.Second, c.cfg.ShutdownGrace)
	assert.NotNil(t, c.cfg.exit)
}

func TestNewNilConfig(t *testing.T) {
	c := New(nil)
	assert.Equal(t, "pre", c.State())
	assert.True(t, c.cfg.StopOnError)
}
