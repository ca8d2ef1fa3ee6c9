package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLevels(t *testing.T) {
	t.Setenv("LOG_MODE", "")
	t.Setenv("LOG_FORMAT", "")

	Setup(false, false, false)
	assert.Equal(t, logrus.InfoLevel, L().GetLevel())

	Setup(true, false, false)
	assert.Equal(t, logrus.DebugLevel, L().GetLevel())

	Setup(false, false, true)
	assert.Equal(t, logrus.ErrorLevel, L().GetLevel())
}

func TestSetupEnvOverrides(t *testing.T) {
	t.Setenv("LOG_MODE", "debug")
	t.Setenv("LOG_FORMAT", "")

	Setup(false, false, true)
	assert.Equal(t, logrus.DebugLevel, L().GetLevel())

	t.Setenv("LOG_MODE", "quiet")
	Setup(true, false, false)
	assert.Equal(t, logrus.ErrorLevel, L().GetLevel())
}

func TestSetupJSONFormat(t *testing.T) {
	t.Setenv("LOG_MODE", "")
	t.Setenv("LOG_FORMAT", "json")

	Setup(false, false, false)
	_, ok := L().Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)

	t.Setenv("LOG_FORMAT", "text")
	Setup(false, true, false)
	_, ok = L().Formatter.(*CLIFormatter)
	assert.True(t, ok)
}

func TestCLIFormatter(t *testing.T) {
	f := &CLIFormatter{DisableTimestamp: true, DisableColors: true}
	entry := &logrus.Entry{
		Logger:  L(),
		Level:   logrus.WarnLevel,
		Message: "task still running",
		Data:    logrus.Fields{"phase": "init"},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Contains(t, string(out), "WARNING: task still running")
	assert.Contains(t, string(out), "phase=init")
}

func TestCLIFormatterNoLevel(t *testing.T) {
	f := &CLIFormatter{DisableLevel: true, DisableColors: true}
	entry := &logrus.Entry{Logger: L(), Level: logrus.InfoLevel, Message: "ready"}

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "ready\n", string(out))
}
