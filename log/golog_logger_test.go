package log

import (
	"bytes"
	"testing"

	"github.com/kataras/golog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGologLogger(t *testing.T) {
	glogger := golog.New()

	logger := NewGologLogger(glogger)

	assert.NotNil(t, logger)
	assert.Equal(t, LogLevelInfo, logger.GetLevel())
}

func TestGologLogger_LevelControl(t *testing.T) {
	glogger := golog.New()
	logger := NewGologLogger(glogger)

	logger.SetLevel(LogLevelDebug)
	assert.Equal(t, LogLevelDebug, logger.GetLevel())

	logger.SetLevel(LogLevelError)
	assert.Equal(t, LogLevelError, logger.GetLevel())

	logger.SetLevel(LogLevelNone)
	assert.Equal(t, LogLevelNone, logger.GetLevel())
}

func TestGologLogger_FormatsMessages(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LogLevelDebug)

	logger.Info("question: %s", "What is diabetes?")
	logger.Debug("retrieved %d documents", 3)

	out := buf.String()
	assert.Contains(t, out, Prefix)
	assert.Contains(t, out, "question: What is diabetes?")
	assert.Contains(t, out, "retrieved 3 documents")
}

func TestGologLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LogLevelError)

	logger.Debug("debug line")
	logger.Info("info line")
	logger.Warn("warn line")
	logger.Error("error line")

	out := buf.String()
	assert.NotContains(t, out, "debug line")
	assert.NotContains(t, out, "info line")
	assert.NotContains(t, out, "warn line")
	assert.Contains(t, out, "error line")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LogLevelDebug},
		{"", LogLevelInfo},
		{"INFO", LogLevelInfo},
		{"warning", LogLevelWarn},
		{"error", LogLevelError},
		{"off", LogLevelNone},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLogLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLogLevel("verbose")
	assert.Error(t, err)
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, GetDefaultLogger(), OrDefault(nil))

	noop := &NoOpLogger{}
	assert.Equal(t, Logger(noop), OrDefault(noop))
}
