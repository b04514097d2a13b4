package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFieldConstructors(t *testing.T) {
	assert.Equal(t, Field{Key: "s", Value: "v"}, String("s", "v"))
	assert.Equal(t, Field{Key: "i", Value: 7}, Int("i", 7))
	assert.Equal(t, Field{Key: "i64", Value: int64(9)}, Int64("i64", 9))
	assert.Equal(t, Field{Key: "f", Value: 1.5}, Float64("f", 1.5))
	assert.Equal(t, Field{Key: "b", Value: true}, Bool("b", true))
	assert.Equal(t, Field{Key: "d", Value: time.Second}, Duration("d", time.Second))
	assert.Equal(t, Field{Key: "error", Value: "boom"}, Err(errors.New("boom")))
	assert.Equal(t, Field{Key: "error", Value: "<nil>"}, Err(nil))
}

func TestZapLoggerEmitsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewLoggerFromCore(core)

	log.Info("fetch complete", String("provider", "patentsview"), Int("count", 42))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "fetch complete", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "patentsview", ctx["provider"])
	assert.Equal(t, int64(42), ctx["count"])
}

func TestWithAddsPersistentFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewLoggerFromCore(core).With(String("run_id", "abc"))

	log.Warn("pass returned zero results")
	log.Error("pass failed")

	for _, e := range logs.All() {
		assert.Equal(t, "abc", e.ContextMap()["run_id"])
	}
}

func TestNamedAppendsName(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewLoggerFromCore(core).Named("app").Named("discovery")

	log.Info("starting")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "app.discovery", entries[0].LoggerName)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("info"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestNewLoggerDefaults(t *testing.T) {
	log, err := NewLogger(LogConfig{})
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	log.Info("dropped")
	assert.Equal(t, log, log.With(String("k", "v")))
	assert.Equal(t, log, log.Named("x"))
}

func TestDefaultLogger(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	core, logs := observer.New(zapcore.InfoLevel)
	SetDefault(NewLoggerFromCore(core))
	Default().Info("via default")
	require.Len(t, logs.All(), 1)

	SetDefault(nil) // ignored
	assert.NotNil(t, Default())
}
