package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewZapAdapter(zap.New(core)), logs
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestZapWrapper_Fields(t *testing.T) {
	log, logs := observed(zapcore.InfoLevel)

	scoped := ForComponent(log, "process-turn").WithFields(map[string]interface{}{"sessionId": "s-1"})
	scoped.Debug("dropped below level", nil)
	scoped.Info("turn processed", map[string]interface{}{"nextSlot": "age"})
	scoped.WithError(errors.New("redis down")).Error("failed to save session", map[string]interface{}{
		"cause": errors.New("timeout"),
	})

	entries := logs.All()
	require.Len(t, entries, 2)

	info := entries[0].ContextMap()
	assert.Equal(t, "turn processed", entries[0].Message)
	assert.Equal(t, "process-turn", info["component"])
	assert.Equal(t, "s-1", info["sessionId"])
	assert.Equal(t, "age", info["nextSlot"])

	failure := entries[1].ContextMap()
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "redis down", failure["error"])
	assert.Equal(t, "timeout", failure["cause"])
}

func TestNew_FallsBackToNop(t *testing.T) {
	l := New("info", "json", "/nonexistent-dir/advisor.log")
	require.NotNil(t, l)
	l.Info("still safe to call")
}

func TestNewNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	log.With(map[string]interface{}{"k": "v"}).Warn("ignored", nil)
}
