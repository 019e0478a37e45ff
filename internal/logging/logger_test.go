package logging

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })
	return logs
}

func TestGet_NamesLoggerByCategory(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	AnalyzerDebug("run %d", 1)
	WorldDebug("parsed %s", "two_fer.py")
	TactileWarn("killed")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "analyzer", entries[0].LoggerName)
	assert.Equal(t, "run 1", entries[0].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "world", entries[1].LoggerName)
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Equal(t, "tactile", entries[2].LoggerName)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
}

func TestSetLogger_ResetsCategoryCache(t *testing.T) {
	first := observe(t, zapcore.InfoLevel)
	Watch("before")

	second := observe(t, zapcore.InfoLevel)
	Watch("after")

	assert.Equal(t, 1, first.Len())
	assert.Equal(t, 1, second.Len())
	assert.Equal(t, "after", second.All()[0].Message)
}

func TestDefaultLoggerIsSilent(t *testing.T) {
	SetLogger(nil)
	assert.NotPanics(t, func() {
		BootDebug("nothing %s", "here")
		Sync()
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"WARN", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"chatty", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInitialize(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	out := filepath.Join(t.TempDir(), "ferlint.log")
	require.NoError(t, Initialize(Config{Level: "debug", Format: "json", OutputPaths: []string{out}}))
	assert.True(t, Logger().Core().Enabled(zapcore.DebugLevel))

	assert.Error(t, Initialize(Config{Format: "xml"}))
	assert.Error(t, Initialize(Config{Level: "loud"}))
}

func TestTimer_StopWithThreshold(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	timer := StartTimer(CategoryAnalyzer, "slow op")
	time.Sleep(5 * time.Millisecond)
	elapsed := timer.StopWithThreshold(time.Nanosecond)

	assert.GreaterOrEqual(t, elapsed, 5*time.Millisecond)
	require.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}
