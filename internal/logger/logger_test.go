package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewWritesJSONToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "nested", "engine.log")
	log, err := New(LoggerConfig{LogFormat: "json", LogFile: logFile, Quiet: true})
	require.NoError(t, err)

	log.Infow("workflow started", "workflow", "backup")
	_ = log.Sync()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"workflow started"`)
	assert.Contains(t, string(data), `"workflow":"backup"`)
}

func TestNewDebugLevel(t *testing.T) {
	log, err := New(LoggerConfig{Debug: true, Quiet: true})
	require.NoError(t, err)
	assert.True(t, log.Desugar().Core().Enabled(zapcore.DebugLevel))

	log, err = New(LoggerConfig{Quiet: true})
	require.NoError(t, err)
	assert.False(t, log.Desugar().Core().Enabled(zapcore.DebugLevel))
}

func TestHelpersUseProcessLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	previous := Logger
	Logger = zap.New(core).Sugar()
	t.Cleanup(func() { Logger = previous })

	LogInfo("info", map[string]interface{}{"b": 2, "a": 1})
	LogWarn("warn", nil)
	LogDebug("debug", nil)
	LogError("error", errors.New("boom"), nil)
	LogError("error without cause", nil, map[string]interface{}{"k": "v"})

	require.Equal(t, 5, logs.Len())
	entries := logs.AllUntimed()
	assert.Equal(t, map[string]interface{}{"a": int64(1), "b": int64(2)}, entries[0].ContextMap())
	assert.Equal(t, "boom", entries[3].ContextMap()["error"])
	assert.NotContains(t, entries[4].ContextMap(), "error")
}

func TestFlattenFieldsIsSorted(t *testing.T) {
	assert.Equal(t, []interface{}{"a", 1, "z", 2}, flattenFields(map[string]interface{}{"z": 2, "a": 1}))
	assert.Empty(t, flattenFields(nil))
}
