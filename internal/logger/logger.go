package logger

import (
	"fmt"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/deploymenttheory/go-flowforge/internal/utils/fsutil"
)

// Logger is the process logger used by the command layer. Engine components
// receive their logger explicitly.
var Logger = zap.NewNop().Sugar()

// LoggerConfig contains configuration for the logger
type LoggerConfig struct {
	Debug     bool   // Enable debug level logging
	LogFormat string // "json" or "human"
	LogFile   string // Path to log file (optional)
	Quiet     bool   // Write to the log file only
}

// DefaultConfig returns a default configuration
func DefaultConfig() LoggerConfig {
	return LoggerConfig{
		Debug:     false,
		LogFormat: "human",
		LogFile:   filepath.Join(fsutil.GetLogDir("FLOWFORGE_LOG_DIR"), "engine.log"),
	}
}

// New builds a logger from config. zap serialises writes to each sink, so
// the result may be shared by concurrent workflows.
func New(config LoggerConfig) (*zap.SugaredLogger, error) {
	var zapConfig zap.Config

	// Configure log format
	if config.LogFormat == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	// Configure output paths
	var outputPaths []string
	if !config.Quiet {
		outputPaths = append(outputPaths, "stdout")
	}
	if config.LogFile != "" {
		if err := fsutil.CreateDirIfNotExists(filepath.Dir(config.LogFile)); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		outputPaths = append(outputPaths, config.LogFile)
	}
	zapConfig.OutputPaths = outputPaths

	if config.Debug {
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.Sugar(), nil
}

// InitLogger builds a logger and installs it as the process logger
func InitLogger(config LoggerConfig) error {
	logger, err := New(config)
	if err != nil {
		return err
	}
	Logger = logger
	return nil
}

// Log functions
func LogInfo(message string, fields map[string]interface{}) {
	Logger.Infow(message, flattenFields(fields)...)
}

func LogWarn(message string, fields map[string]interface{}) {
	Logger.Warnw(message, flattenFields(fields)...)
}

func LogError(message string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	Logger.Errorw(message, flattenFields(fields)...)
}

func LogDebug(message string, fields map[string]interface{}) {
	Logger.Debugw(message, flattenFields(fields)...)
}

// flattenFields turns a field map into sorted key-value pairs
func flattenFields(fields map[string]interface{}) []interface{} {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	flat := make([]interface{}, 0, len(fields)*2)
	for _, k := range keys {
		flat = append(flat, k, fields[k])
	}
	return flat
}

// Sync flushes any buffered log entries
func Sync() error {
	return Logger.Sync()
}
