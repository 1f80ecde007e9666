// Package logging builds the structured loggers used by commands and the
// HTTP server.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel parses a log level name. Unknown names fall back to fallback.
func ParseLevel(level string, fallback zapcore.Level) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return fallback
	}
}

// New creates a JSON logger writing to stderr at the given level, tagged
// with component.
func New(level zapcore.Level, component string) *zap.SugaredLogger {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.Encoding = "json"
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.InitialFields = map[string]interface{}{
		"component": component,
		"service":   "tabvet",
	}

	logger, err := config.Build()
	if err != nil {
		// Fallback keeps commands usable if the sink cannot be opened.
		logger = zap.NewNop()
	}
	return logger.Sugar()
}

// ForCommand builds the logger for a command. verbose forces debug;
// otherwise envLevel applies, and fallback when envLevel is empty or unknown.
func ForCommand(verbose bool, envLevel, fallback, component string) *zap.SugaredLogger {
	return New(commandLevel(verbose, envLevel, fallback), component)
}

func commandLevel(verbose bool, envLevel, fallback string) zapcore.Level {
	if verbose {
		return zapcore.DebugLevel
	}
	return ParseLevel(envLevel, ParseLevel(fallback, zapcore.WarnLevel))
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
