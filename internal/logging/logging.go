// Package logging provides structured logging setup for rentbook.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName is attached to every log entry.
const ServiceName = "rentbook"

// New builds a zap logger.
// level is one of debug, info, warn, error (default info).
// format "console" gives human-readable output; anything else gives JSON.
func New(level, format string) (*zap.Logger, error) {
	lvl := parseLevel(level)

	var cfg zap.Config
	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	logger = logger.With(zap.String("service_name", ServiceName))
	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		logger = logger.With(zap.String("hostname", hostname))
	}

	return logger, nil
}

// FromEnv builds a logger from RB_LOG_LEVEL and RB_LOG_FORMAT.
// CLI commands default to warn-level console output so logs stay out of the way.
func FromEnv(defaultLevel string) (*zap.Logger, error) {
	level := os.Getenv("RB_LOG_LEVEL")
	if level == "" {
		level = defaultLevel
	}
	format := os.Getenv("RB_LOG_FORMAT")
	if format == "" {
		format = "console"
	}
	return New(level, format)
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
