package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Logger *zap.Logger

// Init builds the process-wide logger. Unknown levels fall back to info.
func Init(logLevel string) {
	config := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	config.Level.SetLevel(level)
	Logger, _ = config.Build()
}

// L returns the process logger, initializing a default one if Init was
// never called (tests).
func L() *zap.Logger {
	if Logger == nil {
		Logger = zap.NewNop()
	}
	return Logger
}
