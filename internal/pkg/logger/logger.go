package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ManuelReschke/CopyFox/internal/pkg/env"
)

var (
	mu     sync.RWMutex
	global = zap.NewNop()
)

// New builds a zap logger. format "json" selects the production encoder.
func New(levelStr, format string) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	switch levelStr {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

// SetupLogger configures the global logger from LOG_LEVEL and APP_ENV.
func SetupLogger() {
	format := "json"
	if env.IsDev() {
		format = "console"
	}
	l, err := New(env.GetEnv("LOG_LEVEL", "info"), format)
	if err != nil {
		panic(err)
	}
	SetLogger(l)
}

// SetLogger replaces the global logger. Tests pass a zaptest logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	global = l
	mu.Unlock()
}

// L returns the global logger. It is a no-op logger until SetupLogger runs.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Sync flushes buffered log entries.
func Sync() {
	_ = L().Sync()
}
