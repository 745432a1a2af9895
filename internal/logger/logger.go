package logger

import (
	"sync"

	"go.uber.org/zap"
)

// Log levels accepted by log.level.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	globalLogger *Logger
	once         sync.Once
)

// Get returns the process logger. The first call fixes the level;
// later calls return the same instance whatever level they pass.
func Get(level string) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(level)
	})
	return globalLogger
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// Named returns a child logger tagged with component=name.
func (l *Logger) Named(name string) *Logger {
	if l == nil {
		return Nop()
	}
	return &Logger{SugaredLogger: l.SugaredLogger.With("component", name)}
}
