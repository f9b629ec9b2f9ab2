package logger

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var globalLogger atomic.Pointer[Logger]

// Logger wraps zap.SugaredLogger.
type Logger struct {
	*zap.SugaredLogger
}

// Init initializes the global logger. Output goes to stderr so the report on stdout
// stays clean.
func Init(level string, env string) error {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := config.Build(
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.FatalLevel),
	)
	if err != nil {
		return err
	}

	globalLogger.Store(&Logger{SugaredLogger: logger.Sugar()})
	return nil
}

// Get returns the global logger.
func Get() *Logger {
	if l := globalLogger.Load(); l != nil {
		return l
	}
	// Fallback to a no-op logger so packages stay quiet in tests
	nop := &Logger{SugaredLogger: zap.NewNop().Sugar()}
	globalLogger.CompareAndSwap(nil, nop)
	return globalLogger.Load()
}

// With creates a child logger with additional fields
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(args...)}
}

// Convenience functions that use the global logger
func Debugf(template string, args ...interface{}) { Get().Debugf(template, args...) }
func Infof(template string, args ...interface{})  { Get().Infof(template, args...) }
func Warnf(template string, args ...interface{})  { Get().Warnf(template, args...) }
func Errorf(template string, args ...interface{}) { Get().Errorf(template, args...) }

// Sync flushes any buffered log entries
func Sync() error {
	if l := globalLogger.Load(); l != nil {
		return l.Sync()
	}
	return nil
}
