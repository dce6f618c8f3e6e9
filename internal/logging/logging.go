// Package logging provides the leveled logging facade used throughout
// the balancer: Debug/Debugf, Info/Infof, Warn/Warnf, Error/Errorf,
// backed by zap. Components take a Logger rather than a concrete zap
// type so tests can swap in a no-op or buffered logger.
package logging

import (
	"go.uber.org/zap"
)

// Logger is the narrow interface every component depends on.
type Logger interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Named(name string) Logger
}

type zapLogger struct {
	*zap.SugaredLogger
}

func (z *zapLogger) Named(name string) Logger {
	return &zapLogger{z.SugaredLogger.Named(name)}
}

// New builds a production Logger: JSON output, info level by default.
func New() Logger {
	l, err := zap.NewProduction()
	if err != nil {
		// zap.NewProduction only fails on a broken encoder config; fall
		// back to a minimal logger rather than leaving the caller with
		// no logger at all.
		l = zap.NewNop()
	}
	return &zapLogger{l.Sugar()}
}

// NewDevelopment builds a human-readable, debug-level Logger, used by
// cmd/balancerd when run with -debug.
func NewDevelopment() Logger {
	l, err := zap.NewDevelopment()
	if err != nil {
		l = zap.NewNop()
	}
	return &zapLogger{l.Sugar()}
}

// NewTest builds a Logger that discards output, for use in unit tests
// that need to satisfy the Logger dependency without writing to stderr.
func NewTest() Logger {
	return &zapLogger{zap.NewNop().Sugar()}
}
