// Package log15adapter provides a logger that writes to a github.com/inconshreveable/log15.Logger
// log.
package log15adapter

import (
	"context"

	"github.com/pgkit/pgbin"
)

// Log15Logger interface defines the subset of
// github.com/inconshreveable/log15.Logger that this adapter uses.
type Log15Logger interface {
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})
}

type Logger struct {
	l Log15Logger
}

func NewLogger(l Log15Logger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level pgbin.LogLevel, msg string, data map[string]interface{}) {
	logArgs := make([]interface{}, 0, len(data)*2)
	for k, v := range data {
		logArgs = append(logArgs, k, v)
	}

	switch level {
	case pgbin.LogLevelTrace:
		l.l.Debug(msg, append(logArgs, "PGBIN_LOG_LEVEL", level)...)
	case pgbin.LogLevelDebug:
		l.l.Debug(msg, logArgs...)
	case pgbin.LogLevelInfo:
		l.l.Info(msg, logArgs...)
	case pgbin.LogLevelWarn:
		l.l.Warn(msg, logArgs...)
	case pgbin.LogLevelError:
		l.l.Error(msg, logArgs...)
	default:
		l.l.Error(msg, append(logArgs, "INVALID_PGBIN_LOG_LEVEL", level)...)
	}
}
