// Package logrusadapter provides a logger that writes to a github.com/sirupsen/logrus.Logger
// log.
package logrusadapter

import (
	"context"

	"github.com/pgkit/pgbin"
	"github.com/sirupsen/logrus"
)

type Logger struct {
	l logrus.FieldLogger
}

func NewLogger(l logrus.FieldLogger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level pgbin.LogLevel, msg string, data map[string]interface{}) {
	var logger logrus.FieldLogger
	if data != nil {
		logger = l.l.WithFields(data)
	} else {
		logger = l.l
	}

	switch level {
	case pgbin.LogLevelTrace:
		logger.WithField("PGBIN_LOG_LEVEL", level).Debug(msg)
	case pgbin.LogLevelDebug:
		logger.Debug(msg)
	case pgbin.LogLevelInfo:
		logger.Info(msg)
	case pgbin.LogLevelWarn:
		logger.Warn(msg)
	case pgbin.LogLevelError:
		logger.Error(msg)
	default:
		logger.WithField("INVALID_PGBIN_LOG_LEVEL", level).Error(msg)
	}
}
