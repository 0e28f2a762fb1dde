// Package zerologadapter provides a logger that writes to a github.com/rs/zerolog.
package zerologadapter

import (
	"context"

	"github.com/pgkit/pgbin"
	"github.com/rs/zerolog"
)

type Logger struct {
	logger zerolog.Logger
}

// NewLogger accepts a zerolog.Logger as input and returns a new custom pgbin
// logging fascade as output.
func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{
		logger: logger.With().Str("module", "pgbin").Logger(),
	}
}

func (pl *Logger) Log(ctx context.Context, level pgbin.LogLevel, msg string, data map[string]interface{}) {
	var zlevel zerolog.Level
	switch level {
	case pgbin.LogLevelNone:
		zlevel = zerolog.NoLevel
	case pgbin.LogLevelError:
		zlevel = zerolog.ErrorLevel
	case pgbin.LogLevelWarn:
		zlevel = zerolog.WarnLevel
	case pgbin.LogLevelInfo:
		zlevel = zerolog.InfoLevel
	case pgbin.LogLevelDebug:
		zlevel = zerolog.DebugLevel
	default:
		zlevel = zerolog.DebugLevel
	}

	plog := pl.logger.With().Fields(data).Logger()
	plog.WithLevel(zlevel).Msg(msg)
}
