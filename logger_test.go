package pgbin_test

import (
	"context"
	"testing"

	"github.com/pgkit/pgbin"
	"github.com/pgkit/pgbin/log/testingadapter"
	"github.com/stretchr/testify/require"
)

type logRecord struct {
	level pgbin.LogLevel
	msg   string
	data  map[string]any
}

type recordingLogger struct {
	records []logRecord
}

func (l *recordingLogger) Log(ctx context.Context, level pgbin.LogLevel, msg string, data map[string]any) {
	l.records = append(l.records, logRecord{level: level, msg: msg, data: data})
}

func TestRegistrationLogging(t *testing.T) {
	m := pgbin.NewMap()
	logger := &recordingLogger{}
	m.SetLogger(logger, pgbin.LogLevelDebug)

	_, err := pgbin.RegisterEnum(m, "mood", 100700, 100701, meatBeef, meatLamb)
	require.NoError(t, err)
	require.Len(t, logger.records, 1)
	require.Equal(t, pgbin.LogLevelDebug, logger.records[0].level)
	require.Equal(t, "registered enum type", logger.records[0].msg)
	require.Equal(t, "mood", logger.records[0].data["name"])
	require.Equal(t, 2, logger.records[0].data["cases"])

	_, err = m.RegisterComposite("dimensions", 100200, 100201, dimensions{})
	require.NoError(t, err)
	require.Len(t, logger.records, 2)
	require.Equal(t, "registered composite type", logger.records[1].msg)
	require.Equal(t, "dimensions", logger.records[1].data["name"])
	require.Equal(t, 2, logger.records[1].data["fields"])

	_, err = m.DeriveRowShape(widget{})
	require.NoError(t, err)
	require.Len(t, logger.records, 3)
	require.Equal(t, "derived row shape", logger.records[2].msg)
	require.Equal(t, 3, logger.records[2].data["columns"])

	// The cached derivation does not log again.
	_, err = m.DeriveRowShape(widget{})
	require.NoError(t, err)
	require.Len(t, logger.records, 3)
}

func TestLoggerLevelFilter(t *testing.T) {
	m := pgbin.NewMap()
	logger := &recordingLogger{}
	m.SetLogger(logger, pgbin.LogLevelError)

	_, err := m.DeriveRowShape(widget{})
	require.NoError(t, err)
	require.Empty(t, logger.records)
}

func TestTestingAdapter(t *testing.T) {
	m := pgbin.NewMap()
	m.SetLogger(testingadapter.NewLogger(t), pgbin.LogLevelTrace)

	_, err := m.RegisterComposite("dimensions", 100200, 100201, dimensions{})
	require.NoError(t, err)

	_, err = m.DeriveRowShape(widget{})
	require.NoError(t, err)
}
