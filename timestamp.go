package pgbin

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/jackc/pgio"
)

const (
	microsecFromUnixEpochToY2K = 946684800 * 1000000

	infinityMicrosecondOffset         = 9223372036854775807
	negativeInfinityMicrosecondOffset = -9223372036854775808
)

// TimestampCodec implements the timestamp (without time zone) wire format: an
// 8-byte big-endian count of microseconds since 2000-01-01 00:00:00. The time
// zone of the Go value is discarded on encode and decoded values are in UTC.
type TimestampCodec struct{}

func (TimestampCodec) Encode(m *Map, value any, buf []byte) ([]byte, error) {
	t, ok := value.(time.Time)
	if !ok {
		return nil, fmt.Errorf("cannot convert %v to timestamp", value)
	}

	t = discardTimeZone(t)
	microsecSinceUnixEpoch := t.Unix()*1000000 + int64(t.Nanosecond())/1000
	return pgio.AppendInt64(buf, microsecSinceUnixEpoch-microsecFromUnixEpochToY2K), nil
}

func (TimestampCodec) Decode(m *Map, src []byte) (any, error) {
	return decodeMicrosecSinceY2K(src, "timestamp")
}

// TimestamptzCodec implements the timestamp with time zone wire format. The
// wire layout is identical to timestamp; the instant is absolute and decoded
// values are in UTC.
type TimestamptzCodec struct{}

func (TimestamptzCodec) Encode(m *Map, value any, buf []byte) ([]byte, error) {
	t, ok := value.(time.Time)
	if !ok {
		return nil, fmt.Errorf("cannot convert %v to timestamptz", value)
	}

	microsecSinceUnixEpoch := t.Unix()*1000000 + int64(t.Nanosecond())/1000
	return pgio.AppendInt64(buf, microsecSinceUnixEpoch-microsecFromUnixEpochToY2K), nil
}

func (TimestamptzCodec) Decode(m *Map, src []byte) (any, error) {
	return decodeMicrosecSinceY2K(src, "timestamptz")
}

func decodeMicrosecSinceY2K(src []byte, typeName string) (any, error) {
	if len(src) != 8 {
		return nil, &LengthError{TypeName: typeName, Expected: 8, Actual: len(src)}
	}

	microsecSinceY2K := int64(binary.BigEndian.Uint64(src))
	switch microsecSinceY2K {
	case infinityMicrosecondOffset:
		return nil, fmt.Errorf("cannot decode infinity into time.Time")
	case negativeInfinityMicrosecondOffset:
		return nil, fmt.Errorf("cannot decode -infinity into time.Time")
	}

	return time.Unix(
		microsecFromUnixEpochToY2K/1000000+microsecSinceY2K/1000000,
		(microsecFromUnixEpochToY2K%1000000*1000)+(microsecSinceY2K%1000000*1000),
	).UTC(), nil
}

func discardTimeZone(t time.Time) time.Time {
	if t.Location() != time.UTC {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	}

	return t
}
