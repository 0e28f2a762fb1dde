package pgbin

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/jackc/pgio"
)

const (
	microsecondsPerSecond = 1000000
	microsecondsPerMinute = 60 * microsecondsPerSecond
	microsecondsPerHour   = 60 * microsecondsPerMinute
	microsecondsPerDay    = 24 * microsecondsPerHour
)

// TimeCodec implements the time (without time zone) wire format: an 8-byte
// big-endian count of microseconds since midnight. The Go representation is a
// time.Duration offset from midnight; sub-microsecond precision is truncated.
type TimeCodec struct{}

func (TimeCodec) Encode(m *Map, value any, buf []byte) ([]byte, error) {
	var usec int64
	switch value := value.(type) {
	case time.Duration:
		usec = value.Microseconds()
	case time.Time:
		usec = int64(value.Hour())*microsecondsPerHour +
			int64(value.Minute())*microsecondsPerMinute +
			int64(value.Second())*microsecondsPerSecond +
			int64(value.Nanosecond())/1000
	default:
		return nil, fmt.Errorf("cannot convert %v to time", value)
	}

	if usec < 0 || usec > microsecondsPerDay {
		return nil, fmt.Errorf("time %d microseconds is out of range", usec)
	}

	return pgio.AppendInt64(buf, usec), nil
}

func (TimeCodec) Decode(m *Map, src []byte) (any, error) {
	if len(src) != 8 {
		return nil, &LengthError{TypeName: "time", Expected: 8, Actual: len(src)}
	}

	usec := int64(binary.BigEndian.Uint64(src))
	return time.Duration(usec) * time.Microsecond, nil
}

// Timetz is a time of day with a fixed UTC offset. OffsetSeconds is seconds
// west of UTC, matching the wire representation.
type Timetz struct {
	Microseconds  int64
	OffsetSeconds int32
}

// TimetzCodec implements the time with time zone wire format: an 8-byte
// big-endian count of microseconds since midnight followed by a 4-byte
// big-endian zone offset in seconds west of UTC.
type TimetzCodec struct{}

func (TimetzCodec) Encode(m *Map, value any, buf []byte) ([]byte, error) {
	switch value := value.(type) {
	case Timetz:
		if value.Microseconds < 0 || value.Microseconds > microsecondsPerDay {
			return nil, fmt.Errorf("timetz %d microseconds is out of range", value.Microseconds)
		}
		buf = pgio.AppendInt64(buf, value.Microseconds)
		return pgio.AppendInt32(buf, value.OffsetSeconds), nil
	case time.Time:
		usec := int64(value.Hour())*microsecondsPerHour +
			int64(value.Minute())*microsecondsPerMinute +
			int64(value.Second())*microsecondsPerSecond +
			int64(value.Nanosecond())/1000
		_, offset := value.Zone()
		buf = pgio.AppendInt64(buf, usec)
		return pgio.AppendInt32(buf, int32(-offset)), nil
	default:
		return nil, fmt.Errorf("cannot convert %v to timetz", value)
	}
}

func (TimetzCodec) Decode(m *Map, src []byte) (any, error) {
	if len(src) != 12 {
		return nil, &LengthError{TypeName: "timetz", Expected: 12, Actual: len(src)}
	}

	return Timetz{
		Microseconds:  int64(binary.BigEndian.Uint64(src)),
		OffsetSeconds: int32(binary.BigEndian.Uint32(src[8:])),
	}, nil
}
