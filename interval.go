package pgbin

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/jackc/pgio"
)

// Interval is the three-component PostgreSQL interval. Months and days are
// kept separate from microseconds because their length varies by calendar
// context.
type Interval struct {
	Microseconds int64
	Days         int32
	Months       int32
}

// IntervalCodec implements the interval wire format: an 8-byte big-endian
// microsecond count, a 4-byte big-endian day count, then a 4-byte big-endian
// month count.
type IntervalCodec struct{}

func (IntervalCodec) Encode(m *Map, value any, buf []byte) ([]byte, error) {
	var iv Interval
	switch value := value.(type) {
	case Interval:
		iv = value
	case time.Duration:
		iv = Interval{Microseconds: value.Microseconds()}
	default:
		return nil, fmt.Errorf("cannot convert %v to interval", value)
	}

	buf = pgio.AppendInt64(buf, iv.Microseconds)
	buf = pgio.AppendInt32(buf, iv.Days)
	return pgio.AppendInt32(buf, iv.Months), nil
}

func (IntervalCodec) Decode(m *Map, src []byte) (any, error) {
	if len(src) != 16 {
		return nil, &LengthError{TypeName: "interval", Expected: 16, Actual: len(src)}
	}

	return Interval{
		Microseconds: int64(binary.BigEndian.Uint64(src)),
		Days:         int32(binary.BigEndian.Uint32(src[8:])),
		Months:       int32(binary.BigEndian.Uint32(src[12:])),
	}, nil
}
