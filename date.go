package pgbin

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgio"
)

const (
	infinityDayOffset         = math.MaxInt32
	negativeInfinityDayOffset = math.MinInt32
)

// DateCodec implements the date wire format: a 4-byte big-endian count of
// days since 2000-01-01. Only the year, month and day of the given time are
// significant.
type DateCodec struct{}

func (DateCodec) Encode(m *Map, value any, buf []byte) ([]byte, error) {
	t, ok := value.(time.Time)
	if !ok {
		return nil, fmt.Errorf("cannot convert %v to date", value)
	}

	tUnix := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix()
	dateEpoch := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Unix()

	secSinceDateEpoch := tUnix - dateEpoch
	daysSinceDateEpoch := secSinceDateEpoch / 86400

	return pgio.AppendInt32(buf, int32(daysSinceDateEpoch)), nil
}

func (DateCodec) Decode(m *Map, src []byte) (any, error) {
	if len(src) != 4 {
		return nil, &LengthError{TypeName: "date", Expected: 4, Actual: len(src)}
	}

	dayOffset := int32(binary.BigEndian.Uint32(src))
	switch dayOffset {
	case infinityDayOffset:
		return nil, fmt.Errorf("cannot decode infinity into time.Time")
	case negativeInfinityDayOffset:
		return nil, fmt.Errorf("cannot decode -infinity into time.Time")
	}

	return time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(dayOffset)), nil
}
