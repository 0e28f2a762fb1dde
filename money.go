package pgbin

import (
	"encoding/binary"

	"github.com/jackc/pgio"
)

// Money is a count of the smallest currency unit (e.g. cents). The codec
// performs no scaling; the lc_monetary fractional precision is the caller's
// concern.
type Money int64

// MoneyCodec implements the money wire format: an 8-byte big-endian signed
// integer of smallest currency units.
type MoneyCodec struct{}

func (MoneyCodec) Encode(m *Map, value any, buf []byte) ([]byte, error) {
	switch value := value.(type) {
	case Money:
		return pgio.AppendInt64(buf, int64(value)), nil
	default:
		n, err := convertToInt64(value)
		if err != nil {
			return nil, err
		}
		return pgio.AppendInt64(buf, n), nil
	}
}

func (MoneyCodec) Decode(m *Map, src []byte) (any, error) {
	if len(src) != 8 {
		return nil, &LengthError{TypeName: "money", Expected: 8, Actual: len(src)}
	}

	return Money(binary.BigEndian.Uint64(src)), nil
}
