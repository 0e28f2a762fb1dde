package pgbin

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/jackc/pgio"
)

// Int2Codec implements the int2 wire format: a 2-byte big-endian signed
// integer.
type Int2Codec struct{}

func (Int2Codec) Encode(m *Map, value any, buf []byte) ([]byte, error) {
	n, err := convertToInt64(value)
	if err != nil {
		return nil, err
	}
	if n < math.MinInt16 {
		return nil, fmt.Errorf("%d is less than minimum value for int2", n)
	}
	if n > math.MaxInt16 {
		return nil, fmt.Errorf("%d is greater than maximum value for int2", n)
	}

	return pgio.AppendInt16(buf, int16(n)), nil
}

func (Int2Codec) Decode(m *Map, src []byte) (any, error) {
	if len(src) != 2 {
		return nil, &LengthError{TypeName: "int2", Expected: 2, Actual: len(src)}
	}

	return int16(binary.BigEndian.Uint16(src)), nil
}

// Int4Codec implements the int4 wire format: a 4-byte big-endian signed
// integer.
type Int4Codec struct{}

func (Int4Codec) Encode(m *Map, value any, buf []byte) ([]byte, error) {
	n, err := convertToInt64(value)
	if err != nil {
		return nil, err
	}
	if n < math.MinInt32 {
		return nil, fmt.Errorf("%d is less than minimum value for int4", n)
	}
	if n > math.MaxInt32 {
		return nil, fmt.Errorf("%d is greater than maximum value for int4", n)
	}

	return pgio.AppendInt32(buf, int32(n)), nil
}

func (Int4Codec) Decode(m *Map, src []byte) (any, error) {
	if len(src) != 4 {
		return nil, &LengthError{TypeName: "int4", Expected: 4, Actual: len(src)}
	}

	return int32(binary.BigEndian.Uint32(src)), nil
}

// Int8Codec implements the int8 wire format: an 8-byte big-endian signed
// integer.
type Int8Codec struct{}

func (Int8Codec) Encode(m *Map, value any, buf []byte) ([]byte, error) {
	n, err := convertToInt64(value)
	if err != nil {
		return nil, err
	}

	return pgio.AppendInt64(buf, n), nil
}

func (Int8Codec) Decode(m *Map, src []byte) (any, error) {
	if len(src) != 8 {
		return nil, &LengthError{TypeName: "int8", Expected: 8, Actual: len(src)}
	}

	return int64(binary.BigEndian.Uint64(src)), nil
}
