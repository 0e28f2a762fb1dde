package pgbin

import (
	"encoding/binary"
	"math"

	"github.com/jackc/pgio"
)

// Float4Codec implements the float4 wire format: 4 big-endian bytes of IEEE
// 754 single precision.
type Float4Codec struct{}

func (Float4Codec) Encode(m *Map, value any, buf []byte) ([]byte, error) {
	f, err := convertToFloat64(value)
	if err != nil {
		return nil, err
	}

	return pgio.AppendUint32(buf, math.Float32bits(float32(f))), nil
}

func (Float4Codec) Decode(m *Map, src []byte) (any, error) {
	if len(src) != 4 {
		return nil, &LengthError{TypeName: "float4", Expected: 4, Actual: len(src)}
	}

	return math.Float32frombits(binary.BigEndian.Uint32(src)), nil
}

// Float8Codec implements the float8 wire format: 8 big-endian bytes of IEEE
// 754 double precision.
type Float8Codec struct{}

func (Float8Codec) Encode(m *Map, value any, buf []byte) ([]byte, error) {
	f, err := convertToFloat64(value)
	if err != nil {
		return nil, err
	}

	return pgio.AppendUint64(buf, math.Float64bits(f)), nil
}

func (Float8Codec) Decode(m *Map, src []byte) (any, error) {
	if len(src) != 8 {
		return nil, &LengthError{TypeName: "float8", Expected: 8, Actual: len(src)}
	}

	return math.Float64frombits(binary.BigEndian.Uint64(src)), nil
}
