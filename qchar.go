package pgbin

import "fmt"

// QCharCodec implements the "char" (single byte) wire format. This is the
// internal single-byte PostgreSQL type, not char(1), which is a bpchar.
type QCharCodec struct{}

func (QCharCodec) Encode(m *Map, value any, buf []byte) ([]byte, error) {
	switch value := value.(type) {
	case byte:
		return append(buf, value), nil
	case rune:
		if value < 0 || value > 255 {
			return nil, fmt.Errorf("%v is out of range for \"char\"", value)
		}
		return append(buf, byte(value)), nil
	default:
		return nil, fmt.Errorf("cannot convert %v to \"char\"", value)
	}
}

func (QCharCodec) Decode(m *Map, src []byte) (any, error) {
	if len(src) != 1 {
		return nil, &LengthError{TypeName: `"char"`, Expected: 1, Actual: len(src)}
	}

	return src[0], nil
}
