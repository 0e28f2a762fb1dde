package pgbin

// BoolCodec implements the bool wire format: a single byte, 1 for true and 0
// for false.
type BoolCodec struct{}

func (BoolCodec) Encode(m *Map, value any, buf []byte) ([]byte, error) {
	v, err := convertToBool(value)
	if err != nil {
		return nil, err
	}

	if v {
		return append(buf, 1), nil
	}
	return append(buf, 0), nil
}

func (BoolCodec) Decode(m *Map, src []byte) (any, error) {
	if len(src) != 1 {
		return nil, &LengthError{TypeName: "bool", Expected: 1, Actual: len(src)}
	}

	return src[0] == 1, nil
}
