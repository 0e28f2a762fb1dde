package pgbin

// TextCodec implements the text wire format: the raw UTF-8 bytes of the
// string with no length framing of its own.
type TextCodec struct{}

func (TextCodec) Encode(m *Map, value any, buf []byte) ([]byte, error) {
	s, err := convertToString(value)
	if err != nil {
		return nil, err
	}

	return append(buf, s...), nil
}

func (TextCodec) Decode(m *Map, src []byte) (any, error) {
	return string(src), nil
}
