package pgbin

// ByteaCodec implements the bytea wire format: the raw payload bytes.
type ByteaCodec struct{}

func (ByteaCodec) Encode(m *Map, value any, buf []byte) ([]byte, error) {
	b, err := convertToBytes(value)
	if err != nil {
		return nil, err
	}

	return append(buf, b...), nil
}

func (ByteaCodec) Decode(m *Map, src []byte) (any, error) {
	// src is borrowed for the duration of the call only.
	out := make([]byte, len(src))
	copy(out, src)
	return out, nil
}
