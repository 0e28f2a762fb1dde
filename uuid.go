package pgbin

import (
	"fmt"

	"github.com/gofrs/uuid"
)

// UUIDCodec implements the uuid wire format: the 16 raw bytes.
type UUIDCodec struct{}

func (UUIDCodec) Encode(m *Map, value any, buf []byte) ([]byte, error) {
	switch value := value.(type) {
	case uuid.UUID:
		return append(buf, value.Bytes()...), nil
	case [16]byte:
		return append(buf, value[:]...), nil
	case []byte:
		if len(value) != 16 {
			return nil, fmt.Errorf("[]byte must be 16 bytes to encode as uuid: %d", len(value))
		}
		return append(buf, value...), nil
	case string:
		u, err := uuid.FromString(value)
		if err != nil {
			return nil, err
		}
		return append(buf, u.Bytes()...), nil
	default:
		return nil, fmt.Errorf("cannot convert %v to uuid", value)
	}
}

func (UUIDCodec) Decode(m *Map, src []byte) (any, error) {
	if len(src) != 16 {
		return nil, &LengthError{TypeName: "uuid", Expected: 16, Actual: len(src)}
	}

	u, err := uuid.FromBytes(src)
	if err != nil {
		return nil, err
	}
	return u, nil
}
