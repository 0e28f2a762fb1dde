package pgbin

import (
	"encoding/json"
	"fmt"
)

// JSONCodec implements the json wire format: the UTF-8 bytes of the JSON
// text. Pre-serialized values (json.RawMessage, []byte, string) pass through
// after validation; any other value is marshaled structurally.
type JSONCodec struct{}

func (JSONCodec) Encode(m *Map, value any, buf []byte) ([]byte, error) {
	b, err := jsonBytes(value)
	if err != nil {
		return nil, err
	}
	return append(buf, b...), nil
}

func (JSONCodec) Decode(m *Map, src []byte) (any, error) {
	if !json.Valid(src) {
		return nil, &MalformedJSONError{Err: fmt.Errorf("invalid json received")}
	}

	out := make(json.RawMessage, len(src))
	copy(out, src)
	return out, nil
}

// JSONBCodec implements the jsonb wire format: a version byte (currently 1)
// followed by the UTF-8 bytes of the JSON text.
type JSONBCodec struct{}

func (JSONBCodec) Encode(m *Map, value any, buf []byte) ([]byte, error) {
	b, err := jsonBytes(value)
	if err != nil {
		return nil, err
	}
	buf = append(buf, 1)
	return append(buf, b...), nil
}

func (JSONBCodec) Decode(m *Map, src []byte) (any, error) {
	if len(src) == 0 {
		return nil, &LengthError{TypeName: "jsonb", Expected: -1, Actual: 0}
	}
	if src[0] != 1 {
		return nil, fmt.Errorf("unknown jsonb version number %d", src[0])
	}

	return JSONCodec{}.Decode(m, src[1:])
}

func jsonBytes(value any) ([]byte, error) {
	switch value := value.(type) {
	case json.RawMessage:
		if !json.Valid(value) {
			return nil, &MalformedJSONError{Err: fmt.Errorf("invalid json value")}
		}
		return value, nil
	case []byte:
		if !json.Valid(value) {
			return nil, &MalformedJSONError{Err: fmt.Errorf("invalid json value")}
		}
		return value, nil
	case string:
		if !json.Valid([]byte(value)) {
			return nil, &MalformedJSONError{Err: fmt.Errorf("invalid json value")}
		}
		return []byte(value), nil
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return nil, &MalformedJSONError{Err: err}
		}
		return b, nil
	}
}
