package pgbin

import (
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/jackc/pgio"
)

// CompositeCodec implements the composite (row type) wire format: a 4-byte
// big-endian field count, then per field a 4-byte big-endian type OID and a
// 4-byte big-endian length followed by that many payload bytes, with -1 as
// the NULL marker. Fields are positional; encode follows the registered field
// order exactly and decode reads exactly the registered field count.
type CompositeCodec struct {
	typeName string
	fields   []Field
	goType   reflect.Type
	fieldIdx [][]int // struct field index per wire field
}

func (c *CompositeCodec) Encode(m *Map, value any, buf []byte) ([]byte, error) {
	rv := reflect.ValueOf(value)
	if rv.Type() != c.goType {
		return nil, fmt.Errorf("cannot encode %T as composite %s", value, c.typeName)
	}

	buf = pgio.AppendInt32(buf, int32(len(c.fields)))

	for i, f := range c.fields {
		fv := rv.FieldByIndex(c.fieldIdx[i])
		v := derefValue(fv.Interface())

		buf = pgio.AppendUint32(buf, f.Type.OID)
		if isNilValue(v) {
			if !f.Nullable {
				return nil, fmt.Errorf("cannot encode nil into non-null field %s of composite %s", f.Name, c.typeName)
			}
			buf = pgio.AppendInt32(buf, -1)
			continue
		}

		sp := len(buf)
		buf = pgio.AppendInt32(buf, -1)
		var err error
		buf, err = f.Type.codec.Encode(m, v, buf)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		pgio.SetInt32(buf[sp:], int32(len(buf)-sp-4))
	}

	return buf, nil
}

func (c *CompositeCodec) Decode(m *Map, src []byte) (any, error) {
	if len(src) < 4 {
		return nil, &LengthError{TypeName: c.typeName, Expected: -1, Actual: len(src)}
	}

	fieldCount := int(int32(binary.BigEndian.Uint32(src)))
	if fieldCount != len(c.fields) {
		return nil, &FieldCountMismatchError{TypeName: c.typeName, Expected: len(c.fields), Actual: fieldCount}
	}

	rp := 4
	out := reflect.New(c.goType).Elem()

	for i, f := range c.fields {
		if len(src[rp:]) < 8 {
			return nil, &LengthError{TypeName: c.typeName, Expected: -1, Actual: len(src)}
		}

		// The OID in the field header describes the sender's runtime type. The
		// registered shape is authoritative, so the OID is skipped.
		rp += 4

		fieldLen := int(int32(binary.BigEndian.Uint32(src[rp:])))
		rp += 4

		var v any
		if fieldLen >= 0 {
			if len(src[rp:]) < fieldLen {
				return nil, &LengthError{TypeName: c.typeName, Expected: fieldLen, Actual: len(src[rp:])}
			}
			var err error
			v, err = f.Type.codec.Decode(m, src[rp:rp+fieldLen])
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Name, err)
			}
			rp += fieldLen
		} else if !f.Nullable {
			return nil, &UnexpectedNullError{TypeName: c.typeName + "." + f.Name}
		}

		if err := assignValue(out.FieldByIndex(c.fieldIdx[i]), v); err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
	}

	if rp != len(src) {
		return nil, &LengthError{TypeName: c.typeName, Expected: rp, Actual: len(src)}
	}

	return out.Interface(), nil
}
