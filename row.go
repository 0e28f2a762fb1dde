package pgbin

import (
	"fmt"
	"reflect"
)

// Row values travel as one []byte span per column, the layout of the extended
// protocol Bind and DataRow messages. A nil span is SQL NULL; the containing
// protocol message owns the length framing, so spans carry no length prefix
// of their own.

// EncodeParams encodes one value per column of shape, in column order. A nil
// value (or typed nil pointer) encodes as NULL and is rejected for NOT NULL
// columns.
func (m *Map) EncodeParams(shape *RowShape, args ...any) ([][]byte, error) {
	if len(args) != shape.Arity() {
		return nil, &ShapeMismatchError{Reason: fmt.Sprintf("shape has %d columns, got %d arguments", shape.Arity(), len(args))}
	}

	values := make([][]byte, len(args))
	for i, arg := range args {
		v, err := encodeColumn(m, &shape.Columns[i], arg)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", shape.Columns[i].Name, err)
		}
		values[i] = v
	}

	return values, nil
}

// EncodeRecord encodes one struct per joined component of shape. Each
// struct's derived shape must match its segment of the joined shape exactly.
func (m *Map) EncodeRecord(shape *RowShape, records ...any) ([][]byte, error) {
	parts := shape.componentParts()
	if len(records) != len(parts) {
		return nil, &ShapeMismatchError{Reason: fmt.Sprintf("shape joins %d components, got %d records", len(parts), len(records))}
	}

	values := make([][]byte, 0, shape.Arity())
	offset := 0

	for ri, record := range records {
		desc, err := m.structuralDescription(reflect.TypeOf(record))
		if err != nil {
			return nil, err
		}
		if err := matchSegment(shape, offset, parts[ri], desc.Shape); err != nil {
			return nil, err
		}

		rv := reflect.ValueOf(record)
		for rv.Kind() == reflect.Ptr {
			if rv.IsNil() {
				return nil, &ShapeMismatchError{GoType: desc.GoType.String(), Reason: "cannot encode nil record"}
			}
			rv = rv.Elem()
		}

		for i := range desc.Shape.Columns {
			col := &shape.Columns[offset+i]
			v, err := encodeColumn(m, col, rv.FieldByIndex(desc.fieldIdx[i]).Interface())
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col.Name, err)
			}
			values = append(values, v)
		}

		offset += parts[ri]
	}

	return values, nil
}

// DecodeRow decodes one column value into each destination pointer, in column
// order.
func (m *Map) DecodeRow(shape *RowShape, values [][]byte, dests ...any) error {
	if len(values) != shape.Arity() {
		return &ShapeMismatchError{Reason: fmt.Sprintf("shape has %d columns, got %d values", shape.Arity(), len(values))}
	}
	if len(dests) != shape.Arity() {
		return &ShapeMismatchError{Reason: fmt.Sprintf("shape has %d columns, got %d destinations", shape.Arity(), len(dests))}
	}

	for i := range shape.Columns {
		v, err := decodeColumn(m, shape, i, values[i])
		if err != nil {
			return err
		}
		if err := assignTo(dests[i], v); err != nil {
			return &DecodeError{ColumnIndex: i, ColumnName: shape.Columns[i].Name, Err: err}
		}
	}

	return nil
}

// DecodeRecord decodes a row into one struct pointer per joined component of
// shape, splitting the columns positionally the way Join concatenated them.
func (m *Map) DecodeRecord(shape *RowShape, values [][]byte, records ...any) error {
	if len(values) != shape.Arity() {
		return &ShapeMismatchError{Reason: fmt.Sprintf("shape has %d columns, got %d values", shape.Arity(), len(values))}
	}

	parts := shape.componentParts()
	if len(records) != len(parts) {
		return &ShapeMismatchError{Reason: fmt.Sprintf("shape joins %d components, got %d records", len(parts), len(records))}
	}

	offset := 0
	for ri, record := range records {
		rp := reflect.ValueOf(record)
		if rp.Kind() != reflect.Ptr || rp.IsNil() {
			return &ShapeMismatchError{Reason: fmt.Sprintf("record %d must be a non-nil struct pointer, got %T", ri, record)}
		}

		desc, err := m.structuralDescription(rp.Type())
		if err != nil {
			return err
		}
		if err := matchSegment(shape, offset, parts[ri], desc.Shape); err != nil {
			return err
		}

		rv := rp.Elem()
		for i := range desc.Shape.Columns {
			ci := offset + i
			v, err := decodeColumn(m, shape, ci, values[ci])
			if err != nil {
				return err
			}
			if err := assignValue(rv.FieldByIndex(desc.fieldIdx[i]), v); err != nil {
				return &DecodeError{ColumnIndex: ci, ColumnName: shape.Columns[ci].Name, Err: err}
			}
		}

		offset += parts[ri]
	}

	return nil
}

// matchSegment verifies that got lines up with the [offset, offset+length)
// segment of shape: same column names, types, and nullability, in order.
func matchSegment(shape *RowShape, offset, length int, got *RowShape) error {
	if got.Arity() != length {
		return &ShapeMismatchError{Reason: fmt.Sprintf("component has %d columns, struct derives %d", length, got.Arity())}
	}

	for i := 0; i < length; i++ {
		want := shape.Columns[offset+i]
		have := got.Columns[i]
		if want.Name != have.Name || want.Type != have.Type || want.Nullable != have.Nullable {
			return &ShapeMismatchError{Reason: fmt.Sprintf("column %d: shape declares %s %s, struct derives %s %s", offset+i, want.Name, want.Type.Name, have.Name, have.Type.Name)}
		}
	}

	return nil
}

func encodeColumn(m *Map, col *Column, value any) ([]byte, error) {
	v := derefValue(value)
	if isNilValue(v) {
		if !col.Nullable {
			return nil, &UnexpectedNullError{TypeName: col.Type.Name}
		}
		return nil, nil
	}

	buf, err := col.Type.codec.Encode(m, v, nil)
	if err != nil {
		return nil, err
	}
	if buf == nil {
		// A zero-length encoding (empty text, empty bytea) is still a value,
		// not NULL.
		buf = []byte{}
	}
	return buf, nil
}

func decodeColumn(m *Map, shape *RowShape, i int, src []byte) (any, error) {
	col := &shape.Columns[i]

	if src == nil {
		if !col.Nullable {
			return nil, &DecodeError{ColumnIndex: i, ColumnName: col.Name, Err: &UnexpectedNullError{TypeName: col.Type.Name}}
		}
		return nil, nil
	}

	v, err := col.Type.codec.Decode(m, src)
	if err != nil {
		return nil, &DecodeError{ColumnIndex: i, ColumnName: col.Name, Err: err}
	}
	return v, nil
}
