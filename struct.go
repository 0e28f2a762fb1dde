package pgbin

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// StructuralDescription is the cached mapping from a Go struct type to a
// RowShape. It is derived once per type and shared by every codec and row
// operation built on the type.
type StructuralDescription struct {
	GoType reflect.Type
	Shape  *RowShape

	// fieldIdx holds the struct field index of each column, parallel to
	// Shape.Columns.
	fieldIdx [][]int
}

// DeriveRowShape derives the shape for template's struct type. Deriving the
// same type twice returns the identical cached shape.
//
// Column names come from the `db` struct tag when present, otherwise from the
// snake_case form of the field name. A `db:"-"` tag skips the field. A
// pointer field is a nullable column; any other field is NOT NULL. The
// `pgtype` tag forces a field onto a named wire type, e.g.
// `pgtype:"numeric"` on a string field.
func (m *Map) DeriveRowShape(template any) (*RowShape, error) {
	desc, err := m.structuralDescription(reflect.TypeOf(template))
	if err != nil {
		return nil, err
	}
	return desc.Shape, nil
}

func (m *Map) structuralDescription(rt reflect.Type) (*StructuralDescription, error) {
	if rt == nil {
		return nil, &ShapeMismatchError{Reason: "cannot derive row shape from nil"}
	}
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}

	if desc, ok := m.structDescs[rt]; ok {
		return desc, nil
	}

	if rt.Kind() != reflect.Struct {
		return nil, &ShapeMismatchError{GoType: rt.String(), Reason: "row shapes derive from struct types"}
	}

	columns, fieldIdx, err := m.deriveColumns(rt)
	if err != nil {
		return nil, err
	}

	shape, err := NewRowShape(columns...)
	if err != nil {
		return nil, err
	}

	desc := &StructuralDescription{GoType: rt, Shape: shape, fieldIdx: fieldIdx}
	m.structDescs[rt] = desc

	m.log(LogLevelDebug, "derived row shape", map[string]any{"goType": rt.String(), "columns": len(columns)})

	return desc, nil
}

func (m *Map) deriveColumns(rt reflect.Type) ([]Column, [][]int, error) {
	var columns []Column
	var fieldIdx [][]int

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		name := sf.Tag.Get("db")
		if name == "-" {
			continue
		}
		if name == "" {
			name = snakeCase(sf.Name)
		}

		t, nullable, err := m.typeForGoType(sf.Type, sf.Tag.Get("pgtype"))
		if err != nil {
			return nil, nil, errors.Wrapf(err, "field %s.%s", rt.Name(), sf.Name)
		}

		columns = append(columns, Column{Name: name, Type: t, Nullable: nullable})
		fieldIdx = append(fieldIdx, sf.Index)
	}

	if len(columns) == 0 {
		return nil, nil, &ShapeMismatchError{GoType: rt.String(), Reason: "struct has no encodable fields"}
	}

	return columns, fieldIdx, nil
}

// typeForGoType resolves one struct field type to a wire type. The outermost
// pointer marks nullability; beyond that the registered Go types win, then the
// reflect kind decides.
func (m *Map) typeForGoType(rt reflect.Type, override string) (*Type, bool, error) {
	nullable := false
	if rt.Kind() == reflect.Ptr {
		nullable = true
		rt = rt.Elem()
		if rt.Kind() == reflect.Ptr {
			return nil, false, &ShapeMismatchError{GoType: rt.String(), Reason: "multiple pointer indirection"}
		}
	}

	if override != "" {
		t, ok := m.nameToType[override]
		if !ok {
			return nil, false, &ShapeMismatchError{GoType: rt.String(), Reason: fmt.Sprintf("unknown type name %q in pgtype tag", override)}
		}
		return t, nullable, nil
	}

	if t, ok := m.reflectTypeToType[rt]; ok {
		return t, nullable, nil
	}

	switch rt.Kind() {
	case reflect.Bool:
		return m.nameToType["bool"], nullable, nil
	case reflect.Int8, reflect.Int16, reflect.Uint8:
		return m.nameToType["int2"], nullable, nil
	case reflect.Int32, reflect.Uint16:
		return m.nameToType["int4"], nullable, nil
	case reflect.Int64, reflect.Int, reflect.Uint32:
		return m.nameToType["int8"], nullable, nil
	case reflect.Float32:
		return m.nameToType["float4"], nullable, nil
	case reflect.Float64:
		return m.nameToType["float8"], nullable, nil
	case reflect.String:
		return m.nameToType["text"], nullable, nil
	case reflect.Map:
		return m.nameToType["jsonb"], nullable, nil
	case reflect.Slice:
		if rt.Elem().Kind() == reflect.Uint8 {
			return m.nameToType["bytea"], nullable, nil
		}
		if rt.Elem().Kind() == reflect.Slice {
			return nil, false, &ShapeMismatchError{GoType: rt.String(), Reason: "nested slices are not supported; use a fixed-size Go array for multidimensional arrays"}
		}
		elem, elemNullable, err := m.typeForGoType(rt.Elem(), "")
		if err != nil {
			return nil, false, err
		}
		return varArrayType(elem, elemNullable, rt), nullable, nil
	case reflect.Array:
		return m.fixedArrayTypeForGo(rt, nullable)
	case reflect.Struct:
		return nil, false, &ShapeMismatchError{GoType: rt.String(), Reason: "composite type must be registered with RegisterComposite before use"}
	}

	return nil, false, &ShapeMismatchError{GoType: rt.String(), Reason: "no wire type for Go kind " + rt.Kind().String()}
}

func (m *Map) fixedArrayTypeForGo(rt reflect.Type, nullable bool) (*Type, bool, error) {
	arrayType := rt

	var dims []int32
	for rt.Kind() == reflect.Array {
		if _, ok := m.reflectTypeToType[rt]; ok {
			break
		}
		dims = append(dims, int32(rt.Len()))
		rt = rt.Elem()
	}

	elem, elemNullable, err := m.typeForGoType(rt, "")
	if err != nil {
		return nil, false, err
	}

	return fixedArrayType(elem, elemNullable, dims, arrayType), nullable, nil
}

func varArrayType(elem *Type, elemNullable bool, sliceType reflect.Type) *Type {
	t := &Type{
		Name:         elem.Name + "[]",
		OID:          elem.ArrayOID,
		Kind:         KindVarArray,
		Elem:         elem,
		ElemNullable: elemNullable,
		goType:       sliceType,
	}
	t.codec = &ArrayCodec{elem: elem, elemNullable: elemNullable, sliceType: sliceType}
	return t
}

func fixedArrayType(elem *Type, elemNullable bool, dims []int32, arrayType reflect.Type) *Type {
	name := elem.Name
	for _, d := range dims {
		name += fmt.Sprintf("[%d]", d)
	}

	t := &Type{
		Name:         name,
		OID:          elem.ArrayOID,
		Kind:         KindFixedArray,
		Elem:         elem,
		ElemNullable: elemNullable,
		Dims:         dims,
		goType:       arrayType,
	}
	t.codec = &FixedArrayCodec{elem: elem, elemNullable: elemNullable, dims: dims, arrayType: arrayType}
	return t
}

// RegisterComposite registers a PostgreSQL composite type whose fields derive
// from template's struct fields, in declaration order, with the same tag
// rules as DeriveRowShape. Nested composite and enum field types must be
// registered first, which is also what keeps the resulting type tree finite:
// a type cannot reference itself because it does not exist yet while its
// fields resolve. oid and arrayOID are the catalog-assigned identifiers.
func (m *Map) RegisterComposite(name string, oid, arrayOID uint32, template any) (*Type, error) {
	rt := reflect.TypeOf(template)
	if rt == nil {
		return nil, &ShapeMismatchError{Reason: "cannot register composite from nil"}
	}
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil, &ShapeMismatchError{GoType: rt.String(), Reason: "composite types derive from struct types"}
	}

	if existing, ok := m.reflectTypeToType[rt]; ok {
		if existing.Kind == KindComposite && existing.Name == name && existing.OID == oid {
			return existing, nil
		}
		return nil, &ShapeMismatchError{GoType: rt.String(), Reason: fmt.Sprintf("already registered as %s", existing.Name)}
	}

	columns, fieldIdx, err := m.deriveColumns(rt)
	if err != nil {
		return nil, err
	}

	fields := make([]Field, len(columns))
	for i, col := range columns {
		fields[i] = Field{Name: col.Name, Type: col.Type, Nullable: col.Nullable}
	}

	t := &Type{
		Name:     name,
		OID:      oid,
		ArrayOID: arrayOID,
		Kind:     KindComposite,
		Fields:   fields,
		goType:   rt,
	}
	t.codec = &CompositeCodec{typeName: name, fields: fields, goType: rt, fieldIdx: fieldIdx}
	m.registerType(t)

	m.log(LogLevelDebug, "registered composite type", map[string]any{"name": name, "oid": oid, "fields": len(fields)})

	return t, nil
}

// snakeCase converts an exported Go field name to its column name form:
// OrderID becomes order_id, CreatedAt becomes created_at.
func snakeCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)

	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			// A new word starts at an upper rune that follows a lower rune, or
			// that starts the tail of an acronym (HTTPCode -> http_code).
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}

	return b.String()
}
