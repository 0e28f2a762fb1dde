package pgbin

import (
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/jackc/pgio"
)

// Information on the internals of PostgreSQL arrays can be found in
// src/include/utils/array.h and src/backend/utils/adt/arrayfuncs.c. Of
// particular interest are the array_send and array_recv functions.

type ArrayHeader struct {
	ContainsNull bool
	ElementOID   uint32
	Dimensions   []ArrayDimension
}

type ArrayDimension struct {
	Length     int32
	LowerBound int32
}

// EncodeBinary appends the array header to buf.
func (ah *ArrayHeader) EncodeBinary(buf []byte) []byte {
	buf = pgio.AppendInt32(buf, int32(len(ah.Dimensions)))

	var containsNull int32
	if ah.ContainsNull {
		containsNull = 1
	}
	buf = pgio.AppendInt32(buf, containsNull)

	buf = pgio.AppendUint32(buf, ah.ElementOID)

	for i := range ah.Dimensions {
		buf = pgio.AppendInt32(buf, ah.Dimensions[i].Length)
		buf = pgio.AppendInt32(buf, ah.Dimensions[i].LowerBound)
	}

	return buf
}

// DecodeBinary reads the array header from the front of src and returns the
// number of bytes consumed.
func (ah *ArrayHeader) DecodeBinary(src []byte) (int, error) {
	if len(src) < 12 {
		return 0, &LengthError{TypeName: "array header", Expected: -1, Actual: len(src)}
	}

	rp := 0

	numDims := int(int32(binary.BigEndian.Uint32(src[rp:])))
	rp += 4
	if numDims < 0 {
		return 0, fmt.Errorf("invalid array dimension count %d", numDims)
	}

	ah.ContainsNull = binary.BigEndian.Uint32(src[rp:]) == 1
	rp += 4

	ah.ElementOID = binary.BigEndian.Uint32(src[rp:])
	rp += 4

	if len(src) < rp+numDims*8 {
		return 0, &LengthError{TypeName: "array header", Expected: rp + numDims*8, Actual: len(src)}
	}

	if numDims > 0 {
		ah.Dimensions = make([]ArrayDimension, numDims)
	}
	for i := range ah.Dimensions {
		ah.Dimensions[i].Length = int32(binary.BigEndian.Uint32(src[rp:]))
		rp += 4

		ah.Dimensions[i].LowerBound = int32(binary.BigEndian.Uint32(src[rp:]))
		rp += 4
	}

	return rp, nil
}

func cardinality(dimensions []ArrayDimension) int {
	if len(dimensions) == 0 {
		return 0
	}

	elementCount := int(dimensions[0].Length)
	for _, d := range dimensions[1:] {
		elementCount *= int(d.Length)
	}

	return elementCount
}

// appendArrayElement writes one length-prefixed element. A nil element of a
// nullable type writes the -1 marker.
func appendArrayElement(m *Map, t *Type, nullable bool, value any, buf []byte) (newBuf []byte, isNull bool, err error) {
	v := derefValue(value)
	if isNilValue(v) {
		if !nullable {
			return nil, false, fmt.Errorf("cannot encode nil element into array of non-null %s", t.Name)
		}
		return pgio.AppendInt32(buf, -1), true, nil
	}

	sp := len(buf)
	buf = pgio.AppendInt32(buf, -1)
	buf, err = t.codec.Encode(m, v, buf)
	if err != nil {
		return nil, false, err
	}
	pgio.SetInt32(buf[sp:], int32(len(buf)-sp-4))
	return buf, false, nil
}

// readArrayElement reads one length-prefixed element from src starting at rp.
func readArrayElement(m *Map, t *Type, nullable bool, src []byte, rp int) (value any, newRp int, err error) {
	if len(src[rp:]) < 4 {
		return nil, 0, &LengthError{TypeName: t.Name, Expected: -1, Actual: len(src[rp:])}
	}

	elemLen := int(int32(binary.BigEndian.Uint32(src[rp:])))
	rp += 4

	if elemLen < 0 {
		if !nullable {
			return nil, 0, &UnexpectedNullError{TypeName: t.Name}
		}
		return nil, rp, nil
	}

	if len(src[rp:]) < elemLen {
		return nil, 0, &LengthError{TypeName: t.Name, Expected: elemLen, Actual: len(src[rp:])}
	}

	v, err := t.codec.Decode(m, src[rp:rp+elemLen])
	if err != nil {
		return nil, 0, err
	}
	return v, rp + elemLen, nil
}

// ArrayCodec is the codec for a variable-length one-dimensional array of a
// uniform element type.
type ArrayCodec struct {
	elem         *Type
	elemNullable bool
	sliceType    reflect.Type // []E, with E a pointer type when elements are nullable
}

func (c *ArrayCodec) Encode(m *Map, value any, buf []byte) ([]byte, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("cannot encode %T as array of %s", value, c.elem.Name)
	}

	length := rv.Len()

	arrayHeader := ArrayHeader{ElementOID: c.elem.OID}
	if length > 0 {
		arrayHeader.Dimensions = []ArrayDimension{{Length: int32(length), LowerBound: 1}}
	}

	containsNullIndex := len(buf) + 4
	buf = arrayHeader.EncodeBinary(buf)

	for i := 0; i < length; i++ {
		elemBuf, isNull, err := appendArrayElement(m, c.elem, c.elemNullable, rv.Index(i).Interface(), buf)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		buf = elemBuf
		if isNull {
			pgio.SetInt32(buf[containsNullIndex:], 1)
		}
	}

	return buf, nil
}

func (c *ArrayCodec) Decode(m *Map, src []byte) (any, error) {
	var arrayHeader ArrayHeader
	rp, err := arrayHeader.DecodeBinary(src)
	if err != nil {
		return nil, err
	}

	if len(arrayHeader.Dimensions) > 1 {
		return nil, fmt.Errorf("cannot decode %d-dimension array into slice of %s", len(arrayHeader.Dimensions), c.elem.Name)
	}

	elementCount := cardinality(arrayHeader.Dimensions)
	slice := reflect.MakeSlice(c.sliceType, elementCount, elementCount)

	for i := 0; i < elementCount; i++ {
		var v any
		v, rp, err = readArrayElement(m, c.elem, c.elemNullable, src, rp)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if err := assignValue(slice.Index(i), v); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}

	if rp != len(src) {
		return nil, &LengthError{TypeName: "array", Expected: rp, Actual: len(src)}
	}

	return slice.Interface(), nil
}

// FixedArrayCodec is the codec for an N-dimensional array whose sizes were
// fixed at registration time from the Go array type's shape. The wire value
// must declare exactly those dimensions.
type FixedArrayCodec struct {
	elem         *Type
	elemNullable bool
	dims         []int32
	arrayType    reflect.Type // nested Go array, e.g. [2][3]int32
}

func (c *FixedArrayCodec) Encode(m *Map, value any, buf []byte) ([]byte, error) {
	rv := reflect.ValueOf(value)
	if rv.Type() != c.arrayType {
		if !rv.Type().ConvertibleTo(c.arrayType) {
			return nil, fmt.Errorf("cannot encode %T as %v", value, c.arrayType)
		}
		rv = rv.Convert(c.arrayType)
	}

	arrayHeader := ArrayHeader{ElementOID: c.elem.OID}
	for _, length := range c.dims {
		arrayHeader.Dimensions = append(arrayHeader.Dimensions, ArrayDimension{Length: length, LowerBound: 1})
	}

	containsNullIndex := len(buf) + 4
	buf = arrayHeader.EncodeBinary(buf)

	return c.encodeLevel(m, rv, 0, containsNullIndex, buf)
}

func (c *FixedArrayCodec) encodeLevel(m *Map, rv reflect.Value, level, containsNullIndex int, buf []byte) ([]byte, error) {
	if level == len(c.dims) {
		elemBuf, isNull, err := appendArrayElement(m, c.elem, c.elemNullable, rv.Interface(), buf)
		if err != nil {
			return nil, err
		}
		if isNull {
			pgio.SetInt32(elemBuf[containsNullIndex:], 1)
		}
		return elemBuf, nil
	}

	for i := 0; i < int(c.dims[level]); i++ {
		var err error
		buf, err = c.encodeLevel(m, rv.Index(i), level+1, containsNullIndex, buf)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func (c *FixedArrayCodec) Decode(m *Map, src []byte) (any, error) {
	var arrayHeader ArrayHeader
	rp, err := arrayHeader.DecodeBinary(src)
	if err != nil {
		return nil, err
	}

	actual := make([]int32, len(arrayHeader.Dimensions))
	for i, d := range arrayHeader.Dimensions {
		actual[i] = d.Length
	}

	if !dimsEqual(c.dims, actual) {
		return nil, &DimensionMismatchError{Expected: c.dims, Actual: actual}
	}

	out := reflect.New(c.arrayType).Elem()
	rp, err = c.decodeLevel(m, out, 0, src, rp)
	if err != nil {
		return nil, err
	}

	if rp != len(src) {
		return nil, &LengthError{TypeName: "array", Expected: rp, Actual: len(src)}
	}

	return out.Interface(), nil
}

func (c *FixedArrayCodec) decodeLevel(m *Map, rv reflect.Value, level int, src []byte, rp int) (int, error) {
	if level == len(c.dims) {
		v, newRp, err := readArrayElement(m, c.elem, c.elemNullable, src, rp)
		if err != nil {
			return 0, err
		}
		if err := assignValue(rv, v); err != nil {
			return 0, err
		}
		return newRp, nil
	}

	for i := 0; i < int(c.dims[level]); i++ {
		var err error
		rp, err = c.decodeLevel(m, rv.Index(i), level+1, src, rp)
		if err != nil {
			return 0, err
		}
	}
	return rp, nil
}

func dimsEqual(expected, actual []int32) bool {
	// A zero-element array encodes with no dimensions at all.
	if len(actual) == 0 {
		return cardinalityInt32(expected) == 0
	}
	if len(expected) != len(actual) {
		return false
	}
	for i := range expected {
		if expected[i] != actual[i] {
			return false
		}
	}
	return true
}

func cardinalityInt32(dims []int32) int {
	if len(dims) == 0 {
		return 0
	}
	n := 1
	for _, d := range dims {
		n *= int(d)
	}
	return n
}
