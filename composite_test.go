package pgbin_test

import (
	"testing"

	"github.com/pgkit/pgbin"
	"github.com/stretchr/testify/require"
)

type dimensions struct {
	Count int16   `db:"count"`
	Label *string `db:"label"`
}

func registerDimensions(t *testing.T, m *pgbin.Map) *pgbin.Type {
	t.Helper()
	typ, err := m.RegisterComposite("dimensions", 100200, 100201, dimensions{})
	require.NoError(t, err)
	return typ
}

func TestCompositeWireFormat(t *testing.T) {
	m := pgbin.NewMap()
	typ := registerDimensions(t, m)

	buf, err := typ.Encode(m, dimensions{Count: 1}, nil)
	require.NoError(t, err)

	require.Equal(t, []byte{
		0, 0, 0, 2, // 2 fields
		0, 0, 0, 21, // int2 OID
		0, 0, 0, 2, // 2 bytes
		0, 1,
		0, 0, 0, 25, // text OID
		0xff, 0xff, 0xff, 0xff, // NULL
	}, buf)

	decoded, err := typ.Decode(m, buf)
	require.NoError(t, err)
	require.Equal(t, dimensions{Count: 1}, decoded)
}

func TestCompositeRoundTrip(t *testing.T) {
	m := pgbin.NewMap()
	typ := registerDimensions(t, m)

	label := "wide"
	value := dimensions{Count: -7, Label: &label}

	buf, err := typ.Encode(m, value, nil)
	require.NoError(t, err)

	decoded, err := typ.Decode(m, buf)
	require.NoError(t, err)
	require.Equal(t, value, decoded)
}

func TestCompositeFieldCountMismatch(t *testing.T) {
	m := pgbin.NewMap()
	typ := registerDimensions(t, m)

	buf, err := typ.Encode(m, dimensions{Count: 1}, nil)
	require.NoError(t, err)

	buf[3] = 3

	_, err = typ.Decode(m, buf)
	var countErr *pgbin.FieldCountMismatchError
	require.ErrorAs(t, err, &countErr)
	require.Equal(t, 2, countErr.Expected)
	require.Equal(t, 3, countErr.Actual)
}

func TestCompositeNullNonNullableField(t *testing.T) {
	m := pgbin.NewMap()
	typ := registerDimensions(t, m)

	buf, err := typ.Encode(m, dimensions{Count: 1}, nil)
	require.NoError(t, err)

	// Rewrite the int2 field's length to the NULL marker.
	copy(buf[8:12], []byte{0xff, 0xff, 0xff, 0xff})
	buf = append(buf[:12], buf[14:]...)

	_, err = typ.Decode(m, buf)
	var nullErr *pgbin.UnexpectedNullError
	require.ErrorAs(t, err, &nullErr)
	require.Equal(t, "dimensions.count", nullErr.TypeName)
}

func TestCompositeNestedComposite(t *testing.T) {
	m := pgbin.NewMap()
	registerDimensions(t, m)

	type box struct {
		ID    int64       `db:"id"`
		Inner dimensions  `db:"inner"`
		Extra *dimensions `db:"extra"`
	}

	typ, err := m.RegisterComposite("box", 100300, 100301, box{})
	require.NoError(t, err)

	label := "deep"
	value := box{ID: 9, Inner: dimensions{Count: 2, Label: &label}}

	buf, err := typ.Encode(m, value, nil)
	require.NoError(t, err)

	decoded, err := typ.Decode(m, buf)
	require.NoError(t, err)
	require.Equal(t, value, decoded)
}

func TestCompositeUnregisteredStructField(t *testing.T) {
	m := pgbin.NewMap()

	type inner struct{ A int32 }
	type outer struct{ In inner }

	_, err := m.RegisterComposite("outer", 100400, 100401, outer{})
	var shapeErr *pgbin.ShapeMismatchError
	require.ErrorAs(t, err, &shapeErr)
}

func TestCompositeSelfReferenceRejected(t *testing.T) {
	m := pgbin.NewMap()

	// A type cannot be one of its own field types: it does not exist in the
	// registry while its fields resolve.
	type node struct {
		Value int32 `db:"value"`
		Next  *node `db:"next"`
	}

	_, err := m.RegisterComposite("node", 100500, 100501, node{})
	var shapeErr *pgbin.ShapeMismatchError
	require.ErrorAs(t, err, &shapeErr)
}

func TestCompositeReregistrationIdempotent(t *testing.T) {
	m := pgbin.NewMap()
	typ := registerDimensions(t, m)

	again, err := m.RegisterComposite("dimensions", 100200, 100201, dimensions{})
	require.NoError(t, err)
	require.Same(t, typ, again)

	_, err = m.RegisterComposite("other", 100600, 100601, dimensions{})
	var shapeErr *pgbin.ShapeMismatchError
	require.ErrorAs(t, err, &shapeErr)
}

func TestCompositeArray(t *testing.T) {
	m := pgbin.NewMap()
	registerDimensions(t, m)

	typ := arrayColumnType(t, m, struct{ Boxes []dimensions }{})

	label := "a"
	value := []dimensions{{Count: 1, Label: &label}, {Count: 2}}

	buf, err := typ.Encode(m, value, nil)
	require.NoError(t, err)

	decoded, err := typ.Decode(m, buf)
	require.NoError(t, err)
	require.Equal(t, value, decoded)
}
