package pgbin_test

import (
	"errors"
	"testing"

	"github.com/jackc/pgproto3/v2"
	"github.com/pgkit/pgbin"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID   int64   `db:"id"`
	Name string  `db:"name"`
	Note *string `db:"note"`
}

type widgetStats struct {
	Score float64 `db:"score"`
	Rank  *int32  `db:"rank"`
}

// throughDataRow runs column values through a DataRow message the way they
// would travel on a real connection.
func throughDataRow(t *testing.T, values [][]byte) [][]byte {
	t.Helper()

	dr := &pgproto3.DataRow{Values: values}
	wire := dr.Encode(nil)

	var decoded pgproto3.DataRow
	require.NoError(t, decoded.Decode(wire[5:]))
	return decoded.Values
}

func TestEncodeParamsDecodeRow(t *testing.T) {
	m := pgbin.NewMap()

	shape, err := m.DeriveRowShape(widget{})
	require.NoError(t, err)

	note := "fragile"
	values, err := m.EncodeParams(shape, int64(42), "sprocket", &note)
	require.NoError(t, err)
	require.Len(t, values, 3)

	var id int64
	var name string
	var gotNote *string
	require.NoError(t, m.DecodeRow(shape, throughDataRow(t, values), &id, &name, &gotNote))

	require.Equal(t, int64(42), id)
	require.Equal(t, "sprocket", name)
	require.NotNil(t, gotNote)
	require.Equal(t, "fragile", *gotNote)
}

func TestEncodeParamsNullHandling(t *testing.T) {
	m := pgbin.NewMap()

	shape, err := m.DeriveRowShape(widget{})
	require.NoError(t, err)

	// A nullable column accepts nil and produces a nil span.
	values, err := m.EncodeParams(shape, int64(1), "w", nil)
	require.NoError(t, err)
	require.Nil(t, values[2])

	// A NOT NULL column rejects nil before any bytes are written.
	_, err = m.EncodeParams(shape, int64(1), nil, nil)
	var nullErr *pgbin.UnexpectedNullError
	require.ErrorAs(t, err, &nullErr)
}

func TestDecodeRowNullIntoNonNullColumn(t *testing.T) {
	m := pgbin.NewMap()

	shape, err := m.DeriveRowShape(widget{})
	require.NoError(t, err)

	values, err := m.EncodeParams(shape, int64(1), "w", nil)
	require.NoError(t, err)

	values[1] = nil

	var id int64
	var name string
	var note *string
	err = m.DecodeRow(shape, values, &id, &name, &note)

	var decodeErr *pgbin.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	require.Equal(t, 1, decodeErr.ColumnIndex)
	require.Equal(t, "name", decodeErr.ColumnName)

	var nullErr *pgbin.UnexpectedNullError
	require.True(t, errors.As(err, &nullErr))
}

func TestDecodeRowCorruptColumnReportsPosition(t *testing.T) {
	m := pgbin.NewMap()

	shape, err := m.DeriveRowShape(widget{})
	require.NoError(t, err)

	values, err := m.EncodeParams(shape, int64(1), "w", nil)
	require.NoError(t, err)

	values[0] = values[0][:3]

	var id int64
	var name string
	var note *string
	err = m.DecodeRow(shape, values, &id, &name, &note)

	var decodeErr *pgbin.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	require.Equal(t, 0, decodeErr.ColumnIndex)
	require.Equal(t, "id", decodeErr.ColumnName)

	var lengthErr *pgbin.LengthError
	require.True(t, errors.As(err, &lengthErr))
}

func TestEncodeDecodeRecord(t *testing.T) {
	m := pgbin.NewMap()

	shape, err := m.DeriveRowShape(widget{})
	require.NoError(t, err)

	note := "fresh"
	in := widget{ID: 7, Name: "gear", Note: &note}

	values, err := m.EncodeRecord(shape, in)
	require.NoError(t, err)

	var out widget
	require.NoError(t, m.DecodeRecord(shape, throughDataRow(t, values), &out))
	require.Equal(t, in, out)
}

func TestJoinedRecordRoundTrip(t *testing.T) {
	m := pgbin.NewMap()

	left, err := m.DeriveRowShape(widget{})
	require.NoError(t, err)
	right, err := m.DeriveRowShape(widgetStats{})
	require.NoError(t, err)

	joined, err := left.Join(right)
	require.NoError(t, err)
	require.Equal(t, 5, joined.Arity())

	rank := int32(3)
	w := widget{ID: 1, Name: "axle"}
	s := widgetStats{Score: 9.5, Rank: &rank}

	values, err := m.EncodeRecord(joined, w, s)
	require.NoError(t, err)
	require.Len(t, values, 5)

	var outW widget
	var outS widgetStats
	require.NoError(t, m.DecodeRecord(joined, throughDataRow(t, values), &outW, &outS))
	require.Equal(t, w, outW)
	require.Equal(t, s, outS)
}

func TestRecordShapeMismatch(t *testing.T) {
	m := pgbin.NewMap()

	shape, err := m.DeriveRowShape(widget{})
	require.NoError(t, err)

	var shapeErr *pgbin.ShapeMismatchError

	// Wrong record type for the component.
	_, err = m.EncodeRecord(shape, widgetStats{})
	require.ErrorAs(t, err, &shapeErr)

	// Wrong record count for a joined shape.
	right, err := m.DeriveRowShape(widgetStats{})
	require.NoError(t, err)
	joined, err := shape.Join(right)
	require.NoError(t, err)

	_, err = m.EncodeRecord(joined, widget{})
	require.ErrorAs(t, err, &shapeErr)
}

func TestDecodeRowArityMismatch(t *testing.T) {
	m := pgbin.NewMap()

	shape, err := m.DeriveRowShape(widget{})
	require.NoError(t, err)

	var id int64
	err = m.DecodeRow(shape, [][]byte{nil}, &id)
	var shapeErr *pgbin.ShapeMismatchError
	require.ErrorAs(t, err, &shapeErr)
}

func TestEncodeParamsArityMismatch(t *testing.T) {
	m := pgbin.NewMap()

	shape, err := m.DeriveRowShape(widget{})
	require.NoError(t, err)

	_, err = m.EncodeParams(shape, int64(1))
	var shapeErr *pgbin.ShapeMismatchError
	require.ErrorAs(t, err, &shapeErr)
}
