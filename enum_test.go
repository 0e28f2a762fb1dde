package pgbin_test

import (
	"testing"

	"github.com/pgkit/pgbin"
	"github.com/stretchr/testify/require"
)

type meat string

const (
	meatBeef    meat = "Beef"
	meatLamb    meat = "Lamb"
	meatChicken meat = "Chicken"
)

func registerMeat(t *testing.T, m *pgbin.Map) *pgbin.Type {
	t.Helper()
	typ, err := pgbin.RegisterEnum(m, "meat", 100100, 100101, meatBeef, meatLamb, meatChicken)
	require.NoError(t, err)
	return typ
}

func TestEnumRoundTrip(t *testing.T) {
	m := pgbin.NewMap()
	typ := registerMeat(t, m)

	buf, err := typ.Encode(m, meatLamb, nil)
	require.NoError(t, err)
	require.Equal(t, []byte("Lamb"), buf)

	decoded, err := typ.Decode(m, buf)
	require.NoError(t, err)
	require.Equal(t, meatLamb, decoded)
}

func TestEnumRegisteredByName(t *testing.T) {
	m := pgbin.NewMap()
	registerMeat(t, m)

	typ, ok := m.TypeForName("meat")
	require.True(t, ok)
	require.Equal(t, pgbin.KindEnum, typ.Kind)
	require.Equal(t, []string{"Beef", "Lamb", "Chicken"}, typ.Labels)

	typ, ok = m.TypeForOID(100100)
	require.True(t, ok)
	require.Equal(t, "meat", typ.Name)
}

func TestEnumUnknownLabel(t *testing.T) {
	m := pgbin.NewMap()
	typ := registerMeat(t, m)

	_, err := typ.Decode(m, []byte("Goat"))
	var labelErr *pgbin.UnknownEnumLabelError
	require.ErrorAs(t, err, &labelErr)
	require.Equal(t, "meat", labelErr.TypeName)
	require.Equal(t, "Goat", labelErr.Label)

	// Matching is exact, not case-folded.
	_, err = typ.Decode(m, []byte("lamb"))
	require.ErrorAs(t, err, &labelErr)
}

func TestEnumEncodeRejectsNonCase(t *testing.T) {
	m := pgbin.NewMap()
	typ := registerMeat(t, m)

	_, err := typ.Encode(m, meat("Goat"), nil)
	require.Error(t, err)
}

func TestEnumRegistrationRejectsDuplicates(t *testing.T) {
	m := pgbin.NewMap()

	_, err := pgbin.RegisterEnum(m, "meat", 100100, 100101, meatBeef, meatBeef)
	var shapeErr *pgbin.ShapeMismatchError
	require.ErrorAs(t, err, &shapeErr)

	_, err = pgbin.RegisterEnum[meat](m, "meat", 100100, 100101)
	require.ErrorAs(t, err, &shapeErr)
}

func TestEnumArray(t *testing.T) {
	m := pgbin.NewMap()
	registerMeat(t, m)

	typ := arrayColumnType(t, m, struct{ Meats []meat }{})

	value := []meat{meatChicken, meatBeef}

	buf, err := typ.Encode(m, value, nil)
	require.NoError(t, err)

	decoded, err := typ.Decode(m, buf)
	require.NoError(t, err)
	require.Equal(t, value, decoded)
}
