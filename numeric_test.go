package pgbin_test

import (
	"math/big"
	"testing"

	"github.com/cockroachdb/apd"
	"github.com/pgkit/pgbin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func numericRoundTrip(t *testing.T, m *pgbin.Map, n pgbin.Numeric) pgbin.Numeric {
	t.Helper()
	typ := mustType(t, m, "numeric")

	buf, err := typ.Encode(m, n, nil)
	require.NoError(t, err)

	decoded, err := typ.Decode(m, buf)
	require.NoError(t, err)
	return decoded.(pgbin.Numeric)
}

func TestNumericRoundTrip(t *testing.T) {
	m := pgbin.NewMap()

	for _, s := range []string{
		"0",
		"1",
		"-1",
		"10000",
		"9999",
		"0.1",
		"-0.00001",
		"3.14159265358979",
		"12345678901234567890.12345678901234567890",
		"-98765432109876543210",
		"0.000000000000000000000001",
	} {
		want := decimal.RequireFromString(s)
		decoded := numericRoundTrip(t, m, pgbin.NumericFromDecimal(want))

		got, err := decoded.Decimal()
		require.NoError(t, err)
		require.Truef(t, want.Equal(got), "%s decoded as %s", want, got)
	}
}

func TestNumericNaN(t *testing.T) {
	m := pgbin.NewMap()
	typ := mustType(t, m, "numeric")

	buf, err := typ.Encode(m, pgbin.Numeric{NaN: true}, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 0, 0xc0, 0, 0, 0}, buf)

	decoded := numericRoundTrip(t, m, pgbin.Numeric{NaN: true})
	require.True(t, decoded.NaN)

	_, err = decoded.Decimal()
	require.Error(t, err)
}

func TestNumericSpecialValuesRejectTrailingBytes(t *testing.T) {
	m := pgbin.NewMap()
	typ := mustType(t, m, "numeric")
	var lengthErr *pgbin.LengthError

	for _, header := range [][]byte{
		{0, 0, 0, 0, 0xc0, 0, 0, 0}, // NaN
		{0, 0, 0, 0, 0xd0, 0, 0, 0}, // infinity
		{0, 0, 0, 0, 0xf0, 0, 0, 0}, // -infinity
	} {
		_, err := typ.Decode(m, header)
		require.NoError(t, err)

		_, err = typ.Decode(m, append(append([]byte{}, header...), 0xde, 0xad))
		require.ErrorAsf(t, err, &lengthErr, "header % x with trailing bytes", header)
	}
}

func TestNumericInfinity(t *testing.T) {
	m := pgbin.NewMap()

	decoded := numericRoundTrip(t, m, pgbin.Numeric{InfinityModifier: pgbin.Infinity})
	require.Equal(t, pgbin.Infinity, decoded.InfinityModifier)

	decoded = numericRoundTrip(t, m, pgbin.Numeric{InfinityModifier: pgbin.NegativeInfinity})
	require.Equal(t, pgbin.NegativeInfinity, decoded.InfinityModifier)
}

func TestNumericEncodeFromOtherTypes(t *testing.T) {
	m := pgbin.NewMap()
	typ := mustType(t, m, "numeric")

	for _, value := range []any{
		decimal.RequireFromString("42.5"),
		"42.5",
		float64(42.5),
	} {
		buf, err := typ.Encode(m, value, nil)
		require.NoErrorf(t, err, "%T", value)

		decoded, err := typ.Decode(m, buf)
		require.NoError(t, err)

		d, err := decoded.(pgbin.Numeric).Decimal()
		require.NoError(t, err)
		require.Truef(t, decimal.RequireFromString("42.5").Equal(d), "%T decoded as %s", value, d)
	}

	buf, err := typ.Encode(m, int64(-7), nil)
	require.NoError(t, err)
	decoded, err := typ.Decode(m, buf)
	require.NoError(t, err)
	require.Equal(t, int64(-7), decoded.(pgbin.Numeric).Int.Int64())
}

func TestNumericAPDConversions(t *testing.T) {
	m := pgbin.NewMap()

	d := &apd.Decimal{Exponent: -2}
	d.Coeff.SetInt64(314)

	n, err := pgbin.NumericFromAPD(d)
	require.NoError(t, err)

	decoded := numericRoundTrip(t, m, n)
	back := decoded.APD()
	require.Equal(t, apd.Finite, back.Form)
	require.Equal(t, "3.14", back.Text('f'))

	nan, err := pgbin.NumericFromAPD(&apd.Decimal{Form: apd.NaN})
	require.NoError(t, err)
	require.True(t, nan.NaN)

	negInf, err := pgbin.NumericFromAPD(&apd.Decimal{Form: apd.Infinite, Negative: true})
	require.NoError(t, err)
	require.Equal(t, pgbin.NegativeInfinity, negInf.InfinityModifier)
}

func TestNumericDecodeTruncated(t *testing.T) {
	m := pgbin.NewMap()
	typ := mustType(t, m, "numeric")

	buf, err := typ.Encode(m, pgbin.Numeric{Int: big.NewInt(12345678), Exp: -4}, nil)
	require.NoError(t, err)

	var lengthErr *pgbin.LengthError
	_, err = typ.Decode(m, buf[:len(buf)-2])
	require.ErrorAs(t, err, &lengthErr)

	_, err = typ.Decode(m, []byte{0, 1})
	require.ErrorAs(t, err, &lengthErr)
}
