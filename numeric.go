package pgbin

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/cockroachdb/apd"
	"github.com/jackc/pgio"
	"github.com/shopspring/decimal"
)

// PostgreSQL internal numeric storage uses 16-bit "digits" with base of 10,000
const nbase = 10000

const (
	pgNumericNaN     = 0x00000000c0000000
	pgNumericNaNSign = 0xc000

	pgNumericPosInf     = 0x00000000d0000000
	pgNumericPosInfSign = 0xd000

	pgNumericNegInf     = 0x00000000f0000000
	pgNumericNegInfSign = 0xf000
)

var big0 = big.NewInt(0)
var big1 = big.NewInt(1)
var big10 = big.NewInt(10)
var big100 = big.NewInt(100)
var big1000 = big.NewInt(1000)

var bigNBase = big.NewInt(nbase)
var bigNBaseX2 = big.NewInt(nbase * nbase)
var bigNBaseX3 = big.NewInt(nbase * nbase * nbase)
var bigNBaseX4 = big.NewInt(nbase * nbase * nbase * nbase)

// Numeric is an arbitrary precision number represented as Int * 10^Exp, or
// NaN, or positive or negative infinity.
type Numeric struct {
	Int              *big.Int
	Exp              int32
	NaN              bool
	InfinityModifier InfinityModifier
}

// Decimal converts n to a shopspring decimal. NaN and the infinities have no
// shopspring representation and return an error.
func (n Numeric) Decimal() (decimal.Decimal, error) {
	if n.NaN {
		return decimal.Decimal{}, fmt.Errorf("cannot convert NaN to decimal.Decimal")
	}
	if n.InfinityModifier != None {
		return decimal.Decimal{}, fmt.Errorf("cannot convert %v to decimal.Decimal", n.InfinityModifier)
	}

	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}

// APD converts n to a cockroachdb/apd decimal. NaN and the infinities map to
// the corresponding apd forms.
func (n Numeric) APD() *apd.Decimal {
	switch {
	case n.NaN:
		return &apd.Decimal{Form: apd.NaN}
	case n.InfinityModifier == Infinity:
		return &apd.Decimal{Form: apd.Infinite}
	case n.InfinityModifier == NegativeInfinity:
		return &apd.Decimal{Form: apd.Infinite, Negative: true}
	}

	d := &apd.Decimal{Exponent: n.Exp}
	d.Coeff.Abs(n.Int)
	d.Negative = n.Int.Sign() < 0
	return d
}

// NumericFromDecimal converts a shopspring decimal to a Numeric.
func NumericFromDecimal(d decimal.Decimal) Numeric {
	return Numeric{Int: d.Coefficient(), Exp: d.Exponent()}
}

// NumericFromAPD converts a cockroachdb/apd decimal to a Numeric.
func NumericFromAPD(d *apd.Decimal) (Numeric, error) {
	switch d.Form {
	case apd.Finite:
		i := new(big.Int).Set(&d.Coeff)
		if d.Negative {
			i.Neg(i)
		}
		return Numeric{Int: i, Exp: d.Exponent}, nil
	case apd.Infinite:
		if d.Negative {
			return Numeric{InfinityModifier: NegativeInfinity}, nil
		}
		return Numeric{InfinityModifier: Infinity}, nil
	case apd.NaN, apd.NaNSignaling:
		return Numeric{NaN: true}, nil
	default:
		return Numeric{}, fmt.Errorf("unknown apd.Decimal form %v", d.Form)
	}
}

// NumericCodec implements the numeric wire format: uint16 digit count,
// int16 first-digit weight, uint16 sign, int16 display scale, then the
// digits as big-endian base-10,000 uint16s.
type NumericCodec struct{}

func (NumericCodec) Encode(m *Map, value any, buf []byte) ([]byte, error) {
	var n Numeric
	switch value := value.(type) {
	case Numeric:
		n = value
	case decimal.Decimal:
		n = NumericFromDecimal(value)
	case apd.Decimal:
		var err error
		n, err = NumericFromAPD(&value)
		if err != nil {
			return nil, err
		}
	case string:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to numeric: %w", value, err)
		}
		n = NumericFromDecimal(d)
	default:
		if i, err := convertToInt64(value); err == nil {
			n = Numeric{Int: big.NewInt(i)}
		} else if f, err := convertToFloat64(value); err == nil {
			n = NumericFromDecimal(decimal.NewFromFloat(f))
		} else {
			return nil, fmt.Errorf("cannot convert %v to numeric", value)
		}
	}

	return encodeNumeric(n, buf)
}

func encodeNumeric(src Numeric, buf []byte) ([]byte, error) {
	if src.NaN {
		return pgio.AppendUint64(buf, pgNumericNaN), nil
	} else if src.InfinityModifier == Infinity {
		return pgio.AppendUint64(buf, pgNumericPosInf), nil
	} else if src.InfinityModifier == NegativeInfinity {
		return pgio.AppendUint64(buf, pgNumericNegInf), nil
	}

	if src.Int == nil {
		return nil, fmt.Errorf("cannot encode numeric with nil Int")
	}

	var sign int16
	if src.Int.Cmp(big0) < 0 {
		sign = 16384
	}

	absInt := &big.Int{}
	wholePart := &big.Int{}
	fracPart := &big.Int{}
	remainder := &big.Int{}
	absInt.Abs(src.Int)

	// Normalize absInt and exp to where exp is always a multiple of 4. This
	// makes converting to 16-bit base 10,000 digits easier.
	var exp int32
	switch src.Exp % 4 {
	case 1, -3:
		exp = src.Exp - 1
		absInt.Mul(absInt, big10)
	case 2, -2:
		exp = src.Exp - 2
		absInt.Mul(absInt, big100)
	case 3, -1:
		exp = src.Exp - 3
		absInt.Mul(absInt, big1000)
	default:
		exp = src.Exp
	}

	if exp < 0 {
		divisor := &big.Int{}
		divisor.Exp(big10, big.NewInt(int64(-exp)), nil)
		wholePart.DivMod(absInt, divisor, fracPart)
		fracPart.Add(fracPart, divisor)
	} else {
		wholePart = absInt
	}

	var wholeDigits, fracDigits []int16

	for wholePart.Cmp(big0) != 0 {
		wholePart.DivMod(wholePart, bigNBase, remainder)
		wholeDigits = append(wholeDigits, int16(remainder.Int64()))
	}

	if fracPart.Cmp(big0) != 0 {
		for fracPart.Cmp(big1) != 0 {
			fracPart.DivMod(fracPart, bigNBase, remainder)
			fracDigits = append(fracDigits, int16(remainder.Int64()))
		}
	}

	buf = pgio.AppendInt16(buf, int16(len(wholeDigits)+len(fracDigits)))

	var weight int16
	if len(wholeDigits) > 0 {
		weight = int16(len(wholeDigits) - 1)
		if exp > 0 {
			weight += int16(exp / 4)
		}
	} else {
		weight = int16(exp/4) - 1 + int16(len(fracDigits))
	}
	buf = pgio.AppendInt16(buf, weight)

	buf = pgio.AppendInt16(buf, sign)

	var dscale int16
	if src.Exp < 0 {
		dscale = int16(-src.Exp)
	}
	buf = pgio.AppendInt16(buf, dscale)

	for i := len(wholeDigits) - 1; i >= 0; i-- {
		buf = pgio.AppendInt16(buf, wholeDigits[i])
	}

	for i := len(fracDigits) - 1; i >= 0; i-- {
		buf = pgio.AppendInt16(buf, fracDigits[i])
	}

	return buf, nil
}

func (NumericCodec) Decode(m *Map, src []byte) (any, error) {
	if len(src) < 8 {
		return nil, &LengthError{TypeName: "numeric", Expected: -1, Actual: len(src)}
	}

	rp := 0
	ndigits := binary.BigEndian.Uint16(src[rp:])
	rp += 2
	weight := int16(binary.BigEndian.Uint16(src[rp:]))
	rp += 2
	sign := binary.BigEndian.Uint16(src[rp:])
	rp += 2
	dscale := int16(binary.BigEndian.Uint16(src[rp:]))
	rp += 2

	if sign == pgNumericNaNSign || sign == pgNumericPosInfSign || sign == pgNumericNegInfSign {
		// The special values are the 8-byte header alone, with no digits.
		if len(src) != 8 {
			return nil, &LengthError{TypeName: "numeric", Expected: 8, Actual: len(src)}
		}
		switch sign {
		case pgNumericNaNSign:
			return Numeric{NaN: true}, nil
		case pgNumericPosInfSign:
			return Numeric{InfinityModifier: Infinity}, nil
		default:
			return Numeric{InfinityModifier: NegativeInfinity}, nil
		}
	}

	if len(src) != 8+int(ndigits)*2 {
		return nil, &LengthError{TypeName: "numeric", Expected: 8 + int(ndigits)*2, Actual: len(src)}
	}

	if ndigits == 0 {
		return Numeric{Int: big.NewInt(0)}, nil
	}

	accum := &big.Int{}

	for i := 0; i < int(ndigits+3)/4; i++ {
		int64accum, bytesRead, digitsRead := nbaseDigitsToInt64(src[rp:])
		rp += bytesRead

		if i > 0 {
			var mul *big.Int
			switch digitsRead {
			case 1:
				mul = bigNBase
			case 2:
				mul = bigNBaseX2
			case 3:
				mul = bigNBaseX3
			case 4:
				mul = bigNBaseX4
			default:
				return nil, fmt.Errorf("invalid digitsRead: %d (this can't happen)", digitsRead)
			}
			accum.Mul(accum, mul)
		}

		accum.Add(accum, big.NewInt(int64accum))
	}

	exp := (int32(weight) - int32(ndigits) + 1) * 4

	if dscale > 0 {
		fracNBaseDigits := int16(int32(ndigits) - int32(weight) - 1)
		fracDecimalDigits := fracNBaseDigits * 4

		if dscale > fracDecimalDigits {
			multCount := int(dscale - fracDecimalDigits)
			for i := 0; i < multCount; i++ {
				accum.Mul(accum, big10)
				exp--
			}
		} else if dscale < fracDecimalDigits {
			divCount := int(fracDecimalDigits - dscale)
			for i := 0; i < divCount; i++ {
				accum.Div(accum, big10)
				exp++
			}
		}
	}

	reduced := &big.Int{}
	remainder := &big.Int{}
	if exp >= 0 && accum.Cmp(big0) != 0 {
		for {
			reduced.DivMod(accum, big10, remainder)
			if remainder.Cmp(big0) != 0 {
				break
			}
			accum.Set(reduced)
			exp++
		}
	}

	if sign != 0 {
		accum.Neg(accum)
	}

	return Numeric{Int: accum, Exp: exp}, nil
}

func nbaseDigitsToInt64(src []byte) (accum int64, bytesRead, digitsRead int) {
	digits := len(src) / 2
	if digits > 4 {
		digits = 4
	}

	rp := 0

	for i := 0; i < digits; i++ {
		if i > 0 {
			accum *= nbase
		}
		accum += int64(binary.BigEndian.Uint16(src[rp:]))
		rp += 2
	}

	return accum, rp, digits
}
