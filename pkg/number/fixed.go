package number

import (
	"math/bits"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// WadDecimals precision of wad fixed-point numbers
const WadDecimals = 18

const (
	// e^64 * 1e18 still fits comfortably in 256 bits
	maxExpWad = 64
	expTerms  = 256
)

var (
	// Wad 1.0 in fixed-point
	Wad = uint256.NewInt(1_000_000_000_000_000_000)

	maxExp = new(uint256.Int).Mul(uint256.NewInt(maxExpWad), Wad)
)

// Pow10 10^n
func Pow10(n uint8) *uint256.Int {
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(n)))
}

// ToWad converts a non-negative decimal into wad, digits beyond 18 decimals are truncated.
// ok is false for negative or too large values.
func ToWad(d decimal.Decimal) (*uint256.Int, bool) {
	if d.IsNegative() {
		return nil, false
	}

	v, overflow := uint256.FromBig(d.Shift(WadDecimals).BigInt())
	if overflow {
		return nil, false
	}

	return v, true
}

// FromWad converts a wad back into a decimal
func FromWad(v *uint256.Int) decimal.Decimal {
	return decimal.NewFromBigInt(v.ToBig(), -WadDecimals)
}

// MulDiv floor(x * y / d) with a 512-bit intermediate.
// ok is false when d is zero or the quotient overflows 256 bits.
func MulDiv(x, y, d *uint256.Int) (*uint256.Int, bool) {
	if d.IsZero() {
		return nil, false
	}

	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, false
	}

	return z, true
}

// MulDivUint64 floor(x * y / d) computed on 128 bits.
// ok is false when d is zero or the quotient does not fit 64 bits.
func MulDivUint64(x, y, d uint64) (uint64, bool) {
	if d == 0 {
		return 0, false
	}

	hi, lo := bits.Mul64(x, y)
	if hi >= d {
		return 0, false
	}

	quo, _ := bits.Div64(hi, lo, d)
	return quo, true
}

// AddUint64 x + y, ok is false on overflow
func AddUint64(x, y uint64) (uint64, bool) {
	sum, carry := bits.Add64(x, y, 0)
	return sum, carry == 0
}

// SubUint64 x - y, ok is false on underflow
func SubUint64(x, y uint64) (uint64, bool) {
	diff, borrow := bits.Sub64(x, y, 0)
	return diff, borrow == 0
}

// ExpWad e^x for a wad x, evaluated with a truncated Taylor series on integers.
// Each term is floored so the result never exceeds the exact value.
// ok is false when x is beyond the supported range.
func ExpWad(x *uint256.Int) (*uint256.Int, bool) {
	if x.Gt(maxExp) {
		return nil, false
	}

	sum := new(uint256.Int).Set(Wad)
	term := new(uint256.Int).Set(Wad)
	for k := uint64(1); k <= expTerms; k++ {
		// term_k = term_{k-1} * x / k
		denominator := new(uint256.Int).Mul(uint256.NewInt(k), Wad)
		next, ok := MulDiv(term, x, denominator)
		if !ok {
			return nil, false
		}

		if next.IsZero() {
			break
		}

		sum.Add(sum, next)
		term = next
	}

	return sum, true
}
