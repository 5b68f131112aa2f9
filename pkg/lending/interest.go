package lending

import (
	"github.com/holiman/uint256"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"github.com/nidhish-srivastava/defi-lending-protocol/pkg/number"
	"github.com/shopspring/decimal"
)

// Accrue grows amount continuously at ratePerSecond over elapsed seconds:
// floor(amount * e^(rate * elapsed)).
func Accrue(amount uint64, ratePerSecond decimal.Decimal, elapsed int64) (uint64, error) {
	if elapsed < 0 {
		return 0, core.ErrInvalidTimestamp
	}

	if ratePerSecond.IsNegative() {
		return 0, core.ErrInvalidRiskParameter
	}

	if amount == 0 || elapsed == 0 || ratePerSecond.IsZero() {
		return amount, nil
	}

	rate, ok := number.ToWad(ratePerSecond)
	if !ok {
		return 0, core.ErrArithmeticOverflow
	}

	exponent, overflow := new(uint256.Int).MulOverflow(rate, uint256.NewInt(uint64(elapsed)))
	if overflow {
		return 0, core.ErrArithmeticOverflow
	}

	growth, ok := number.ExpWad(exponent)
	if !ok {
		return 0, core.ErrArithmeticOverflow
	}

	accrued, ok := number.MulDiv(uint256.NewInt(amount), growth, number.Wad)
	if !ok || !accrued.IsUint64() {
		return 0, core.ErrArithmeticOverflow
	}

	return accrued.Uint64(), nil
}
