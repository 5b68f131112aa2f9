package lending

import (
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"github.com/nidhish-srivastava/defi-lending-protocol/pkg/number"
)

// MintShares shares minted for amount joining a side of a pool holding total with totalShares.
// An empty side bootstraps at 1:1.
func MintShares(amount, total, totalShares uint64) (uint64, error) {
	if total == 0 {
		return amount, nil
	}

	minted, ok := number.MulDivUint64(amount, totalShares, total)
	if !ok {
		return 0, core.ErrArithmeticOverflow
	}

	return minted, nil
}

// BurnShares shares burned for amount leaving a side of a pool holding total with totalShares
func BurnShares(amount, total, totalShares uint64) (uint64, error) {
	if total == 0 {
		return 0, core.ErrEmptyPool
	}

	burned, ok := number.MulDivUint64(amount, totalShares, total)
	if !ok {
		return 0, core.ErrArithmeticOverflow
	}

	return burned, nil
}

// SharesToAmount amount claimed by shares, rounded down
func SharesToAmount(shares, total, totalShares uint64) (uint64, error) {
	if totalShares == 0 {
		if shares == 0 {
			return 0, nil
		}

		return 0, core.ErrDivisionByZero
	}

	amount, ok := number.MulDivUint64(shares, total, totalShares)
	if !ok {
		return 0, core.ErrArithmeticOverflow
	}

	return amount, nil
}

// Add checked x + y
func Add(x, y uint64) (uint64, error) {
	v, ok := number.AddUint64(x, y)
	if !ok {
		return 0, core.ErrArithmeticOverflow
	}

	return v, nil
}

// Sub checked x - y
func Sub(x, y uint64) (uint64, error) {
	v, ok := number.SubUint64(x, y)
	if !ok {
		return 0, core.ErrArithmeticOverflow
	}

	return v, nil
}
