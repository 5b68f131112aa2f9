package lending

import (
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
)

// Borrow adds amount to the borrow side of pool and leg and returns the minted debt shares.
// Shares are priced against the totals before the borrow; pool and leg are left untouched on error.
func Borrow(pool *core.Pool, leg *core.Leg, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, core.ErrInvalidAmount
	}

	minted, err := MintShares(amount, pool.TotalBorrowed, pool.TotalBorrowedShares)
	if err != nil {
		return 0, err
	}

	if minted == 0 {
		return 0, core.ErrInvalidAmount
	}

	totalBorrowed, err := Add(pool.TotalBorrowed, amount)
	if err != nil {
		return 0, err
	}

	totalShares, err := Add(pool.TotalBorrowedShares, minted)
	if err != nil {
		return 0, err
	}

	borrowed, err := Add(leg.BorrowedAmount, amount)
	if err != nil {
		return 0, err
	}

	shares, err := Add(leg.BorrowedShares, minted)
	if err != nil {
		return 0, err
	}

	pool.TotalBorrowed, pool.TotalBorrowedShares = totalBorrowed, totalShares
	leg.BorrowedAmount, leg.BorrowedShares = borrowed, shares
	return minted, nil
}

// Repay removes amount from the borrow side of pool and leg and returns the burned debt shares.
// Repaying the whole leg zeroes both its amount and its shares.
func Repay(pool *core.Pool, leg *core.Leg, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, core.ErrInvalidAmount
	}

	if amount > leg.BorrowedAmount {
		return 0, core.ErrOverRepay
	}

	burned, err := BurnShares(amount, pool.TotalBorrowed, pool.TotalBorrowedShares)
	if err != nil {
		return 0, err
	}

	if amount == leg.BorrowedAmount || burned > leg.BorrowedShares {
		burned = leg.BorrowedShares
	}

	totalBorrowed, err := Sub(pool.TotalBorrowed, amount)
	if err != nil {
		return 0, err
	}

	totalShares, err := Sub(pool.TotalBorrowedShares, burned)
	if err != nil {
		return 0, err
	}

	pool.TotalBorrowed, pool.TotalBorrowedShares = totalBorrowed, totalShares
	leg.BorrowedAmount -= amount
	leg.BorrowedShares -= burned
	return burned, nil
}
