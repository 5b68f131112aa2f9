package lending

import (
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
)

// Supply adds amount to the deposit side of pool and leg and returns the minted shares.
// pool and leg are left untouched on error.
func Supply(pool *core.Pool, leg *core.Leg, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, core.ErrInvalidAmount
	}

	minted, err := MintShares(amount, pool.TotalDeposits, pool.TotalDepositShares)
	if err != nil {
		return 0, err
	}

	if minted == 0 {
		return 0, core.ErrInvalidAmount
	}

	totalDeposits, err := Add(pool.TotalDeposits, amount)
	if err != nil {
		return 0, err
	}

	totalShares, err := Add(pool.TotalDepositShares, minted)
	if err != nil {
		return 0, err
	}

	deposited, err := Add(leg.DepositedAmount, amount)
	if err != nil {
		return 0, err
	}

	shares, err := Add(leg.DepositedShares, minted)
	if err != nil {
		return 0, err
	}

	pool.TotalDeposits, pool.TotalDepositShares = totalDeposits, totalShares
	leg.DepositedAmount, leg.DepositedShares = deposited, shares
	return minted, nil
}

// Redeem removes amount from the deposit side of pool and leg and returns the burned shares.
// Redeeming the whole leg burns all of its shares.
func Redeem(pool *core.Pool, leg *core.Leg, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, core.ErrInvalidAmount
	}

	if amount > leg.DepositedAmount {
		return 0, core.ErrInsufficientCollateral
	}

	burned, err := BurnShares(amount, pool.TotalDeposits, pool.TotalDepositShares)
	if err != nil {
		return 0, err
	}

	if amount == leg.DepositedAmount || burned > leg.DepositedShares {
		burned = leg.DepositedShares
	}

	totalDeposits, err := Sub(pool.TotalDeposits, amount)
	if err != nil {
		return 0, err
	}

	totalShares, err := Sub(pool.TotalDepositShares, burned)
	if err != nil {
		return 0, err
	}

	pool.TotalDeposits, pool.TotalDepositShares = totalDeposits, totalShares
	leg.DepositedAmount -= amount
	leg.DepositedShares -= burned
	return burned, nil
}
