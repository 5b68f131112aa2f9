package lending

import (
	"github.com/holiman/uint256"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"github.com/nidhish-srivastava/defi-lending-protocol/pkg/number"
)

// Liquidation amounts moved by one liquidation
type Liquidation struct {
	// borrowed asset paid in by the liquidator
	RepayAmount uint64
	RepayValue  *uint256.Int
	// collateral asset paid out to the liquidator
	SeizeAmount uint64
	SeizeValue  *uint256.Int
}

// LiquidationValue debt value repayable in one liquidation, min(debt * closeFactor, debt)
func LiquidationValue(debt, closeFactor *uint256.Int) (*uint256.Int, error) {
	v, ok := number.MulDiv(debt, closeFactor, number.Wad)
	if !ok {
		return nil, core.ErrArithmeticOverflow
	}

	if v.Gt(debt) {
		v.Set(debt)
	}

	return v, nil
}

// PlanLiquidation sizes a liquidation of an unhealthy position valued at v.
// The repaid value is capped by the close factor and by the borrowed leg; the seized value
// is the repaid value plus bonus. When that exceeds the collateral leg, the whole leg is
// seized and the repay shrinks to the leg's value less the bonus.
func PlanLiquidation(
	v *Valuation,
	closeFactor, bonus *uint256.Int,
	borrowed uint64, borrowQuote Quote,
	collateral uint64, collateralQuote Quote,
) (*Liquidation, error) {
	value, err := LiquidationValue(v.Debt, closeFactor)
	if err != nil {
		return nil, err
	}

	legValue, err := borrowQuote.Value(borrowed)
	if err != nil {
		return nil, err
	}

	if value.Gt(legValue) {
		value = legValue
	}

	repay, err := borrowQuote.Amount(value)
	if err != nil {
		return nil, err
	}

	if repay > borrowed {
		repay = borrowed
	}

	if repay == 0 {
		return nil, core.ErrInvalidAmount
	}

	repayValue, err := borrowQuote.Value(repay)
	if err != nil {
		return nil, err
	}

	bonusValue, ok := number.MulDiv(repayValue, bonus, number.Wad)
	if !ok {
		return nil, core.ErrArithmeticOverflow
	}

	seizeValue, overflow := new(uint256.Int).AddOverflow(repayValue, bonusValue)
	if overflow {
		return nil, core.ErrArithmeticOverflow
	}

	seize, err := collateralQuote.Amount(seizeValue)
	if err == core.ErrArithmeticOverflow || (err == nil && seize > collateral) {
		// the collateral leg binds: seize all of it and repay its value less the bonus
		seize = collateral
		if seize == 0 {
			return nil, core.ErrInsufficientCollateral
		}

		if seizeValue, err = collateralQuote.Value(seize); err != nil {
			return nil, err
		}

		if repay, repayValue, err = repayFor(seizeValue, bonus, borrowQuote); err != nil {
			return nil, err
		}
	}

	if err != nil {
		return nil, err
	}

	if seize == 0 {
		return nil, core.ErrInsufficientCollateral
	}

	return &Liquidation{
		RepayAmount: repay,
		RepayValue:  repayValue,
		SeizeAmount: seize,
		SeizeValue:  seizeValue,
	}, nil
}

// repayFor borrowed amount, and its value, that buys seizeValue of collateral at bonus
func repayFor(seizeValue, bonus *uint256.Int, borrowQuote Quote) (uint64, *uint256.Int, error) {
	rate, overflow := new(uint256.Int).AddOverflow(number.Wad, bonus)
	if overflow {
		return 0, nil, core.ErrArithmeticOverflow
	}

	value, ok := number.MulDiv(seizeValue, number.Wad, rate)
	if !ok {
		return 0, nil, core.ErrArithmeticOverflow
	}

	repay, err := borrowQuote.Amount(value)
	if err != nil {
		return 0, nil, err
	}

	if repay == 0 {
		return 0, nil, core.ErrInsufficientCollateral
	}

	if value, err = borrowQuote.Value(repay); err != nil {
		return 0, nil, err
	}

	return repay, value, nil
}
