package lending

import (
	"math"

	"github.com/holiman/uint256"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"github.com/nidhish-srivastava/defi-lending-protocol/pkg/number"
)

// Valuation wad quote value of a position
type Valuation struct {
	// deposits grown by accrued interest
	Collateral *uint256.Int
	Debt       *uint256.Int
}

// Valuate values every leg of position. Deposits accrue at their own pool's rate over
// elapsed seconds. Legs holding nothing need neither a pool nor a quote.
func Valuate(position *core.Position, pools map[core.AssetKind]*core.Pool, quotes map[core.AssetKind]Quote, elapsed int64) (*Valuation, error) {
	v := &Valuation{
		Collateral: new(uint256.Int),
		Debt:       new(uint256.Int),
	}

	for _, kind := range core.AssetKinds {
		leg := position.Leg(kind)
		if leg.DepositedAmount == 0 && leg.BorrowedAmount == 0 {
			continue
		}

		pool, ok := pools[kind]
		if !ok {
			return nil, core.ErrPoolNotFound
		}

		quote, ok := quotes[kind]
		if !ok {
			return nil, core.ErrInvalidPrice
		}

		deposited, err := Accrue(leg.DepositedAmount, pool.InterestRate, elapsed)
		if err != nil {
			return nil, err
		}

		collateral, err := quote.Value(deposited)
		if err != nil {
			return nil, err
		}

		debt, err := quote.Value(leg.BorrowedAmount)
		if err != nil {
			return nil, err
		}

		if _, overflow := v.Collateral.AddOverflow(v.Collateral, collateral); overflow {
			return nil, core.ErrArithmeticOverflow
		}

		if _, overflow := v.Debt.AddOverflow(v.Debt, debt); overflow {
			return nil, core.ErrArithmeticOverflow
		}
	}

	return v, nil
}

// RiskAdjusted collateral value usable against debt, floor(collateral * threshold)
func (v *Valuation) RiskAdjusted(threshold *uint256.Int) (*uint256.Int, error) {
	adjusted, ok := number.MulDiv(v.Collateral, threshold, number.Wad)
	if !ok {
		return nil, core.ErrArithmeticOverflow
	}

	return adjusted, nil
}

// Healthy health factor >= 1, always true without debt
func (v *Valuation) Healthy(threshold *uint256.Int) (bool, error) {
	if v.Debt.IsZero() {
		return true, nil
	}

	adjusted, err := v.RiskAdjusted(threshold)
	if err != nil {
		return false, err
	}

	return !adjusted.Lt(v.Debt), nil
}

// HealthFactor wad collateral * threshold / debt. finite is false without debt.
func (v *Valuation) HealthFactor(threshold *uint256.Int) (factor *uint256.Int, finite bool, err error) {
	if v.Debt.IsZero() {
		return nil, false, nil
	}

	factor, ok := number.MulDiv(v.Collateral, threshold, v.Debt)
	if !ok {
		return nil, false, core.ErrArithmeticOverflow
	}

	return factor, true, nil
}

// Borrowable minor units of q's asset still borrowable under threshold, rounded down
func (v *Valuation) Borrowable(threshold *uint256.Int, q Quote) (uint64, error) {
	adjusted, err := v.RiskAdjusted(threshold)
	if err != nil {
		return 0, err
	}

	if !adjusted.Gt(v.Debt) {
		return 0, nil
	}

	capacity := new(uint256.Int).Sub(adjusted, v.Debt)
	amount, err := q.Amount(capacity)
	if err == core.ErrArithmeticOverflow {
		return math.MaxUint64, nil
	}

	return amount, err
}
