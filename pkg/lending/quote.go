package lending

import (
	"github.com/holiman/uint256"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"github.com/nidhish-srivastava/defi-lending-protocol/pkg/number"
	"github.com/shopspring/decimal"
)

// Quote converts between minor units of an asset and wad quote value
type Quote struct {
	// wad quote value of one whole unit
	Price    *uint256.Int
	Decimals uint8
}

// NewQuote build a quote from an oracle price of one whole unit
func NewQuote(price decimal.Decimal, decimals uint8) (Quote, error) {
	if !price.IsPositive() {
		return Quote{}, core.ErrInvalidPrice
	}

	v, ok := number.ToWad(price)
	if !ok {
		return Quote{}, core.ErrArithmeticOverflow
	}

	if v.IsZero() {
		return Quote{}, core.ErrInvalidPrice
	}

	return Quote{Price: v, Decimals: decimals}, nil
}

// Value wad quote value of amount minor units, rounded down
func (q Quote) Value(amount uint64) (*uint256.Int, error) {
	v, ok := number.MulDiv(uint256.NewInt(amount), q.Price, number.Pow10(q.Decimals))
	if !ok {
		return nil, core.ErrArithmeticOverflow
	}

	return v, nil
}

// Amount minor units worth value, rounded down
func (q Quote) Amount(value *uint256.Int) (uint64, error) {
	if q.Price == nil || q.Price.IsZero() {
		return 0, core.ErrDivisionByZero
	}

	v, ok := number.MulDiv(value, number.Pow10(q.Decimals), q.Price)
	if !ok || !v.IsUint64() {
		return 0, core.ErrArithmeticOverflow
	}

	return v.Uint64(), nil
}
