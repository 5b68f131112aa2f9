package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Pool per-asset ledger of deposits and borrows
type Pool struct {
	ID       uint64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	Kind     AssetKind `sql:"unique_index:pool_kind_idx" json:"kind"`
	AssetID  string    `sql:"size:64;unique_index:pool_asset_idx" json:"asset_id"`
	Symbol   string    `sql:"size:20" json:"symbol"`
	Decimals uint8     `json:"decimals"`
	// minor units
	TotalDeposits       uint64 `json:"total_deposits"`
	TotalDepositShares  uint64 `json:"total_deposit_shares"`
	TotalBorrowed       uint64 `json:"total_borrowed"`
	TotalBorrowedShares uint64 `json:"total_borrowed_shares"`
	// fraction of collateral value usable against debt, (0, 1]
	LiquidationThreshold decimal.Decimal `sql:"type:decimal(20,8)" json:"liquidation_threshold"`
	// max fraction of debt repayable by one liquidation, (0, 1]
	LiquidationCloseFactor decimal.Decimal `sql:"type:decimal(20,8)" json:"liquidation_close_factor"`
	// liquidator reward on top of the repaid value, >= 0
	LiquidationBonus decimal.Decimal `sql:"type:decimal(20,8)" json:"liquidation_bonus"`
	// continuous rate per second applied to deposits
	InterestRate decimal.Decimal `sql:"type:decimal(28,18)" json:"interest_rate"`
	// seconds
	MaxPriceAge int64     `json:"max_price_age"`
	Version     int64     `sql:"default:0" json:"version"`
	CreatedAt   time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TreasuryAccount the account holding the pool's assets
func (p *Pool) TreasuryAccount() string {
	return TreasuryAccount(p.AssetID)
}

// PriceMaxAge max age of the oracle price used against this pool
func (p *Pool) PriceMaxAge() time.Duration {
	return time.Duration(p.MaxPriceAge) * time.Second
}

// Validate check risk parameters
func (p *Pool) Validate() error {
	if !p.Kind.Valid() || p.AssetID == "" {
		return ErrPoolNotFound
	}

	one := decimal.New(1, 0)
	switch {
	case !p.LiquidationThreshold.IsPositive() || p.LiquidationThreshold.GreaterThan(one):
		return ErrInvalidRiskParameter
	case !p.LiquidationCloseFactor.IsPositive() || p.LiquidationCloseFactor.GreaterThan(one):
		return ErrInvalidRiskParameter
	case p.LiquidationBonus.IsNegative():
		return ErrInvalidRiskParameter
	case p.InterestRate.IsNegative():
		return ErrInvalidRiskParameter
	case p.MaxPriceAge <= 0:
		return ErrInvalidRiskParameter
	}

	return nil
}

// IPoolStore pool store interface
type IPoolStore interface {
	Create(ctx context.Context, pool *Pool) error
	Find(ctx context.Context, kind AssetKind) (*Pool, error)
	FindByAssetID(ctx context.Context, assetID string) (*Pool, error)
	All(ctx context.Context) ([]*Pool, error)
	Update(ctx context.Context, tx *db.DB, pool *Pool) error
}
