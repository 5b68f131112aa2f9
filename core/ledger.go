package core

import (
	"context"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Transactor runs fn inside one storage transaction, rolling back if fn fails
type Transactor interface {
	Tx(fn func(tx *db.DB) error) error
}

// LedgerRequest input of deposit, withdraw, borrow and repay
type LedgerRequest struct {
	// optional, generated when empty
	TraceID string `json:"trace_id,omitempty"`
	UserID  string `json:"user_id"`
	AssetID string `json:"asset_id"`
	Amount  uint64 `json:"amount"`
}

// LiquidateRequest input of liquidate
type LiquidateRequest struct {
	TraceID           string `json:"trace_id,omitempty"`
	LiquidatorID      string `json:"liquidator_id"`
	UserID            string `json:"user_id"`
	CollateralAssetID string `json:"collateral_asset_id"`
	BorrowedAssetID   string `json:"borrowed_asset_id"`
}

// HealthFactor health of a position measured with one pool's liquidation threshold
type HealthFactor struct {
	Kind      AssetKind       `json:"kind"`
	Threshold decimal.Decimal `json:"threshold"`
	// zero when Infinite
	Factor   decimal.Decimal `json:"factor"`
	Infinite bool            `json:"infinite"`
	Healthy  bool            `json:"healthy"`
}

// HealthReport valuation of a position at current oracle prices
type HealthReport struct {
	UserID          string          `json:"user_id"`
	CollateralValue decimal.Decimal `json:"collateral_value"`
	DebtValue       decimal.Decimal `json:"debt_value"`
	Factors         []*HealthFactor `json:"factors"`
}

// ILedgerService the five atomic ledger operations plus health evaluation
type ILedgerService interface {
	Deposit(ctx context.Context, req *LedgerRequest) (*Transaction, error)
	Withdraw(ctx context.Context, req *LedgerRequest) (*Transaction, error)
	Borrow(ctx context.Context, req *LedgerRequest) (*Transaction, error)
	Repay(ctx context.Context, req *LedgerRequest) (*Transaction, error)
	Liquidate(ctx context.Context, req *LiquidateRequest) (*Transaction, error)
	Health(ctx context.Context, userID string) (*HealthReport, error)
}
