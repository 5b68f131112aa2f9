package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
)

const treasuryPrefix = "treasury:"

// TreasuryAccount account id of the pool holding assetID
func TreasuryAccount(assetID string) string {
	return treasuryPrefix + assetID
}

// Balance an account's holdings of one asset in minor units
type Balance struct {
	AccountID string    `sql:"size:80;PRIMARY_KEY" json:"account_id"`
	AssetID   string    `sql:"size:64;PRIMARY_KEY" json:"asset_id"`
	Amount    uint64    `json:"amount"`
	Version   int64     `sql:"default:0" json:"version"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IBalanceStore balance store interface
type IBalanceStore interface {
	// Find returns a zero balance (Version 0, CreatedAt zero) if none exists
	Find(ctx context.Context, tx *db.DB, accountID, assetID string) (*Balance, error)
	Save(ctx context.Context, tx *db.DB, balance *Balance) error
}

// Transfer moves Amount of AssetID between two accounts
type Transfer struct {
	TraceID  string `json:"trace_id"`
	From     string `json:"from"`
	To       string `json:"to"`
	AssetID  string `json:"asset_id"`
	Amount   uint64 `json:"amount"`
	Decimals uint8  `json:"decimals"`
}

// ITransferService asset transfer interface
type ITransferService interface {
	Transfer(ctx context.Context, tx *db.DB, transfer *Transfer) error
	Credit(ctx context.Context, tx *db.DB, accountID, assetID string, amount uint64) error
}
