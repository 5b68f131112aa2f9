package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Price quote of one whole unit of an asset
type Price struct {
	ID          int64           `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id,omitempty"`
	AssetID     string          `sql:"size:64;unique_index:idx_prices" json:"asset_id,omitempty"`
	PublishedAt time.Time       `sql:"unique_index:idx_prices" json:"published_at,omitempty"`
	Value       decimal.Decimal `sql:"type:decimal(24,8)" json:"value,omitempty"`
	Source      string          `sql:"size:64" json:"source,omitempty"`
	CreatedAt   time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at,omitempty"`
}

// PriceTicker price ticker pulled from the oracle endpoint
type PriceTicker struct {
	Provider  string          `json:"provider,omitempty"`
	AssetID   string          `json:"asset_id,omitempty"`
	Symbol    string          `json:"symbol,omitempty"`
	Price     decimal.Decimal `json:"price,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
}

// IPriceStore price store interface
type IPriceStore interface {
	Create(ctx context.Context, tx *db.DB, price *Price) error
	// Latest returns nil without error if the asset has no price yet
	Latest(ctx context.Context, assetID string) (*Price, error)
}

// IPriceOracleService price oracle adapter interface
type IPriceOracleService interface {
	GetPrice(ctx context.Context, assetID string, maxAge time.Duration) (*Price, error)
}

// IPriceTickerService pulls tickers from the upstream feed
type IPriceTickerService interface {
	PullPriceTicker(ctx context.Context, assetID string, t time.Time) (*PriceTicker, error)
}
