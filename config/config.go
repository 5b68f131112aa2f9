package config

import (
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Config lending ledger config
type Config struct {
	DB     db.Config `json:"db"`
	Oracle Oracle    `json:"oracle"`
	Pools  []Pool    `json:"pools"`
	Admins []string  `json:"admins"`
}

// Oracle price feed config
type Oracle struct {
	EndPoint string `json:"end_point"`
	// seconds between two pulls
	Interval int64 `json:"interval"`
	// seconds, fallback for pools without max_price_age
	MaxAge int64 `json:"max_age"`
	// seconds, gcache expiration of latest prices
	CacheTTL int64 `json:"cache_ttl"`
}

// PullInterval interval of the price worker
func (o Oracle) PullInterval() time.Duration {
	return time.Duration(o.Interval) * time.Second
}

// CacheExpiration expiration of cached prices
func (o Oracle) CacheExpiration() time.Duration {
	return time.Duration(o.CacheTTL) * time.Second
}

// Pool initial pool definition
type Pool struct {
	Kind                   string          `json:"kind"`
	AssetID                string          `json:"asset_id"`
	Decimals               uint8           `json:"decimals"`
	LiquidationThreshold   decimal.Decimal `json:"liquidation_threshold"`
	LiquidationCloseFactor decimal.Decimal `json:"liquidation_close_factor"`
	LiquidationBonus       decimal.Decimal `json:"liquidation_bonus"`
	InterestRate           decimal.Decimal `json:"interest_rate"`
	MaxPriceAge            int64           `json:"max_price_age"`
}

// IsAdmin check if the user is admin
func (c *Config) IsAdmin(userID string) bool {
	for _, a := range c.Admins {
		if a == userID {
			return true
		}
	}

	return false
}

func defaultOracle(cfg *Config) {
	if cfg.Oracle.Interval <= 0 {
		cfg.Oracle.Interval = 10
	}

	if cfg.Oracle.MaxAge <= 0 {
		cfg.Oracle.MaxAge = 100
	}

	if cfg.Oracle.CacheTTL <= 0 {
		cfg.Oracle.CacheTTL = 2
	}

	for idx := range cfg.Pools {
		if cfg.Pools[idx].MaxPriceAge <= 0 {
			cfg.Pools[idx].MaxPriceAge = cfg.Oracle.MaxAge
		}
	}
}
