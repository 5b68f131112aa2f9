package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
)

// Leg a position's holdings in one asset
type Leg struct {
	DepositedAmount uint64 `json:"deposited_amount"`
	DepositedShares uint64 `json:"deposited_shares"`
	BorrowedAmount  uint64 `json:"borrowed_amount"`
	BorrowedShares  uint64 `json:"borrowed_shares"`
}

// IsZero no deposit and no debt
func (l Leg) IsZero() bool {
	return l == Leg{}
}

// Position one user's holdings across both assets
type Position struct {
	ID     uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID string `sql:"size:36;unique_index:position_user_idx" json:"user_id"`
	SOL    Leg    `gorm:"embedded;embedded_prefix:sol_" json:"sol"`
	USDC   Leg    `gorm:"embedded;embedded_prefix:usdc_" json:"usdc"`
	// unix seconds of the last interest accrual
	LastUpdated int64     `json:"last_updated"`
	Version     int64     `sql:"default:0" json:"version"`
	CreatedAt   time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Leg return the leg for kind
func (p *Position) Leg(kind AssetKind) *Leg {
	switch kind {
	case AssetSOL:
		return &p.SOL
	case AssetUSDC:
		return &p.USDC
	default:
		panic("core: unknown asset kind " + kind.String())
	}
}

// HasDebt any borrowed leg
func (p *Position) HasDebt() bool {
	for _, kind := range AssetKinds {
		if p.Leg(kind).BorrowedAmount > 0 {
			return true
		}
	}

	return false
}

// IPositionStore position store interface
type IPositionStore interface {
	Create(ctx context.Context, tx *db.DB, position *Position) error
	// Find returns an empty position (ID == 0) if the user has none
	Find(ctx context.Context, userID string) (*Position, error)
	Update(ctx context.Context, tx *db.DB, position *Position) error
	List(ctx context.Context, fromID uint64, limit int) ([]*Position, error)
}
