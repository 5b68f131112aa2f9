package position

import (
	"context"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
)

type positionStore struct {
	db *db.DB
}

// New new position store
func New(db *db.DB) core.IPositionStore {
	return &positionStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Position{})
		if err := tx.AutoMigrate(core.Position{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *positionStore) Create(ctx context.Context, tx *db.DB, position *core.Position) error {
	return tx.Update().Create(position).Error
}

func (s *positionStore) Find(ctx context.Context, userID string) (*core.Position, error) {
	var position core.Position
	if err := s.db.View().Where("user_id=?", userID).First(&position).Error; err != nil {
		if store.IsErrNotFound(err) {
			return &core.Position{UserID: userID}, nil
		}

		return nil, err
	}

	return &position, nil
}

func (s *positionStore) Update(ctx context.Context, tx *db.DB, position *core.Position) error {
	version := position.Version
	values := map[string]interface{}{
		"last_updated": position.LastUpdated,
		"version":      version + 1,
	}

	for prefix, leg := range map[string]core.Leg{"sol_": position.SOL, "usdc_": position.USDC} {
		values[prefix+"deposited_amount"] = leg.DepositedAmount
		values[prefix+"deposited_shares"] = leg.DepositedShares
		values[prefix+"borrowed_amount"] = leg.BorrowedAmount
		values[prefix+"borrowed_shares"] = leg.BorrowedShares
	}

	r := tx.Update().Model(core.Position{}).Where("user_id=? and version=?", position.UserID, version).Updates(values)
	if r.Error != nil {
		return r.Error
	}

	if r.RowsAffected == 0 {
		return core.ErrVersionConflict
	}

	position.Version = version + 1
	return nil
}

func (s *positionStore) List(ctx context.Context, fromID uint64, limit int) ([]*core.Position, error) {
	if limit <= 0 {
		limit = 500
	}

	var positions []*core.Position
	if err := s.db.View().Where("id > ?", fromID).Order("id ASC").Limit(limit).Find(&positions).Error; err != nil {
		return nil, err
	}

	return positions, nil
}
