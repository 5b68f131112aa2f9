package balance

import (
	"context"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
)

type balanceStore struct {
	db *db.DB
}

// New new balance store
func New(db *db.DB) core.IBalanceStore {
	return &balanceStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Balance{})
		if err := tx.AutoMigrate(core.Balance{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *balanceStore) Find(ctx context.Context, tx *db.DB, accountID, assetID string) (*core.Balance, error) {
	var balance core.Balance
	if err := tx.Update().Where("account_id=? and asset_id=?", accountID, assetID).First(&balance).Error; err != nil {
		if store.IsErrNotFound(err) {
			return &core.Balance{AccountID: accountID, AssetID: assetID}, nil
		}

		return nil, err
	}

	return &balance, nil
}

// Save creates the balance on first write, then updates it under its version
func (s *balanceStore) Save(ctx context.Context, tx *db.DB, balance *core.Balance) error {
	if balance.CreatedAt.IsZero() {
		balance.Version = 1
		return tx.Update().Create(balance).Error
	}

	version := balance.Version
	r := tx.Update().Model(core.Balance{}).
		Where("account_id=? and asset_id=? and version=?", balance.AccountID, balance.AssetID, version).
		Updates(map[string]interface{}{
			"amount":  balance.Amount,
			"version": version + 1,
		})
	if r.Error != nil {
		return r.Error
	}

	if r.RowsAffected == 0 {
		return core.ErrVersionConflict
	}

	balance.Version = version + 1
	return nil
}
