package pool

import (
	"context"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
)

type poolStore struct {
	db *db.DB
}

// New new pool store
func New(db *db.DB) core.IPoolStore {
	return &poolStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Pool{})
		if err := tx.AutoMigrate(core.Pool{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *poolStore) Create(ctx context.Context, pool *core.Pool) error {
	return s.db.Update().Where("kind=?", pool.Kind).FirstOrCreate(pool).Error
}

func (s *poolStore) Find(ctx context.Context, kind core.AssetKind) (*core.Pool, error) {
	var pool core.Pool
	if err := s.db.View().Where("kind=?", kind).First(&pool).Error; err != nil {
		if store.IsErrNotFound(err) {
			return nil, core.ErrPoolNotFound
		}

		return nil, err
	}

	return &pool, nil
}

func (s *poolStore) FindByAssetID(ctx context.Context, assetID string) (*core.Pool, error) {
	var pool core.Pool
	if err := s.db.View().Where("asset_id=?", assetID).First(&pool).Error; err != nil {
		if store.IsErrNotFound(err) {
			return nil, core.ErrPoolNotFound
		}

		return nil, err
	}

	return &pool, nil
}

func (s *poolStore) All(ctx context.Context) ([]*core.Pool, error) {
	var pools []*core.Pool
	if err := s.db.View().Order("kind ASC").Find(&pools).Error; err != nil {
		return nil, err
	}

	return pools, nil
}

// Update writes totals and risk parameters if the stored version still matches
func (s *poolStore) Update(ctx context.Context, tx *db.DB, pool *core.Pool) error {
	version := pool.Version
	// map updates so zeroed totals are written too
	r := tx.Update().Model(core.Pool{}).Where("kind=? and version=?", pool.Kind, version).Updates(map[string]interface{}{
		"total_deposits":           pool.TotalDeposits,
		"total_deposit_shares":     pool.TotalDepositShares,
		"total_borrowed":           pool.TotalBorrowed,
		"total_borrowed_shares":    pool.TotalBorrowedShares,
		"liquidation_threshold":    pool.LiquidationThreshold,
		"liquidation_close_factor": pool.LiquidationCloseFactor,
		"liquidation_bonus":        pool.LiquidationBonus,
		"interest_rate":            pool.InterestRate,
		"max_price_age":            pool.MaxPriceAge,
		"version":                  version + 1,
	})
	if r.Error != nil {
		return r.Error
	}

	if r.RowsAffected == 0 {
		return core.ErrVersionConflict
	}

	pool.Version = version + 1
	return nil
}
