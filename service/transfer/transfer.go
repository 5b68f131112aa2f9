package transfer

import (
	"context"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"github.com/nidhish-srivastava/defi-lending-protocol/pkg/lending"
)

type transferService struct {
	poolStore    core.IPoolStore
	balanceStore core.IBalanceStore
}

// New new transfer service moving balances inside the caller's transaction
func New(poolStore core.IPoolStore, balanceStore core.IBalanceStore) core.ITransferService {
	return &transferService{
		poolStore:    poolStore,
		balanceStore: balanceStore,
	}
}

func (s *transferService) Transfer(ctx context.Context, tx *db.DB, transfer *core.Transfer) error {
	log := logger.FromContext(ctx).WithField("trace", transfer.TraceID)

	if transfer.Amount == 0 {
		return core.ErrInvalidAmount
	}

	pool, err := s.poolStore.FindByAssetID(ctx, transfer.AssetID)
	if err != nil {
		log.WithError(err).Errorln("pools.FindByAssetID", transfer.AssetID)
		return err
	}

	if pool.Decimals != transfer.Decimals {
		return core.ErrDecimalsMismatch
	}

	from, err := s.balanceStore.Find(ctx, tx, transfer.From, transfer.AssetID)
	if err != nil {
		log.WithError(err).Errorln("balances.Find", transfer.From)
		return err
	}

	if from.Amount < transfer.Amount {
		return core.ErrInsufficientBalance
	}

	from.Amount -= transfer.Amount
	if err := s.balanceStore.Save(ctx, tx, from); err != nil {
		log.WithError(err).Errorln("balances.Save", transfer.From)
		return err
	}

	return s.credit(ctx, tx, transfer.To, transfer.AssetID, transfer.Amount)
}

// Credit mint amount into accountID out of thin air, used by the faucet
func (s *transferService) Credit(ctx context.Context, tx *db.DB, accountID, assetID string, amount uint64) error {
	if amount == 0 {
		return core.ErrInvalidAmount
	}

	if _, err := s.poolStore.FindByAssetID(ctx, assetID); err != nil {
		return err
	}

	return s.credit(ctx, tx, accountID, assetID, amount)
}

func (s *transferService) credit(ctx context.Context, tx *db.DB, accountID, assetID string, amount uint64) error {
	log := logger.FromContext(ctx)

	to, err := s.balanceStore.Find(ctx, tx, accountID, assetID)
	if err != nil {
		log.WithError(err).Errorln("balances.Find", accountID)
		return err
	}

	if to.Amount, err = lending.Add(to.Amount, amount); err != nil {
		return err
	}

	if err := s.balanceStore.Save(ctx, tx, to); err != nil {
		log.WithError(err).Errorln("balances.Save", accountID)
		return err
	}

	return nil
}
