package ledger

import (
	"context"

	"github.com/fox-one/pkg/logger"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"github.com/nidhish-srivastava/defi-lending-protocol/pkg/lending"
	"github.com/nidhish-srivastava/defi-lending-protocol/pkg/number"
)

// Liquidate lets the liquidator repay part of an unhealthy position's debt in the borrowed
// asset and seize collateral worth the repaid value plus the collateral pool's bonus.
func (s *ledgerService) Liquidate(ctx context.Context, req *core.LiquidateRequest) (*core.Transaction, error) {
	ctx, traceID := begin(ctx, core.ActionTypeLiquidate, req.TraceID, req.UserID)
	log := logger.FromContext(ctx).WithField("liquidator", req.LiquidatorID)
	ctx = logger.WithContext(ctx, log)

	if t, ok, err := s.replay(ctx, traceID, sameLiquidation(req)); err != nil || ok {
		return t, err
	}

	collateralKind, err := s.kindOf(ctx, req.CollateralAssetID)
	if err != nil {
		return nil, err
	}

	borrowedKind, err := s.kindOf(ctx, req.BorrowedAssetID)
	if err != nil {
		return nil, err
	}

	defer s.locks.Lock(poolKey(collateralKind), poolKey(borrowedKind), userKey(req.UserID))()

	a, err := s.load(ctx, traceID, req.UserID)
	if err != nil {
		return nil, err
	}

	if a.position.ID == 0 {
		return nil, core.ErrPositionNotFound
	}

	collateralPool, err := a.pool(collateralKind)
	if err != nil {
		return nil, err
	}

	borrowedPool, err := a.pool(borrowedKind)
	if err != nil {
		return nil, err
	}

	v, quotes, err := s.valuate(ctx, a, collateralKind, borrowedKind)
	if err != nil {
		return nil, err
	}

	threshold, err := toWad(collateralPool.LiquidationThreshold)
	if err != nil {
		return nil, err
	}

	healthy, err := v.Healthy(threshold)
	if err != nil {
		return nil, err
	}

	if healthy {
		return nil, core.ErrNotUndercollateralized
	}

	closeFactor, err := toWad(collateralPool.LiquidationCloseFactor)
	if err != nil {
		return nil, err
	}

	bonus, err := toWad(collateralPool.LiquidationBonus)
	if err != nil {
		return nil, err
	}

	collateralLeg := a.position.Leg(collateralKind)
	borrowedLeg := a.position.Leg(borrowedKind)

	plan, err := lending.PlanLiquidation(v,
		closeFactor, bonus,
		borrowedLeg.BorrowedAmount, quotes[borrowedKind],
		collateralLeg.DepositedAmount, quotes[collateralKind],
	)
	if err != nil {
		log.WithError(err).Infoln("lending.PlanLiquidation")
		return nil, err
	}

	if _, err := lending.Repay(borrowedPool, borrowedLeg, plan.RepayAmount); err != nil {
		log.WithError(err).Infoln("lending.Repay")
		return nil, err
	}

	if _, err := lending.Redeem(collateralPool, collateralLeg, plan.SeizeAmount); err != nil {
		log.WithError(err).Infoln("lending.Redeem")
		return nil, err
	}

	a.dirty[collateralKind] = true
	a.dirty[borrowedKind] = true

	transfers := []*core.Transfer{
		a.transfer(borrowedPool, "liquidate_repay", req.LiquidatorID, borrowedPool.TreasuryAccount(), plan.RepayAmount),
		a.transfer(collateralPool, "liquidate_seize", collateralPool.TreasuryAccount(), req.LiquidatorID, plan.SeizeAmount),
	}

	extra := core.NewTransactionExtra()
	extra.Put(core.TransactionKeyRepayAmount, plan.RepayAmount)
	extra.Put(core.TransactionKeySeizeAmount, plan.SeizeAmount)
	extra.Put(core.TransactionKeyCollateralAsset, req.CollateralAssetID)
	if factor, finite, err := v.HealthFactor(threshold); err == nil && finite {
		extra.Put(core.TransactionKeyHealth, number.FromWad(factor))
	}

	t := a.transaction(core.ActionTypeLiquidate, req.UserID, req.BorrowedAssetID, plan.RepayAmount, extra, transfers)
	if err := s.commit(ctx, a, t, transfers); err != nil {
		return nil, err
	}

	log.Infof("liquidated: repay %d %s, seize %d %s", plan.RepayAmount, borrowedPool.Symbol, plan.SeizeAmount, collateralPool.Symbol)
	return t, nil
}

// sameLiquidation matches a liquidation committed for req; the liquidator pays the first transfer
func sameLiquidation(req *core.LiquidateRequest) func(t *core.Transaction) bool {
	return func(t *core.Transaction) bool {
		if t.Action != core.ActionTypeLiquidate || t.UserID != req.UserID || t.AssetID != req.BorrowedAssetID {
			return false
		}

		if len(t.Accounts) == 0 || t.Accounts[0] != req.LiquidatorID {
			return false
		}

		var data struct {
			CollateralAssetID string `json:"collateral_asset_id"`
		}

		if err := t.UnmarshalExtraData(&data); err != nil {
			return false
		}

		return data.CollateralAssetID == req.CollateralAssetID
	}
}
