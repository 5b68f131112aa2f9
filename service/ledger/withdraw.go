package ledger

import (
	"context"

	"github.com/fox-one/pkg/logger"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"github.com/nidhish-srivastava/defi-lending-protocol/pkg/lending"
	"github.com/nidhish-srivastava/defi-lending-protocol/pkg/number"
)

// Withdraw burns deposit shares and pays amount out of the pool treasury,
// as long as the position stays healthy under the pool's liquidation threshold.
func (s *ledgerService) Withdraw(ctx context.Context, req *core.LedgerRequest) (*core.Transaction, error) {
	ctx, traceID := begin(ctx, core.ActionTypeWithdraw, req.TraceID, req.UserID)
	log := logger.FromContext(ctx)

	if req.Amount == 0 {
		return nil, core.ErrInvalidAmount
	}

	if t, ok, err := s.replay(ctx, traceID, sameRequest(core.ActionTypeWithdraw, req)); err != nil || ok {
		return t, err
	}

	kind, err := s.kindOf(ctx, req.AssetID)
	if err != nil {
		return nil, err
	}

	defer s.locks.Lock(poolKey(kind), userKey(req.UserID))()

	a, err := s.load(ctx, traceID, req.UserID)
	if err != nil {
		return nil, err
	}

	if a.position.ID == 0 {
		return nil, core.ErrPositionNotFound
	}

	pool, err := a.pool(kind)
	if err != nil {
		return nil, err
	}

	if req.Amount > a.position.Leg(kind).DepositedAmount {
		return nil, core.ErrInsufficientCollateral
	}

	if pool.TotalDeposits == 0 {
		return nil, core.ErrEmptyPool
	}

	shares, err := lending.Redeem(pool, a.position.Leg(kind), req.Amount)
	if err != nil {
		log.WithError(err).Infoln("lending.Redeem")
		return nil, err
	}

	a.dirty[kind] = true

	extra := core.NewTransactionExtra()
	extra.Put(core.TransactionKeyShares, shares)

	if a.position.HasDebt() {
		v, _, err := s.valuate(ctx, a)
		if err != nil {
			return nil, err
		}

		threshold, err := toWad(pool.LiquidationThreshold)
		if err != nil {
			return nil, err
		}

		healthy, err := v.Healthy(threshold)
		if err != nil {
			return nil, err
		}

		if !healthy {
			return nil, core.ErrInsufficientCollateral
		}

		if factor, finite, err := v.HealthFactor(threshold); err == nil && finite {
			extra.Put(core.TransactionKeyHealth, number.FromWad(factor))
		}
	}

	transfers := []*core.Transfer{
		a.transfer(pool, "withdraw", pool.TreasuryAccount(), req.UserID, req.Amount),
	}

	t := a.transaction(core.ActionTypeWithdraw, req.UserID, req.AssetID, req.Amount, extra, transfers)
	if err := s.commit(ctx, a, t, transfers); err != nil {
		return nil, err
	}

	return t, nil
}
