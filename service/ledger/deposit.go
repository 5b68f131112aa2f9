package ledger

import (
	"context"

	"github.com/fox-one/pkg/logger"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"github.com/nidhish-srivastava/defi-lending-protocol/pkg/lending"
)

// Deposit moves amount from the user into the pool treasury and mints deposit shares
func (s *ledgerService) Deposit(ctx context.Context, req *core.LedgerRequest) (*core.Transaction, error) {
	ctx, traceID := begin(ctx, core.ActionTypeDeposit, req.TraceID, req.UserID)
	log := logger.FromContext(ctx)

	if req.Amount == 0 {
		return nil, core.ErrInvalidAmount
	}

	if t, ok, err := s.replay(ctx, traceID, sameRequest(core.ActionTypeDeposit, req)); err != nil || ok {
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

	pool, err := a.pool(kind)
	if err != nil {
		return nil, err
	}

	shares, err := lending.Supply(pool, a.position.Leg(kind), req.Amount)
	if err != nil {
		log.WithError(err).Infoln("lending.Supply")
		return nil, err
	}

	a.dirty[kind] = true
	a.position.LastUpdated = a.now

	transfers := []*core.Transfer{
		a.transfer(pool, "deposit", req.UserID, pool.TreasuryAccount(), req.Amount),
	}

	extra := core.NewTransactionExtra()
	extra.Put(core.TransactionKeyShares, shares)
	t := a.transaction(core.ActionTypeDeposit, req.UserID, req.AssetID, req.Amount, extra, transfers)

	if err := s.commit(ctx, a, t, transfers); err != nil {
		return nil, err
	}

	return t, nil
}
