package ledger

import (
	"context"

	"github.com/fox-one/pkg/logger"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"github.com/nidhish-srivastava/defi-lending-protocol/pkg/lending"
)

// Borrow mints debt shares and pays amount out of the pool treasury, up to the
// position's borrowable amount under the pool's liquidation threshold.
func (s *ledgerService) Borrow(ctx context.Context, req *core.LedgerRequest) (*core.Transaction, error) {
	ctx, traceID := begin(ctx, core.ActionTypeBorrow, req.TraceID, req.UserID)
	log := logger.FromContext(ctx)

	if req.Amount == 0 {
		return nil, core.ErrInvalidAmount
	}

	if t, ok, err := s.replay(ctx, traceID, sameRequest(core.ActionTypeBorrow, req)); err != nil || ok {
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

	v, quotes, err := s.valuate(ctx, a, kind)
	if err != nil {
		return nil, err
	}

	threshold, err := toWad(pool.LiquidationThreshold)
	if err != nil {
		return nil, err
	}

	borrowable, err := v.Borrowable(threshold, quotes[kind])
	if err != nil {
		return nil, err
	}

	if req.Amount > borrowable {
		log.Infof("borrow %d over borrowable %d", req.Amount, borrowable)
		return nil, core.ErrOverBorrowableAmount
	}

	shares, err := lending.Borrow(pool, a.position.Leg(kind), req.Amount)
	if err != nil {
		log.WithError(err).Infoln("lending.Borrow")
		return nil, err
	}

	a.dirty[kind] = true

	transfers := []*core.Transfer{
		a.transfer(pool, "borrow", pool.TreasuryAccount(), req.UserID, req.Amount),
	}

	extra := core.NewTransactionExtra()
	extra.Put(core.TransactionKeyShares, shares)
	extra.Put(core.TransactionKeyBorrowable, borrowable)
	t := a.transaction(core.ActionTypeBorrow, req.UserID, req.AssetID, req.Amount, extra, transfers)

	if err := s.commit(ctx, a, t, transfers); err != nil {
		return nil, err
	}

	return t, nil
}
