package ledger

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	foxuuid "github.com/fox-one/pkg/uuid"
	"github.com/holiman/uint256"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"github.com/nidhish-srivastava/defi-lending-protocol/pkg/id"
	"github.com/nidhish-srivastava/defi-lending-protocol/pkg/lending"
	"github.com/nidhish-srivastava/defi-lending-protocol/pkg/number"
	"github.com/shopspring/decimal"
)

type ledgerService struct {
	transactor       core.Transactor
	poolStore        core.IPoolStore
	positionStore    core.IPositionStore
	transactionStore core.ITransactionStore
	oracleService    core.IPriceOracleService
	transferService  core.ITransferService
	clock            clock.Clock
	locks            *keyedMutex
}

// New new ledger service
func New(
	transactor core.Transactor,
	poolStore core.IPoolStore,
	positionStore core.IPositionStore,
	transactionStore core.ITransactionStore,
	oracleService core.IPriceOracleService,
	transferService core.ITransferService,
	clk clock.Clock,
) core.ILedgerService {
	return &ledgerService{
		transactor:       transactor,
		poolStore:        poolStore,
		positionStore:    positionStore,
		transactionStore: transactionStore,
		oracleService:    oracleService,
		transferService:  transferService,
		clock:            clk,
		locks:            newKeyedMutex(),
	}
}

// arena working copies of the records one operation reads and writes
type arena struct {
	traceID  string
	now      int64
	pools    map[core.AssetKind]*core.Pool
	dirty    map[core.AssetKind]bool
	position *core.Position
	prices   map[string]decimal.Decimal
}

func poolKey(kind core.AssetKind) string {
	return "pool:" + kind.String()
}

func userKey(userID string) string {
	return "user:" + userID
}

// begin attach a trace id and a scoped logger to ctx
func begin(ctx context.Context, action core.ActionType, traceID, userID string) (context.Context, string) {
	if traceID == "" {
		traceID = id.GenTraceID()
	}

	log := logger.FromContext(ctx).WithFields(map[string]interface{}{
		"action": action.String(),
		"trace":  traceID,
		"user":   userID,
	})

	return logger.WithContext(ctx, log), traceID
}

// replay returns the committed transaction of traceID, if any.
// A committed transaction that does not describe the same request is a trace conflict.
func (s *ledgerService) replay(ctx context.Context, traceID string, matches func(t *core.Transaction) bool) (*core.Transaction, bool, error) {
	log := logger.FromContext(ctx)

	t, err := s.transactionStore.FindByTraceID(ctx, traceID)
	if err != nil {
		log.WithError(err).Errorln("transactions.FindByTraceID")
		return nil, false, err
	}

	if t.ID == 0 {
		return nil, false, nil
	}

	if !matches(t) {
		log.Infof("trace already used by %s of %s", t.Action, t.UserID)
		return nil, false, core.ErrTraceConflict
	}

	return t, true, nil
}

// sameRequest matches a transaction committed by action for req
func sameRequest(action core.ActionType, req *core.LedgerRequest) func(t *core.Transaction) bool {
	return func(t *core.Transaction) bool {
		return t.Action == action &&
			t.UserID == req.UserID &&
			t.AssetID == req.AssetID &&
			t.Amount == req.Amount
	}
}

func (s *ledgerService) kindOf(ctx context.Context, assetID string) (core.AssetKind, error) {
	pool, err := s.poolStore.FindByAssetID(ctx, assetID)
	if err != nil {
		return 0, err
	}

	if !pool.Kind.Valid() {
		logger.FromContext(ctx).Errorf("pool %s has unknown kind %s", pool.AssetID, pool.Kind)
		return 0, core.ErrPoolNotFound
	}

	return pool.Kind, nil
}

// load reads every pool and the user's position; call with the locks held
func (s *ledgerService) load(ctx context.Context, traceID, userID string) (*arena, error) {
	log := logger.FromContext(ctx)

	pools, err := s.poolStore.All(ctx)
	if err != nil {
		log.WithError(err).Errorln("pools.All")
		return nil, err
	}

	position, err := s.positionStore.Find(ctx, userID)
	if err != nil {
		log.WithError(err).Errorln("positions.Find")
		return nil, err
	}

	a := &arena{
		traceID:  traceID,
		now:      s.clock.Now().Unix(),
		pools:    make(map[core.AssetKind]*core.Pool, len(pools)),
		dirty:    make(map[core.AssetKind]bool),
		position: position,
		prices:   make(map[string]decimal.Decimal),
	}

	for _, pool := range pools {
		if pool.Kind.Valid() {
			a.pools[pool.Kind] = pool
		}
	}

	return a, nil
}

func (a *arena) pool(kind core.AssetKind) (*core.Pool, error) {
	pool, ok := a.pools[kind]
	if !ok {
		return nil, core.ErrPoolNotFound
	}

	return pool, nil
}

// elapsed seconds since the position last accrued
func (a *arena) elapsed() int64 {
	if a.position.LastUpdated == 0 {
		return 0
	}

	return a.now - a.position.LastUpdated
}

// quotes prices every leg holding something, plus extra
func (s *ledgerService) quotes(ctx context.Context, a *arena, extra ...core.AssetKind) (map[core.AssetKind]lending.Quote, error) {
	quotes := make(map[core.AssetKind]lending.Quote, len(core.AssetKinds))

	for _, kind := range core.AssetKinds {
		needed := !a.position.Leg(kind).IsZero()
		for _, k := range extra {
			needed = needed || k == kind
		}

		if !needed {
			continue
		}

		pool, err := a.pool(kind)
		if err != nil {
			return nil, err
		}

		price, err := s.oracleService.GetPrice(ctx, pool.AssetID, pool.PriceMaxAge())
		if err != nil {
			logger.FromContext(ctx).WithError(err).Infoln("oracle.GetPrice", pool.Symbol)
			return nil, err
		}

		q, err := lending.NewQuote(price.Value, pool.Decimals)
		if err != nil {
			return nil, err
		}

		quotes[kind] = q
		a.prices[pool.Symbol] = price.Value
	}

	return quotes, nil
}

func (s *ledgerService) valuate(ctx context.Context, a *arena, extra ...core.AssetKind) (*lending.Valuation, map[core.AssetKind]lending.Quote, error) {
	quotes, err := s.quotes(ctx, a, extra...)
	if err != nil {
		return nil, nil, err
	}

	v, err := lending.Valuate(a.position, a.pools, quotes, a.elapsed())
	if err != nil {
		return nil, nil, err
	}

	return v, quotes, nil
}

func toWad(d decimal.Decimal) (*uint256.Int, error) {
	v, ok := number.ToWad(d)
	if !ok {
		return nil, core.ErrArithmeticOverflow
	}

	return v, nil
}

func (a *arena) transfer(pool *core.Pool, modifier, from, to string, amount uint64) *core.Transfer {
	return &core.Transfer{
		TraceID:  foxuuid.Modify(a.traceID, modifier),
		From:     from,
		To:       to,
		AssetID:  pool.AssetID,
		Amount:   amount,
		Decimals: pool.Decimals,
	}
}

func (a *arena) transaction(action core.ActionType, userID, assetID string, amount uint64, extra core.TransactionExtraData, transfers []*core.Transfer) *core.Transaction {
	t := &core.Transaction{
		TraceID: a.traceID,
		Action:  action,
		UserID:  userID,
		AssetID: assetID,
		Amount:  amount,
	}

	for _, transfer := range transfers {
		t.Accounts = append(t.Accounts, transfer.From, transfer.To)
	}

	if len(a.prices) > 0 {
		extra.Put(core.TransactionKeyPrices, a.prices)
	}

	t.SetExtraData(extra)
	return t
}

// commit stores the arena, the audit record and then runs the transfers, all in one transaction
func (s *ledgerService) commit(ctx context.Context, a *arena, t *core.Transaction, transfers []*core.Transfer) error {
	log := logger.FromContext(ctx)

	return s.transactor.Tx(func(tx *db.DB) error {
		snapshot := &core.ContextSnapshot{Position: a.position}

		for _, kind := range core.AssetKinds {
			if !a.dirty[kind] {
				continue
			}

			pool := a.pools[kind]
			if err := s.poolStore.Update(ctx, tx, pool); err != nil {
				log.WithError(err).Errorln("pools.Update", pool.Symbol)
				return err
			}

			snapshot.Pools = append(snapshot.Pools, pool)
		}

		if a.position.ID == 0 {
			if err := s.positionStore.Create(ctx, tx, a.position); err != nil {
				log.WithError(err).Errorln("positions.Create")
				return err
			}
		} else if err := s.positionStore.Update(ctx, tx, a.position); err != nil {
			log.WithError(err).Errorln("positions.Update")
			return err
		}

		t.SetContextSnapshot(snapshot)
		if err := s.transactionStore.Create(ctx, tx, t); err != nil {
			log.WithError(err).Errorln("transactions.Create")
			return err
		}

		for _, transfer := range transfers {
			if err := s.transferService.Transfer(ctx, tx, transfer); err != nil {
				log.WithError(err).Infoln("transfers.Transfer", transfer.From, transfer.To)
				return err
			}
		}

		return nil
	})
}
