package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
)

// memory in-memory records shared by the fake stores. Tx serializes transactions and
// restores the previous state when fn fails.
type memory struct {
	txMu sync.Mutex
	mu   sync.Mutex

	pools        map[core.AssetKind]core.Pool
	positions    map[string]core.Position
	balances     map[string]core.Balance
	transactions []core.Transaction
	prices       map[string]core.Price
	seq          uint64
}

func newMemory() *memory {
	return &memory{
		pools:     map[core.AssetKind]core.Pool{},
		positions: map[string]core.Position{},
		balances:  map[string]core.Balance{},
		prices:    map[string]core.Price{},
	}
}

type memorySnapshot struct {
	pools        map[core.AssetKind]core.Pool
	positions    map[string]core.Position
	balances     map[string]core.Balance
	transactions []core.Transaction
}

func (m *memory) Tx(fn func(tx *db.DB) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	snapshot := m.snapshot()
	if err := fn(nil); err != nil {
		m.restore(snapshot)
		return err
	}

	return nil
}

func (m *memory) snapshot() memorySnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := memorySnapshot{
		pools:        make(map[core.AssetKind]core.Pool, len(m.pools)),
		positions:    make(map[string]core.Position, len(m.positions)),
		balances:     make(map[string]core.Balance, len(m.balances)),
		transactions: append([]core.Transaction(nil), m.transactions...),
	}

	for k, v := range m.pools {
		s.pools[k] = v
	}

	for k, v := range m.positions {
		s.positions[k] = v
	}

	for k, v := range m.balances {
		s.balances[k] = v
	}

	return s
}

func (m *memory) restore(s memorySnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pools = s.pools
	m.positions = s.positions
	m.balances = s.balances
	m.transactions = s.transactions
}

func (m *memory) nextID() uint64 {
	m.seq++
	return m.seq
}

type poolStore struct{ *memory }

func (s poolStore) Create(ctx context.Context, pool *core.Pool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pool.ID = s.nextID()
	s.pools[pool.Kind] = *pool
	return nil
}

func (s poolStore) Find(ctx context.Context, kind core.AssetKind) (*core.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pool, ok := s.pools[kind]
	if !ok {
		return nil, core.ErrPoolNotFound
	}

	return &pool, nil
}

func (s poolStore) FindByAssetID(ctx context.Context, assetID string) (*core.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, pool := range s.pools {
		if pool.AssetID == assetID {
			pool := pool
			return &pool, nil
		}
	}

	return nil, core.ErrPoolNotFound
}

func (s poolStore) All(ctx context.Context) ([]*core.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pools := make([]*core.Pool, 0, len(s.pools))
	for _, pool := range s.pools {
		pool := pool
		pools = append(pools, &pool)
	}

	sort.Slice(pools, func(i, j int) bool { return pools[i].Kind < pools[j].Kind })
	return pools, nil
}

func (s poolStore) Update(ctx context.Context, tx *db.DB, pool *core.Pool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stored, ok := s.pools[pool.Kind]; !ok || stored.Version != pool.Version {
		return core.ErrVersionConflict
	}

	pool.Version++
	s.pools[pool.Kind] = *pool
	return nil
}

type positionStore struct{ *memory }

func (s positionStore) Create(ctx context.Context, tx *db.DB, position *core.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.positions[position.UserID]; ok {
		return core.ErrVersionConflict
	}

	position.ID = s.nextID()
	s.positions[position.UserID] = *position
	return nil
}

func (s positionStore) Find(ctx context.Context, userID string) (*core.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	position, ok := s.positions[userID]
	if !ok {
		return &core.Position{UserID: userID}, nil
	}

	return &position, nil
}

func (s positionStore) Update(ctx context.Context, tx *db.DB, position *core.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stored, ok := s.positions[position.UserID]; !ok || stored.Version != position.Version {
		return core.ErrVersionConflict
	}

	position.Version++
	s.positions[position.UserID] = *position
	return nil
}

func (s positionStore) List(ctx context.Context, fromID uint64, limit int) ([]*core.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var positions []*core.Position
	for _, position := range s.positions {
		if position.ID > fromID {
			position := position
			positions = append(positions, &position)
		}
	}

	sort.Slice(positions, func(i, j int) bool { return positions[i].ID < positions[j].ID })
	if limit > 0 && len(positions) > limit {
		positions = positions[:limit]
	}

	return positions, nil
}

type transactionStore struct{ *memory }

func (s transactionStore) Create(ctx context.Context, tx *db.DB, transaction *core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.transactions {
		if t.TraceID == transaction.TraceID {
			return core.ErrVersionConflict
		}
	}

	transaction.ID = int64(s.nextID())
	s.transactions = append(s.transactions, *transaction)
	return nil
}

func (s transactionStore) FindByTraceID(ctx context.Context, traceID string) (*core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.transactions {
		if t.TraceID == traceID {
			t := t
			return &t, nil
		}
	}

	return &core.Transaction{}, nil
}

func (s transactionStore) List(ctx context.Context, userID string, fromID int64, limit int) ([]*core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var transactions []*core.Transaction
	for _, t := range s.transactions {
		if t.ID > fromID && (userID == "" || t.UserID == userID) {
			t := t
			transactions = append(transactions, &t)
		}
	}

	return transactions, nil
}

type balanceStore struct{ *memory }

func balanceKey(accountID, assetID string) string {
	return accountID + "|" + assetID
}

func (s balanceStore) Find(ctx context.Context, tx *db.DB, accountID, assetID string) (*core.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance, ok := s.balances[balanceKey(accountID, assetID)]
	if !ok {
		return &core.Balance{AccountID: accountID, AssetID: assetID}, nil
	}

	return &balance, nil
}

func (s balanceStore) Save(ctx context.Context, tx *db.DB, balance *core.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := balanceKey(balance.AccountID, balance.AssetID)
	stored, ok := s.balances[key]

	switch {
	case balance.CreatedAt.IsZero():
		if ok {
			return core.ErrVersionConflict
		}

		balance.CreatedAt = time.Now()
		balance.Version = 1
	case !ok || stored.Version != balance.Version:
		return core.ErrVersionConflict
	default:
		balance.Version++
	}

	s.balances[key] = *balance
	return nil
}

type priceStore struct{ *memory }

func (s priceStore) Create(ctx context.Context, tx *db.DB, price *core.Price) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prices[price.AssetID] = *price
	return nil
}

func (s priceStore) Latest(ctx context.Context, assetID string) (*core.Price, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	price, ok := s.prices[assetID]
	if !ok {
		return nil, nil
	}

	return &price, nil
}
