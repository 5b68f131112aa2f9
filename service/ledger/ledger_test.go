package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/fox-one/pkg/store/db"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"github.com/nidhish-srivastava/defi-lending-protocol/pkg/number"
	"github.com/nidhish-srivastava/defi-lending-protocol/service/oracle"
	"github.com/nidhish-srivastava/defi-lending-protocol/service/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	solAsset  = "sol"
	usdcAsset = "usdc"

	oneSOL  = 1_000_000_000
	oneUSDC = 1_000_000
)

type env struct {
	ctx       context.Context
	mem       *memory
	clock     *clock.Mock
	ledger    core.ILedgerService
	transfers core.ITransferService
}

func newEnv(t *testing.T) *env {
	mem := newMemory()
	clk := clock.NewMock()
	clk.Add(time.Unix(1_700_000_000, 0).Sub(clk.Now()))

	pools := poolStore{mem}
	for _, pool := range []*core.Pool{
		{Kind: core.AssetSOL, AssetID: solAsset, Symbol: "SOL", Decimals: 9},
		{Kind: core.AssetUSDC, AssetID: usdcAsset, Symbol: "USDC", Decimals: 6},
	} {
		pool.LiquidationThreshold = number.Decimal("0.8")
		pool.LiquidationCloseFactor = number.Decimal("0.5")
		pool.LiquidationBonus = number.Decimal("0.05")
		pool.InterestRate = number.Decimal("0")
		pool.MaxPriceAge = 100
		require.NoError(t, pool.Validate())
		require.NoError(t, pools.Create(context.Background(), pool))
	}

	transfers := transfer.New(pools, balanceStore{mem})
	e := &env{
		ctx:       context.Background(),
		mem:       mem,
		clock:     clk,
		transfers: transfers,
		ledger: New(
			mem,
			pools,
			positionStore{mem},
			transactionStore{mem},
			oracle.New("", priceStore{mem}, clk),
			transfers,
			clk,
		),
	}

	e.setPrice(t, solAsset, "100")
	e.setPrice(t, usdcAsset, "1")
	return e
}

func (e *env) setPrice(t *testing.T, assetID, value string) {
	require.NoError(t, priceStore{e.mem}.Create(e.ctx, nil, &core.Price{
		AssetID:     assetID,
		PublishedAt: e.clock.Now(),
		Value:       number.Decimal(value),
	}))
}

func (e *env) faucet(t *testing.T, userID, assetID string, amount uint64) {
	require.NoError(t, e.mem.Tx(func(tx *db.DB) error {
		return e.transfers.Credit(e.ctx, tx, userID, assetID, amount)
	}))
}

func (e *env) balance(t *testing.T, accountID, assetID string) uint64 {
	b, err := balanceStore{e.mem}.Find(e.ctx, nil, accountID, assetID)
	require.NoError(t, err)
	return b.Amount
}

func (e *env) pool(t *testing.T, kind core.AssetKind) *core.Pool {
	pool, err := poolStore{e.mem}.Find(e.ctx, kind)
	require.NoError(t, err)
	return pool
}

func (e *env) position(t *testing.T, userID string) *core.Position {
	position, err := positionStore{e.mem}.Find(e.ctx, userID)
	require.NoError(t, err)
	return position
}

func (e *env) deposit(t *testing.T, userID, assetID string, amount uint64) {
	e.faucet(t, userID, assetID, amount)
	_, err := e.ledger.Deposit(e.ctx, &core.LedgerRequest{UserID: userID, AssetID: assetID, Amount: amount})
	require.NoError(t, err)
}

// alice 10 SOL collateral against bob's 10000 USDC liquidity
func (e *env) seed(t *testing.T) {
	e.deposit(t, "alice", solAsset, 10*oneSOL)
	e.deposit(t, "bob", usdcAsset, 10_000*oneUSDC)
}

func req(userID, assetID string, amount uint64) *core.LedgerRequest {
	return &core.LedgerRequest{UserID: userID, AssetID: assetID, Amount: amount}
}

func TestDeposit(t *testing.T) {
	e := newEnv(t)
	e.faucet(t, "alice", solAsset, 2000)

	tx, err := e.ledger.Deposit(e.ctx, req("alice", solAsset, 1000))
	require.NoError(t, err)
	assert.NotEmpty(t, tx.TraceID)
	assert.Equal(t, core.ActionTypeDeposit, tx.Action)
	assert.Equal(t, []string{"alice", core.TreasuryAccount(solAsset)}, []string(tx.Accounts))

	pool := e.pool(t, core.AssetSOL)
	assert.EqualValues(t, 1000, pool.TotalDeposits)
	assert.EqualValues(t, 1000, pool.TotalDepositShares)

	_, err = e.ledger.Deposit(e.ctx, req("alice", solAsset, 500))
	require.NoError(t, err)

	pool = e.pool(t, core.AssetSOL)
	assert.EqualValues(t, 1500, pool.TotalDeposits)
	assert.EqualValues(t, 1500, pool.TotalDepositShares)

	position := e.position(t, "alice")
	assert.EqualValues(t, 1500, position.SOL.DepositedAmount)
	assert.EqualValues(t, 1500, position.SOL.DepositedShares)
	assert.True(t, position.USDC.IsZero())
	assert.Equal(t, e.clock.Now().Unix(), position.LastUpdated)

	assert.EqualValues(t, 500, e.balance(t, "alice", solAsset))
	assert.EqualValues(t, 1500, e.balance(t, core.TreasuryAccount(solAsset), solAsset))
}

func TestDepositRejected(t *testing.T) {
	e := newEnv(t)

	_, err := e.ledger.Deposit(e.ctx, req("alice", solAsset, 0))
	assert.Equal(t, core.ErrInvalidAmount, err)

	_, err = e.ledger.Deposit(e.ctx, req("alice", "btc", 1))
	assert.Equal(t, core.ErrPoolNotFound, err)

	// the transfer fails last, everything before it rolls back
	e.faucet(t, "alice", solAsset, 10)
	_, err = e.ledger.Deposit(e.ctx, req("alice", solAsset, 11))
	assert.Equal(t, core.ErrInsufficientBalance, err)

	pool := e.pool(t, core.AssetSOL)
	assert.Zero(t, pool.TotalDeposits)
	assert.Zero(t, pool.TotalDepositShares)
	assert.Zero(t, pool.Version)
	assert.Zero(t, e.position(t, "alice").ID)
	assert.EqualValues(t, 10, e.balance(t, "alice", solAsset))

	txs, err := transactionStore{e.mem}.List(e.ctx, "alice", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestDepositReplay(t *testing.T) {
	e := newEnv(t)
	e.faucet(t, "alice", solAsset, 2000)

	r := req("alice", solAsset, 1000)
	r.TraceID = "a0d2f7c4-0b5e-4bd1-9d0c-3a3c4b0c5c11"

	first, err := e.ledger.Deposit(e.ctx, r)
	require.NoError(t, err)

	second, err := e.ledger.Deposit(e.ctx, r)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.EqualValues(t, 1000, e.pool(t, core.AssetSOL).TotalDeposits)
	assert.EqualValues(t, 1000, e.balance(t, "alice", solAsset))
}

func TestReplayConflict(t *testing.T) {
	e := newEnv(t)
	e.seed(t)
	e.faucet(t, "alice", solAsset, 1)

	const trace = "5b7c2e1a-6f0d-4c3e-8a4b-2d1e9f8c7b60"

	r := req("alice", solAsset, 1)
	r.TraceID = trace
	_, err := e.ledger.Deposit(e.ctx, r)
	require.NoError(t, err)

	cases := map[string]func() (*core.Transaction, error){
		"withdraw": func() (*core.Transaction, error) {
			r := req("alice", solAsset, 5*oneSOL)
			r.TraceID = trace
			return e.ledger.Withdraw(e.ctx, r)
		},
		"other user": func() (*core.Transaction, error) {
			r := req("bob", solAsset, 1)
			r.TraceID = trace
			return e.ledger.Deposit(e.ctx, r)
		},
		"other amount": func() (*core.Transaction, error) {
			r := req("alice", solAsset, 2)
			r.TraceID = trace
			return e.ledger.Deposit(e.ctx, r)
		},
		"liquidate": func() (*core.Transaction, error) {
			return e.ledger.Liquidate(e.ctx, &core.LiquidateRequest{
				TraceID:           trace,
				LiquidatorID:      "carol",
				UserID:            "alice",
				CollateralAssetID: solAsset,
				BorrowedAssetID:   solAsset,
			})
		},
	}

	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			tx, err := fn()
			assert.Equal(t, core.ErrTraceConflict, err)
			assert.Nil(t, tx)
		})
	}

	assert.EqualValues(t, 10*oneSOL+1, e.position(t, "alice").SOL.DepositedAmount)
	assert.Zero(t, e.balance(t, "alice", solAsset))
}

func TestLiquidateReplay(t *testing.T) {
	e := newEnv(t)
	e.seed(t)
	e.faucet(t, "carol", usdcAsset, 1_000*oneUSDC)

	_, err := e.ledger.Borrow(e.ctx, req("alice", usdcAsset, 800*oneUSDC))
	require.NoError(t, err)
	e.setPrice(t, solAsset, "90")

	liquidate := &core.LiquidateRequest{
		TraceID:           "0e6f4c8d-2a1b-4d7e-9c3f-8b5a6d4e2f10",
		LiquidatorID:      "carol",
		UserID:            "alice",
		CollateralAssetID: solAsset,
		BorrowedAssetID:   usdcAsset,
	}

	first, err := e.ledger.Liquidate(e.ctx, liquidate)
	require.NoError(t, err)

	second, err := e.ledger.Liquidate(e.ctx, liquidate)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.EqualValues(t, 400*oneUSDC, e.position(t, "alice").USDC.BorrowedAmount)

	other := *liquidate
	other.LiquidatorID = "dave"
	_, err = e.ledger.Liquidate(e.ctx, &other)
	assert.Equal(t, core.ErrTraceConflict, err)
}

func TestUnknownPoolKind(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, poolStore{e.mem}.Create(e.ctx, &core.Pool{Kind: core.AssetKind(7), AssetID: "btc", Symbol: "BTC", Decimals: 8}))
	e.faucet(t, "alice", "btc", 100)

	_, err := e.ledger.Deposit(e.ctx, req("alice", "btc", 100))
	assert.Equal(t, core.ErrPoolNotFound, err)

	_, err = e.ledger.Liquidate(e.ctx, &core.LiquidateRequest{
		LiquidatorID:      "carol",
		UserID:            "alice",
		CollateralAssetID: "btc",
		BorrowedAssetID:   usdcAsset,
	})
	assert.Equal(t, core.ErrPoolNotFound, err)
}

func TestBorrowBoundary(t *testing.T) {
	e := newEnv(t)
	e.seed(t)

	_, err := e.ledger.Borrow(e.ctx, req("alice", usdcAsset, 800*oneUSDC+1))
	assert.Equal(t, core.ErrOverBorrowableAmount, err)

	tx, err := e.ledger.Borrow(e.ctx, req("alice", usdcAsset, 800*oneUSDC))
	require.NoError(t, err)

	var data map[string]interface{}
	require.NoError(t, tx.UnmarshalExtraData(&data))
	assert.EqualValues(t, 800*oneUSDC, data[core.TransactionKeyBorrowable])

	_, err = e.ledger.Borrow(e.ctx, req("alice", usdcAsset, 1))
	assert.Equal(t, core.ErrOverBorrowableAmount, err)

	position := e.position(t, "alice")
	assert.EqualValues(t, 800*oneUSDC, position.USDC.BorrowedAmount)
	assert.EqualValues(t, 800*oneUSDC, position.USDC.BorrowedShares)

	pool := e.pool(t, core.AssetUSDC)
	assert.EqualValues(t, 800*oneUSDC, pool.TotalBorrowed)
	assert.EqualValues(t, 800*oneUSDC, pool.TotalBorrowedShares)
	assert.EqualValues(t, 800*oneUSDC, e.balance(t, "alice", usdcAsset))
	assert.EqualValues(t, 9_200*oneUSDC, e.balance(t, core.TreasuryAccount(usdcAsset), usdcAsset))
}

func TestBorrowRejected(t *testing.T) {
	e := newEnv(t)

	_, err := e.ledger.Borrow(e.ctx, req("alice", usdcAsset, 1))
	assert.Equal(t, core.ErrPositionNotFound, err)

	e.seed(t)

	_, err = e.ledger.Borrow(e.ctx, req("alice", usdcAsset, 0))
	assert.Equal(t, core.ErrInvalidAmount, err)

	e.clock.Add(101 * time.Second)
	_, err = e.ledger.Borrow(e.ctx, req("alice", usdcAsset, oneUSDC))
	assert.Equal(t, core.ErrStalePrice, err)

	e.setPrice(t, solAsset, "100")
	e.setPrice(t, usdcAsset, "1")
	_, err = e.ledger.Borrow(e.ctx, req("alice", usdcAsset, oneUSDC))
	assert.NoError(t, err)
}

func TestRepay(t *testing.T) {
	e := newEnv(t)
	e.seed(t)

	_, err := e.ledger.Borrow(e.ctx, req("alice", usdcAsset, 800*oneUSDC))
	require.NoError(t, err)

	_, err = e.ledger.Repay(e.ctx, req("alice", usdcAsset, 250*oneUSDC))
	require.NoError(t, err)

	position := e.position(t, "alice")
	assert.EqualValues(t, 550*oneUSDC, position.USDC.BorrowedAmount)
	assert.EqualValues(t, 550*oneUSDC, position.USDC.BorrowedShares)
	assert.EqualValues(t, 550*oneUSDC, e.pool(t, core.AssetUSDC).TotalBorrowed)

	// the SOL leg owes nothing
	_, err = e.ledger.Repay(e.ctx, req("alice", solAsset, 1))
	assert.Equal(t, core.ErrOverRepay, err)

	_, err = e.ledger.Repay(e.ctx, req("alice", usdcAsset, 550*oneUSDC+1))
	assert.Equal(t, core.ErrOverRepay, err)

	_, err = e.ledger.Repay(e.ctx, req("alice", usdcAsset, 550*oneUSDC))
	require.NoError(t, err)

	position = e.position(t, "alice")
	assert.Zero(t, position.USDC.BorrowedAmount)
	assert.Zero(t, position.USDC.BorrowedShares)

	pool := e.pool(t, core.AssetUSDC)
	assert.Zero(t, pool.TotalBorrowed)
	assert.Zero(t, pool.TotalBorrowedShares)
	assert.Zero(t, e.balance(t, "alice", usdcAsset))

	_, err = e.ledger.Repay(e.ctx, req("carol", usdcAsset, 1))
	assert.Equal(t, core.ErrPositionNotFound, err)
}

func TestWithdraw(t *testing.T) {
	e := newEnv(t)
	e.seed(t)

	_, err := e.ledger.Withdraw(e.ctx, req("carol", solAsset, 1))
	assert.Equal(t, core.ErrPositionNotFound, err)

	_, err = e.ledger.Withdraw(e.ctx, req("alice", solAsset, 10*oneSOL+1))
	assert.Equal(t, core.ErrInsufficientCollateral, err)

	_, err = e.ledger.Borrow(e.ctx, req("alice", usdcAsset, 400*oneUSDC))
	require.NoError(t, err)

	// 5 SOL at 100 * 0.8 covers exactly 400 USDC
	_, err = e.ledger.Withdraw(e.ctx, req("alice", solAsset, 5*oneSOL+1))
	assert.Equal(t, core.ErrInsufficientCollateral, err)

	_, err = e.ledger.Withdraw(e.ctx, req("alice", solAsset, 5*oneSOL))
	require.NoError(t, err)

	position := e.position(t, "alice")
	assert.EqualValues(t, 5*oneSOL, position.SOL.DepositedAmount)
	assert.EqualValues(t, 5*oneSOL, position.SOL.DepositedShares)
	assert.EqualValues(t, 5*oneSOL, e.balance(t, "alice", solAsset))
}

func TestWithdrawWithoutDebtIgnoresPrices(t *testing.T) {
	e := newEnv(t)
	e.seed(t)

	e.clock.Add(time.Hour)
	_, err := e.ledger.Withdraw(e.ctx, req("bob", usdcAsset, 10_000*oneUSDC))
	require.NoError(t, err)

	position := e.position(t, "bob")
	assert.True(t, position.USDC.IsZero())

	pool := e.pool(t, core.AssetUSDC)
	assert.Zero(t, pool.TotalDeposits)
	assert.Zero(t, pool.TotalDepositShares)
}

func TestLiquidate(t *testing.T) {
	e := newEnv(t)
	e.seed(t)
	e.faucet(t, "carol", usdcAsset, 1_000*oneUSDC)

	_, err := e.ledger.Borrow(e.ctx, req("alice", usdcAsset, 800*oneUSDC))
	require.NoError(t, err)

	liquidate := &core.LiquidateRequest{
		LiquidatorID:      "carol",
		UserID:            "alice",
		CollateralAssetID: solAsset,
		BorrowedAssetID:   usdcAsset,
	}

	// health factor is exactly 1
	_, err = e.ledger.Liquidate(e.ctx, liquidate)
	assert.Equal(t, core.ErrNotUndercollateralized, err)

	e.setPrice(t, solAsset, "90")

	tx, err := e.ledger.Liquidate(e.ctx, liquidate)
	require.NoError(t, err)
	assert.EqualValues(t, 400*oneUSDC, tx.Amount)

	position := e.position(t, "alice")
	assert.EqualValues(t, 400*oneUSDC, position.USDC.BorrowedAmount)
	assert.EqualValues(t, 10*oneSOL-4_666_666_666, position.SOL.DepositedAmount)
	assert.EqualValues(t, 4_666_666_666, e.balance(t, "carol", solAsset))
	assert.EqualValues(t, 600*oneUSDC, e.balance(t, "carol", usdcAsset))
	assert.EqualValues(t, 10*oneSOL-4_666_666_666, e.pool(t, core.AssetSOL).TotalDeposits)
	assert.EqualValues(t, 400*oneUSDC, e.pool(t, core.AssetUSDC).TotalBorrowed)

	// still unhealthy, liquidate again
	_, err = e.ledger.Liquidate(e.ctx, liquidate)
	require.NoError(t, err)

	position = e.position(t, "alice")
	assert.EqualValues(t, 200*oneUSDC, position.USDC.BorrowedAmount)
	assert.EqualValues(t, 10*oneSOL-4_666_666_666-2_333_333_333, position.SOL.DepositedAmount)

	_, err = e.ledger.Liquidate(e.ctx, liquidate)
	assert.Equal(t, core.ErrNotUndercollateralized, err)
}

func TestLiquidateSeizeCap(t *testing.T) {
	e := newEnv(t)
	e.seed(t)
	e.faucet(t, "carol", usdcAsset, 1_000*oneUSDC)

	_, err := e.ledger.Borrow(e.ctx, req("alice", usdcAsset, 800*oneUSDC))
	require.NoError(t, err)

	// 10 SOL now worth 100 USDC, far below the 420 USDC a half repay would seize
	e.setPrice(t, solAsset, "10")

	tx, err := e.ledger.Liquidate(e.ctx, &core.LiquidateRequest{
		LiquidatorID:      "carol",
		UserID:            "alice",
		CollateralAssetID: solAsset,
		BorrowedAssetID:   usdcAsset,
	})
	require.NoError(t, err)

	// 100 / 1.05 USDC buys the whole collateral leg
	const repay = 95_238_095
	assert.EqualValues(t, repay, tx.Amount)
	assert.EqualValues(t, 1_000*oneUSDC-repay, e.balance(t, "carol", usdcAsset))
	assert.EqualValues(t, 10*oneSOL, e.balance(t, "carol", solAsset))

	position := e.position(t, "alice")
	assert.Zero(t, position.SOL.DepositedAmount)
	assert.Zero(t, position.SOL.DepositedShares)
	assert.EqualValues(t, 800*oneUSDC-repay, position.USDC.BorrowedAmount)
	assert.Zero(t, e.pool(t, core.AssetSOL).TotalDeposits)
	assert.EqualValues(t, 800*oneUSDC-repay, e.pool(t, core.AssetUSDC).TotalBorrowed)
}

func TestLiquidateRollback(t *testing.T) {
	e := newEnv(t)
	e.seed(t)

	_, err := e.ledger.Borrow(e.ctx, req("alice", usdcAsset, 800*oneUSDC))
	require.NoError(t, err)
	e.setPrice(t, solAsset, "90")

	before := e.position(t, "alice")
	_, err = e.ledger.Liquidate(e.ctx, &core.LiquidateRequest{
		LiquidatorID:      "carol",
		UserID:            "alice",
		CollateralAssetID: solAsset,
		BorrowedAssetID:   usdcAsset,
	})
	assert.Equal(t, core.ErrInsufficientBalance, err)

	assert.Equal(t, before, e.position(t, "alice"))
	assert.EqualValues(t, 10*oneSOL, e.pool(t, core.AssetSOL).TotalDeposits)
	assert.EqualValues(t, 800*oneUSDC, e.pool(t, core.AssetUSDC).TotalBorrowed)
	assert.Zero(t, e.balance(t, "carol", solAsset))
}

func TestHealth(t *testing.T) {
	e := newEnv(t)

	report, err := e.ledger.Health(e.ctx, "nobody")
	require.NoError(t, err)
	assert.True(t, report.DebtValue.IsZero())
	for _, f := range report.Factors {
		assert.True(t, f.Infinite)
		assert.True(t, f.Healthy)
	}

	e.seed(t)
	_, err = e.ledger.Borrow(e.ctx, req("alice", usdcAsset, 800*oneUSDC))
	require.NoError(t, err)

	report, err = e.ledger.Health(e.ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "1000", report.CollateralValue.String())
	assert.Equal(t, "800", report.DebtValue.String())
	require.Len(t, report.Factors, 2)
	assert.Equal(t, core.AssetSOL, report.Factors[0].Kind)
	assert.Equal(t, "1", report.Factors[0].Factor.String())
	assert.True(t, report.Factors[0].Healthy)

	e.setPrice(t, solAsset, "90")
	report, err = e.ledger.Health(e.ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "0.9", report.Factors[0].Factor.String())
	assert.False(t, report.Factors[0].Healthy)
}

func TestConcurrentDeposits(t *testing.T) {
	e := newEnv(t)

	const users = 16
	for idx := 0; idx < users; idx++ {
		e.faucet(t, fmt.Sprintf("user-%d", idx), solAsset, 100)
		e.faucet(t, fmt.Sprintf("user-%d", idx), usdcAsset, 100)
	}

	var wg sync.WaitGroup
	for idx := 0; idx < users; idx++ {
		for _, asset := range []string{solAsset, usdcAsset} {
			wg.Add(1)
			go func(userID, assetID string) {
				defer wg.Done()
				_, err := e.ledger.Deposit(e.ctx, req(userID, assetID, 100))
				assert.NoError(t, err)
			}(fmt.Sprintf("user-%d", idx), asset)
		}
	}
	wg.Wait()

	for _, kind := range core.AssetKinds {
		pool := e.pool(t, kind)
		assert.EqualValues(t, users*100, pool.TotalDeposits)
		assert.EqualValues(t, users*100, pool.TotalDepositShares)
	}
}
