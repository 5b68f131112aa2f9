package cmd

import (
	"github.com/facebookgo/clock"
	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"github.com/nidhish-srivastava/defi-lending-protocol/service/ledger"
	"github.com/nidhish-srivastava/defi-lending-protocol/service/oracle"
	"github.com/nidhish-srivastava/defi-lending-protocol/service/transfer"
	"github.com/nidhish-srivastava/defi-lending-protocol/store/balance"
	"github.com/nidhish-srivastava/defi-lending-protocol/store/pool"
	"github.com/nidhish-srivastava/defi-lending-protocol/store/position"
	"github.com/nidhish-srivastava/defi-lending-protocol/store/price"
	"github.com/nidhish-srivastava/defi-lending-protocol/store/transaction"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideClock() clock.Clock {
	return clock.New()
}

// ---------------store-----------------------------------------

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}

func providePoolStore(db *db.DB) core.IPoolStore {
	return pool.New(db)
}

func providePositionStore(db *db.DB) core.IPositionStore {
	return position.New(db)
}

func provideBalanceStore(db *db.DB) core.IBalanceStore {
	return balance.New(db)
}

func providePriceStore(db *db.DB) core.IPriceStore {
	return price.Cache(price.New(db), cfg.Oracle.CacheExpiration())
}

func provideTransactionStore(db *db.DB) core.ITransactionStore {
	return transaction.New(db)
}

// ------------------service------------------------------------

func provideOracleService(priceStore core.IPriceStore, clk clock.Clock) *oracle.PriceService {
	return oracle.New(cfg.Oracle.EndPoint, priceStore, clk)
}

func provideTransferService(poolStore core.IPoolStore, balanceStore core.IBalanceStore) core.ITransferService {
	return transfer.New(poolStore, balanceStore)
}

func provideLedgerService(database *db.DB) core.ILedgerService {
	clk := provideClock()
	poolStore := providePoolStore(database)

	return ledger.New(
		database,
		poolStore,
		providePositionStore(database),
		provideTransactionStore(database),
		provideOracleService(providePriceStore(database), clk),
		provideTransferService(poolStore, provideBalanceStore(database)),
		clk,
	)
}
