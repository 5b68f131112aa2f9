package priceoracle

import (
	"context"
	"time"

	"github.com/facebookgo/clock"
	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"golang.org/x/sync/errgroup"
)

const checkpointPrefix = "priceoracle:published_at:"

// Worker pulls the ticker of every pool asset and persists it as the latest price
type Worker struct {
	transactor    core.Transactor
	poolStore     core.IPoolStore
	priceStore    core.IPriceStore
	tickerService core.IPriceTickerService
	propertyStore property.Store
	clock         clock.Clock
	interval      time.Duration
}

// New new price oracle worker
func New(
	transactor core.Transactor,
	poolStore core.IPoolStore,
	priceStore core.IPriceStore,
	tickerService core.IPriceTickerService,
	propertyStore property.Store,
	clk clock.Clock,
	interval time.Duration,
) *Worker {
	return &Worker{
		transactor:    transactor,
		poolStore:     poolStore,
		priceStore:    priceStore,
		tickerService: tickerService,
		propertyStore: propertyStore,
		clock:         clk,
		interval:      interval,
	}
}

// Run run worker
func (w *Worker) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "priceoracle")
	ctx = logger.WithContext(ctx, log)

	dur := time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dur):
			if err := w.run(ctx); err != nil {
				dur = time.Second
			} else {
				dur = w.interval
			}
		}
	}
}

func (w *Worker) run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	pools, err := w.poolStore.All(ctx)
	if err != nil {
		log.WithError(err).Errorln("pools.All")
		return err
	}

	var g errgroup.Group
	for _, pool := range pools {
		pool := pool
		g.Go(func() error {
			return w.handlePool(ctx, pool)
		})
	}

	return g.Wait()
}

func (w *Worker) handlePool(ctx context.Context, pool *core.Pool) error {
	log := logger.FromContext(ctx).WithField("asset", pool.Symbol)
	key := checkpointPrefix + pool.AssetID

	checkpoint, err := w.propertyStore.Get(ctx, key)
	if err != nil {
		log.WithError(err).Errorln("property.Get", key)
		return err
	}

	price, err := w.pull(ctx, pool)
	if err != nil {
		return err
	}

	if price == nil || price.PublishedAt.Unix() <= checkpoint.Int64() {
		return nil
	}

	if err := w.transactor.Tx(func(tx *db.DB) error {
		return w.priceStore.Create(ctx, tx, price)
	}); err != nil {
		log.WithError(err).Errorln("prices.Create")
		return err
	}

	if err := w.propertyStore.Save(ctx, key, price.PublishedAt.Unix()); err != nil {
		log.WithError(err).Errorln("property.Save", key)
		return err
	}

	log.Debugf("price %s published at %s", price.Value, price.PublishedAt)
	return nil
}

// pull fetch the ticker of pool's asset, nil if the ticker carries no usable price
func (w *Worker) pull(ctx context.Context, pool *core.Pool) (*core.Price, error) {
	log := logger.FromContext(ctx)

	now := w.clock.Now()
	ticker, err := w.tickerService.PullPriceTicker(ctx, pool.AssetID, now)
	if err != nil {
		log.WithError(err).Errorln("tickers.PullPriceTicker")
		return nil, err
	}

	if !ticker.Price.IsPositive() {
		log.Errorln("invalid ticker price:", ticker.Symbol, ticker.Price)
		return nil, nil
	}

	publishedAt := now
	if ticker.Timestamp > 0 {
		publishedAt = time.Unix(ticker.Timestamp, 0)
	}

	return &core.Price{
		AssetID:     pool.AssetID,
		PublishedAt: publishedAt,
		Value:       ticker.Price,
		Source:      ticker.Provider,
	}, nil
}
