package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/facebookgo/clock"
	"github.com/fox-one/pkg/logger"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"github.com/nidhish-srivastava/defi-lending-protocol/pkg/resthttp"
)

// PriceService serves persisted prices under a max age contract and pulls tickers upstream
type PriceService struct {
	endpoint   string
	priceStore core.IPriceStore
	clock      clock.Clock
}

// New new oracle price service
func New(endpoint string, priceStore core.IPriceStore, clk clock.Clock) *PriceService {
	return &PriceService{
		endpoint:   endpoint,
		priceStore: priceStore,
		clock:      clk,
	}
}

// GetPrice latest price of assetID, published no earlier than maxAge ago
func (s *PriceService) GetPrice(ctx context.Context, assetID string, maxAge time.Duration) (*core.Price, error) {
	log := logger.FromContext(ctx).WithField("asset", assetID)

	price, err := s.priceStore.Latest(ctx, assetID)
	if err != nil {
		log.WithError(err).Errorln("prices.Latest")
		return nil, err
	}

	if price == nil || !price.Value.IsPositive() {
		return nil, core.ErrInvalidPrice
	}

	if age := s.clock.Now().Sub(price.PublishedAt); age > maxAge {
		log.Debugf("price published %s ago, max age %s", age, maxAge)
		return nil, core.ErrStalePrice
	}

	return price, nil
}

// PullPriceTicker pull the ticker of assetID at t from the upstream endpoint
func (s *PriceService) PullPriceTicker(ctx context.Context, assetID string, t time.Time) (*core.PriceTicker, error) {
	url := fmt.Sprintf("%s/api/v2/tickers/%s?ts=%d", s.endpoint, assetID, t.UTC().Unix())
	logger.FromContext(ctx).Debugln("pull price:", url)

	resp, err := resthttp.Request(ctx).Get(url)
	if err != nil {
		return nil, err
	}

	var ticker core.PriceTicker
	if err := resthttp.ParseResponse(resp, &ticker); err != nil {
		return nil, err
	}

	return &ticker, nil
}
