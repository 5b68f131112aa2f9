package price

import (
	"context"
	"fmt"
	"time"

	"github.com/bluele/gcache"
	"github.com/fox-one/pkg/store/db"
	"github.com/nidhish-srivastava/defi-lending-protocol/core"
	"golang.org/x/sync/singleflight"
)

// Cache keeps the latest price per asset for exp
func Cache(store core.IPriceStore, exp time.Duration) core.IPriceStore {
	return &cachePriceStore{
		IPriceStore: store,
		cache:       gcache.New(64).LRU().Expiration(exp).Build(),
		sf:          &singleflight.Group{},
	}
}

type cachePriceStore struct {
	core.IPriceStore
	cache gcache.Cache
	sf    *singleflight.Group
}

func (s *cachePriceStore) Create(ctx context.Context, tx *db.DB, price *core.Price) error {
	if err := s.IPriceStore.Create(ctx, tx, price); err != nil {
		return err
	}

	// the row only becomes visible on commit
	s.cache.Remove(s.latestKey(price.AssetID))
	return nil
}

func (s *cachePriceStore) Latest(ctx context.Context, assetID string) (*core.Price, error) {
	key := s.latestKey(assetID)
	if v, err := s.cache.Get(key); err == nil {
		if price, ok := v.(*core.Price); ok {
			return price, nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		price, err := s.IPriceStore.Latest(ctx, assetID)
		if err != nil {
			return nil, err
		}

		if price != nil {
			_ = s.cache.Set(key, price)
		}

		return price, nil
	})
	if err != nil {
		return nil, err
	}

	price, _ := v.(*core.Price)
	return price, nil
}

func (s *cachePriceStore) latestKey(assetID string) string {
	return fmt.Sprintf("price:latest:%s", assetID)
}
