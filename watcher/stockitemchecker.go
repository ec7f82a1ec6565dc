package watcher

import (
	"context"
	"time"

	"github.com/helloworldpark/tickle-stock-info/cache"
	"github.com/helloworldpark/tickle-stock-info/logger"
	"github.com/helloworldpark/tickle-stock-info/structs"
	"golang.org/x/sync/singleflight"
)

// StockItemChecker keeps the rosters of every market in a cache,
// so looking up a single company does not download the whole roster again.
type StockItemChecker struct {
	index Lister
	cache cache.Cache
	ttl   time.Duration
	group singleflight.Group
}

// NewStockItemChecker returns a checker with an empty cache.
// Rosters are downloaded on first use, or by UpdateStocks.
func NewStockItemChecker(index Lister, c cache.Cache, ttl time.Duration) *StockItemChecker {
	return &StockItemChecker{index: index, cache: c, ttl: ttl}
}

func rosterKey(market structs.Market) string {
	return "roster:" + market.String()
}

// FetchListings returns the cached roster of market, downloading it on a miss.
// Download errors are returned as is and never cached.
// Concurrent misses share one download, which outlives a cancelled caller.
func (checker *StockItemChecker) FetchListings(ctx context.Context, market structs.Market) ([]structs.Stock, error) {
	shared := context.WithoutCancel(ctx)
	ch := checker.group.DoChan(rosterKey(market), func() (interface{}, error) {
		return cache.Memoize(shared, checker.cache, rosterKey(market), checker.ttl, func() ([]structs.Stock, error) {
			return checker.index.FetchListings(shared, market)
		})
	})
	select {
	case <-ctx.Done():
		return nil, newError(ctx.Err(), "roster of "+market.String())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]structs.Stock), nil
	}
}

// UpdateStocks downloads the rosters of KOSPI and KOSDAQ and replaces the cached ones.
// A failed market keeps its previous roster. Returns the first error.
func (checker *StockItemChecker) UpdateStocks(ctx context.Context) error {
	var firstErr error
	for _, market := range structs.Markets {
		stocks, err := checker.index.FetchListings(ctx, market)
		if err != nil {
			logger.Error("[Watcher] Failed to update %v: %s", market, err.Error())
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := checker.cache.Set(ctx, rosterKey(market), stocks, checker.ttl); err != nil {
			logger.Warn("[Watcher] %s", err.Error())
		}
	}
	// the combined roster is derived from the others, drop it
	if err := checker.cache.Delete(ctx, rosterKey(structs.MarketAll)); err != nil {
		logger.Warn("[Watcher] %s", err.Error())
	}
	if firstErr == nil {
		logger.Info("[Watcher] Updated stocks")
	}
	return firstErr
}

// StockFromName finds a stock by its exact name in KOSPI, then KOSDAQ.
func (checker *StockItemChecker) StockFromName(ctx context.Context, name string) (structs.Stock, bool) {
	return checker.find(ctx, func(s structs.Stock) bool { return s.Name == name })
}

func (checker *StockItemChecker) find(ctx context.Context, match func(structs.Stock) bool) (structs.Stock, bool) {
	for _, market := range structs.Markets {
		stocks, err := checker.FetchListings(ctx, market)
		if err != nil {
			logger.Error("[Watcher] %s", err.Error())
			continue
		}
		for _, s := range stocks {
			if match(s) {
				return s, true
			}
		}
	}
	return structs.Stock{}, false
}
