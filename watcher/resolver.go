package watcher

import (
	"context"
	"fmt"

	"github.com/helloworldpark/tickle-stock-info/logger"
	"github.com/helloworldpark/tickle-stock-info/structs"
)

// ResolveTicker resolves a company name to the ticker used by price providers.
// The name must match exactly. Only the given market is searched.
func ResolveTicker(ctx context.Context, lister Lister, name string, market structs.Market) (structs.Ticker, error) {
	_, ticker, err := ResolveStock(ctx, lister, name, market)
	return ticker, err
}

// ResolveStock is ResolveTicker also returning the matched stock.
func ResolveStock(ctx context.Context, lister Lister, name string, market structs.Market) (structs.Stock, structs.Ticker, error) {
	if _, ok := market.Suffix(); !ok {
		return structs.Stock{}, "", newError(ErrUnsupportedSegment, market.String())
	}

	stocks, err := lister.FetchListings(ctx, market)
	if err != nil {
		return structs.Stock{}, "", err
	}

	var matched []structs.Stock
	for _, s := range stocks {
		if s.Name == name {
			matched = append(matched, s)
		}
	}
	if len(matched) == 0 {
		return structs.Stock{}, "", newError(ErrCompanyNotFound, fmt.Sprintf("%q in %v", name, market))
	}
	if len(matched) > 1 {
		logger.Warn("[Watcher] %d stocks named %q in %v, using %s", len(matched), name, market, matched[0].StockID)
	}

	stock := matched[0]
	stock.MarketType = market
	ticker, err := structs.NewTicker(stock.StockID, market)
	if err != nil {
		return structs.Stock{}, "", newError(ErrSchemaMismatch, err.Error())
	}
	return stock, ticker, nil
}
