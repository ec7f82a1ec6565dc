package watcher

import (
	"context"
	"net/http"
	"sort"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"

	"github.com/helloworldpark/tickle-stock-info/commons"
	"github.com/helloworldpark/tickle-stock-info/structs"
)

// HistoryProvider provides daily prices of a ticker.
type HistoryProvider interface {
	Name() string
	// History returns the daily prices inside r, ascending by date.
	History(ctx context.Context, ticker structs.Ticker, r structs.DateRange) ([]structs.StockPrice, error)
}

type barIterator interface {
	Next() bool
	Bar() *finance.ChartBar
	Err() error
}

// YahooProvider reads daily bars from the Yahoo Finance chart API.
type YahooProvider struct {
	chart func(*chart.Params) barIterator
}

// NewYahooProvider returns a provider using client for every Yahoo request.
// A nil client keeps the default one of finance-go.
func NewYahooProvider(client *http.Client) *YahooProvider {
	if client != nil {
		finance.SetHTTPClient(client)
	}
	return &YahooProvider{
		chart: func(p *chart.Params) barIterator { return chart.Get(p) },
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

func (p *YahooProvider) History(ctx context.Context, ticker structs.Ticker, r structs.DateRange) ([]structs.StockPrice, error) {
	from := commons.Day(r.From)
	// the end date of Yahoo is exclusive
	to := commons.Day(r.To).AddDate(0, 0, 1)
	params := &chart.Params{
		Symbol:   string(ticker),
		Interval: datetime.OneDay,
		Start:    toDatetime(from),
		End:      toDatetime(to),
	}

	iter := p.chart(params)
	var prices []structs.StockPrice
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, newError(ErrUpstreamUnavailable, err.Error())
		}
		price := barToPrice(ticker.StockID(), iter.Bar())
		if !r.Contains(commons.Unix(price.Timestamp)) {
			continue
		}
		prices = append(prices, price)
	}
	if err := iter.Err(); err != nil {
		return nil, newError(ErrUpstreamUnavailable, err.Error())
	}
	if len(prices) == 0 {
		return nil, newError(ErrNoPriceData, string(ticker))
	}

	sort.Slice(prices, func(i, j int) bool {
		return prices[i].Timestamp < prices[j].Timestamp
	})
	return prices, nil
}

func toDatetime(t time.Time) *datetime.Datetime {
	return &datetime.Datetime{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

func barToPrice(stockID string, bar *finance.ChartBar) structs.StockPrice {
	return structs.StockPrice{
		StockID:   stockID,
		Timestamp: commons.Day(time.Unix(int64(bar.Timestamp), 0)).Unix(),
		Open:      toFloat(bar.Open),
		High:      toFloat(bar.High),
		Low:       toFloat(bar.Low),
		Close:     toFloat(bar.Close),
		AdjClose:  toFloat(bar.AdjClose),
		Volume:    float64(bar.Volume),
	}
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
