package controller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/helloworldpark/tickle-stock-info/analyser"
	"github.com/helloworldpark/tickle-stock-info/cache"
	"github.com/helloworldpark/tickle-stock-info/commons"
	"github.com/helloworldpark/tickle-stock-info/export"
	"github.com/helloworldpark/tickle-stock-info/logger"
	"github.com/helloworldpark/tickle-stock-info/scheduler"
	"github.com/helloworldpark/tickle-stock-info/storage"
	"github.com/helloworldpark/tickle-stock-info/structs"
	"github.com/helloworldpark/tickle-stock-info/watcher"
)

var (
	// ErrInvalidQuery means the query is missing a field or has a bad one.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrUnknownFormat means the export format is neither csv nor xlsx.
	ErrUnknownFormat = errors.New("unknown export format")
)

var newError = commons.NewTaggedWrapper("Controller")

const (
	taskStockItemUpdate = "StockItemUpdate"
	taskStockItemWarmup = "StockItemWarmup"
	updateTimeout       = 5 * time.Minute

	// DefaultHistoryTTL keeps a fetched series for the chart and downloads of the same page.
	DefaultHistoryTTL = 10 * time.Minute
)

// Export formats.
const (
	FormatCSV   = "csv"
	FormatExcel = "xlsx"
)

// Roster lists companies and can refresh its rosters.
type Roster interface {
	watcher.Lister
	UpdateStocks(ctx context.Context) error
	StockFromName(ctx context.Context, name string) (structs.Stock, bool)
}

// Publisher uploads a file and returns where it can be downloaded.
type Publisher interface {
	Write(ctx context.Context, contents []byte, filename, contentType string) (string, error)
	// Remove deletes the published files whose name contains contains.
	Remove(ctx context.Context, contains string) error
}

// Query is one lookup request from the host page.
type Query struct {
	CompanyName string            `json:"name"`
	Market      structs.Market    `json:"market"`
	Range       structs.DateRange `json:"range"`
	Provider    string            `json:"provider,omitempty"`
}

// Result is the answer to a Query.
type Result struct {
	Query   Query                `json:"query"`
	Stock   structs.Stock        `json:"stock"`
	Ticker  structs.Ticker       `json:"ticker"`
	Prices  []structs.StockPrice `json:"prices"`
	Summary analyser.Summary     `json:"summary"`
}

// Head returns at most the first n prices.
func (r Result) Head(n int) []structs.StockPrice {
	if n < len(r.Prices) {
		return r.Prices[:n]
	}
	return r.Prices
}

// General handles the requests of the host page.
// General은 다음과 같은 일들을 수행
// 1. 회사명으로 종목코드와 티커를 찾는다
// 2. 티커로 일별 가격을 가져온다
// 3. 차트와 CSV, 엑셀 파일을 만든다
type General struct {
	itemChecker     Roster
	providers       map[string]watcher.HistoryProvider
	defaultProvider string
	publisher       Publisher
	historyCache    cache.Cache
	historyTTL      time.Duration
}

// NewGeneral returns a controller. The first provider is the default one.
// publisher may be nil, then Publish fails with storage.ErrStorageDisabled.
func NewGeneral(itemChecker Roster, publisher Publisher, providers ...watcher.HistoryProvider) *General {
	g := &General{
		itemChecker:  itemChecker,
		providers:    make(map[string]watcher.HistoryProvider),
		publisher:    publisher,
		historyCache: cache.NewMemory(),
		historyTTL:   DefaultHistoryTTL,
	}
	for _, p := range providers {
		if g.defaultProvider == "" {
			g.defaultProvider = p.Name()
		}
		g.providers[p.Name()] = p
	}
	return g
}

// UseHistoryCache keeps fetched price series in c for ttl.
func (g *General) UseHistoryCache(c cache.Cache, ttl time.Duration) {
	g.historyCache = c
	g.historyTTL = ttl
}

// Providers returns the names of the price providers, default first.
func (g *General) Providers() []string {
	names := make([]string, 0, len(g.providers))
	for name := range g.providers {
		if name != g.defaultProvider {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if g.defaultProvider != "" {
		names = append([]string{g.defaultProvider}, names...)
	}
	return names
}

// Initialize refreshes the rosters every day at refreshHour, KST.
// The first download starts right away in the background.
func (g *General) Initialize(refreshHour float64) error {
	update := func() {
		ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
		defer cancel()
		if err := g.itemChecker.UpdateStocks(ctx); err != nil {
			logger.Error("[Controller] %s", err.Error())
		}
	}
	// ItemChecker는 매일 05시, 현재 거래 가능한 주식들을 업데이트
	if err := scheduler.ScheduleEveryday(taskStockItemUpdate, refreshHour, update); err != nil {
		return newError(err, "")
	}
	scheduler.Schedule(taskStockItemWarmup, 0, update)
	logger.Info("[Controller] Initialized Controller, next roster update at %v", scheduler.NextRun(refreshHour))
	return nil
}

// Close stops the scheduled tasks.
func (g *General) Close() {
	scheduler.Cancel(taskStockItemUpdate)
	scheduler.Cancel(taskStockItemWarmup)
}

// Listings returns the roster of market.
func (g *General) Listings(ctx context.Context, market structs.Market) ([]structs.Stock, error) {
	return g.itemChecker.FetchListings(ctx, market)
}

// Ticker resolves a company name in market.
func (g *General) Ticker(ctx context.Context, name string, market structs.Market) (structs.Ticker, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", newError(ErrInvalidQuery, "company name is empty")
	}
	ticker, err := watcher.ResolveTicker(ctx, g.itemChecker, name, market)
	if err != nil {
		return "", g.hintMarket(ctx, err, name, market)
	}
	return ticker, nil
}

// hintMarket tells where the company is listed when it is not in market.
// The error still matches watcher.ErrCompanyNotFound.
func (g *General) hintMarket(ctx context.Context, err error, name string, market structs.Market) error {
	if !errors.Is(err, watcher.ErrCompanyNotFound) {
		return err
	}
	stock, ok := g.itemChecker.StockFromName(ctx, name)
	if !ok || stock.MarketType == market {
		return err
	}
	return newError(err, "listed on "+stock.MarketType.String())
}

func historyKey(provider string, ticker structs.Ticker, r structs.DateRange) string {
	return fmt.Sprintf("history:%s:%s:%s:%s", provider, ticker, r.From.Format("20060102"), r.To.Format("20060102"))
}

func (g *General) history(ctx context.Context, provider watcher.HistoryProvider, ticker structs.Ticker, r structs.DateRange) ([]structs.StockPrice, error) {
	return cache.Memoize(ctx, g.historyCache, historyKey(provider.Name(), ticker, r), g.historyTTL, func() ([]structs.StockPrice, error) {
		return provider.History(ctx, ticker, r)
	})
}

func (g *General) provider(name string) (watcher.HistoryProvider, error) {
	if name == "" {
		name = g.defaultProvider
	}
	p, ok := g.providers[name]
	if !ok {
		return nil, newError(ErrInvalidQuery, fmt.Sprintf("unknown price provider %q", name))
	}
	return p, nil
}

// Validate checks the query before any request is made.
func (q Query) Validate() error {
	if strings.TrimSpace(q.CompanyName) == "" {
		return newError(ErrInvalidQuery, "company name is empty")
	}
	if _, ok := q.Market.Suffix(); !ok {
		return newError(watcher.ErrUnsupportedSegment, q.Market.String())
	}
	if !q.Range.Valid() {
		return newError(ErrInvalidQuery, "start date must not be after end date")
	}
	return nil
}

// Lookup resolves the ticker of the company and fetches its daily prices.
// Prices are never requested for a company that was not found.
func (g *General) Lookup(ctx context.Context, q Query) (Result, error) {
	q.CompanyName = strings.TrimSpace(q.CompanyName)
	if err := q.Validate(); err != nil {
		return Result{}, err
	}
	provider, err := g.provider(q.Provider)
	if err != nil {
		return Result{}, err
	}
	q.Provider = provider.Name()

	stock, ticker, err := watcher.ResolveStock(ctx, g.itemChecker, q.CompanyName, q.Market)
	if err != nil {
		return Result{}, g.hintMarket(ctx, err, q.CompanyName, q.Market)
	}
	prices, err := g.history(ctx, provider, ticker, q.Range)
	if err != nil {
		return Result{}, err
	}
	summary, err := analyser.Summarize(prices)
	if err != nil {
		return Result{}, newError(watcher.ErrNoPriceData, err.Error())
	}

	logger.Info("[Controller] %s(%s): %d prices from %s", stock.Name, ticker, len(prices), q.Provider)
	return Result{
		Query:   q,
		Stock:   stock,
		Ticker:  ticker,
		Prices:  prices,
		Summary: summary,
	}, nil
}

// Chart renders the prices of the result as PNG.
func (g *General) Chart(r Result, opts analyser.ChartOptions) ([]byte, error) {
	if opts.Title == "" {
		opts.Title = fmt.Sprintf("%s (%s)", r.Stock.Name, r.Ticker)
	}
	return analyser.Plot(r.Prices, opts)
}

// Export encodes the prices of the result, returning the file name and content type.
func (g *General) Export(r Result, format string) ([]byte, string, string, error) {
	var buf bytes.Buffer
	switch format {
	case FormatCSV:
		if err := export.WriteCSV(&buf, r.Prices); err != nil {
			return nil, "", "", err
		}
		return buf.Bytes(), export.CSVFileName, export.CSVContentType, nil
	case FormatExcel:
		if err := export.WriteExcel(&buf, r.Prices); err != nil {
			return nil, "", "", err
		}
		return buf.Bytes(), export.ExcelFileName, export.ExcelContentType, nil
	}
	return nil, "", "", newError(ErrUnknownFormat, format)
}

// Publish uploads both encodings of the result and returns their URLs by format.
func (g *General) Publish(ctx context.Context, r Result) (map[string]string, error) {
	if g.publisher == nil {
		return nil, storage.ErrStorageDisabled
	}
	dir := fmt.Sprintf("%s/%s_%s/", r.Stock.StockID,
		r.Query.Range.From.Format("20060102"), r.Query.Range.To.Format("20060102"))

	// 같은 종목, 같은 기간의 이전 파일은 지운다
	if err := g.publisher.Remove(ctx, dir); err != nil {
		if errors.Is(err, storage.ErrStorageDisabled) {
			return nil, err
		}
		logger.Warn("[Controller] Failed to clear %s: %s", dir, err.Error())
	}

	urls := make(map[string]string)
	for _, format := range []string{FormatCSV, FormatExcel} {
		contents, filename, contentType, err := g.Export(r, format)
		if err != nil {
			return nil, err
		}
		url, err := g.publisher.Write(ctx, contents, dir+filename, contentType)
		if err != nil {
			return nil, err
		}
		urls[format] = url
	}
	logger.Info("[Controller] Published %s(%s)", r.Stock.Name, r.Ticker)
	return urls, nil
}
