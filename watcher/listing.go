package watcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/anaskhan96/soup"
	"github.com/helloworldpark/tickle-stock-info/commons"
	"github.com/helloworldpark/tickle-stock-info/logger"
	"github.com/helloworldpark/tickle-stock-info/structs"
	"golang.org/x/net/html/charset"
)

// Column headers of the KIND corporate list.
const (
	columnName   = "회사명"
	columnCode   = "종목코드"
	columnMarket = "시장구분"
)

// KIND labels of the market column.
var marketLabels = map[string]structs.Market{
	"유가":   structs.KOSPI,
	"유가증권": structs.KOSPI,
	"코스닥":  structs.KOSDAQ,
}

// HTTPClient is the part of *http.Client the watcher needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Lister lists the companies of a market.
type Lister interface {
	FetchListings(ctx context.Context, market structs.Market) ([]structs.Stock, error)
}

// Index downloads the roster of listed companies from KIND.
// Every call downloads the full roster again.
type Index struct {
	client  HTTPClient
	baseURL string
}

// NewIndex returns an Index requesting baseURL through client.
func NewIndex(client HTTPClient, baseURL string) *Index {
	return &Index{client: client, baseURL: baseURL}
}

// FetchListings downloads the companies of market, in the order of the page.
// MarketAll downloads every segment combined.
func (idx *Index) FetchListings(ctx context.Context, market structs.Market) ([]structs.Stock, error) {
	page, err := idx.download(ctx, market)
	if err != nil {
		return nil, err
	}
	stocks, err := parseStockSymbols(page, market)
	if err != nil {
		return nil, err
	}
	logger.Info("[Watcher] Downloaded %d stocks of %v", len(stocks), market)
	return stocks, nil
}

// DownloadStockSymbols downloads the roster of market once, without an Index.
func DownloadStockSymbols(ctx context.Context, client HTTPClient, baseURL string, market structs.Market) ([]structs.Stock, error) {
	return NewIndex(client, baseURL).FetchListings(ctx, market)
}

// https://minjejeon.github.io/learningstock/2017/09/07/download-krx-ticker-symbols-at-once.html
func (idx *Index) download(ctx context.Context, market structs.Market) (string, error) {
	u, err := url.Parse(idx.baseURL)
	if err != nil {
		return "", newError(err, "invalid listing url")
	}
	q := u.Query()
	q.Set("method", "download")
	q.Set("marketType", market.MarketType())
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", newError(err, "invalid listing request")
	}
	resp, err := idx.client.Do(req)
	if err != nil {
		return "", newError(ErrUpstreamUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", newError(ErrUpstreamUnavailable, fmt.Sprintf("listing page returned %s", resp.Status))
	}

	// KIND answers in EUC-KR
	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", newError(ErrUpstreamUnavailable, err.Error())
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", newError(ErrUpstreamUnavailable, err.Error())
	}
	return string(raw), nil
}

func parseStockSymbols(page string, market structs.Market) ([]structs.Stock, error) {
	symbolHTML := soup.HTMLParse(page)
	if symbolHTML.Error != nil {
		return nil, newError(ErrUpstreamUnavailable, symbolHTML.Error.Error())
	}

	table := symbolHTML.Find("table")
	if table.Error != nil {
		return nil, newError(ErrUpstreamUnavailable, "no table in listing page")
	}

	trs := table.FindAll("tr")
	if len(trs) == 0 {
		return nil, newError(ErrSchemaMismatch, "listing table has no header")
	}

	nameCol, codeCol, marketCol := -1, -1, -1
	for i, cell := range headerCells(trs[0]) {
		switch strings.TrimSpace(cell.FullText()) {
		case columnName:
			nameCol = i
		case columnCode:
			codeCol = i
		case columnMarket:
			marketCol = i
		}
	}
	if nameCol < 0 || codeCol < 0 {
		return nil, newError(ErrSchemaMismatch, fmt.Sprintf("columns %s, %s not found", columnName, columnCode))
	}

	result := make([]structs.Stock, 0, len(trs)-1)
	for _, tr := range trs[1:] {
		tds := tr.FindAll("td")
		if len(tds) <= nameCol || len(tds) <= codeCol {
			continue
		}
		name := strings.TrimSpace(tds[nameCol].FullText())
		rawCode := strings.TrimSpace(tds[codeCol].FullText())
		code, ok := commons.PadCode(rawCode, structs.StockIDLength)
		if !ok {
			logger.Warn("[Watcher] Skipped %s: invalid listing code %q", name, rawCode)
			continue
		}

		stockMarket := market
		if market == structs.MarketAll && marketCol >= 0 && marketCol < len(tds) {
			stockMarket = marketLabels[strings.TrimSpace(tds[marketCol].FullText())]
		}
		result = append(result, structs.Stock{Name: name, StockID: code, MarketType: stockMarket})
	}
	return result, nil
}

func headerCells(tr soup.Root) []soup.Root {
	if ths := tr.FindAll("th"); len(ths) > 0 {
		return ths
	}
	return tr.FindAll("td")
}
