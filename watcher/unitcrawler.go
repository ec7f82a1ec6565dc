package watcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"

	"github.com/helloworldpark/tickle-stock-info/commons"
	"github.com/helloworldpark/tickle-stock-info/logger"
	"github.com/helloworldpark/tickle-stock-info/structs"
)

const (
	naverDateFormat = "2006.01.02"
	userAgent       = "Mozilla/5.0 (X11; Linux x86_64; rv:135.0) Gecko/20100101 Firefox/135.0"
)

// NaverProvider crawls the daily price pages of Naver Finance.
// Pages are newest first, ten days each.
type NaverProvider struct {
	client   HTTPClient
	baseURL  string
	maxPages int
	limiter  *rate.Limiter
}

// NewNaverProvider returns a crawler requesting at most perSecond pages a second.
func NewNaverProvider(client HTTPClient, baseURL string, maxPages int, perSecond float64) *NaverProvider {
	return &NaverProvider{
		client:   client,
		baseURL:  baseURL,
		maxPages: maxPages,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

func (p *NaverProvider) Name() string { return "naver" }

func (p *NaverProvider) History(ctx context.Context, ticker structs.Ticker, r structs.DateRange) ([]structs.StockPrice, error) {
	stockID := ticker.StockID()
	from := commons.Day(r.From)

	var prices []structs.StockPrice
	var lastFirst int64
	for page := 1; page <= p.maxPages; page++ {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, newError(ErrUpstreamUnavailable, err.Error())
		}
		rows, err := p.CrawlPast(ctx, stockID, page)
		if err != nil {
			return nil, err
		}
		// past the last page Naver serves the last page again
		if len(rows) == 0 || rows[0].Timestamp == lastFirst {
			break
		}
		lastFirst = rows[0].Timestamp

		reachedStart := false
		for _, row := range rows {
			day := commons.Unix(row.Timestamp)
			if r.Contains(day) {
				prices = append(prices, row)
			}
			if day.Before(from) {
				reachedStart = true
			}
		}
		if reachedStart {
			break
		}
		if page == p.maxPages {
			logger.Warn("[Watcher] Stopped crawling %s at page %d", stockID, page)
		}
	}
	if len(prices) == 0 {
		return nil, newError(ErrNoPriceData, string(ticker))
	}

	sort.Slice(prices, func(i, j int) bool {
		return prices[i].Timestamp < prices[j].Timestamp
	})
	return prices, nil
}

// CrawlPast crawls a single page of daily prices, newest first.
func (p *NaverProvider) CrawlPast(ctx context.Context, stockID string, page int) ([]structs.StockPrice, error) {
	u, err := url.Parse(p.baseURL)
	if err != nil {
		return nil, newError(err, "invalid naver url")
	}
	q := u.Query()
	q.Set("code", stockID)
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, newError(err, "invalid naver request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, newError(ErrUpstreamUnavailable, err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newError(ErrUpstreamUnavailable, fmt.Sprintf("naver page %d returned %s", page, resp.Status))
	}

	doc, err := goquery.NewDocumentFromReader(transform.NewReader(resp.Body, korean.EUCKR.NewDecoder()))
	if err != nil {
		return nil, newError(ErrUpstreamUnavailable, err.Error())
	}

	var rows []structs.StockPrice
	var parseErr error
	doc.Find(`table.type2 tr[onmouseover="mouseOver(this)"]`).EachWithBreak(func(i int, tr *goquery.Selection) bool {
		tds := tr.Find("td")
		if tds.Length() < 7 {
			return true
		}
		// 날짜, 종가, 전일비, 시가, 고가, 저가, 거래량
		cell := func(i int) string { return strings.TrimSpace(tds.Eq(i).Text()) }
		if cell(0) == "" {
			return true
		}
		row, err := parseDailyRow(stockID, cell(0), cell(1), cell(3), cell(4), cell(5), cell(6))
		if err != nil {
			parseErr = newError(ErrSchemaMismatch, err.Error())
			return false
		}
		rows = append(rows, row)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return rows, nil
}

func parseDailyRow(stockID, date, closePrice, open, high, low, volume string) (structs.StockPrice, error) {
	row := structs.StockPrice{StockID: stockID}
	var err error
	if row.Timestamp, err = commons.GetTimestamp(naverDateFormat, date); err != nil {
		return row, err
	}
	fields := []struct {
		dst *float64
		src string
	}{
		{&row.Close, closePrice},
		{&row.Open, open},
		{&row.High, high},
		{&row.Low, low},
	}
	for _, f := range fields {
		if *f.dst, err = commons.GetDouble(f.src); err != nil {
			return row, err
		}
	}
	// 거래량은 정수
	shares, err := commons.GetInt(volume)
	if err != nil {
		return row, err
	}
	row.Volume = float64(shares)
	row.AdjClose = row.Close
	return row, nil
}
