package watcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helloworldpark/tickle-stock-info/commons"
	"github.com/helloworldpark/tickle-stock-info/structs"
)

// naverServer serves days newest first, ten a page, repeating the last page
// when asked past it.
func naverServer(t *testing.T, days []time.Time) (*httptest.Server, *int) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.Header.Get("User-Agent") == "" {
			http.Error(w, "no agent", http.StatusForbidden)
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		last := (len(days) + 9) / 10
		if page > last {
			page = last
		}
		var b strings.Builder
		b.WriteString(`<table class="type2"><tr><th>date</th><th>close</th><th>diff</th><th>open</th><th>high</th><th>low</th><th>volume</th></tr>`)
		b.WriteString(`<tr><td colspan="7"></td></tr>`)
		for i := (page - 1) * 10; i < page*10 && i < len(days); i++ {
			closePrice := 100000 + i*100
			fmt.Fprintf(&b, `<tr onmouseover="mouseOver(this)" onmouseout="mouseOut(this)">`+
				`<td align="center"><span class="tah p10 gray03">%s</span></td>`+
				`<td class="num"><span class="tah p11">%s</span></td>`+
				`<td class="num"><em class="bu_p bu_pup"><span class="blind">up</span></em><span class="tah p11 red02">500</span></td>`+
				`<td class="num"><span class="tah p11">%d</span></td>`+
				`<td class="num"><span class="tah p11">%d</span></td>`+
				`<td class="num"><span class="tah p11">%d</span></td>`+
				`<td class="num"><span class="tah p11">1,234,567</span></td></tr>`,
				commons.Day(days[i]).Format("2006.01.02"), commas(closePrice), closePrice-50, closePrice+100, closePrice-100)
		}
		b.WriteString(`</table>`)
		w.Header().Set("Content-Type", "text/html; charset=euc-kr")
		w.Write([]byte(b.String()))
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func commas(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	return commas(n/1000) + "," + s[len(s)-3:]
}

// tradingDays returns n weekdays counting back from the end, newest first.
func tradingDays(end time.Time, n int) []time.Time {
	var days []time.Time
	for d := end; len(days) < n; d = d.AddDate(0, 0, -1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		days = append(days, d)
	}
	return days
}

func TestNaverCrawlPast(t *testing.T) {
	days := tradingDays(seoulDay(2021, 12, 30), 25)
	srv, _ := naverServer(t, days)
	p := NewNaverProvider(http.DefaultClient, srv.URL+"/item/sise_day.naver", 10, 1000)

	rows, err := p.CrawlPast(context.Background(), "035420", 1)
	require.NoError(t, err)
	require.Len(t, rows, 10)
	assert.Equal(t, days[0].Unix(), rows[0].Timestamp)
	assert.Equal(t, 100000.0, rows[0].Close)
	assert.Equal(t, 99950.0, rows[0].Open)
	assert.Equal(t, 100100.0, rows[0].High)
	assert.Equal(t, 99900.0, rows[0].Low)
	assert.Equal(t, 1234567.0, rows[0].Volume)
}

func TestNaverHistoryStopsAtStart(t *testing.T) {
	days := tradingDays(seoulDay(2021, 12, 30), 45)
	srv, requests := naverServer(t, days)
	p := NewNaverProvider(http.DefaultClient, srv.URL, 10, 1000)

	// days[12] .. days[3]: ten days, spread over the first two pages
	r := structs.DateRange{From: days[12], To: days[3]}
	prices, err := p.History(context.Background(), "035420.KS", r)
	require.NoError(t, err)
	require.Len(t, prices, 10)
	assert.Equal(t, days[12].Unix(), prices[0].Timestamp)
	assert.Equal(t, days[3].Unix(), prices[9].Timestamp)
	for i := 1; i < len(prices); i++ {
		assert.Less(t, prices[i-1].Timestamp, prices[i].Timestamp)
	}
	assert.Equal(t, 2, *requests)
}

func TestNaverHistoryStopsAtLastPage(t *testing.T) {
	days := tradingDays(seoulDay(2021, 12, 30), 15)
	srv, requests := naverServer(t, days)
	p := NewNaverProvider(http.DefaultClient, srv.URL, 10, 1000)

	r := structs.DateRange{From: seoulDay(2000, 1, 1), To: seoulDay(2021, 12, 31)}
	prices, err := p.History(context.Background(), "035420.KS", r)
	require.NoError(t, err)
	assert.Len(t, prices, 15)
	assert.Equal(t, 3, *requests)
}

func TestNaverHistoryNoData(t *testing.T) {
	days := tradingDays(seoulDay(2021, 12, 30), 5)
	srv, _ := naverServer(t, days)
	p := NewNaverProvider(http.DefaultClient, srv.URL, 10, 1000)

	r := structs.DateRange{From: seoulDay(2022, 1, 3), To: seoulDay(2022, 1, 31)}
	_, err := p.History(context.Background(), "035420.KS", r)
	assert.ErrorIs(t, err, ErrNoPriceData)
}

func TestNaverHistoryCancelled(t *testing.T) {
	days := tradingDays(seoulDay(2021, 12, 30), 5)
	srv, _ := naverServer(t, days)
	p := NewNaverProvider(http.DefaultClient, srv.URL, 10, 1000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := structs.DateRange{From: seoulDay(2021, 1, 1), To: seoulDay(2021, 12, 31)}
	_, err := p.History(ctx, "035420.KS", r)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestParseDailyRowVolume(t *testing.T) {
	row, err := parseDailyRow("035420", "2021.12.30", "378,500", "380,000", "383,000", "377,000", "1,234,567")
	require.NoError(t, err)
	assert.Equal(t, 1234567.0, row.Volume)
	assert.Equal(t, row.Close, row.AdjClose)

	_, err = parseDailyRow("035420", "2021.12.30", "378,500", "380,000", "383,000", "377,000", "12.5")
	assert.Error(t, err)
}
