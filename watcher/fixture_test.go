package watcher

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"golang.org/x/text/encoding/korean"
)

type listingRow struct {
	name, market, code string
}

var kospiRows = []listingRow{
	{"삼성전자", "유가", "5930"},
	{"NAVER", "유가", "35420"},
	{"SK하이닉스", "유가", "660"},
	{"동화약품", "유가", "20"},
}

var kosdaqRows = []listingRow{
	{"에코프로비엠", "코스닥", "247540"},
	{"카카오게임즈", "코스닥", "293490"},
}

// krxPage renders rows the way KIND does: EUC-KR, one table, header first.
func krxPage(t *testing.T, rows []listingRow) []byte {
	var b strings.Builder
	b.WriteString(`<html><head><meta http-equiv="Content-Type" content="text/html; charset=euc-kr"></head><body>`)
	b.WriteString(`<table border="1"><tr><th>회사명</th><th>시장구분</th><th>종목코드</th><th>업종</th></tr>`)
	for _, r := range rows {
		b.WriteString(`<tr><td>` + r.name + `</td><td>` + r.market + `</td>`)
		b.WriteString(`<td style="mso-number-format:'\@';text-align:center;">` + r.code + `</td><td>제조업</td></tr>`)
	}
	b.WriteString(`</table></body></html>`)

	var out bytes.Buffer
	w := korean.EUCKR.NewEncoder().Writer(&out)
	if _, err := w.Write([]byte(b.String())); err != nil {
		t.Fatal(err)
	}
	return out.Bytes()
}

type krxServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests map[string]int
	pages    map[string][]byte
}

func newKRXServer(t *testing.T) *krxServer {
	s := &krxServer{
		requests: make(map[string]int),
		pages: map[string][]byte{
			"stockMkt":  krxPage(t, kospiRows),
			"kosdaqMkt": krxPage(t, kosdaqRows),
			"":          krxPage(t, append(append([]listingRow{}, kospiRows...), kosdaqRows...)),
		},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("method") != "download" {
			http.Error(w, "bad method", http.StatusBadRequest)
			return
		}
		marketType := r.URL.Query().Get("marketType")
		s.mu.Lock()
		s.requests[marketType]++
		page, ok := s.pages[marketType]
		s.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=euc-kr")
		w.Write(page)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *krxServer) count(marketType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[marketType]
}

func (s *krxServer) setPage(marketType string, page []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[marketType] = page
}

func (s *krxServer) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.requests {
		n += c
	}
	return n
}
