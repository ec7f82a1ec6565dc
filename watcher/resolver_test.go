package watcher

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helloworldpark/tickle-stock-info/structs"
)

type fakeLister struct {
	rosters map[structs.Market][]structs.Stock
	err     error
	calls   int
}

func (f *fakeLister) FetchListings(ctx context.Context, market structs.Market) ([]structs.Stock, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rosters[market], nil
}

func naverRoster() *fakeLister {
	return &fakeLister{rosters: map[structs.Market][]structs.Stock{
		structs.KOSPI: {
			{Name: "삼성전자", StockID: "005930", MarketType: structs.KOSPI},
			{Name: "NAVER", StockID: "035420", MarketType: structs.KOSPI},
		},
		structs.KOSDAQ: {
			{Name: "카카오게임즈", StockID: "293490", MarketType: structs.KOSDAQ},
		},
	}}
}

func TestResolveTicker(t *testing.T) {
	ctx := context.Background()
	lister := naverRoster()

	ticker, err := ResolveTicker(ctx, lister, "NAVER", structs.KOSPI)
	require.NoError(t, err)
	assert.Equal(t, structs.Ticker("035420.KS"), ticker)

	ticker, err = ResolveTicker(ctx, lister, "카카오게임즈", structs.KOSDAQ)
	require.NoError(t, err)
	assert.Equal(t, structs.Ticker("293490.KQ"), ticker)
}

func TestResolveTickerOtherMarket(t *testing.T) {
	_, err := ResolveTicker(context.Background(), naverRoster(), "NAVER", structs.KOSDAQ)
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestResolveTickerExactMatch(t *testing.T) {
	ctx := context.Background()
	lister := naverRoster()
	for _, name := range []string{"naver", "NAVER ", "NAV", ""} {
		_, err := ResolveTicker(ctx, lister, name, structs.KOSPI)
		assert.ErrorIs(t, err, ErrCompanyNotFound, name)
	}
}

func TestResolveTickerUnsupportedSegment(t *testing.T) {
	lister := naverRoster()
	lister.rosters[structs.MarketAll] = lister.rosters[structs.KOSPI]

	for _, name := range []string{"NAVER", "삼성전자", "없는회사"} {
		_, err := ResolveTicker(context.Background(), lister, name, structs.MarketAll)
		assert.ErrorIs(t, err, ErrUnsupportedSegment)
	}
	_, err := ResolveTicker(context.Background(), lister, "NAVER", structs.Market(7))
	assert.ErrorIs(t, err, ErrUnsupportedSegment)
	assert.Zero(t, lister.calls, "no roster may be fetched for a segment without suffix")
}

func TestResolveTickerFirstMatchWins(t *testing.T) {
	lister := &fakeLister{rosters: map[structs.Market][]structs.Stock{
		structs.KOSPI: {
			{Name: "중복", StockID: "000001"},
			{Name: "중복", StockID: "000002"},
		},
	}}
	ticker, err := ResolveTicker(context.Background(), lister, "중복", structs.KOSPI)
	require.NoError(t, err)
	assert.Equal(t, structs.Ticker("000001.KS"), ticker)
}

func TestResolveTickerPropagatesListingErrors(t *testing.T) {
	for _, cause := range []error{ErrUpstreamUnavailable, ErrSchemaMismatch} {
		lister := &fakeLister{err: newError(cause, "test")}
		_, err := ResolveTicker(context.Background(), lister, "NAVER", structs.KOSPI)
		assert.True(t, errors.Is(err, cause))
	}
}

func TestResolveTickerKeepsCodeAsPrefix(t *testing.T) {
	s := newKRXServer(t)
	idx := newTestIndex(s)
	ctx := context.Background()

	for _, market := range structs.Markets {
		stocks, err := idx.FetchListings(ctx, market)
		require.NoError(t, err)
		for _, st := range stocks {
			ticker, err := ResolveTicker(ctx, idx, st.Name, market)
			require.NoError(t, err)
			rest := strings.TrimPrefix(string(ticker), st.StockID)
			assert.NotEqual(t, string(ticker), rest, "code must be a prefix of %s", ticker)
			assert.Contains(t, []string{".KS", ".KQ"}, rest)
		}
	}
}

func TestResolveTickerAgainstKIND(t *testing.T) {
	s := newKRXServer(t)
	idx := newTestIndex(s)

	ticker, err := ResolveTicker(context.Background(), idx, "NAVER", structs.KOSPI)
	require.NoError(t, err)
	assert.Equal(t, structs.Ticker("035420.KS"), ticker)

	_, err = ResolveTicker(context.Background(), idx, "NAVER", structs.KOSDAQ)
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}
