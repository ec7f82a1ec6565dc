package analyser

import (
	"errors"
	"math"
	"time"

	"github.com/sajari/regression"
	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"

	"github.com/helloworldpark/tickle-stock-info/commons"
	"github.com/helloworldpark/tickle-stock-info/structs"
)

var (
	// ErrEmptySeries means there is no price to analyse.
	ErrEmptySeries = errors.New("empty price series")
	// ErrNotEnoughData means the series is too short for the analysis.
	ErrNotEnoughData = errors.New("not enough data")
)

var newError = commons.NewTaggedWrapper("Analyser")

const secondsPerDay = 24 * 60 * 60

// NewTimeSeries converts daily prices into a techan time series.
// Prices must be ascending by date; out of order prices are dropped.
func NewTimeSeries(prices []structs.StockPrice) *techan.TimeSeries {
	series := techan.NewTimeSeries()
	for _, p := range prices {
		candle := techan.NewCandle(techan.NewTimePeriod(commons.Unix(p.Timestamp), 24*time.Hour))
		candle.OpenPrice = big.NewDecimal(p.Open)
		candle.ClosePrice = big.NewDecimal(p.Close)
		candle.MaxPrice = big.NewDecimal(p.High)
		candle.MinPrice = big.NewDecimal(p.Low)
		candle.Volume = big.NewDecimal(p.Volume)
		series.AddCandle(candle)
	}
	return series
}

// MovingAverage returns the simple moving average of the close price.
// The first window-1 values are NaN.
func MovingAverage(prices []structs.StockPrice, window int) ([]float64, error) {
	if len(prices) == 0 {
		return nil, newError(ErrEmptySeries, "")
	}
	if window <= 0 || window > len(prices) {
		return nil, newError(ErrNotEnoughData, "moving average window out of range")
	}

	series := NewTimeSeries(prices)
	sma := techan.NewSimpleMovingAverage(techan.NewClosePriceIndicator(series), window)
	result := make([]float64, len(series.Candles))
	for i := range result {
		if i < window-1 {
			result[i] = math.NaN()
			continue
		}
		result[i] = sma.Calculate(i).Float()
	}
	return result, nil
}

// Trend fits close = intercept + slope * days since the first price.
func Trend(prices []structs.StockPrice) (slope, intercept float64, err error) {
	if len(prices) == 0 {
		return 0, 0, newError(ErrEmptySeries, "")
	}
	if len(prices) < 3 {
		return 0, 0, newError(ErrNotEnoughData, "trend needs at least 3 prices")
	}

	r := new(regression.Regression)
	r.SetObserved("close")
	r.SetVar(0, "day")
	first := prices[0].Timestamp
	for _, p := range prices {
		r.Train(regression.DataPoint(p.Close, []float64{float64(p.Timestamp-first) / secondsPerDay}))
	}
	if err := r.Run(); err != nil {
		return 0, 0, newError(ErrNotEnoughData, err.Error())
	}
	return r.Coeff(1), r.Coeff(0), nil
}

// Summary describes the close prices of a series.
type Summary struct {
	From   int64   `json:"from"`
	To     int64   `json:"to"`
	Days   int     `json:"days"`
	First  float64 `json:"first"`
	Last   float64 `json:"last"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Change float64 `json:"change"`
}

// Summarize summarizes prices, ascending by date.
func Summarize(prices []structs.StockPrice) (Summary, error) {
	if len(prices) == 0 {
		return Summary{}, newError(ErrEmptySeries, "")
	}
	first, last := prices[0], prices[len(prices)-1]
	s := Summary{
		From:  first.Timestamp,
		To:    last.Timestamp,
		Days:  len(prices),
		First: first.Close,
		Last:  last.Close,
		Min:   first.Close,
		Max:   first.Close,
	}
	for _, p := range prices {
		s.Min = math.Min(s.Min, p.Close)
		s.Max = math.Max(s.Max, p.Close)
	}
	if s.First != 0 {
		s.Change = (s.Last - s.First) / s.First
	}
	return s, nil
}
