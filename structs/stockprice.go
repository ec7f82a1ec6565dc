package structs

import "time"

// StockPrice is a struct describing a daily price of the stock
type StockPrice struct {
	StockID   string  `json:"stockId"`
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	AdjClose  float64 `json:"adjClose"`
	Volume    float64 `json:"volume"`
}

// DateRange is an inclusive range of trading days
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Valid reports whether both ends are set and From is not after To.
func (r DateRange) Valid() bool {
	return !r.From.IsZero() && !r.To.IsZero() && !r.From.After(r.To)
}

// Contains reports whether t falls on a day inside the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To.AddDate(0, 0, 1))
}
