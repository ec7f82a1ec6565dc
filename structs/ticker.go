package structs

import (
	"fmt"
	"strings"
)

// Ticker is a listing code qualified by its market suffix, e.g. 035420.KS
type Ticker string

// NewTicker formats a ticker from a listing code and a market.
func NewTicker(stockID string, market Market) (Ticker, error) {
	suffix, ok := market.Suffix()
	if !ok {
		return "", fmt.Errorf("[Structs] market %v has no ticker suffix", market)
	}
	if len(stockID) != StockIDLength {
		return "", fmt.Errorf("[Structs] invalid listing code %q", stockID)
	}
	return Ticker(stockID + suffix), nil
}

// StockID returns the listing code part of the ticker.
func (t Ticker) StockID() string {
	if i := strings.LastIndexByte(string(t), '.'); i >= 0 {
		return string(t)[:i]
	}
	return string(t)
}

// Market returns the market the suffix stands for.
func (t Ticker) Market() Market {
	for _, m := range Markets {
		suffix, _ := m.Suffix()
		if strings.HasSuffix(string(t), suffix) {
			return m
		}
	}
	return MarketAll
}

func (t Ticker) String() string {
	return string(t)
}
