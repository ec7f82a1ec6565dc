package structs

import (
	"fmt"
	"strings"
)

// Market is an enum type representing the segment of the stock market
type Market int

const (
	// MarketAll means every segment combined. It has no ticker suffix.
	MarketAll Market = iota
	// KOSPI market, the primary board
	KOSPI
	// KOSDAQ market, the secondary board
	KOSDAQ
)

// Markets lists the segments which own a ticker suffix.
var Markets = []Market{KOSPI, KOSDAQ}

func (m Market) String() string {
	switch m {
	case MarketAll:
		return "all"
	case KOSPI:
		return "kospi"
	case KOSDAQ:
		return "kosdaq"
	}
	return fmt.Sprintf("Market(%d)", int(m))
}

// MarketType is the value of the marketType query parameter of KIND.
func (m Market) MarketType() string {
	switch m {
	case KOSPI:
		return "stockMkt"
	case KOSDAQ:
		return "kosdaqMkt"
	}
	return ""
}

// Suffix returns the ticker suffix used by price providers.
// MarketAll and unknown values have none.
func (m Market) Suffix() (string, bool) {
	switch m {
	case KOSPI:
		return ".KS", true
	case KOSDAQ:
		return ".KQ", true
	}
	return "", false
}

// ParseMarket parses "", "all", "kospi" or "kosdaq", ignoring case.
func ParseMarket(s string) (Market, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return MarketAll, nil
	case "kospi":
		return KOSPI, nil
	case "kosdaq":
		return KOSDAQ, nil
	}
	return MarketAll, fmt.Errorf("[Structs] unknown market %q", s)
}

// MarshalText implements encoding.TextMarshaler.
// Values outside the enum are an error, so they never reach the wire.
func (m Market) MarshalText() ([]byte, error) {
	switch m {
	case MarketAll, KOSPI, KOSDAQ:
		return []byte(m.String()), nil
	}
	return nil, fmt.Errorf("[Structs] invalid market %d", int(m))
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Market) UnmarshalText(text []byte) error {
	parsed, err := ParseMarket(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
