package structs

// Stock is a struct describing each listed stock item
type Stock struct {
	Name       string `json:"name"`
	StockID    string `json:"stockId"`
	MarketType Market `json:"market"`
}

// StockIDLength is the width of a listing code.
const StockIDLength = 6
