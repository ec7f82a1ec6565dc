package analyser

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/helloworldpark/tickle-stock-info/structs"
)

// Candle is a daily bar placed on the time axis.
type Candle struct {
	Timestamp, Open, Close, High, Low float64
}

type Candles []Candle

func (c Candles) Len() int { return len(c) }

// NewCandles converts prices into candles.
func NewCandles(prices []structs.StockPrice) Candles {
	cs := make(Candles, len(prices))
	for i, p := range prices {
		cs[i] = Candle{
			Timestamp: float64(p.Timestamp),
			Open:      p.Open,
			Close:     p.Close,
			High:      p.High,
			Low:       p.Low,
		}
	}
	return cs
}

// CandleSticks implements plot.Plotter and plot.DataRanger.
// Rising days use UpColor, falling days DownColor.
type CandleSticks struct {
	Candles
	UpColor, DownColor color.Color
}

func NewCandleSticks(cs Candles, up, down color.Color) *CandleSticks {
	cp := make(Candles, len(cs))
	copy(cp, cs)
	return &CandleSticks{
		Candles:   cp,
		UpColor:   up,
		DownColor: down,
	}
}

func (cs *CandleSticks) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)

	for _, d := range cs.Candles {
		if d.Close >= d.Open {
			c.SetColor(cs.UpColor)
		} else {
			c.SetColor(cs.DownColor)
		}

		// body: the whole day
		x0 := trX(d.Timestamp)
		x1 := trX(d.Timestamp + secondsPerDay)
		y0 := trY(d.Open)
		y1 := trY(d.Close)
		var body vg.Rectangle
		body.Min = vg.Point{X: x0, Y: vg.Length(math.Min(float64(y0), float64(y1)))}
		body.Max = vg.Point{X: x1, Y: vg.Length(math.Max(float64(y0), float64(y1)))}
		c.Fill(body.Path())

		// wick: the middle third of the day
		x0 = trX(d.Timestamp + secondsPerDay/3)
		x1 = trX(d.Timestamp + 2*secondsPerDay/3)
		var wick vg.Rectangle
		wick.Min = vg.Point{X: x0, Y: trY(d.Low)}
		wick.Max = vg.Point{X: x1, Y: trY(d.High)}
		c.Fill(wick.Path())
	}
}

func (cs *CandleSticks) DataRange() (xmin, xmax, ymin, ymax float64) {
	if len(cs.Candles) == 0 {
		return 0, 0, 0, 0
	}
	xmin = cs.Candles[0].Timestamp
	xmax = cs.Candles[len(cs.Candles)-1].Timestamp + secondsPerDay

	ymin = cs.Candles[0].Low
	ymax = cs.Candles[0].High
	for _, d := range cs.Candles {
		ymin = math.Min(ymin, d.Low)
		ymax = math.Max(ymax, d.High)
	}
	return xmin, xmax, ymin, ymax
}
