package analyser

import (
	"bytes"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/helloworldpark/tickle-stock-info/commons"
	"github.com/helloworldpark/tickle-stock-info/structs"
)

// ChartKind selects how prices are drawn.
type ChartKind string

const (
	// LineChart draws the close price as a line.
	LineChart ChartKind = "line"
	// CandleChart draws daily candlesticks.
	CandleChart ChartKind = "candle"
)

// ChartOptions configures a chart. Zero values draw a 15x5 inch line chart.
type ChartOptions struct {
	Title         string
	Kind          ChartKind
	Width, Height vg.Length
	// MovingAverage overlays an SMA of this window, when positive.
	MovingAverage int
	// Trend overlays a linear regression of the close price.
	Trend bool
}

var (
	closeColor = color.RGBA{B: 160, A: 255}
	maColor    = color.RGBA{R: 230, G: 120, A: 255}
	trendColor = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	upColor    = color.RGBA{R: 200, A: 255}
	downColor  = color.RGBA{B: 200, A: 255}
)

// Plot draws prices as a PNG image.
func Plot(prices []structs.StockPrice, opts ChartOptions) ([]byte, error) {
	if len(prices) == 0 {
		return nil, newError(ErrEmptySeries, "")
	}
	if opts.Width <= 0 {
		opts.Width = 15 * vg.Inch
	}
	if opts.Height <= 0 {
		opts.Height = 5 * vg.Inch
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "Date"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02", Time: plot.UnixTimeIn(commons.AsiaSeoul)}
	p.Y.Label.Text = "Price (KRW)"
	p.Add(plotter.NewGrid())

	switch opts.Kind {
	case CandleChart:
		p.Add(NewCandleSticks(NewCandles(prices), upColor, downColor))
	default:
		line, err := plotter.NewLine(closeXYs(prices))
		if err != nil {
			return nil, newError(err, "close line")
		}
		line.Color = closeColor
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add("Close", line)
	}

	if opts.MovingAverage > 0 {
		if err := addMovingAverage(p, prices, opts.MovingAverage); err != nil {
			return nil, err
		}
	}
	if opts.Trend {
		if err := addTrend(p, prices); err != nil {
			return nil, err
		}
	}

	writer, err := p.WriterTo(opts.Width, opts.Height, "png")
	if err != nil {
		return nil, newError(err, "render")
	}
	var buf bytes.Buffer
	if _, err := writer.WriteTo(&buf); err != nil {
		return nil, newError(err, "render")
	}
	return buf.Bytes(), nil
}

func closeXYs(prices []structs.StockPrice) plotter.XYs {
	xys := make(plotter.XYs, len(prices))
	for i, pr := range prices {
		xys[i].X = float64(pr.Timestamp)
		xys[i].Y = pr.Close
	}
	return xys
}

func addMovingAverage(p *plot.Plot, prices []structs.StockPrice, window int) error {
	ma, err := MovingAverage(prices, window)
	if err != nil {
		return err
	}
	var xys plotter.XYs
	for i, v := range ma {
		if math.IsNaN(v) {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(prices[i].Timestamp), Y: v})
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return newError(err, "moving average line")
	}
	line.Color = maColor
	p.Add(line)
	p.Legend.Add("SMA", line)
	return nil
}

func addTrend(p *plot.Plot, prices []structs.StockPrice) error {
	slope, intercept, err := Trend(prices)
	if err != nil {
		return err
	}
	first, last := prices[0].Timestamp, prices[len(prices)-1].Timestamp
	days := float64(last-first) / secondsPerDay
	line, err := plotter.NewLine(plotter.XYs{
		{X: float64(first), Y: intercept},
		{X: float64(last), Y: intercept + slope*days},
	})
	if err != nil {
		return newError(err, "trend line")
	}
	line.Color = trendColor
	line.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
	p.Add(line)
	p.Legend.Add("Trend", line)
	return nil
}
